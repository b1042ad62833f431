//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/packvault/platform/test/integration/testutil"
)

type openResult struct {
	Pulls []struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		CoinValue int64     `json:"coin_value"`
	} `json:"pulls"`
	TotalCost int64 `json:"total_cost"`
	Balance   int64 `json:"balance"`
}

func TestPackOpening(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, accountID := env.RegisterAccount("packuser", "password123")
	boxID, _ := env.SeedBox("Vintage Sealed", 100, 1, []testutil.SeedItem{
		{Name: "Base Set Booster", Kind: "sealed", Rarity: "rare", PullRate: 1, CoinValue: 40},
	})

	t.Run("single pack debits price and records pull", func(t *testing.T) {
		resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", nil, token)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var result openResult
		testutil.DecodeJSON(t, resp, &result)

		if result.TotalCost != 100 {
			t.Errorf("total_cost: expected 100, got %d", result.TotalCost)
		}
		if result.Balance != testutil.TestStartingCoins-100 {
			t.Errorf("balance: expected %d, got %d", testutil.TestStartingCoins-100, result.Balance)
		}
		if len(result.Pulls) != 1 {
			t.Fatalf("expected 1 pull, got %d", len(result.Pulls))
		}
		if result.Pulls[0].Name != "Base Set Booster" {
			t.Errorf("pull name: expected Base Set Booster, got %s", result.Pulls[0].Name)
		}

		testutil.AssertCoins(t, env, accountID, testutil.TestStartingCoins-100)
		if n := testutil.CountEntries(t, env, accountID, "pack_open"); n != 1 {
			t.Errorf("expected 1 pack_open entry, got %d", n)
		}
		if n := testutil.CountOutboxEvents(t, env, accountID.String(), "vault.pack.opened"); n != 1 {
			t.Errorf("expected 1 pack opened event, got %d", n)
		}
	})

	t.Run("insufficient balance rejects atomically", func(t *testing.T) {
		// 150 coins left, two packs cost 200
		resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", map[string]int{"quantity": 2}, token)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "INSUFFICIENT_FUNDS")

		testutil.AssertCoins(t, env, accountID, testutil.TestStartingCoins-100)
		if n := testutil.PullCount(t, env, accountID); n != 1 {
			t.Errorf("expected pull count unchanged at 1, got %d", n)
		}
	})

	t.Run("quantity outside allow-list", func(t *testing.T) {
		resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", map[string]int{"quantity": 6}, token)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "INVALID_QUANTITY")
	})

	t.Run("unknown box", func(t *testing.T) {
		resp := env.AuthPOST("/boxes/"+uuid.NewString()+"/open", nil, token)
		testutil.AssertStatus(t, resp, http.StatusNotFound)
		testutil.AssertErrorCode(t, resp, "NOT_FOUND")
	})

	t.Run("requires auth", func(t *testing.T) {
		resp := env.POST("/boxes/"+boxID.String()+"/open", nil, "")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})
}

func TestMultiPackOpening(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, accountID := env.RegisterAccount("multipack", "password123")
	boxID, _ := env.SeedBox("Starter Box", 50, 2, []testutil.SeedItem{
		{Name: "Common Card", Rarity: "common", PullRate: 1, CoinValue: 5},
	})

	// 3 packs x 2 items per pack
	resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", map[string]int{"quantity": 3}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result openResult
	testutil.DecodeJSON(t, resp, &result)

	if result.TotalCost != 150 {
		t.Errorf("total_cost: expected 150, got %d", result.TotalCost)
	}
	if len(result.Pulls) != 6 {
		t.Errorf("expected 6 pulls, got %d", len(result.Pulls))
	}
	testutil.AssertCoins(t, env, accountID, testutil.TestStartingCoins-150)
	if n := testutil.PullCount(t, env, accountID); n != 6 {
		t.Errorf("expected 6 pulls stored, got %d", n)
	}
}

func TestSellPull(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, accountID := env.RegisterAccount("sellertest", "password123")
	boxID, _ := env.SeedBox("Sell Box", 100, 1, []testutil.SeedItem{
		{Name: "Holo Card", Rarity: "holo", PullRate: 1, CoinValue: 40},
	})

	openPull := func() uuid.UUID {
		t.Helper()
		resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", nil, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		var result openResult
		testutil.DecodeJSON(t, resp, &result)
		if len(result.Pulls) != 1 {
			t.Fatalf("expected 1 pull, got %d", len(result.Pulls))
		}
		return result.Pulls[0].ID
	}

	t.Run("sell credits coin value and removes pull", func(t *testing.T) {
		pullID := openPull() // 250 -> 150

		resp := env.AuthPOST("/inventory/sell", map[string]string{"pull_id": pullID.String()}, token)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var result struct {
			PullID    uuid.UUID `json:"pull_id"`
			CoinValue int64     `json:"coin_value"`
			Balance   int64     `json:"balance"`
		}
		testutil.DecodeJSON(t, resp, &result)

		if result.CoinValue != 40 {
			t.Errorf("coin_value: expected 40, got %d", result.CoinValue)
		}
		if result.Balance != 190 {
			t.Errorf("balance: expected 190, got %d", result.Balance)
		}
		testutil.AssertCoins(t, env, accountID, 190)
		if n := testutil.PullCount(t, env, accountID); n != 0 {
			t.Errorf("expected 0 pulls after sale, got %d", n)
		}
		if n := testutil.CountEntries(t, env, accountID, "sale_credit"); n != 1 {
			t.Errorf("expected 1 sale_credit entry, got %d", n)
		}

		// Selling the same pull again must not double-credit.
		resp = env.AuthPOST("/inventory/sell", map[string]string{"pull_id": pullID.String()}, token)
		testutil.AssertStatus(t, resp, http.StatusNotFound)
		testutil.AssertErrorCode(t, resp, "NOT_FOUND")
		testutil.AssertCoins(t, env, accountID, 190)
	})

	t.Run("pull held by a blocking order cannot be sold", func(t *testing.T) {
		pullID := openPull() // 190 -> 90
		env.SeedOrder(accountID, "SHIPPED", pullID)

		resp := env.AuthPOST("/inventory/sell", map[string]string{"pull_id": pullID.String()}, token)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
		testutil.AssertCoins(t, env, accountID, 90)
	})

	t.Run("refunded order does not block the sale", func(t *testing.T) {
		env.GrantCoins(accountID, 110) // back to 200
		pullID := openPull()           // 200 -> 100
		env.SeedOrder(accountID, "REFUNDED", pullID)

		resp := env.AuthPOST("/inventory/sell", map[string]string{"pull_id": pullID.String()}, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		testutil.AssertCoins(t, env, accountID, 140)
	})

	t.Run("cannot sell someone else's pull", func(t *testing.T) {
		otherToken, _ := env.RegisterAccount("otherseller", "password123")
		env.GrantCoins(accountID, 60) // back to 200
		pullID := openPull()          // 200 -> 100

		resp := env.AuthPOST("/inventory/sell", map[string]string{"pull_id": pullID.String()}, otherToken)
		testutil.AssertStatus(t, resp, http.StatusNotFound)
		testutil.AssertErrorCode(t, resp, "NOT_FOUND")
	})
}

func TestBulkSell(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, accountID := env.RegisterAccount("bulkseller", "password123")
	boxID, _ := env.SeedBox("Bulk Box", 50, 1, []testutil.SeedItem{
		{Name: "Bulk Card", Rarity: "common", PullRate: 1, CoinValue: 20},
	})

	var pullIDs []uuid.UUID
	for i := 0; i < 3; i++ { // 250 -> 100
		resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", nil, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		var result openResult
		testutil.DecodeJSON(t, resp, &result)
		pullIDs = append(pullIDs, result.Pulls[0].ID)
	}

	// Block one pull behind a paid order, and include one unknown id.
	env.SeedOrder(accountID, "PAID", pullIDs[1])
	missing := uuid.New()

	resp := env.AuthPOST("/inventory/sell/bulk", map[string]interface{}{
		"pull_ids": []string{pullIDs[0].String(), pullIDs[1].String(), pullIDs[2].String(), missing.String()},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		SoldIDs       []uuid.UUID `json:"sold_ids"`
		TotalCredited int64       `json:"total_credited"`
		Balance       int64       `json:"balance"`
		Rejections    []struct {
			PullID uuid.UUID `json:"pull_id"`
			Reason string    `json:"reason"`
		} `json:"rejections"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if len(result.SoldIDs) != 2 {
		t.Fatalf("expected 2 sold, got %d", len(result.SoldIDs))
	}
	if result.TotalCredited != 40 {
		t.Errorf("total_credited: expected 40, got %d", result.TotalCredited)
	}
	if result.Balance != 140 {
		t.Errorf("balance: expected 140, got %d", result.Balance)
	}
	if len(result.Rejections) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(result.Rejections))
	}

	reasons := map[uuid.UUID]string{}
	for _, r := range result.Rejections {
		reasons[r.PullID] = r.Reason
	}
	if reasons[pullIDs[1]] != "blocked_by_order" {
		t.Errorf("expected blocked_by_order for held pull, got %q", reasons[pullIDs[1]])
	}
	if reasons[missing] != "not_found" {
		t.Errorf("expected not_found for unknown pull, got %q", reasons[missing])
	}

	testutil.AssertCoins(t, env, accountID, 140)
	if n := testutil.CountEntries(t, env, accountID, "sale_credit"); n != 2 {
		t.Errorf("expected 2 sale_credit entries, got %d", n)
	}
}

func TestWalletEndpoints(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, accountID := env.RegisterAccount("walletuser", "password123")
	boxID, _ := env.SeedBox("Wallet Box", 100, 1, []testutil.SeedItem{
		{Name: "Any Card", PullRate: 1, CoinValue: 10},
	})

	resp := env.AuthPOST("/boxes/"+boxID.String()+"/open", nil, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	t.Run("balance reflects ledger", func(t *testing.T) {
		resp := env.AuthGET("/wallet/balance", token)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var result struct {
			AccountID string `json:"account_id"`
			Coins     int64  `json:"coins"`
		}
		testutil.DecodeJSON(t, resp, &result)
		if result.AccountID != accountID.String() {
			t.Errorf("account_id mismatch: %s", result.AccountID)
		}
		if result.Coins != testutil.TestStartingCoins-100 {
			t.Errorf("coins: expected %d, got %d", testutil.TestStartingCoins-100, result.Coins)
		}
	})

	t.Run("entries carry running balance", func(t *testing.T) {
		resp := env.AuthGET("/wallet/entries", token)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var result struct {
			Entries []struct {
				Type         string `json:"type"`
				Amount       int64  `json:"amount"`
				BalanceAfter int64  `json:"balance_after"`
			} `json:"entries"`
		}
		testutil.DecodeJSON(t, resp, &result)
		if len(result.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(result.Entries))
		}
		// Newest first: the pack charge, then the signup grant.
		open := result.Entries[0]
		if open.Type != "pack_open" || open.Amount != -100 || open.BalanceAfter != testutil.TestStartingCoins-100 {
			t.Errorf("unexpected entry: %+v", open)
		}
		grant := result.Entries[1]
		if grant.Type != "signup_grant" || grant.Amount != testutil.TestStartingCoins || grant.BalanceAfter != testutil.TestStartingCoins {
			t.Errorf("unexpected entry: %+v", grant)
		}
	})
}

//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/packvault/platform/test/integration/testutil"
)

type battleResponse struct {
	ID              uuid.UUID  `json:"id"`
	Status          string     `json:"status"`
	Format          string     `json:"format"`
	Mode            string     `json:"mode"`
	MaxParticipants int        `json:"max_participants"`
	Rounds          int        `json:"rounds"`
	EntryFee        int64      `json:"entry_fee"`
	TotalPrize      int64      `json:"total_prize"`
	WinnerID        *uuid.UUID `json:"winner_id"`
	WinningTeam     *int       `json:"winning_team"`
}

type battleDetailResponse struct {
	Battle       battleResponse `json:"battle"`
	Participants []struct {
		AccountID    uuid.UUID `json:"account_id"`
		TeamNumber   int       `json:"team_number"`
		TotalValue   int64     `json:"total_value"`
		RoundsPulled int       `json:"rounds_pulled"`
	} `json:"participants"`
	Pulls []struct {
		RoundNumber int   `json:"round_number"`
		CoinValue   int64 `json:"coin_value"`
	} `json:"pulls"`
}

type pullRoundResponse struct {
	Pull struct {
		RoundNumber int   `json:"round_number"`
		CoinValue   int64 `json:"coin_value"`
	} `json:"pull"`
	RoundNumber int  `json:"round_number"`
	Finished    bool `json:"finished"`
}

func createBattle(t *testing.T, env *testutil.TestEnv, token string, body map[string]interface{}) battleResponse {
	t.Helper()
	resp := env.AuthPOST("/battles", body, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var battle battleResponse
	testutil.DecodeJSON(t, resp, &battle)
	return battle
}

func TestSoloBattleLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)

	boxID, _ := env.SeedBox("Battle Box", 10, 1, []testutil.SeedItem{
		{Name: "Battle Card", Rarity: "common", PullRate: 1, CoinValue: 5},
	})

	creatorToken, creatorID := env.RegisterAccount("creator1", "password123")
	joinerToken, joinerID := env.RegisterAccount("joiner1", "password123")

	// Seat cost = entry fee 10 + box price 10 x 2 rounds = 30.
	battle := createBattle(t, env, creatorToken, map[string]interface{}{
		"box_id":           boxID.String(),
		"format":           "SOLO",
		"mode":             "NORMAL",
		"rounds":           2,
		"max_participants": 2,
		"entry_fee":        10,
	})
	if battle.Status != "WAITING" {
		t.Fatalf("expected WAITING, got %s", battle.Status)
	}
	testutil.AssertCoins(t, env, creatorID, 220)
	if n := testutil.CountEntries(t, env, creatorID, "battle_entry"); n != 1 {
		t.Errorf("expected 1 battle_entry for creator, got %d", n)
	}

	battlePath := "/battles/" + battle.ID.String()

	t.Run("filling the last seat starts the battle", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/join", nil, joinerToken)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var joined battleResponse
		testutil.DecodeJSON(t, resp, &joined)
		if joined.Status != "IN_PROGRESS" {
			t.Errorf("expected IN_PROGRESS after last join, got %s", joined.Status)
		}
		testutil.AssertCoins(t, env, joinerID, 220)
	})

	t.Run("joining a started battle is rejected", func(t *testing.T) {
		lateToken, lateID := env.RegisterAccount("latecomer", "password123")
		resp := env.AuthPOST(battlePath+"/join", nil, lateToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
		testutil.AssertCoins(t, env, lateID, testutil.TestStartingCoins)
	})

	t.Run("non-participant pull reads as not found", func(t *testing.T) {
		outsiderToken, _ := env.RegisterAccount("pulloutsider", "password123")
		resp := env.AuthPOST(battlePath+"/pull", nil, outsiderToken)
		testutil.AssertStatus(t, resp, http.StatusNotFound)
		testutil.AssertErrorCode(t, resp, "NOT_FOUND")
	})

	pull := func(token string) pullRoundResponse {
		t.Helper()
		resp := env.AuthPOST(battlePath+"/pull", nil, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		var result pullRoundResponse
		testutil.DecodeJSON(t, resp, &result)
		return result
	}

	t.Run("rounds complete and the last pull finalizes", func(t *testing.T) {
		r1 := pull(creatorToken)
		if r1.RoundNumber != 1 || r1.Finished {
			t.Errorf("creator round 1: got round %d finished %v", r1.RoundNumber, r1.Finished)
		}
		r2 := pull(joinerToken)
		if r2.RoundNumber != 1 || r2.Finished {
			t.Errorf("joiner round 1: got round %d finished %v", r2.RoundNumber, r2.Finished)
		}
		r3 := pull(creatorToken)
		if r3.RoundNumber != 2 || r3.Finished {
			t.Errorf("creator round 2: got round %d finished %v", r3.RoundNumber, r3.Finished)
		}
		r4 := pull(joinerToken)
		if r4.RoundNumber != 2 || !r4.Finished {
			t.Errorf("joiner round 2: got round %d finished %v", r4.RoundNumber, r4.Finished)
		}
	})

	t.Run("pulling after finish is rejected", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/pull", nil, creatorToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
	})

	t.Run("tie splits the prize between both participants", func(t *testing.T) {
		resp := env.AuthGET(battlePath, creatorToken)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var detail battleDetailResponse
		testutil.DecodeJSON(t, resp, &detail)

		if detail.Battle.Status != "FINISHED" {
			t.Fatalf("expected FINISHED, got %s", detail.Battle.Status)
		}
		// 4 pulls at 5 coins each
		if detail.Battle.TotalPrize != 20 {
			t.Errorf("total_prize: expected 20, got %d", detail.Battle.TotalPrize)
		}
		if detail.Battle.WinnerID == nil {
			t.Error("expected winner_id to be set")
		}
		if len(detail.Pulls) != 4 {
			t.Errorf("expected 4 battle pulls, got %d", len(detail.Pulls))
		}

		// Identical single-item pool forces a tie: each side gets half the prize.
		testutil.AssertCoins(t, env, creatorID, 230)
		testutil.AssertCoins(t, env, joinerID, 230)
		if n := testutil.CountEntries(t, env, creatorID, "battle_prize"); n != 1 {
			t.Errorf("expected 1 battle_prize for creator, got %d", n)
		}
		if n := testutil.CountEntries(t, env, joinerID, "battle_prize"); n != 1 {
			t.Errorf("expected 1 battle_prize for joiner, got %d", n)
		}
	})
}

func TestBattleGuards(t *testing.T) {
	env := testutil.NewTestEnv(t)

	boxID, _ := env.SeedBox("Guard Box", 10, 1, []testutil.SeedItem{
		{Name: "Guard Card", PullRate: 1, CoinValue: 5},
	})

	creatorToken, _ := env.RegisterAccount("guardcreator", "password123")
	outsiderToken, _ := env.RegisterAccount("outsider", "password123")

	battle := createBattle(t, env, creatorToken, map[string]interface{}{
		"box_id":           boxID.String(),
		"format":           "SOLO",
		"mode":             "NORMAL",
		"rounds":           1,
		"max_participants": 3,
		"entry_fee":        0,
	})
	battlePath := "/battles/" + battle.ID.String()

	t.Run("creator cannot join twice", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/join", nil, creatorToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
	})

	t.Run("pull before the battle starts", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/pull", nil, creatorToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
	})

	t.Run("only creator or admin can cancel", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/cancel", nil, outsiderToken)
		testutil.AssertStatus(t, resp, http.StatusForbidden)
		testutil.AssertErrorCode(t, resp, "FORBIDDEN")
	})

	t.Run("team config must factor into seats", func(t *testing.T) {
		resp := env.AuthPOST("/battles", map[string]interface{}{
			"box_id":           boxID.String(),
			"format":           "TEAM",
			"mode":             "NORMAL",
			"rounds":           1,
			"max_participants": 5,
			"team_size":        2,
			"team_count":       2,
		}, creatorToken)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "INVALID_CONFIGURATION")
	})
}

func TestBattleCancelRefund(t *testing.T) {
	env := testutil.NewTestEnv(t)

	boxID, _ := env.SeedBox("Refund Box", 10, 1, []testutil.SeedItem{
		{Name: "Refund Card", PullRate: 1, CoinValue: 5},
	})

	creatorToken, creatorID := env.RegisterAccount("refundcreator", "password123")
	joinerToken, joinerID := env.RegisterAccount("refundjoiner", "password123")

	// Seat cost = 10 + 10 x 1 = 20
	battle := createBattle(t, env, creatorToken, map[string]interface{}{
		"box_id":           boxID.String(),
		"format":           "SOLO",
		"mode":             "NORMAL",
		"rounds":           1,
		"max_participants": 3,
		"entry_fee":        10,
	})
	battlePath := "/battles/" + battle.ID.String()

	resp := env.AuthPOST(battlePath+"/join", nil, joinerToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	testutil.AssertCoins(t, env, creatorID, 230)
	testutil.AssertCoins(t, env, joinerID, 230)

	resp = env.AuthPOST(battlePath+"/cancel", nil, creatorToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	testutil.AssertCoins(t, env, creatorID, testutil.TestStartingCoins)
	testutil.AssertCoins(t, env, joinerID, testutil.TestStartingCoins)
	if n := testutil.CountEntries(t, env, joinerID, "battle_refund"); n != 1 {
		t.Errorf("expected 1 battle_refund for joiner, got %d", n)
	}

	t.Run("cancel is not repeatable", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/cancel", nil, creatorToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
		testutil.AssertCoins(t, env, creatorID, testutil.TestStartingCoins)
	})

	t.Run("join after cancel is rejected", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/join", nil, joinerToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
	})
}

func TestTeamBattleLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)

	boxID, _ := env.SeedBox("Team Box", 10, 1, []testutil.SeedItem{
		{Name: "Team Card", PullRate: 1, CoinValue: 5},
	})

	aToken, aID := env.RegisterAccount("teama", "password123")
	bToken, bID := env.RegisterAccount("teamb", "password123")

	battle := createBattle(t, env, aToken, map[string]interface{}{
		"box_id":           boxID.String(),
		"format":           "TEAM",
		"mode":             "NORMAL",
		"rounds":           1,
		"max_participants": 2,
		"team_size":        1,
		"team_count":       2,
	})
	battlePath := "/battles/" + battle.ID.String()

	resp := env.AuthPOST(battlePath+"/join", nil, bToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	for _, token := range []string{aToken, bToken} {
		resp := env.AuthPOST(battlePath+"/pull", nil, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	resp = env.AuthGET(battlePath, aToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var detail battleDetailResponse
	testutil.DecodeJSON(t, resp, &detail)

	if detail.Battle.Status != "FINISHED" {
		t.Fatalf("expected FINISHED, got %s", detail.Battle.Status)
	}
	// Breadth-first assignment puts the two players on different teams.
	teams := map[int]bool{}
	for _, p := range detail.Participants {
		teams[p.TeamNumber] = true
	}
	if !teams[1] || !teams[2] {
		t.Errorf("expected participants on teams 1 and 2, got %+v", detail.Participants)
	}
	// Equal team totals: no single winning team, every member shares the prize.
	if detail.Battle.WinningTeam != nil {
		t.Errorf("expected no winning_team on tied totals, got %d", *detail.Battle.WinningTeam)
	}
	// Seat cost 10, prize 10 split 5/5: net -5 each.
	testutil.AssertCoins(t, env, aID, testutil.TestStartingCoins-5)
	testutil.AssertCoins(t, env, bID, testutil.TestStartingCoins-5)
}

func TestBattleSimulate(t *testing.T) {
	env := testutil.NewTestEnv(t)

	boxID, _ := env.SeedBox("Sim Box", 10, 1, []testutil.SeedItem{
		{Name: "Sim Card", PullRate: 1, CoinValue: 5},
	})

	adminToken, _ := env.RegisterAdmin("simadmin", "password123")
	userToken, userID := env.RegisterAccount("simuser", "password123")

	battle := createBattle(t, env, userToken, map[string]interface{}{
		"box_id":           boxID.String(),
		"format":           "SOLO",
		"mode":             "NORMAL",
		"rounds":           2,
		"max_participants": 4,
		"entry_fee":        10,
	})
	battlePath := "/battles/" + battle.ID.String()

	t.Run("simulate requires admin role", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/simulate", nil, userToken)
		testutil.AssertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("admin simulation fills seats with bots and finishes", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/simulate", nil, adminToken)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var result battleResponse
		testutil.DecodeJSON(t, resp, &result)
		if result.Status != "FINISHED" {
			t.Fatalf("expected FINISHED, got %s", result.Status)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var bots int
		if err := env.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM accounts WHERE is_bot").Scan(&bots); err != nil {
			t.Fatalf("count bots: %v", err)
		}
		if bots != 3 {
			t.Errorf("expected 3 bot accounts, got %d", bots)
		}

		// All seats tie on the single-item pool: prize 40 splits 10 each.
		detailResp := env.AuthGET(battlePath, userToken)
		testutil.AssertStatus(t, detailResp, http.StatusOK)
		var detail battleDetailResponse
		testutil.DecodeJSON(t, detailResp, &detail)
		if len(detail.Participants) != 4 {
			t.Errorf("expected 4 participants, got %d", len(detail.Participants))
		}
		if len(detail.Pulls) != 8 {
			t.Errorf("expected 8 battle pulls, got %d", len(detail.Pulls))
		}
		// Seat cost 30, prize share 10: net -20 for the creator.
		testutil.AssertCoins(t, env, userID, testutil.TestStartingCoins-20)
	})

	t.Run("simulate on a finished battle is rejected", func(t *testing.T) {
		resp := env.AuthPOST(battlePath+"/simulate", nil, adminToken)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "STATE_CONFLICT")
	})
}

func TestBattleSimulateSkipsSeatedBots(t *testing.T) {
	env := testutil.NewTestEnv(t)

	boxID, _ := env.SeedBox("Seated Box", 10, 1, []testutil.SeedItem{
		{Name: "Seated Card", PullRate: 1, CoinValue: 5},
	})

	adminToken, _ := env.RegisterAdmin("seatedadmin", "password123")
	userToken, userID := env.RegisterAccount("seateduser", "password123")

	// Seat cost = 10 + 10 x 1 = 20.
	battle := createBattle(t, env, userToken, map[string]interface{}{
		"box_id":           boxID.String(),
		"format":           "SOLO",
		"mode":             "NORMAL",
		"rounds":           1,
		"max_participants": 3,
		"entry_fee":        10,
	})
	battlePath := "/battles/" + battle.ID.String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// One bot already holds a seat before the simulation runs.
	seatedBotID := uuid.New()
	if _, err := env.Pool.Exec(ctx, `
		INSERT INTO accounts (id, username, password_hash, role, is_bot, coins)
		VALUES ($1, $2, 'x', 'bot', true, 0)`, seatedBotID, "bot_seated"); err != nil {
		t.Fatalf("seed bot account: %v", err)
	}
	if _, err := env.Pool.Exec(ctx, `
		INSERT INTO battle_participants (id, battle_id, account_id)
		VALUES ($1, $2, $3)`, uuid.New(), battle.ID, seatedBotID); err != nil {
		t.Fatalf("seat bot: %v", err)
	}

	resp := env.AuthPOST(battlePath+"/simulate", nil, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result battleResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Status != "FINISHED" {
		t.Fatalf("expected FINISHED, got %s", result.Status)
	}

	// The already seated bot must not be handed out again; a fresh bot takes
	// the remaining seat.
	var bots int
	if err := env.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM accounts WHERE is_bot").Scan(&bots); err != nil {
		t.Fatalf("count bots: %v", err)
	}
	if bots != 2 {
		t.Errorf("expected 2 bot accounts, got %d", bots)
	}

	detailResp := env.AuthGET(battlePath, userToken)
	testutil.AssertStatus(t, detailResp, http.StatusOK)
	var detail battleDetailResponse
	testutil.DecodeJSON(t, detailResp, &detail)
	if len(detail.Participants) != 3 {
		t.Errorf("expected 3 participants, got %d", len(detail.Participants))
	}
	if len(detail.Pulls) != 3 {
		t.Errorf("expected 3 battle pulls, got %d", len(detail.Pulls))
	}
	// Three-way tie: prize 15 splits 5 each, so the creator nets -15.
	testutil.AssertCoins(t, env, userID, testutil.TestStartingCoins-15)
}

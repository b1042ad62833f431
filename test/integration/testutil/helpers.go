//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RegisterAccount creates a new account and returns the auth token and account ID.
func (env *TestEnv) RegisterAccount(username, password string) (token string, accountID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterAccount: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token     string    `json:"token"`
		AccountID uuid.UUID `json:"account_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterAccount: decode: %v", err)
	}
	return result.Token, result.AccountID
}

// LoginAccount authenticates an existing account and returns the auth token.
func (env *TestEnv) LoginAccount(username, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginAccount: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginAccount: decode: %v", err)
	}
	return result.Token
}

// RegisterAdmin creates an account, promotes it to admin, and logs in again so
// the returned token carries the admin role.
func (env *TestEnv) RegisterAdmin(username, password string) (token string, accountID uuid.UUID) {
	env.t.Helper()
	_, accountID = env.RegisterAccount(username, password)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE accounts SET role = 'admin', updated_at = now() WHERE id = $1", accountID)
	if err != nil {
		env.t.Fatalf("RegisterAdmin: promote: %v", err)
	}

	return env.LoginAccount(username, password), accountID
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("GET", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.POST(path, body, token)
}

// SeedItem describes one item row inserted by SeedBox.
type SeedItem struct {
	Name      string
	Kind      string
	Rarity    string
	PullRate  float64
	CoinValue int64
}

// SeedBox inserts a box and its items directly and returns the box ID plus the
// item IDs in insertion order.
func (env *TestEnv) SeedBox(name string, price int64, itemsPerPack int, items []SeedItem) (uuid.UUID, []uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boxID := uuid.New()
	_, err := env.Pool.Exec(ctx,
		"INSERT INTO boxes (id, name, price, items_per_pack, active) VALUES ($1, $2, $3, $4, true)",
		boxID, name, price, itemsPerPack)
	if err != nil {
		env.t.Fatalf("SeedBox: insert box: %v", err)
	}

	itemIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		itemID := uuid.New()
		kind := item.Kind
		if kind == "" {
			kind = "card"
		}
		_, err := env.Pool.Exec(ctx,
			`INSERT INTO box_items (id, box_id, kind, name, rarity, pull_rate, coin_value)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			itemID, boxID, kind, item.Name, item.Rarity, item.PullRate, item.CoinValue)
		if err != nil {
			env.t.Fatalf("SeedBox: insert item: %v", err)
		}
		itemIDs = append(itemIDs, itemID)
	}

	return boxID, itemIDs
}

// SeedOrder inserts an order in the given status holding the given pulls.
func (env *TestEnv) SeedOrder(accountID uuid.UUID, status string, pullIDs ...uuid.UUID) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orderID := uuid.New()
	_, err := env.Pool.Exec(ctx,
		"INSERT INTO orders (id, account_id, status) VALUES ($1, $2, $3)",
		orderID, accountID, status)
	if err != nil {
		env.t.Fatalf("SeedOrder: insert order: %v", err)
	}
	for _, pullID := range pullIDs {
		_, err := env.Pool.Exec(ctx,
			"INSERT INTO order_items (order_id, pull_id) VALUES ($1, $2)",
			orderID, pullID)
		if err != nil {
			env.t.Fatalf("SeedOrder: insert item: %v", err)
		}
	}
	return orderID
}

// GrantCoins adjusts an account balance directly, bypassing the API.
func (env *TestEnv) GrantCoins(accountID uuid.UUID, amount int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE accounts SET coins = coins + $1, updated_at = now() WHERE id = $2",
		amount, accountID)
	if err != nil {
		env.t.Fatalf("GrantCoins: %v", err)
	}
}

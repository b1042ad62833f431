//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertCoins queries the accounts table and asserts the account's coin balance.
func AssertCoins(t *testing.T, env *TestEnv, accountID uuid.UUID, expected int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var coins int64
	err := env.Pool.QueryRow(ctx,
		"SELECT coins::bigint FROM accounts WHERE id = $1", accountID).Scan(&coins)
	if err != nil {
		t.Fatalf("AssertCoins: query: %v", err)
	}
	if coins != expected {
		t.Errorf("coins: expected %d, got %d", expected, coins)
	}
}

// CountEntries returns the number of coin entries for an account, optionally
// filtered by entry type.
func CountEntries(t *testing.T, env *TestEnv, accountID uuid.UUID, entryType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	var err error
	if entryType == "" {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM coin_entries WHERE account_id = $1", accountID).Scan(&count)
	} else {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM coin_entries WHERE account_id = $1 AND type = $2",
			accountID, entryType).Scan(&count)
	}
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox events for an aggregate.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID string, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	var err error
	if eventType == "" {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1", aggregateID).Scan(&count)
	} else {
		err = env.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1 AND event_type = $2",
			aggregateID, eventType).Scan(&count)
	}
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}

// PullCount returns the number of live pulls owned by an account.
func PullCount(t *testing.T, env *TestEnv, accountID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM pulls WHERE account_id = $1", accountID).Scan(&count)
	if err != nil {
		t.Fatalf("PullCount: %v", err)
	}
	return count
}

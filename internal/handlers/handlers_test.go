package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teedon/cooperative-manager-sub000/internal/auth"
	"github.com/teedon/cooperative-manager-sub000/internal/esusu"
	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/notification"
	"github.com/teedon/cooperative-manager-sub000/internal/settings"
	"github.com/teedon/cooperative-manager-sub000/internal/storage/sqlite"
)

// setupTestServer starts the full router on a temp SQLite database and
// returns the server plus a valid admin token.
func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "circles-api-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	provider := settings.Static{Rate: 5, Frequency: models.FrequencyMonthly}
	engine := esusu.New(store, provider, notification.LogNotifier{})

	router := NewRouter(RouterConfig{
		Engine:         engine,
		Authenticator:  auth.NewPasswordAuthenticator(store),
		JWTManager:     auth.NewJWTManager("test-secret", time.Hour),
		AuthRateLimit:  100,
		AuthRateWindow: time.Minute,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp := doJSON(t, server, "", http.MethodPost, "/v1/auth/register", map[string]string{
		"email":    "admin@coop.test",
		"name":     "Ada",
		"password": "long-enough-password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register returned %d", resp.StatusCode)
	}
	var authResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("Failed to decode auth response: %v", err)
	}
	return server, authResp.Token
}

func doJSON(t *testing.T, server *httptest.Server, token, method, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("Expected status %d, got %d", want, resp.StatusCode)
	}
}

// createCircleHTTP creates a circle over the API and returns its ID.
func createCircleHTTP(t *testing.T, server *httptest.Server, token, strategy string, members []string) string {
	t.Helper()

	resp := doJSON(t, server, token, http.MethodPost, "/v1/circles", map[string]interface{}{
		"cooperative_id": "coop-1",
		"name":           "Market Women Q3",
		"amount":         1000,
		"strategy":       strategy,
		"member_ids":     members,
	})
	expectStatus(t, resp, http.StatusCreated)

	var circle struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &circle)
	if circle.ID == "" {
		t.Fatal("Expected circle ID in response")
	}
	return circle.ID
}

func TestAuthEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		resp := doJSON(t, server, "", http.MethodPost, "/v1/auth/register", map[string]string{
			"email":    "admin@coop.test",
			"name":     "Dup",
			"password": "long-enough-password",
		})
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusConflict)
	})

	t.Run("weak password returns bad request", func(t *testing.T) {
		resp := doJSON(t, server, "", http.MethodPost, "/v1/auth/register", map[string]string{
			"email":    "other@coop.test",
			"name":     "Other",
			"password": "short",
		})
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("login returns a token", func(t *testing.T) {
		resp := doJSON(t, server, "", http.MethodPost, "/v1/auth/login", map[string]string{
			"email":    "admin@coop.test",
			"password": "long-enough-password",
		})
		expectStatus(t, resp, http.StatusOK)

		var body struct {
			Token string `json:"token"`
			Email string `json:"email"`
		}
		decodeBody(t, resp, &body)
		if body.Token == "" {
			t.Error("Expected a token")
		}
		if body.Email != "admin@coop.test" {
			t.Errorf("Expected email echoed back, got %q", body.Email)
		}
	})

	t.Run("wrong password returns unauthorized", func(t *testing.T) {
		resp := doJSON(t, server, "", http.MethodPost, "/v1/auth/login", map[string]string{
			"email":    "admin@coop.test",
			"password": "wrong-password-here",
		})
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("circle routes require a token", func(t *testing.T) {
		resp := doJSON(t, server, "", http.MethodPost, "/v1/circles", map[string]interface{}{})
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusUnauthorized)

		resp = doJSON(t, server, "garbage-token", http.MethodGet, "/v1/circles/some-id", nil)
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusUnauthorized)
	})
}

func TestCircleLifecycleHTTP(t *testing.T) {
	server, token := setupTestServer(t)
	members := []string{"ada", "bola", "chidi"}

	circleID := createCircleHTTP(t, server, token, "manual", members)

	// Everyone accepts.
	for _, memberID := range members {
		resp := doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/responses", circleID), map[string]interface{}{
				"member_id": memberID,
				"decision":  "accepted",
			})
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	// Assign a manual order.
	resp := doJSON(t, server, token, http.MethodPost,
		fmt.Sprintf("/v1/circles/%s/order", circleID), map[string]interface{}{
			"order": []map[string]interface{}{
				{"member_id": "bola", "order": 1},
				{"member_id": "ada", "order": 2},
				{"member_id": "chidi", "order": 3},
			},
		})
	expectStatus(t, resp, http.StatusOK)
	var activated struct {
		Status       string `json:"status"`
		CurrentCycle int    `json:"current_cycle"`
	}
	decodeBody(t, resp, &activated)
	if activated.Status != "active" || activated.CurrentCycle != 1 {
		t.Fatalf("Expected active cycle 1, got %+v", activated)
	}

	// Fund cycle 1.
	for _, memberID := range members {
		resp := doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/contributions", circleID), map[string]interface{}{
				"member_id": memberID,
				"amount":    1000,
				"method":    "cash",
			})
		expectStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	// Cycle status shows completion.
	resp = doJSON(t, server, token, http.MethodGet,
		fmt.Sprintf("/v1/circles/%s/cycle", circleID), nil)
	expectStatus(t, resp, http.StatusOK)
	var status struct {
		Cycle       int    `json:"cycle"`
		IsComplete  bool   `json:"is_complete"`
		CollectorID string `json:"collector_id"`
	}
	decodeBody(t, resp, &status)
	if !status.IsComplete {
		t.Fatalf("Expected complete cycle, got %+v", status)
	}
	if status.CollectorID != "bola" {
		t.Errorf("Expected bola to collect first, got %s", status.CollectorID)
	}

	// Disburse the pot.
	resp = doJSON(t, server, token, http.MethodPost,
		fmt.Sprintf("/v1/circles/%s/collections", circleID), map[string]interface{}{
			"method":    "bank_transfer",
			"reference": "TRF-9001",
		})
	expectStatus(t, resp, http.StatusCreated)
	var record struct {
		TotalAmount float64 `json:"total_amount"`
		Commission  float64 `json:"commission"`
		NetAmount   float64 `json:"net_amount"`
		CollectorID string  `json:"collector_id"`
	}
	decodeBody(t, resp, &record)
	if record.TotalAmount != 3000 || record.Commission != 150 || record.NetAmount != 2850 {
		t.Errorf("Unexpected pot split: %+v", record)
	}
	if record.CollectorID != "bola" {
		t.Errorf("Expected bola as collector, got %s", record.CollectorID)
	}

	// History lists the disbursement.
	resp = doJSON(t, server, token, http.MethodGet,
		fmt.Sprintf("/v1/circles/%s/collections", circleID), nil)
	expectStatus(t, resp, http.StatusOK)
	var history struct {
		Collections []json.RawMessage `json:"collections"`
	}
	decodeBody(t, resp, &history)
	if len(history.Collections) != 1 {
		t.Errorf("Expected 1 collection, got %d", len(history.Collections))
	}
}

func TestErrorMappingHTTP(t *testing.T) {
	server, token := setupTestServer(t)

	t.Run("unknown circle returns 404", func(t *testing.T) {
		resp := doJSON(t, server, token, http.MethodGet, "/v1/circles/no-such-circle", nil)
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusNotFound)
	})

	t.Run("invalid manual order returns 400 with a kind", func(t *testing.T) {
		members := []string{"a", "b", "c"}
		circleID := createCircleHTTP(t, server, token, "manual", members)
		for _, m := range members {
			resp := doJSON(t, server, token, http.MethodPost,
				fmt.Sprintf("/v1/circles/%s/responses", circleID), map[string]interface{}{
					"member_id": m, "decision": "accepted",
				})
			expectStatus(t, resp, http.StatusOK)
			resp.Body.Close()
		}

		resp := doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/order", circleID), map[string]interface{}{
				"order": []map[string]interface{}{
					{"member_id": "a", "order": 2},
					{"member_id": "b", "order": 4},
					{"member_id": "c", "order": 1},
				},
			})
		expectStatus(t, resp, http.StatusBadRequest)

		var body struct {
			Kind string `json:"kind"`
		}
		decodeBody(t, resp, &body)
		if body.Kind != string(esusu.KindInvalidOrder) {
			t.Errorf("Expected kind %s, got %q", esusu.KindInvalidOrder, body.Kind)
		}
	})

	t.Run("missing reference returns 400", func(t *testing.T) {
		circleID := createCircleHTTP(t, server, token, "random", []string{"a", "b", "c"})
		resp := doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/contributions", circleID), map[string]interface{}{
				"member_id": "a", "amount": 1000, "method": "bank_transfer",
			})
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("cancelled circle returns 409", func(t *testing.T) {
		circleID := createCircleHTTP(t, server, token, "random", []string{"a", "b", "c"})

		resp := doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/cancel", circleID), map[string]interface{}{
				"reason": "testing",
			})
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		resp = doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/invitations", circleID), map[string]interface{}{
				"member_ids": []string{"d"},
			})
		expectStatus(t, resp, http.StatusConflict)

		var body struct {
			Kind string `json:"kind"`
		}
		decodeBody(t, resp, &body)
		if body.Kind != string(esusu.KindCircleCancelled) {
			t.Errorf("Expected kind %s, got %q", esusu.KindCircleCancelled, body.Kind)
		}
	})

	t.Run("premature collection returns 409", func(t *testing.T) {
		members := []string{"a", "b", "c"}
		circleID := createCircleHTTP(t, server, token, "random", members)
		for _, m := range members {
			resp := doJSON(t, server, token, http.MethodPost,
				fmt.Sprintf("/v1/circles/%s/responses", circleID), map[string]interface{}{
					"member_id": m, "decision": "accepted",
				})
			expectStatus(t, resp, http.StatusOK)
			resp.Body.Close()
		}
		resp := doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/order", circleID), map[string]interface{}{})
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		resp = doJSON(t, server, token, http.MethodPost,
			fmt.Sprintf("/v1/circles/%s/collections", circleID), map[string]interface{}{
				"method": "cash",
			})
		expectStatus(t, resp, http.StatusConflict)

		var body struct {
			Kind string `json:"kind"`
		}
		decodeBody(t, resp, &body)
		if body.Kind != string(esusu.KindCycleNotComplete) {
			t.Errorf("Expected kind %s, got %q", esusu.KindCycleNotComplete, body.Kind)
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("Metrics request failed: %v", err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
}

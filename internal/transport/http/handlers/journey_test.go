package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"okrtrack/internal/app/server"
	"okrtrack/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		OrgName:            "Test Org",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		MigrationsDir:      "../../../../migrations",
		ReportStorageDir:   "storage/test-reports",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		CacheTTL:           time.Second,
	}
}

func startApp(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts, cfg
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	status, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login returned %d", status)
	}
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &data)
	if data.Token == "" {
		t.Fatal("login returned empty token")
	}
	return data.Token
}

func TestOKRLifecycleJourney(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()

	// Team and member.
	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/teams", token, map[string]any{
		"name": fmt.Sprintf("Growth %d", suffix),
	})
	if status != http.StatusCreated {
		t.Fatalf("create team returned %d", status)
	}
	var team struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &team)

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/users", token, map[string]any{
		"username": fmt.Sprintf("journey%d", suffix),
		"email":    fmt.Sprintf("journey-%d@example.com", suffix),
		"fullName": "Journey User",
		"role":     "user",
		"teamId":   team.ID,
		"password": "Password123!",
	})
	if status != http.StatusCreated {
		t.Fatalf("create user returned %d", status)
	}
	var member struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &member)

	// Email stays unique across users.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/users", token, map[string]any{
		"username": fmt.Sprintf("journeytwo%d", suffix),
		"email":    fmt.Sprintf("journey-%d@example.com", suffix),
		"fullName": "Second Journey User",
		"role":     "user",
		"password": "Password123!",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate email returned %d, want 409", status)
	}
	if env.Error == nil || env.Error.Code != "conflict" || !strings.Contains(env.Error.Message, "email") {
		t.Fatalf("expected conflict naming the email field, got %+v", env.Error)
	}

	// Cycle.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/cycles", token, map[string]any{
		"name":      fmt.Sprintf("FY Cycle %d", suffix),
		"startDate": "2026-01-01",
		"endDate":   "2026-03-31",
		"type":      "quarterly",
		"status":    "active",
	})
	if status != http.StatusCreated {
		t.Fatalf("create cycle returned %d", status)
	}
	var cycle struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &cycle)

	if status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/cycles/"+cycle.ID+"/set-default", token, nil); status != http.StatusOK {
		t.Fatalf("set default cycle returned %d", status)
	}

	// A cycle may start and end on the same day.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/cycles", token, map[string]any{
		"name":      fmt.Sprintf("Planning Day %d", suffix),
		"startDate": "2026-04-01",
		"endDate":   "2026-04-01",
		"type":      "custom",
	})
	if status != http.StatusCreated {
		t.Fatalf("single-day cycle returned %d", status)
	}

	// Objective with one key result.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/objectives", token, map[string]any{
		"title":     fmt.Sprintf("Expand into new market %d", suffix),
		"teamId":    team.ID,
		"ownerId":   member.ID,
		"cycleId":   cycle.ID,
		"startDate": "2026-01-01",
		"endDate":   "2026-03-31",
	})
	if status != http.StatusCreated {
		t.Fatalf("create objective returned %d", status)
	}
	var objective struct {
		ID       string  `json:"id"`
		Progress float64 `json:"progress"`
		Version  int     `json:"version"`
	}
	decodeData(t, env, &objective)

	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/objectives/"+objective.ID+"/key-results", token, map[string]any{
		"title":       "Sign 10 pilot customers",
		"startValue":  0,
		"targetValue": 10,
	})
	if status != http.StatusCreated {
		t.Fatalf("create key result returned %d", status)
	}
	var keyResult struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
	}
	decodeData(t, env, &keyResult)

	// Check in at the halfway mark and verify the rollup.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/key-results/"+keyResult.ID+"/check-ins", token, map[string]any{
		"newValue": 5,
		"version":  keyResult.Version,
		"note":     "first five pilots signed",
	})
	if status != http.StatusCreated {
		t.Fatalf("check-in returned %d", status)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/objectives/"+objective.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("get objective returned %d", status)
	}
	var updated struct {
		Progress float64 `json:"progress"`
		Health   string  `json:"health"`
	}
	decodeData(t, env, &updated)
	if updated.Progress != 50 {
		t.Fatalf("expected objective progress 50 after check-in, got %v", updated.Progress)
	}

	// The flat create endpoint demands exactly one target.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/check-ins", token, map[string]any{
		"objectiveId": objective.ID,
		"keyResultId": keyResult.ID,
		"newValue":    7,
		"version":     2,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("check-in with both targets returned %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_target" {
		t.Fatalf("expected invalid_target error, got %+v", env.Error)
	}

	// Second check-in through the flat endpoint drives the key result home.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/check-ins", token, map[string]any{
		"keyResultId": keyResult.ID,
		"newValue":    10,
		"version":     2,
		"note":        "all ten pilots signed",
	})
	if status != http.StatusCreated {
		t.Fatalf("flat check-in returned %d", status)
	}

	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/objectives/"+objective.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("get objective returned %d", status)
	}
	var done struct {
		Progress float64 `json:"progress"`
		Status   string  `json:"status"`
	}
	decodeData(t, env, &done)
	if done.Progress != 100 || done.Status != "completed" {
		t.Fatalf("expected progress 100 and status completed, got %v/%s", done.Progress, done.Status)
	}

	// An objective filter also picks up its key results' check-ins.
	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/check-ins?objectiveId="+objective.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("list check-ins returned %d", status)
	}
	var objectiveCheckIns []struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &objectiveCheckIns)
	if len(objectiveCheckIns) != 2 {
		t.Fatalf("expected 2 check-ins for the objective, got %d", len(objectiveCheckIns))
	}

	// The status filter speaks the same derived vocabulary responses use.
	assertObjectiveListed := func(statusFilter string, want bool) {
		t.Helper()
		code, listEnv := doJSON(t, client, http.MethodGet, ts.URL+"/api/objectives?cycleId="+cycle.ID+"&status="+statusFilter, token, nil)
		if code != http.StatusOK {
			t.Fatalf("list objectives status=%s returned %d", statusFilter, code)
		}
		var listed []struct {
			ID string `json:"id"`
		}
		decodeData(t, listEnv, &listed)
		found := false
		for _, o := range listed {
			if o.ID == objective.ID {
				found = true
			}
		}
		if found != want {
			t.Fatalf("status=%s listing: objective present = %v, want %v", statusFilter, found, want)
		}
	}
	assertObjectiveListed("completed", true)
	assertObjectiveListed("active", false)

	// Stale writes are refused.
	status, env = doJSON(t, client, http.MethodPut, ts.URL+"/api/objectives/"+objective.ID, token, map[string]any{
		"title":     "Expand into new market, revised",
		"startDate": "2026-01-01",
		"endDate":   "2026-03-31",
		"version":   999,
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for stale objective version, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "version_conflict" {
		t.Fatalf("expected version_conflict error, got %+v", env.Error)
	}

	// Comment on the objective.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/comments", token, map[string]any{
		"objectiveId": objective.ID,
		"body":        "Great momentum this week.",
	})
	if status != http.StatusCreated {
		t.Fatalf("create comment returned %d", status)
	}

	// The objective is findable through search.
	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/search?q=Expand+into", token, nil)
	if status != http.StatusOK {
		t.Fatalf("search returned %d", status)
	}
	var results struct {
		Items []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	decodeData(t, env, &results)
	if results.Total == 0 {
		t.Fatal("expected search to find the objective")
	}

	// Report preview over everything.
	status, env = doJSON(t, client, http.MethodPost, ts.URL+"/api/reports/preview", token, map[string]any{
		"timePeriod": "all_time",
		"reportType": "okr_summary",
	})
	if status != http.StatusOK {
		t.Fatalf("report preview returned %d", status)
	}
	var preview struct {
		Summary struct {
			ObjectiveCount int `json:"objectiveCount"`
		} `json:"summary"`
	}
	decodeData(t, env, &preview)
	if preview.Summary.ObjectiveCount == 0 {
		t.Fatal("expected report preview to count objectives")
	}

	// Maintenance job runs on demand and leaves a run record.
	status, _ = doJSON(t, client, http.MethodPost, ts.URL+"/api/admin/jobs/cycle_rollover/run", token, nil)
	if status != http.StatusOK {
		t.Fatalf("job run returned %d", status)
	}
	status, env = doJSON(t, client, http.MethodGet, ts.URL+"/api/admin/jobs/runs?jobType=cycle_rollover", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list job runs returned %d", status)
	}
	var runs []struct {
		JobType string `json:"jobType"`
		Status  string `json:"status"`
	}
	decodeData(t, env, &runs)
	if len(runs) == 0 {
		t.Fatal("expected at least one recorded job run")
	}
}

func TestRegularUserCannotManageUsers(t *testing.T) {
	ts, cfg := startApp(t)
	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("limited-%d@example.com", suffix)
	status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/users", adminToken, map[string]any{
		"username": fmt.Sprintf("limited%d", suffix),
		"email":    email,
		"fullName": "Limited User",
		"role":     "user",
		"password": "Password123!",
	})
	if status != http.StatusCreated {
		t.Fatalf("create user returned %d", status)
	}

	userToken := login(t, client, ts.URL, email, "Password123!")

	status, env := doJSON(t, client, http.MethodPost, ts.URL+"/api/users", userToken, map[string]any{
		"username": fmt.Sprintf("escalate%d", suffix),
		"email":    fmt.Sprintf("escalate-%d@example.com", suffix),
		"fullName": "Should Fail",
		"role":     "admin",
		"password": "Password123!",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin user creation, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "forbidden" {
		t.Fatalf("expected forbidden error, got %+v", env.Error)
	}

	// Reads stay open to every signed-in role.
	if status, _ = doJSON(t, client, http.MethodGet, ts.URL+"/api/objectives", userToken, nil); status != http.StatusOK {
		t.Fatalf("objective list returned %d for regular user", status)
	}
}

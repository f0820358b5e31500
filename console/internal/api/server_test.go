package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/config"
	"github.com/anavsan/anavsan/console/internal/team"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data := catalog.Load()

	account, err := billing.NewAccount(billing.Subscription{
		Plan:             billing.Team,
		Status:           billing.Active,
		Cycle:            billing.Monthly,
		Seats:            5,
		CurrentPeriodEnd: catalog.Epoch.AddDate(0, 0, 20),
	}, logger)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}

	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	srv := NewServer(Deps{
		Data:    data,
		Inbox:   catalog.NewInbox(data.Notifications, nil),
		Account: account,
		Roster:  team.NewRoster(data.Members, nil, logger),
	}, cfg, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, wantStatus int, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, want %d: %s", path, resp.StatusCode, wantStatus, body)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

type warehousePage struct {
	Items []struct {
		Name  string `json:"name"`
		State string `json:"state"`
	} `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	resp := getJSON(t, ts, "/healthz", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestListWarehouses(t *testing.T) {
	ts := newTestServer(t)

	var all warehousePage
	getJSON(t, ts, "/api/warehouses?page_size=50", http.StatusOK, &all)
	if all.Total != 8 || len(all.Items) != 8 {
		t.Fatalf("total = %d, items = %d, want 8", all.Total, len(all.Items))
	}

	var running warehousePage
	getJSON(t, ts, "/api/warehouses?state=running", http.StatusOK, &running)
	if running.Total != 3 {
		t.Errorf("running total = %d, want 3", running.Total)
	}
	for _, w := range running.Items {
		if w.State != "running" {
			t.Errorf("facet leaked %s in state %s", w.Name, w.State)
		}
	}

	var sorted warehousePage
	getJSON(t, ts, "/api/warehouses?sort=cost&dir=desc", http.StatusOK, &sorted)
	if sorted.Items[0].Name != "ETL_WH" {
		t.Errorf("most expensive = %s, want ETL_WH", sorted.Items[0].Name)
	}
}

func TestListClampsPage(t *testing.T) {
	ts := newTestServer(t)
	var page warehousePage
	getJSON(t, ts, "/api/warehouses?page_size=3&page=99", http.StatusOK, &page)
	if page.TotalPages != 3 || page.Page != 3 {
		t.Fatalf("page %d of %d, want 3 of 3", page.Page, page.TotalPages)
	}
	if len(page.Items) != 2 {
		t.Errorf("last page items = %d, want 2", len(page.Items))
	}
}

func TestListEmptyResult(t *testing.T) {
	ts := newTestServer(t)
	var page warehousePage
	getJSON(t, ts, "/api/warehouses?search=nothing-matches-this", http.StatusOK, &page)
	if page.Total != 0 || page.Page != 1 || page.Items == nil {
		t.Errorf("empty result = %+v", page)
	}
}

func TestListQueriesSearch(t *testing.T) {
	ts := newTestServer(t)
	var page struct {
		Total int `json:"total"`
	}
	getJSON(t, ts, "/api/queries?search=LEDGER", http.StatusOK, &page)
	if page.Total != 5 {
		t.Errorf("ledger queries = %d, want 5", page.Total)
	}
}

func TestListNotificationsUnread(t *testing.T) {
	ts := newTestServer(t)
	var page struct {
		Total int `json:"total"`
	}
	getJSON(t, ts, "/api/notifications?read=unread", http.StatusOK, &page)
	if page.Total != 5 {
		t.Errorf("unread = %d, want 5", page.Total)
	}
}

func TestListDateRange(t *testing.T) {
	ts := newTestServer(t)
	var page struct {
		Total int `json:"total"`
	}
	from := catalog.Epoch.AddDate(0, 0, -1).Format(time.DateOnly)
	getJSON(t, ts, "/api/notifications?from="+from, http.StatusOK, &page)
	// n-01 today, n-02 and n-03 yesterday.
	if page.Total != 3 {
		t.Errorf("notifications since %s = %d, want 3", from, page.Total)
	}
}

func TestListBadParams(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/api/warehouses?sort=nope",
		"/api/warehouses?page=abc",
		"/api/warehouses?page_size=0",
		"/api/queries?from=yesterday",
		"/api/recommendations?from=2025-01-01",
	} {
		getJSON(t, ts, path, http.StatusBadRequest, nil)
	}
}

func TestRecommendationDiff(t *testing.T) {
	ts := newTestServer(t)
	var body struct {
		Chunks []struct {
			Value   string `json:"value"`
			Added   bool   `json:"added"`
			Removed bool   `json:"removed"`
		} `json:"chunks"`
		Stats struct {
			Added   int `json:"added"`
			Removed int `json:"removed"`
		} `json:"stats"`
		Modified string `json:"optimized_sql"`
	}
	getJSON(t, ts, "/api/recommendations/rec-001/diff", http.StatusOK, &body)
	if body.Stats.Added != 4 || body.Stats.Removed != 1 {
		t.Errorf("stats = %+v, want +4 -1", body.Stats)
	}
	var right string
	for _, c := range body.Chunks {
		if !c.Removed {
			right += c.Value
		}
	}
	if right != body.Modified {
		t.Errorf("right side does not rebuild optimized SQL:\n%s", right)
	}

	getJSON(t, ts, "/api/recommendations/rec-004/diff", http.StatusNotFound, nil)
	getJSON(t, ts, "/api/recommendations/missing/diff", http.StatusNotFound, nil)
}

func TestQuote(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		query string
		total string
	}{
		{"plan=individual&cycle=monthly", "52.92"},
		{"plan=individual&cycle=yearly", "505.44"},
		{"plan=team", "258.12"},
		{"plan=Team&cycle=yearly", "2579.04"},
	}
	for _, tt := range tests {
		var q struct {
			Total string `json:"total"`
		}
		getJSON(t, ts, "/api/billing/quote?"+tt.query, http.StatusOK, &q)
		if q.Total != tt.total {
			t.Errorf("%s: total = %s, want %s", tt.query, q.Total, tt.total)
		}
	}
	getJSON(t, ts, "/api/billing/quote?plan=platinum", http.StatusBadRequest, nil)
	getJSON(t, ts, "/api/billing/quote?plan=team&cycle=weekly", http.StatusBadRequest, nil)
}

func TestPlans(t *testing.T) {
	ts := newTestServer(t)
	var body struct {
		Plans []struct {
			Plan      string `json:"plan"`
			SelfServe bool   `json:"self_serve"`
		} `json:"plans"`
	}
	getJSON(t, ts, "/api/billing/plans", http.StatusOK, &body)
	if len(body.Plans) != 4 {
		t.Fatalf("plans = %d, want 4", len(body.Plans))
	}
}

func TestSubscription(t *testing.T) {
	ts := newTestServer(t)
	var body struct {
		Plan       string `json:"plan"`
		Status     string `json:"status"`
		Pending    bool   `json:"is_downgrade_pending"`
		SeatPolicy struct {
			Used      int  `json:"used"`
			CanInvite bool `json:"can_invite"`
		} `json:"seat_policy"`
	}
	getJSON(t, ts, "/api/billing/subscription", http.StatusOK, &body)
	if body.Plan != "team" || body.Status != "active" || body.Pending {
		t.Errorf("subscription = %+v", body)
	}
	if body.SeatPolicy.Used != 4 || !body.SeatPolicy.CanInvite {
		t.Errorf("seat policy = %+v", body.SeatPolicy)
	}
}

func TestTeam(t *testing.T) {
	ts := newTestServer(t)
	var body struct {
		Members []struct {
			ID string `json:"id"`
		} `json:"members"`
	}
	getJSON(t, ts, "/api/team", http.StatusOK, &body)
	if len(body.Members) != 5 {
		t.Errorf("members = %d, want 5", len(body.Members))
	}
}

func TestReadOnly(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/billing/subscription", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/warehouses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	rl := newRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || !rl.allow("a") {
		t.Fatal("burst should allow two requests")
	}
	if rl.allow("a") {
		t.Fatal("third request should be limited")
	}
	if !rl.allow("b") {
		t.Fatal("other clients have their own bucket")
	}
	now = now.Add(time.Second)
	if !rl.allow("a") {
		t.Fatal("bucket should refill")
	}

	now = now.Add(time.Hour)
	rl.cleanup(time.Minute)
	if len(rl.buckets) != 0 {
		t.Errorf("buckets after cleanup = %d", len(rl.buckets))
	}
}

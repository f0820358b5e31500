// Package api serves a read-only JSON view of the console's dataset and
// subscription for local tooling.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/config"
	"github.com/anavsan/anavsan/console/internal/diffview"
	"github.com/anavsan/anavsan/console/internal/payment"
	"github.com/anavsan/anavsan/console/internal/team"
)

// Server is the HTTP API server.
type Server struct {
	data      *catalog.Dataset
	inbox     *catalog.Inbox
	account   *billing.Account
	roster    *team.Roster
	logger    *slog.Logger
	mux       *chi.Mux
	startTime time.Time
	pageSize  int
	rl        *rateLimiter
}

// Deps are the live objects the server reads from.
type Deps struct {
	Data    *catalog.Dataset
	Inbox   *catalog.Inbox
	Account *billing.Account
	Roster  *team.Roster
}

// NewServer creates a new API server.
func NewServer(deps Deps, cfg *config.Config, logger *slog.Logger) *Server {
	srv := &Server{
		data:      deps.Data,
		inbox:     deps.Inbox,
		account:   deps.Account,
		roster:    deps.Roster,
		logger:    logger.With("component", "api"),
		startTime: time.Now(),
		pageSize:  cfg.Dashboard.PageSize,
		rl:        newRateLimiter(20, 40),
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(chimw.RealIP)
	mux.Use(srv.requestLogMiddleware)
	mux.Use(securityHeadersMiddleware)
	mux.Use(makeCORSMiddleware(cfg.Server.AllowedOrigins))
	mux.Use(ipRateLimitMiddleware(srv.rl))

	mux.Get("/healthz", srv.handleHealthz)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/overview", srv.handleOverview)
		r.Get("/warehouses", listHandler(func() []catalog.Warehouse { return srv.data.Warehouses }, catalog.WarehouseSchema(), srv.pageSize))
		r.Get("/queries", listHandler(func() []catalog.Query { return srv.data.Queries }, catalog.QuerySchema(), srv.pageSize))
		r.Get("/storage", listHandler(func() []catalog.StorageItem { return srv.data.Storage }, catalog.StorageSchema(), srv.pageSize))
		r.Get("/recommendations", listHandler(func() []catalog.Recommendation { return srv.data.Recommendations }, catalog.RecommendationSchema(), srv.pageSize))
		r.Get("/recommendations/{id}/diff", srv.handleRecommendationDiff)
		r.Get("/notifications", listHandler(srv.inbox.List, catalog.NotificationSchema(), srv.pageSize))
		r.Get("/team", srv.handleTeam)

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plans", srv.handleGetPlans)
			r.Get("/quote", srv.handleGetQuote)
			r.Get("/subscription", srv.handleGetSubscription)
		})
	})

	srv.mux = mux
	return srv
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).Truncate(time.Second).String(),
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Summarize())
}

type diffResponse struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Original string           `json:"original_sql"`
	Modified string           `json:"optimized_sql"`
	Chunks   []diffview.Chunk `json:"chunks"`
	Stats    diffview.Stats   `json:"stats"`
}

func (s *Server) handleRecommendationDiff(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.data.Recommendation(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if !rec.HasDiff() {
		writeError(w, http.StatusNotFound, "recommendation has no SQL diff")
		return
	}
	chunks := diffview.Compute(rec.OriginalSQL, rec.OptimizedSQL)
	writeJSON(w, http.StatusOK, diffResponse{
		ID:       rec.ID,
		Title:    rec.Title,
		Original: rec.OriginalSQL,
		Modified: rec.OptimizedSQL,
		Chunks:   chunks,
		Stats:    diffview.StatsOf(chunks),
	})
}

type teamResponse struct {
	Members []team.User          `json:"members"`
	Seats   billing.SeatDecision `json:"seats"`
	Usage   team.Usage           `json:"usage"`
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, teamResponse{
		Members: s.roster.List(),
		Seats:   billing.SeatPolicy(s.account.Snapshot(), s.roster.SeatsUsed()),
		Usage:   s.roster.Consumption(),
	})
}

// --- Billing handlers ---

func (s *Server) handleGetPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": billing.Catalog})
}

type quoteResponse struct {
	Plan    billing.Plan  `json:"plan"`
	Cycle   billing.Cycle `json:"cycle"`
	Price   string        `json:"price"`
	Tax     string        `json:"tax"`
	Total   string        `json:"total"`
	Months  int           `json:"months"`
	Custom  bool          `json:"custom,omitempty"`
	Summary string        `json:"summary"`
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	plan, err := billing.ParsePlan(q.Get("plan"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cycle, err := billing.ParseCycle(q.Get("cycle"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := payment.QuoteFor(plan, cycle)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, billing.ErrUnknownPlan) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Plan:    quote.Plan,
		Cycle:   quote.Cycle,
		Price:   quote.Price.StringFixed(2),
		Tax:     quote.Tax.StringFixed(2),
		Total:   quote.Total.StringFixed(2),
		Months:  quote.Months,
		Custom:  quote.Custom,
		Summary: quote.Summary(),
	})
}

type subscriptionResponse struct {
	billing.Subscription
	Seats billing.SeatDecision `json:"seat_policy"`
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub := s.account.Snapshot()
	writeJSON(w, http.StatusOK, subscriptionResponse{
		Subscription: sub,
		Seats:        billing.SeatPolicy(sub, s.roster.SeatsUsed()),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

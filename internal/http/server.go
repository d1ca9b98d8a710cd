// Package http is the presentation adapter over the ledger service. It
// exposes every core operation as JSON and owns the only cache in the
// system: report payloads keyed by the ledger version, so any mutation
// invalidates by key change rather than by explicit flush.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
)

type Server struct {
	http.Server
	ledger        *services.LedgerService
	topCategories int

	// Report payloads keyed by ledger version. Stale versions age out of
	// the LRU; they are never served because the key changes first.
	overviewCache *cache.LRUCache[core.Overview]
}

func NewServer(addr string, ledger *services.LedgerService, topCategories int) *Server {
	s := &Server{
		ledger:        ledger,
		topCategories: topCategories,
		overviewCache: cache.NewLRUCache[core.Overview](16, 5*time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/delete", s.handleDeleteExpense)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/categories/rename", s.handleRenameCategory)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/export.xlsx", s.handleExport)

	tracer := trace.NewMiddleware(extractClientIP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: tracer.Middleware(mux),
	}

	return s
}

// RegisterCaches attaches the server's caches to a cleanup manager.
func (s *Server) RegisterCaches(m *cache.Manager) {
	m.Register(s.overviewCache)
}

// getOverview serves the report for the current ledger version, building it
// from a fresh snapshot only when this version has not been seen yet.
func (s *Server) getOverview(ctx context.Context) (core.Overview, int64, error) {
	version := s.ledger.Version()
	key := strconv.FormatInt(version, 10)

	if overview, found := s.overviewCache.Get(key); found {
		slog.DebugContext(ctx, "Overview cache hit", "version", version)
		return overview, version, nil
	}

	overview, err := s.ledger.Overview(ctx, s.topCategories)
	if err != nil {
		return core.Overview{}, version, err
	}

	s.overviewCache.Set(key, overview)
	return overview, version, nil
}

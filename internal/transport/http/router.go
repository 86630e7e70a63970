package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apppublic "farmwatch/internal/app/public"
	"farmwatch/internal/mcpserver"
	"farmwatch/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(db Pinger, publicSvc *apppublic.Service, mcpSrv *mcpserver.Server) *chi.Mux {
	statsHandlers := NewStatsHandlers(publicSvc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", HealthHandler(db))
	r.Handle("/metrics", metrics.Handler())
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api/stats", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/top/total", statsHandlers.TopTotal())
		r.Get("/top/week", statsHandlers.TopWeek())
		r.Get("/top/last-week", statsHandlers.TopLastWeek())
		r.Get("/players/{name}", statsHandlers.PlayerTotal())
		r.Get("/online/daily", statsHandlers.OnlineDaily())
		r.Get("/online/monthly", statsHandlers.OnlineMonthly())
	})

	r.Route("/charts", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/daily.png", statsHandlers.DailyChart())
		r.Get("/monthly.png", statsHandlers.MonthlyChart())
	})
	return r
}

func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health_db_down")
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}

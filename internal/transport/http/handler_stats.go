package httptransport

import (
	"errors"
	"net/http"

	apppublic "farmwatch/internal/app/public"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type StatsHandlers struct {
	publicSvc *apppublic.Service
}

func NewStatsHandlers(publicSvc *apppublic.Service) *StatsHandlers {
	return &StatsHandlers{publicSvc: publicSvc}
}

func (h *StatsHandlers) TopTotal() http.HandlerFunc {
	return h.limitJSON(func(r *http.Request, limit int) (any, error) {
		return h.publicSvc.TopTotal(r.Context(), limit)
	})
}

func (h *StatsHandlers) TopWeek() http.HandlerFunc {
	return h.limitJSON(func(r *http.Request, limit int) (any, error) {
		return h.publicSvc.TopWeek(r.Context(), limit)
	})
}

func (h *StatsHandlers) TopLastWeek() http.HandlerFunc {
	return h.limitJSON(func(r *http.Request, limit int) (any, error) {
		return h.publicSvc.TopLastWeek(r.Context(), limit)
	})
}

func (h *StatsHandlers) PlayerTotal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.PlayerTotal(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, resp)
	}
}

func (h *StatsHandlers) OnlineDaily() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.OnlineDaily(r.Context(), r.URL.Query().Get("mode"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, resp)
	}
}

func (h *StatsHandlers) OnlineMonthly() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := queryInt(r, "days")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.publicSvc.OnlineMonthly(r.Context(), days)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, resp)
	}
}

func (h *StatsHandlers) DailyChart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := h.publicSvc.DailyChart(r.Context(), r.URL.Query().Get("mode"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writePNG(w, img)
	}
}

func (h *StatsHandlers) MonthlyChart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := queryInt(r, "days")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		img, err := h.publicSvc.MonthlyChart(r.Context(), days)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writePNG(w, img)
	}
}

func (h *StatsHandlers) limitJSON(fetch func(r *http.Request, limit int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInt(r, "limit")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := fetch(r, limit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, resp)
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apppublic.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
		return
	case errors.Is(err, apppublic.ErrPlayerNotFound):
		WriteHTTPError(w, http.StatusNotFound, "player_not_found")
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("stats_request_failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}

func writePNG(w http.ResponseWriter, img []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	_, _ = w.Write(img)
}

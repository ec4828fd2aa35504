package http

import (
	"net/http"
	"strconv"
	"time"

	"toolirent/internal/service"
)

type AdminSummaryHandler struct {
	stats service.AdminSummaryService
}

func NewAdminSummaryHandler(stats service.AdminSummaryService) *AdminSummaryHandler {
	return &AdminSummaryHandler{stats: stats}
}

func (h *AdminSummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.GetSummary(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *AdminSummaryHandler) TopTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to *time.Time
	if raw := q.Get("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		from = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		to = &t
	}

	take := int32(0)
	if raw := q.Get("take"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err == nil {
			take = int32(n)
		}
	}

	top, err := h.stats.TopTools(r.Context(), from, to, take)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

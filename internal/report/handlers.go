package report

import (
	"net/http"
	"time"

	"github.com/yusapos/backend-pos/internal/common"
)

// Handler exposes sales reports over HTTP.
type Handler struct {
	Svc *Service
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Sales handles GET /reports/sales?period=daily|monthly|yearly&date=2006-01-02.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "report service not configured", nil)
		return
	}
	period, err := ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "period must be daily, monthly or yearly", nil)
		return
	}
	anchor := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, anchor.Location())
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "date must be formatted as 2006-01-02", nil)
			return
		}
		anchor = parsed
	}
	summary, err := h.Svc.Sales(r.Context(), period, anchor)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockledger/stockledger/internal/platform/httpx"
)

// Handler exposes the stock balance report over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers report endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock-balance", h.handleStockBalance)
	r.Get("/stock-balance.csv", h.handleStockBalanceCSV)
}

func (h *Handler) handleStockBalance(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseAsOf(w, r)
	if !ok {
		return
	}
	rows, err := h.service.StockBalance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("build stock balance report", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "report failed", "could not build stock balance report")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

func (h *Handler) handleStockBalanceCSV(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseAsOf(w, r)
	if !ok {
		return
	}
	rows, err := h.service.StockBalance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("build stock balance csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := WriteStockBalanceCSV(&buf, rows); err != nil {
		h.logger.Error("encode stock balance csv", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	filename := fmt.Sprintf("stock_balance-%s.csv", asOfLabel(asOf))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("write stock balance csv", slog.Any("error", err))
	}
}

func (h *Handler) parseAsOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}, true
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid as_of", "as_of must use YYYY-MM-DD")
		return time.Time{}, false
	}
	return asOf, true
}

func asOfLabel(asOf time.Time) string {
	if asOf.IsZero() {
		return time.Now().UTC().Format("2006-01-02")
	}
	return asOf.Format("2006-01-02")
}

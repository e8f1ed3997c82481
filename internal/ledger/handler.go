package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockledger/stockledger/internal/platform/httpx"
	"github.com/stockledger/stockledger/internal/shared"
)

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/documents", h.createDocument)
	r.Get("/documents/{id}", h.getDocument)
	r.Post("/documents/{id}/submit", h.submitDocument)
	r.Post("/documents/{id}/cancel", h.cancelDocument)
	r.Get("/entries", h.listEntries)
	r.Get("/valuation/rate", h.valuationRate)
	r.Get("/valuation/balance", h.valuationBalance)
	r.Get("/valuation/value", h.valuationValue)
}

type lineRequest struct {
	ItemCode         string  `json:"item_code" validate:"required"`
	Qty              float64 `json:"qty" validate:"required,gt=0"`
	BasicRate        float64 `json:"basic_rate" validate:"gte=0"`
	SourceWarehouse  string  `json:"source_warehouse"`
	TargetWarehouse  string  `json:"target_warehouse"`
	StockUOM         string  `json:"stock_uom"`
	TransactionUOM   string  `json:"transaction_uom"`
	ConversionFactor float64 `json:"conversion_factor" validate:"gte=0"`
}

type documentRequest struct {
	Kind        string        `json:"kind" validate:"required,oneof=RECEIPT ISSUE TRANSFER"`
	Company     string        `json:"company"`
	PostingDate string        `json:"posting_date" validate:"omitempty,datetime=2006-01-02"`
	PostingTime string        `json:"posting_time" validate:"omitempty,datetime=15:04:05"`
	VoucherNo   string        `json:"voucher_no"`
	Lines       []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type documentResponse struct {
	ID          int64      `json:"id"`
	VoucherType string     `json:"voucher_type"`
	VoucherNo   string     `json:"voucher_no"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Company     string     `json:"company"`
	PostingDate string     `json:"posting_date"`
	PostingTime string     `json:"posting_time"`
	Lines       []lineView `json:"lines"`
}

type lineView struct {
	ID               int64   `json:"id"`
	ItemCode         string  `json:"item_code"`
	Qty              float64 `json:"qty"`
	BasicRate        float64 `json:"basic_rate"`
	SourceWarehouse  string  `json:"source_warehouse,omitempty"`
	TargetWarehouse  string  `json:"target_warehouse,omitempty"`
	StockUOM         string  `json:"stock_uom,omitempty"`
	TransactionUOM   string  `json:"transaction_uom,omitempty"`
	ConversionFactor float64 `json:"conversion_factor"`
}

type entryView struct {
	ID              int64   `json:"id"`
	ItemCode        string  `json:"item_code"`
	Warehouse       string  `json:"warehouse"`
	Quantity        float64 `json:"quantity"`
	IncomingRate    float64 `json:"incoming_rate"`
	VoucherType     string  `json:"voucher_type"`
	VoucherNo       string  `json:"voucher_no"`
	VoucherDetailNo string  `json:"voucher_detail_no"`
	PostingDate     string  `json:"posting_date"`
	PostingTime     string  `json:"posting_time"`
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var postingDate time.Time
	if req.PostingDate != "" {
		postingDate, _ = time.Parse("2006-01-02", req.PostingDate)
	}
	input := DocumentInput{
		Kind:        MovementKind(req.Kind),
		Company:     req.Company,
		PostingDate: postingDate,
		PostingTime: req.PostingTime,
		VoucherNo:   req.VoucherNo,
		ActorID:     actorID(r),
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, LineInput{
			ItemCode:         line.ItemCode,
			Qty:              line.Qty,
			BasicRate:        line.BasicRate,
			SourceWarehouse:  line.SourceWarehouse,
			TargetWarehouse:  line.TargetWarehouse,
			StockUOM:         line.StockUOM,
			TransactionUOM:   line.TransactionUOM,
			ConversionFactor: line.ConversionFactor,
		})
	}
	doc, err := h.service.CreateDocument(r.Context(), input)
	if err != nil {
		h.respondErr(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return
	}
	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) submitDocument(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Submit, "submit document")
}

func (h *Handler) cancelDocument(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel, "cancel document")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, docID, actorID int64) (Document, error), op string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return
	}
	doc, err := fn(r.Context(), id, actorID(r))
	if err != nil {
		h.respondErr(w, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	voucherType := q.Get("voucher_type")
	voucherNo := q.Get("voucher_no")
	if voucherType == "" || voucherNo == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "voucher_type and voucher_no are required")
		return
	}
	entries, err := h.service.EntriesByVoucher(r.Context(), voucherType, voucherNo)
	if err != nil {
		h.respondErr(w, "list entries", err)
		return
	}
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entryView{
			ID:              entry.ID,
			ItemCode:        entry.ItemCode,
			Warehouse:       entry.Warehouse,
			Quantity:        entry.Quantity,
			IncomingRate:    entry.IncomingRate,
			VoucherType:     entry.VoucherType,
			VoucherNo:       entry.VoucherNo,
			VoucherDetailNo: entry.VoucherDetailNo,
			PostingDate:     entry.PostingDate.Format("2006-01-02"),
			PostingTime:     entry.PostingTime,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": views})
}

func (h *Handler) valuationRate(w http.ResponseWriter, r *http.Request) {
	h.valuation(w, r, "rate", h.service.MovingAverageRate)
}

func (h *Handler) valuationBalance(w http.ResponseWriter, r *http.Request) {
	h.valuation(w, r, "balance", h.service.StockBalance)
}

func (h *Handler) valuationValue(w http.ResponseWriter, r *http.Request) {
	h.valuation(w, r, "value", h.service.StockValue)
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request, field string, fn func(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error)) {
	q := r.URL.Query()
	itemCode := q.Get("item_code")
	warehouse := q.Get("warehouse")
	if itemCode == "" || warehouse == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "item_code and warehouse are required")
		return
	}
	var asOf time.Time
	if raw := q.Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	value, err := fn(r.Context(), itemCode, warehouse, asOf)
	if err != nil {
		h.respondErr(w, "valuation "+field, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"item_code": itemCode,
		"warehouse": warehouse,
		"as_of":     EffectiveAsOf(asOf).Format("2006-01-02"),
		field:       value,
	})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidRate):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func toDocumentResponse(doc Document) documentResponse {
	resp := documentResponse{
		ID:          doc.ID,
		VoucherType: doc.VoucherType,
		VoucherNo:   doc.VoucherNo,
		Kind:        string(doc.Kind),
		Status:      string(doc.Status),
		Company:     doc.Company,
		PostingDate: doc.PostingDate.Format("2006-01-02"),
		PostingTime: doc.PostingTime,
		Lines:       []lineView{},
	}
	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, lineView{
			ID:               line.ID,
			ItemCode:         line.ItemCode,
			Qty:              line.Qty,
			BasicRate:        line.BasicRate,
			SourceWarehouse:  line.SourceWarehouse,
			TargetWarehouse:  line.TargetWarehouse,
			StockUOM:         line.StockUOM,
			TransactionUOM:   line.TransactionUOM,
			ConversionFactor: line.ConversionFactor,
		})
	}
	return resp
}

func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return id
}

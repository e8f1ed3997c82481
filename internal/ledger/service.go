package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/stockledger/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	ValuationStore
	CreateDocument(ctx context.Context, doc Document) (Document, error)
	GetDocument(ctx context.Context, id int64) (Document, error)
	SubmitDocument(ctx context.Context, docID int64, entries []Entry) error
	CancelDocument(ctx context.Context, docID int64, voucherType, voucherNo string) (int64, error)
	EntriesByVoucher(ctx context.Context, voucherType, voucherNo string) ([]Entry, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReportCacheBumper invalidates cached balance reports after ledger writes.
type ReportCacheBumper interface {
	Bump(ctx context.Context) error
}

// MetricsPort records ledger business metrics.
type MetricsPort interface {
	EntriesAppended(count int)
	EntriesDeleted(count int)
}

// Service owns the movement document state machine and delegates valuation
// reads to the Valuator. The writer runs synchronously inside Submit; nothing
// fires from framework hooks.
type Service struct {
	repo        RepositoryPort
	writer      Writer
	valuator    *Valuator
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	cache       ReportCacheBumper
	metrics     MetricsPort
	logger      *slog.Logger
}

// NewService builds Service. audit, idempotency, cache, and metrics may be nil.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, cache ReportCacheBumper, metrics MetricsPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		valuator:    NewValuator(repo),
		audit:       audit,
		idempotency: idem,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// Valuator exposes the read-side aggregator, for consumers such as reports.
func (s *Service) Valuator() *Valuator {
	return s.valuator
}

// LineInput is one requested movement line.
type LineInput struct {
	ItemCode         string
	Qty              float64
	BasicRate        float64
	SourceWarehouse  string
	TargetWarehouse  string
	StockUOM         string
	TransactionUOM   string
	ConversionFactor float64
}

// DocumentInput is a request to create a draft movement document.
type DocumentInput struct {
	Kind        MovementKind
	Company     string
	PostingDate time.Time
	PostingTime string
	VoucherNo   string
	ActorID     int64
	Lines       []LineInput
}

// CreateDocument validates the input and stores a draft. No ledger entries are
// written until submission.
func (s *Service) CreateDocument(ctx context.Context, input DocumentInput) (Document, error) {
	switch input.Kind {
	case KindReceipt, KindIssue, KindTransfer:
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownKind, input.Kind)
	}
	if len(input.Lines) == 0 {
		return Document{}, errors.New("ledger: document requires at least one line")
	}
	lines := make([]Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ItemCode == "" {
			return Document{}, errors.New("ledger: line item code required")
		}
		if line.Qty <= 0 {
			return Document{}, ErrInvalidQuantity
		}
		if line.BasicRate < 0 {
			return Document{}, ErrInvalidRate
		}
		conversion := line.ConversionFactor
		if conversion == 0 {
			conversion = 1
		}
		lines = append(lines, Line{
			ItemCode:         line.ItemCode,
			Qty:              line.Qty,
			BasicRate:        line.BasicRate,
			SourceWarehouse:  line.SourceWarehouse,
			TargetWarehouse:  line.TargetWarehouse,
			StockUOM:         line.StockUOM,
			TransactionUOM:   line.TransactionUOM,
			ConversionFactor: conversion,
		})
	}
	voucherNo := input.VoucherNo
	if voucherNo == "" {
		voucherNo = fmt.Sprintf("STE-%s", uuid.NewString())
	}
	postingTime := input.PostingTime
	if postingTime == "" {
		postingTime = "00:00:00"
	}
	doc := Document{
		VoucherType: VoucherTypeStockEntry,
		VoucherNo:   voucherNo,
		Kind:        input.Kind,
		Status:      StatusDraft,
		Company:     input.Company,
		PostingDate: EffectiveAsOf(input.PostingDate),
		PostingTime: postingTime,
		Lines:       lines,
		CreatedBy:   input.ActorID,
	}
	return s.repo.CreateDocument(ctx, doc)
}

// GetDocument loads a document with its lines.
func (s *Service) GetDocument(ctx context.Context, id int64) (Document, error) {
	return s.repo.GetDocument(ctx, id)
}

// Submit transitions Draft -> Submitted and appends the document's ledger
// entries atomically. Re-submitting is rejected by the state machine, so the
// ledger can never be double-appended for one document.
func (s *Service) Submit(ctx context.Context, docID, actorID int64) (Document, error) {
	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return Document{}, err
	}
	if !doc.Status.CanTransition(StatusSubmitted) {
		return Document{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, StatusSubmitted)
	}
	doc.Status = StatusSubmitted

	entries, err := s.writer.EntriesForSubmit(doc)
	if err != nil {
		return Document{}, err
	}

	key := fmt.Sprintf("submit:%s:%s", doc.VoucherType, doc.VoucherNo)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "ledger"); err != nil {
			return Document{}, err
		}
		insertedKey = true
	}

	if err := s.repo.SubmitDocument(ctx, doc.ID, entries); err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Document{}, err
	}

	s.afterWrite(ctx, doc, actorID, "ledger:submit", len(entries))
	if s.metrics != nil {
		s.metrics.EntriesAppended(len(entries))
	}
	return doc, nil
}

// Cancel transitions Submitted -> Cancelled and bulk-deletes every entry of
// the document's voucher. Zero deleted entries is not an error.
func (s *Service) Cancel(ctx context.Context, docID, actorID int64) (Document, error) {
	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return Document{}, err
	}
	if !doc.Status.CanTransition(StatusCancelled) {
		return Document{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, StatusCancelled)
	}

	key := fmt.Sprintf("cancel:%s:%s", doc.VoucherType, doc.VoucherNo)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "ledger"); err != nil {
			return Document{}, err
		}
		insertedKey = true
	}

	deleted, err := s.repo.CancelDocument(ctx, doc.ID, doc.VoucherType, doc.VoucherNo)
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Document{}, err
	}
	doc.Status = StatusCancelled

	s.afterWrite(ctx, doc, actorID, "ledger:cancel", int(deleted))
	if s.metrics != nil {
		s.metrics.EntriesDeleted(int(deleted))
	}
	return doc, nil
}

// EntriesByVoucher lists the entries created by one voucher.
func (s *Service) EntriesByVoucher(ctx context.Context, voucherType, voucherNo string) ([]Entry, error) {
	if voucherType == "" || voucherNo == "" {
		return nil, errors.New("ledger: voucher type and no required")
	}
	return s.repo.EntriesByVoucher(ctx, voucherType, voucherNo)
}

// MovingAverageRate delegates to the valuator.
func (s *Service) MovingAverageRate(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error) {
	return s.valuator.MovingAverageRate(ctx, itemCode, warehouse, asOf)
}

// StockBalance delegates to the valuator.
func (s *Service) StockBalance(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error) {
	return s.valuator.StockBalance(ctx, itemCode, warehouse, asOf)
}

// StockValue delegates to the valuator.
func (s *Service) StockValue(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error) {
	return s.valuator.StockValue(ctx, itemCode, warehouse, asOf)
}

func (s *Service) afterWrite(ctx context.Context, doc Document, actorID int64, action string, entryCount int) {
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "movement_document",
			EntityID: fmt.Sprintf("%s:%s", doc.VoucherType, doc.VoucherNo),
			Meta: map[string]any{
				"kind":        string(doc.Kind),
				"entry_count": entryCount,
				"company":     doc.Company,
			},
		})
	}
}

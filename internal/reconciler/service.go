// Package reconciler coordinates the reconciliation workflow: it takes
// extracted invoice documents plus a validated purchase-order ledger,
// runs the matching engine, and packages rows, summary and overall
// document status into a result.
//
// Example usage:
//
//	service, err := reconciler.NewService(engine, reconciler.DefaultConfig())
//	result, err := service.ReconcileDocument(ctx, invoice, records)
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Config controls service behavior.
type Config struct {
	// MaxConcurrentDocuments bounds batch parallelism.
	MaxConcurrentDocuments int

	// ValidateInputs runs structural validation on invoices before
	// reconciling. The engine itself never validates.
	ValidateInputs bool
}

// DefaultConfig returns the standard service configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrentDocuments: 4,
		ValidateInputs:         true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrentDocuments <= 0 {
		return errors.ConfigError("max concurrent documents must be positive", nil)
	}
	return nil
}

// DocumentResult is the reconciliation outcome for one invoice document.
type DocumentResult struct {
	RunID       string                `json:"runId"`
	PONumber    string                `json:"poNumber"`
	Rows        []models.ResultRow    `json:"rows"`
	Summary     models.Summary        `json:"summary"`
	Status      models.DocumentStatus `json:"status"`
	ProcessedAt time.Time             `json:"processedAt"`
}

// Service runs reconciliation over invoice documents.
type Service struct {
	engine *matcher.Engine
	config *Config
	log    logger.Logger
}

// NewService creates a reconciliation service. A nil config uses
// DefaultConfig.
func NewService(engine *matcher.Engine, config *Config) (*Service, error) {
	if engine == nil {
		return nil, errors.ConfigError("matching engine is required", nil)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		engine: engine,
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// ReconcileDocument reconciles one invoice document against the ledger
// records using the service's engine.
func (s *Service) ReconcileDocument(ctx context.Context, doc *models.InvoiceDocument, records []models.PurchaseOrderRecord) (*DocumentResult, error) {
	return s.reconcile(ctx, doc, records, s.engine)
}

// ReconcileDocumentWithOptions reconciles one document with per-request
// matching options instead of the service defaults.
func (s *Service) ReconcileDocumentWithOptions(ctx context.Context, doc *models.InvoiceDocument, records []models.PurchaseOrderRecord, options *matcher.MatchingOptions) (*DocumentResult, error) {
	if options == nil {
		return s.reconcile(ctx, doc, records, s.engine)
	}
	if err := options.Validate(); err != nil {
		return nil, errors.ConfigError("invalid matching options", err)
	}
	return s.reconcile(ctx, doc, records, matcher.NewEngine(options))
}

func (s *Service) reconcile(ctx context.Context, doc *models.InvoiceDocument, records []models.PurchaseOrderRecord, engine *matcher.Engine) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.config.ValidateInputs {
		if err := models.ValidateInvoiceDocument(doc); err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidInvoice, err.Error())
		}
	}

	runID := uuid.NewString()
	log := s.log.WithFields(logger.Fields{
		"run_id":     runID,
		"po_number":  doc.PONumber,
		"line_items": len(doc.LineItems),
		"po_records": len(records),
	})
	log.Info("Starting reconciliation")

	started := time.Now()
	rows := engine.Reconcile(doc, records)
	summary := matcher.Summarize(rows)
	status := matcher.DocumentStatusFor(summary)

	log.WithFields(logger.Fields{
		"matches":       summary.Matches,
		"discrepancies": summary.Discrepancies,
		"no_matches":    summary.NoMatches,
		"status":        status,
		"elapsed":       time.Since(started),
	}).Info("Reconciliation completed")

	return &DocumentResult{
		RunID:       runID,
		PONumber:    doc.PONumber,
		Rows:        rows,
		Summary:     summary,
		Status:      status,
		ProcessedAt: time.Now(),
	}, nil
}

// BatchItem pairs one document result with the error that replaced it.
// Exactly one of Result and Err is set.
type BatchItem struct {
	Result *DocumentResult
	Err    error
}

// ReconcileBatch reconciles multiple documents against the same ledger,
// bounded by MaxConcurrentDocuments. Results keep the input order; a
// failing document does not abort the rest.
func (s *Service) ReconcileBatch(ctx context.Context, docs []*models.InvoiceDocument, records []models.PurchaseOrderRecord) []BatchItem {
	items := make([]BatchItem, len(docs))
	if len(docs) == 0 {
		return items
	}

	sem := make(chan struct{}, s.config.MaxConcurrentDocuments)
	var wg sync.WaitGroup

	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				items[i] = BatchItem{Err: ctx.Err()}
				return
			}

			result, err := s.ReconcileDocument(ctx, docs[i], records)
			items[i] = BatchItem{Result: result, Err: err}
		}(i)
	}
	wg.Wait()

	return items
}

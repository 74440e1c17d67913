package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reporter"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// reconcileRequest is the JSON body of POST /api/reconcile and
// POST /api/reconcile/export.
type reconcileRequest struct {
	Invoice   *models.InvoiceDocument   `json:"invoice"`
	PORecords []models.PurchaseOrderRow `json:"poRecords"`
	Options   *matchingOptionsPayload   `json:"options,omitempty"`
}

// matchingOptionsPayload carries per-request overrides of the engine
// defaults. Absent fields keep the defaults.
type matchingOptionsPayload struct {
	QuantityTolerance *string `json:"quantityTolerance,omitempty"`
	PriceTolerance    *string `json:"priceTolerance,omitempty"`
	MinKeywordMatches *int    `json:"minKeywordMatches,omitempty"`
	RequireDateMatch  *bool   `json:"requireDateMatch,omitempty"`
}

func (p *matchingOptionsPayload) toOptions() (*matcher.MatchingOptions, error) {
	if p == nil {
		return nil, nil
	}

	options := matcher.DefaultMatchingOptions()
	if p.QuantityTolerance != nil {
		tol, err := decimal.NewFromString(*p.QuantityTolerance)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity tolerance: %w", err)
		}
		options.QuantityTolerance = tol
	}
	if p.PriceTolerance != nil {
		tol, err := decimal.NewFromString(*p.PriceTolerance)
		if err != nil {
			return nil, fmt.Errorf("invalid price tolerance: %w", err)
		}
		options.PriceTolerance = tol
	}
	if p.MinKeywordMatches != nil {
		options.MinKeywordMatches = *p.MinKeywordMatches
	}
	if p.RequireDateMatch != nil {
		options.RequireDateMatch = *p.RequireDateMatch
	}
	return options, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decodeReconcileRequest(r *http.Request) (*models.InvoiceDocument, []models.PurchaseOrderRecord, *matcher.MatchingOptions, error) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Invoice == nil {
		return nil, nil, nil, fmt.Errorf("invoice is required")
	}

	records, err := models.BuildPurchaseOrderRecords(req.PORecords)
	if err != nil {
		return nil, nil, nil, err
	}

	options, err := req.Options.toOptions()
	if err != nil {
		return nil, nil, nil, err
	}
	return req.Invoice, records, options, nil
}

// handleReconcile runs one document through the engine and returns
// rows, summary and document status as JSON.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	invoice, records, options, err := s.decodeReconcileRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.service.ReconcileDocumentWithOptions(r.Context(), invoice, records, options)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExport runs reconciliation and streams the result as a CSV
// attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	invoice, records, options, err := s.decodeReconcileRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.service.ReconcileDocumentWithOptions(r.Context(), invoice, records, options)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{
		Format:       reporter.FormatCSV,
		CSVDelimiter: ',',
		CSVHeaders:   true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename(result.PONumber)))
	if err := generator.GenerateReport(result, w); err != nil {
		s.log.WithError(err).Error("Failed to stream CSV export")
	}
}

func exportFilename(poNumber string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, poNumber)
	if name == "" {
		name = "reconciliation"
	}
	return name + ".csv"
}

// handleLedgerParse accepts a multipart ledger upload (field "file",
// CSV or XLSX) and returns the validated purchase-order records.
func (s *Server) handleLedgerParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing 'file' form field: %w", err))
		return
	}
	defer file.Close()

	var records []models.PurchaseOrderRecord
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		records, err = parsers.ParseLedgerCSV(file, parsers.DefaultLedgerColumns())
	case ".xlsx":
		records, err = parsers.ParseLedgerXLSX(file, parsers.DefaultLedgerColumns())
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("unsupported ledger file type: %s", filepath.Ext(header.Filename)))
		return
	}
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// handleExtract accepts raw document text and returns the extracted
// invoice document.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("extraction is not configured"))
		return
	}

	text, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	doc, err := s.extractor.ExtractInvoice(r.Context(), string(text))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// statusForError maps application error categories to HTTP status codes.
func statusForError(err error) int {
	switch apperrors.GetCategory(err) {
	case apperrors.CategoryValidation, apperrors.CategoryLedger:
		return http.StatusBadRequest
	case apperrors.CategoryExtraction:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

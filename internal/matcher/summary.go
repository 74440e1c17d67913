package matcher

import "invoice-reconciliation-service/internal/models"

// Summarize aggregates result rows into per-document counts. Only
// INVOICE-source rows are counted; PO-source rows mirror their paired
// invoice row and counting them would double a matched pair.
func Summarize(rows []models.ResultRow) models.Summary {
	var summary models.Summary
	for i := range rows {
		if rows[i].Source != models.SourceInvoice {
			continue
		}
		summary.TotalItems++
		switch rows[i].Status {
		case models.StatusMatch:
			summary.Matches++
		case models.StatusDiscrepancy:
			summary.Discrepancies++
		case models.StatusNoMatch:
			summary.NoMatches++
		}
	}
	return summary
}

// DocumentStatusFor derives the aggregate status of a document from its
// summary: MATCH when every line matched, NO MATCH when nothing matched
// at all, DISCREPANCY otherwise.
func DocumentStatusFor(summary models.Summary) models.DocumentStatus {
	switch {
	case summary.TotalItems == 0:
		return models.DocumentNoMatch
	case summary.Matches == summary.TotalItems:
		return models.DocumentMatched
	case summary.NoMatches == summary.TotalItems:
		return models.DocumentNoMatch
	default:
		return models.DocumentDiscrepancy
	}
}

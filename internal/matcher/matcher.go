package matcher

import (
	"strings"

	"invoice-reconciliation-service/internal/dates"
	"invoice-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Engine pairs invoice line items with purchase-order records and
// classifies each pair under the configured tolerances.
type Engine struct {
	Options *MatchingOptions
}

// NewEngine creates an engine with the given options; nil selects the
// defaults.
func NewEngine(options *MatchingOptions) *Engine {
	if options == nil {
		options = DefaultMatchingOptions()
	}
	return &Engine{Options: options}
}

// Reconcile matches each line item of the invoice against the
// purchase-order records and emits result rows in line item order; a
// matched pair contributes an invoice row immediately followed by its
// paired PO row.
//
// An empty record set short-circuits to an empty result with no invoice
// rows at all. A non-empty record set with no record for the invoice's
// PO number yields a NO MATCH row per line item.
func (e *Engine) Reconcile(doc *models.InvoiceDocument, records []models.PurchaseOrderRecord) []models.ResultRow {
	rows := []models.ResultRow{}
	if doc == nil || len(records) == 0 {
		return rows
	}

	// Working set: records whose PO number exactly equals the invoice's.
	// Empty matches empty. Insertion order is preserved; tie-breaks
	// below depend on first occurrence.
	pool := make([]models.PurchaseOrderRecord, 0, len(records))
	for _, rec := range records {
		if rec.PONumber == doc.PONumber {
			pool = append(pool, rec)
		}
	}

	for i := range doc.LineItems {
		item := &doc.LineItems[i]
		qty := item.Quantity.Decimal()
		price := deriveUnitPrice(item, qty)
		compareDate := item.DeliveryDate
		if compareDate == "" {
			compareDate = doc.InvoiceDate
		}
		invoiceDate := dates.Standardize(compareDate)

		candidates := e.selectCandidates(item.ProductName, pool)
		if len(candidates) == 0 {
			rows = append(rows, models.ResultRow{
				Source:      models.SourceInvoice,
				PONumber:    doc.PONumber,
				Description: item.ProductName,
				Quantity:    qty,
				UnitPrice:   price,
				TotalPrice:  qty.Mul(price),
				Date:        invoiceDate,
				Status:      models.StatusNoMatch,
			})
			continue
		}

		best := e.pickBest(candidates, qty, price)

		// Flags are re-derived against the selected match itself, so a
		// best-effort fallback match reports its own discrepancies.
		qtyMatch := e.withinQuantityTolerance(qty, best.Quantity)
		priceMatch := e.withinPriceTolerance(price, best.UnitPrice)
		poDate := dates.Standardize(best.DateRequired)
		dateMatch := true
		if e.Options.RequireDateMatch {
			dateMatch = dates.Equal(invoiceDate, poDate)
		}

		status := models.StatusDiscrepancy
		if qtyMatch && priceMatch && dateMatch {
			status = models.StatusMatch
		}

		rows = append(rows, models.ResultRow{
			Source:      models.SourceInvoice,
			PONumber:    doc.PONumber,
			Description: item.ProductName,
			Quantity:    qty,
			UnitPrice:   price,
			TotalPrice:  qty.Mul(price),
			Date:        invoiceDate,
			Status:      status,
			QtyMatch:    boolPtr(qtyMatch),
			PriceMatch:  boolPtr(priceMatch),
			DateMatch:   boolPtr(dateMatch),
		})
		rows = append(rows, models.ResultRow{
			Source:      models.SourcePO,
			PONumber:    best.PONumber,
			Description: formatPODescription(best),
			Quantity:    best.Quantity,
			UnitPrice:   best.UnitPrice,
			TotalPrice:  best.Quantity.Mul(best.UnitPrice),
			Date:        poDate,
			Status:      status,
			QtyMatch:    boolPtr(qtyMatch),
			PriceMatch:  boolPtr(priceMatch),
			DateMatch:   boolPtr(dateMatch),
		})
	}

	return rows
}

// deriveUnitPrice resolves the invoice-side unit price: an explicit
// non-zero unit price wins; otherwise a non-zero total divided by a
// non-zero quantity; otherwise the legacy single price field; otherwise
// zero.
func deriveUnitPrice(item *models.InvoiceLineItem, qty decimal.Decimal) decimal.Decimal {
	if up := item.UnitPrice.Decimal(); !up.IsZero() {
		return up
	}
	if tp := item.TotalPrice.Decimal(); !tp.IsZero() && !qty.IsZero() {
		return tp.Div(qty)
	}
	return item.Price.Decimal()
}

// selectCandidates runs the staged candidate selection. Stages are
// strict: the first non-empty stage wins and later stages never run.
func (e *Engine) selectCandidates(productName string, pool []models.PurchaseOrderRecord) []models.PurchaseOrderRecord {
	needle := strings.ToUpper(strings.TrimSpace(productName))

	// Stage 1: supplier item code contains the product name.
	var byCode []models.PurchaseOrderRecord
	for _, rec := range pool {
		if strings.Contains(strings.ToUpper(rec.ItemCode), needle) {
			byCode = append(byCode, rec)
		}
	}
	if len(byCode) > 0 {
		return byCode
	}

	// Stage 2: supplier description contains the product name.
	var byDescription []models.PurchaseOrderRecord
	for _, rec := range pool {
		if strings.Contains(strings.ToUpper(rec.Description), needle) {
			byDescription = append(byDescription, rec)
		}
	}
	if len(byDescription) > 0 {
		return byDescription
	}

	// Stage 3: keyword overlap. The threshold relaxes for short product
	// names so a name is never required to match more keywords than
	// half its word count.
	tokens := strings.Fields(needle)
	threshold := e.Options.MinKeywordMatches
	if half := len(tokens) / 2; half < threshold {
		threshold = half
	}

	var byKeywords []models.PurchaseOrderRecord
	for _, rec := range pool {
		haystackDesc := strings.ToUpper(rec.Description)
		haystackCode := strings.ToUpper(rec.ItemCode)
		count := 0
		for _, token := range tokens {
			if strings.Contains(haystackDesc, token) || strings.Contains(haystackCode, token) {
				count++
			}
		}
		if count >= threshold {
			byKeywords = append(byKeywords, rec)
		}
	}
	return byKeywords
}

// pickBest applies the staged tie-break over the candidate pool: both
// fields within tolerance, then quantity only, then price only, then the
// first candidate unconditionally. Within a stage the first occurrence
// wins.
func (e *Engine) pickBest(candidates []models.PurchaseOrderRecord, qty, price decimal.Decimal) models.PurchaseOrderRecord {
	for _, rec := range candidates {
		if e.withinQuantityTolerance(qty, rec.Quantity) && e.withinPriceTolerance(price, rec.UnitPrice) {
			return rec
		}
	}
	for _, rec := range candidates {
		if e.withinQuantityTolerance(qty, rec.Quantity) {
			return rec
		}
	}
	for _, rec := range candidates {
		if e.withinPriceTolerance(price, rec.UnitPrice) {
			return rec
		}
	}
	return candidates[0]
}

func (e *Engine) withinQuantityTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(e.Options.QuantityTolerance)
}

func (e *Engine) withinPriceTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(e.Options.PriceTolerance)
}

// formatPODescription renders the PO-side row text as
// "<item code> - <description>" with embedded line breaks collapsed to
// spaces.
func formatPODescription(rec models.PurchaseOrderRecord) string {
	desc := strings.ReplaceAll(rec.Description, "\r\n", " ")
	desc = strings.ReplaceAll(desc, "\n", " ")
	desc = strings.ReplaceAll(desc, "\r", " ")
	return rec.ItemCode + " - " + desc
}

func boolPtr(b bool) *bool {
	return &b
}

// Package models defines the entities exchanged between the extraction
// boundary, the purchase-order ledger and the reconciliation engine.
//
// Numeric fields arriving from extraction replies may be JSON numbers or
// numeric strings; FlexNumber normalizes both at ingestion with an
// explicit unparsable-to-zero fallback so the matching logic never has to
// parse defensively.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexNumber is a decimal value decoded from JSON input that may be a
// number, a numeric string, or absent. Valid reports whether the source
// value parsed; an unparsable or missing value yields decimal zero.
type FlexNumber struct {
	Value decimal.Decimal
	Valid bool
}

// FlexFromFloat builds a valid FlexNumber from a float.
func FlexFromFloat(f float64) FlexNumber {
	return FlexNumber{Value: decimal.NewFromFloat(f), Valid: true}
}

// FlexFromDecimal builds a valid FlexNumber from a decimal.
func FlexFromDecimal(d decimal.Decimal) FlexNumber {
	return FlexNumber{Value: d, Valid: true}
}

// ParseFlexNumber parses a string field value. Currency symbols and
// thousand separators are stripped before parsing.
func ParseFlexNumber(s string) FlexNumber {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexNumber{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return FlexNumber{}
	}
	return FlexNumber{Value: d, Valid: true}
}

// Decimal returns the normalized value; zero when the source was
// unparsable or absent.
func (n FlexNumber) Decimal() decimal.Decimal {
	return n.Value
}

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
// It never fails: anything unparsable decodes to an invalid zero.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = FlexNumber{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = FlexNumber{}
			return nil
		}
		*n = ParseFlexNumber(s)
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		*n = FlexNumber{}
		return nil
	}
	*n = FlexNumber{Value: d, Valid: true}
	return nil
}

// MarshalJSON emits the normalized decimal value.
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return []byte(n.Value.String()), nil
}

// InvoiceLineItem is one row extracted from a supplier invoice.
// The engine reads line items but never mutates them.
type InvoiceLineItem struct {
	ProductName  string     `json:"productName"`
	Quantity     FlexNumber `json:"quantity"`
	UnitPrice    FlexNumber `json:"unitPrice,omitempty"`
	TotalPrice   FlexNumber `json:"totalPrice,omitempty"`
	Price        FlexNumber `json:"price,omitempty"` // legacy single price field
	DeliveryDate string     `json:"deliveryDate,omitempty"`
}

// InvoiceDocument is a purchase-order number plus the ordered line items
// extracted from one invoice. PONumber may be empty; it is treated as a
// literal key and matches only ledger records with an equally-empty ID.
type InvoiceDocument struct {
	PONumber    string            `json:"poNumber"`
	InvoiceDate string            `json:"invoiceDate,omitempty"`
	LineItems   []InvoiceLineItem `json:"lineItems"`
}

// PurchaseOrderRecord is one validated ledger row.
type PurchaseOrderRecord struct {
	PONumber     string          `json:"poNumber"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	DateRequired string          `json:"dateRequired"`
	ItemCode     string          `json:"itemCode"`
	Description  string          `json:"description"`
}

// PurchaseOrderRow is the wire shape of a ledger row before validation.
// Pointer fields distinguish absent values from empty ones so the batch
// validator can reject structurally incomplete rows.
type PurchaseOrderRow struct {
	PurchaseOrderID             *string     `json:"PurchaseOrderID"`
	PurchaseQty                 *FlexNumber `json:"PurchaseQty"`
	PurchasePrice               *FlexNumber `json:"PurchasePrice"`
	DateRequired                *string     `json:"DateRequired"`
	PurchaseSupplierItem        *string     `json:"PurchaseSupplierItem"`
	PurchaseSupplierDescription *string     `json:"PurchaseSupplierDescription"`
}

// Validate checks that all six required fields are present and that
// quantity and price parsed to numbers.
func (r *PurchaseOrderRow) Validate() error {
	if r.PurchaseOrderID == nil {
		return fmt.Errorf("missing field PurchaseOrderID")
	}
	if r.PurchaseQty == nil {
		return fmt.Errorf("missing field PurchaseQty")
	}
	if !r.PurchaseQty.Valid {
		return fmt.Errorf("PurchaseQty does not parse to a number")
	}
	if r.PurchasePrice == nil {
		return fmt.Errorf("missing field PurchasePrice")
	}
	if !r.PurchasePrice.Valid {
		return fmt.Errorf("PurchasePrice does not parse to a number")
	}
	if r.DateRequired == nil {
		return fmt.Errorf("missing field DateRequired")
	}
	if r.PurchaseSupplierItem == nil {
		return fmt.Errorf("missing field PurchaseSupplierItem")
	}
	if r.PurchaseSupplierDescription == nil {
		return fmt.Errorf("missing field PurchaseSupplierDescription")
	}
	return nil
}

// Record converts a validated row into a PurchaseOrderRecord.
func (r *PurchaseOrderRow) Record() PurchaseOrderRecord {
	return PurchaseOrderRecord{
		PONumber:     *r.PurchaseOrderID,
		Quantity:     r.PurchaseQty.Decimal(),
		UnitPrice:    r.PurchasePrice.Decimal(),
		DateRequired: *r.DateRequired,
		ItemCode:     *r.PurchaseSupplierItem,
		Description:  *r.PurchaseSupplierDescription,
	}
}

// ValidatePurchaseOrderRows validates a ledger batch. Any single invalid
// row rejects the whole batch.
func ValidatePurchaseOrderRows(rows []PurchaseOrderRow) error {
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return fmt.Errorf("purchase order record %d: %w", i, err)
		}
	}
	return nil
}

// BuildPurchaseOrderRecords validates a ledger batch and converts it to
// records, preserving row order.
func BuildPurchaseOrderRecords(rows []PurchaseOrderRow) ([]PurchaseOrderRecord, error) {
	if err := ValidatePurchaseOrderRows(rows); err != nil {
		return nil, err
	}

	records := make([]PurchaseOrderRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].Record())
	}
	return records, nil
}

// ValidateInvoiceDocument checks the structural shape of an extracted
// invoice: a non-empty PO number, a line item array, and per item a
// non-empty product name and a quantity that parsed to a number.
//
// The engine itself never validates; callers reject invalid documents
// before reconciling.
func ValidateInvoiceDocument(doc *InvoiceDocument) error {
	if doc == nil {
		return fmt.Errorf("invoice document is nil")
	}
	if strings.TrimSpace(doc.PONumber) == "" {
		return fmt.Errorf("invoice PO number cannot be empty")
	}
	if doc.LineItems == nil {
		return fmt.Errorf("invoice line items must be an array")
	}
	for i := range doc.LineItems {
		item := &doc.LineItems[i]
		if strings.TrimSpace(item.ProductName) == "" {
			return fmt.Errorf("line item %d: product name cannot be empty", i)
		}
		if !item.Quantity.Valid {
			return fmt.Errorf("line item %d: quantity does not parse to a number", i)
		}
	}
	return nil
}

// RowSource tags a result row with the side it describes.
type RowSource string

const (
	SourceInvoice RowSource = "INVOICE"
	SourcePO      RowSource = "PO"
)

// MatchStatus classifies a reconciled line item.
type MatchStatus string

const (
	StatusMatch       MatchStatus = "MATCH"
	StatusDiscrepancy MatchStatus = "DISCREPANCY"
	StatusNoMatch     MatchStatus = "NO MATCH"
)

// ResultRow is one output row of a reconciliation run. Matched pairs
// carry the three per-field match flags used by the presentation layer to
// highlight the discrepant field; the flags are absent on NO MATCH rows
// and are never exported to delimited reports.
type ResultRow struct {
	Source      RowSource       `json:"source"`
	PONumber    string          `json:"poNumber"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Date        string          `json:"date"`
	Status      MatchStatus     `json:"status"`

	QtyMatch   *bool `json:"_qty_match,omitempty"`
	PriceMatch *bool `json:"_price_match,omitempty"`
	DateMatch  *bool `json:"_date_match,omitempty"`
}

// Summary aggregates per-document counts, derived strictly from
// INVOICE-source rows so a matched pair counts once.
type Summary struct {
	TotalItems    int `json:"totalItems"`
	Matches       int `json:"matches"`
	Discrepancies int `json:"discrepancies"`
	NoMatches     int `json:"noMatches"`
}

// DocumentStatus is the aggregate status of one reconciled document.
type DocumentStatus string

const (
	DocumentMatched     DocumentStatus = "MATCH"
	DocumentDiscrepancy DocumentStatus = "DISCREPANCY"
	DocumentNoMatch     DocumentStatus = "NO MATCH"
)

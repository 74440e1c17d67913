// Package matcher implements the reconciliation matching engine: staged
// fuzzy candidate selection pairing an invoice line item with a
// purchase-order record, tolerance-based field comparison classifying the
// pair, and per-document summarization.
//
// The engine is a pure, synchronous computation over fully-materialized
// inputs. It performs no I/O, holds no shared state, and preserves input
// order throughout: candidate pools and tie-breaks depend on first
// occurrence in the incoming purchase-order slice.
//
// Example usage:
//
//	engine := matcher.NewEngine(matcher.DefaultMatchingOptions())
//	rows := engine.Reconcile(invoice, poRecords)
//	summary := matcher.Summarize(rows)
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MatchingOptions controls tolerance comparison and fallback keyword
// matching. Different option sets can be used per run; the engine never
// mutates them.
type MatchingOptions struct {
	// QuantityTolerance is the absolute difference below which two
	// quantities are considered equal.
	QuantityTolerance decimal.Decimal `json:"quantity_tolerance"`

	// PriceTolerance is the absolute difference below which two unit
	// prices are considered equal.
	PriceTolerance decimal.Decimal `json:"price_tolerance"`

	// MinKeywordMatches is the minimum keyword overlap count for the
	// fallback matching stage. Short product names have the threshold
	// relaxed to half their token count.
	MinKeywordMatches int `json:"min_keyword_matches"`

	// RequireDateMatch makes date equality participate in the
	// MATCH/DISCREPANCY classification. When false, dates are recorded
	// on result rows but never cause a mismatch.
	RequireDateMatch bool `json:"require_date_match"`
}

// DefaultMatchingOptions returns the standard tolerances.
func DefaultMatchingOptions() *MatchingOptions {
	return &MatchingOptions{
		QuantityTolerance: decimal.NewFromFloat(0.01),
		PriceTolerance:    decimal.NewFromFloat(0.01),
		MinKeywordMatches: 3,
		RequireDateMatch:  false,
	}
}

// Validate checks that the options are usable.
func (o *MatchingOptions) Validate() error {
	if o.QuantityTolerance.IsNegative() {
		return fmt.Errorf("quantity tolerance cannot be negative: %s", o.QuantityTolerance)
	}
	if o.PriceTolerance.IsNegative() {
		return fmt.Errorf("price tolerance cannot be negative: %s", o.PriceTolerance)
	}
	if o.MinKeywordMatches < 0 {
		return fmt.Errorf("min keyword matches cannot be negative: %d", o.MinKeywordMatches)
	}
	return nil
}

// Clone returns a copy of the options.
func (o *MatchingOptions) Clone() *MatchingOptions {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// String returns a human-readable description of the options.
func (o *MatchingOptions) String() string {
	return fmt.Sprintf("MatchingOptions{QtyTolerance: %s, PriceTolerance: %s, MinKeywords: %d, RequireDateMatch: %v}",
		o.QuantityTolerance, o.PriceTolerance, o.MinKeywordMatches, o.RequireDateMatch)
}

package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultMatchingOptions(t *testing.T) {
	opts := DefaultMatchingOptions()

	if !opts.QuantityTolerance.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Expected quantity tolerance 0.01, got %s", opts.QuantityTolerance)
	}
	if !opts.PriceTolerance.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Expected price tolerance 0.01, got %s", opts.PriceTolerance)
	}
	if opts.MinKeywordMatches != 3 {
		t.Errorf("Expected min keyword matches 3, got %d", opts.MinKeywordMatches)
	}
	if opts.RequireDateMatch {
		t.Error("Expected RequireDateMatch to default to false")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Default options should validate, got: %v", err)
	}
}

func TestMatchingOptionsValidate(t *testing.T) {
	opts := DefaultMatchingOptions()
	opts.QuantityTolerance = decimal.NewFromFloat(-0.5)
	if err := opts.Validate(); err == nil {
		t.Error("Expected error for negative quantity tolerance")
	}

	opts = DefaultMatchingOptions()
	opts.PriceTolerance = decimal.NewFromFloat(-1)
	if err := opts.Validate(); err == nil {
		t.Error("Expected error for negative price tolerance")
	}

	opts = DefaultMatchingOptions()
	opts.MinKeywordMatches = -1
	if err := opts.Validate(); err == nil {
		t.Error("Expected error for negative min keyword matches")
	}
}

func TestMatchingOptionsClone(t *testing.T) {
	opts := DefaultMatchingOptions()
	clone := opts.Clone()

	clone.RequireDateMatch = true
	clone.MinKeywordMatches = 7

	if opts.RequireDateMatch || opts.MinKeywordMatches != 3 {
		t.Error("Mutating a clone must not affect the original")
	}

	var nilOpts *MatchingOptions
	if nilOpts.Clone() != nil {
		t.Error("Cloning nil should return nil")
	}
}

func TestNewEngineNilOptions(t *testing.T) {
	engine := NewEngine(nil)
	if engine.Options == nil {
		t.Fatal("Expected default options to be set")
	}
}

// Package config builds component configurations from CLI flag values
// and the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"invoice-reconciliation-service/internal/api"
	"invoice-reconciliation-service/internal/extraction"
	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/reporter"
)

// CreateMatchingOptions builds matching options from CLI flag values.
// Tolerances arrive as strings so they parse to exact decimals.
func CreateMatchingOptions(qtyTolerance, priceTolerance string, minKeywordMatches int, requireDateMatch bool) (*matcher.MatchingOptions, error) {
	options := matcher.DefaultMatchingOptions()

	qty, err := decimal.NewFromString(qtyTolerance)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity tolerance %q: %w", qtyTolerance, err)
	}
	options.QuantityTolerance = qty

	price, err := decimal.NewFromString(priceTolerance)
	if err != nil {
		return nil, fmt.Errorf("invalid price tolerance %q: %w", priceTolerance, err)
	}
	options.PriceTolerance = price

	options.MinKeywordMatches = minKeywordMatches
	options.RequireDateMatch = requireDateMatch

	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching options: %w", err)
	}
	return options, nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeSummary = true
	case "json":
		config.Format = reporter.FormatJSON
		config.JSONIndent = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	}

	return config
}

// CreateServerConfig creates the HTTP server configuration.
func CreateServerConfig(port int, maxUploadMB int64) *api.ServerConfig {
	config := api.DefaultServerConfig()
	config.Port = port
	if maxUploadMB > 0 {
		config.MaxUploadBytes = maxUploadMB << 20
	}
	return config
}

// CreateExtractionConfig builds the extraction client configuration from
// the environment. Returns nil when no endpoint is configured.
//
// Expected variables (with the RECONCILER prefix applied by viper):
//
//	RECONCILER_EXTRACTION_ENDPOINT
//	RECONCILER_EXTRACTION_API_KEY
//	RECONCILER_EXTRACTION_MODEL
func CreateExtractionConfig() *extraction.Config {
	endpoint := strings.TrimSpace(viper.GetString("extraction_endpoint"))
	if endpoint == "" {
		return nil
	}

	config := extraction.DefaultConfig()
	config.Endpoint = endpoint
	config.APIKey = viper.GetString("extraction_api_key")
	if model := strings.TrimSpace(viper.GetString("extraction_model")); model != "" {
		config.Model = model
	}
	return config
}

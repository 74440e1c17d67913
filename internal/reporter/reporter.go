// Package reporter renders reconciliation results for people and for
// spreadsheets.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: comma-separated export for spreadsheet applications
//
// Delimited exports (console and CSV) carry only the eight presentation
// columns; the per-field match flags stay internal to the JSON API.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/reconciler"
)

// OutputFormat selects how a report is rendered.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// exportColumns is the fixed header of every delimited export.
var exportColumns = []string{
	"Source", "PO #", "Item/Description", "Qty", "Unit Price", "Total Price", "Date", "Status",
}

// ReportConfig holds report generation options.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeSummary appends the per-document counts to console output.
	IncludeSummary bool `json:"include_summary"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`

	// JSONIndent pretty-prints JSON output.
	JSONIndent bool `json:"json_indent"`
}

// DefaultReportConfig returns the standard report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		IncludeSummary: true,
		CSVDelimiter:   ',',
		CSVHeaders:     true,
		JSONIndent:     true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.CSVDelimiter == 0 {
		return fmt.Errorf("csv delimiter cannot be empty")
	}
	return nil
}

// ReportGenerator renders reconciliation results.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator. A nil config uses
// DefaultReportConfig.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders one document result to the writer in the
// configured format.
func (rg *ReportGenerator) GenerateReport(result *reconciler.DocumentResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("document result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *reconciler.DocumentResult, writer io.Writer) error {
	fmt.Fprintf(writer, "Reconciliation for PO %s\n", result.PONumber)
	fmt.Fprintf(writer, "Status: %s\n\n", result.Status)

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(exportColumns, "\t"))
	for i := range result.Rows {
		fmt.Fprintln(tw, strings.Join(exportRow(&result.Rows[i]), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if rg.config.IncludeSummary {
		s := result.Summary
		fmt.Fprintf(writer, "\nItems: %d  Matches: %d  Discrepancies: %d  No matches: %d\n",
			s.TotalItems, s.Matches, s.Discrepancies, s.NoMatches)
	}
	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *reconciler.DocumentResult, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	if rg.config.JSONIndent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

func (rg *ReportGenerator) generateCSVReport(result *reconciler.DocumentResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	w.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := w.Write(exportColumns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for i := range result.Rows {
		if err := w.Write(exportRow(&result.Rows[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// exportRow flattens a result row into the eight presentation columns.
// Match flags are deliberately left out of delimited exports.
func exportRow(row *models.ResultRow) []string {
	return []string{
		string(row.Source),
		row.PONumber,
		row.Description,
		row.Quantity.String(),
		row.UnitPrice.String(),
		row.TotalPrice.String(),
		row.Date,
		string(row.Status),
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/parsers"
	"invoice-reconciliation-service/internal/reconciler"
	"invoice-reconciliation-service/internal/reporter"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// Flags for the reconcile command
var (
	invoiceFile       string
	ledgerFile        string
	outputFormat      string
	outputFile        string
	qtyTolerance      string
	priceTolerance    string
	minKeywordMatches int
	requireDateMatch  bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an invoice against purchase-order ledger records",
	Long: `Reconcile compares an extracted invoice document with purchase-order
ledger records to identify matched line items, quantity and price
discrepancies, and items with no corresponding order.

This command requires:
- An invoice document file (JSON, as produced by the extraction service)
- A purchase-order ledger file (CSV or XLSX)

Examples:
  # Basic reconciliation
  reconciler reconcile --invoice-file invoice.json --ledger-file ledger.csv

  # CSV export with custom tolerances
  reconciler reconcile --invoice-file invoice.json --ledger-file ledger.xlsx \
    --output-format csv --output-file report.csv \
    --qty-tolerance 0.5 --price-tolerance 0.05

  # Require delivery dates to line up
  reconciler reconcile --invoice-file invoice.json --ledger-file ledger.csv \
    --require-date-match`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&invoiceFile, "invoice-file", "i", "", "path to extracted invoice JSON file (required)")
	reconcileCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "", "path to purchase-order ledger file, CSV or XLSX (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Matching configuration flags
	reconcileCmd.Flags().StringVar(&qtyTolerance, "qty-tolerance", "0.01", "quantity tolerance (absolute)")
	reconcileCmd.Flags().StringVar(&priceTolerance, "price-tolerance", "0.01", "unit price tolerance (absolute)")
	reconcileCmd.Flags().IntVar(&minKeywordMatches, "min-keyword-matches", 3, "keyword overlaps required by the fallback matching stage")
	reconcileCmd.Flags().BoolVar(&requireDateMatch, "require-date-match", false, "treat date mismatches as discrepancies")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("invoice-file")
	reconcileCmd.MarkFlagRequired("ledger-file")

	// Bind flags to viper
	viper.BindPFlag("invoice-file", reconcileCmd.Flags().Lookup("invoice-file"))
	viper.BindPFlag("ledger-file", reconcileCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("qty-tolerance", reconcileCmd.Flags().Lookup("qty-tolerance"))
	viper.BindPFlag("price-tolerance", reconcileCmd.Flags().Lookup("price-tolerance"))
	viper.BindPFlag("min-keyword-matches", reconcileCmd.Flags().Lookup("min-keyword-matches"))
	viper.BindPFlag("require-date-match", reconcileCmd.Flags().Lookup("require-date-match"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	invoiceFile = viper.GetString("invoice-file")
	ledgerFile = viper.GetString("ledger-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	qtyTolerance = viper.GetString("qty-tolerance")
	priceTolerance = viper.GetString("price-tolerance")
	minKeywordMatches = viper.GetInt("min-keyword-matches")
	requireDateMatch = viper.GetBool("require-date-match")

	// Validate required flags
	if invoiceFile == "" {
		return fmt.Errorf("invoice-file is required")
	}
	if ledgerFile == "" {
		return fmt.Errorf("ledger-file is required")
	}

	// Validate file existence
	if err := validateFileExists(invoiceFile, "invoice file"); err != nil {
		return err
	}
	if err := validateFileExists(ledgerFile, "ledger file"); err != nil {
		return err
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate matching options early so bad tolerances fail before parsing
	if _, err := config.CreateMatchingOptions(qtyTolerance, priceTolerance, minKeywordMatches, requireDateMatch); err != nil {
		return err
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Invoice file: %s\n", invoiceFile)
		fmt.Fprintf(os.Stderr, "Ledger file: %s\n", ledgerFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Load inputs
	invoiceData, err := os.ReadFile(invoiceFile)
	if err != nil {
		return apperrors.FileError(apperrors.CodeFileRead, invoiceFile, err)
	}

	invoice, err := parsers.ParseInvoiceJSON(invoiceData)
	if err != nil {
		return fmt.Errorf("failed to parse invoice file: %w", err)
	}

	records, err := parsers.LoadLedgerFile(ledgerFile)
	if err != nil {
		return fmt.Errorf("failed to load ledger file: %w", err)
	}

	// Create the service with the flag-derived matching options
	options, err := config.CreateMatchingOptions(qtyTolerance, priceTolerance, minKeywordMatches, requireDateMatch)
	if err != nil {
		return err
	}

	service, err := reconciler.NewService(matcher.NewEngine(options), reconciler.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create reconciliation service: %w", err)
	}

	result, err := service.ReconcileDocument(ctx, invoice, records)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	// Generate report
	reportConfig := config.CreateReportConfig(outputFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d line items against %d ledger records.\n",
			result.Summary.TotalItems, len(records))
		fmt.Fprintf(os.Stderr, "Found %d matches, %d discrepancies, %d unmatched items.\n",
			result.Summary.Matches, result.Summary.Discrepancies, result.Summary.NoMatches)
		fmt.Fprintf(os.Stderr, "Document status: %s\n", result.Status)
	}

	return nil
}

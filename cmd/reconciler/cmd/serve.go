package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"invoice-reconciliation-service/cmd/reconciler/config"
	"invoice-reconciliation-service/internal/api"
	"invoice-reconciliation-service/internal/extraction"
	"invoice-reconciliation-service/internal/matcher"
	"invoice-reconciliation-service/internal/reconciler"
)

// Flags for the serve command
var (
	servePort   int
	maxDocs     int
	maxUploadMB int64
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation HTTP API",
	Long: `Serve starts the HTTP API for reconciliation, ledger parsing and
invoice extraction.

Extraction is configured through the environment:
  RECONCILER_EXTRACTION_ENDPOINT   chat completion endpoint URL
  RECONCILER_EXTRACTION_API_KEY    bearer token for the endpoint
  RECONCILER_EXTRACTION_MODEL      model name (optional)

Without an endpoint the extraction route responds 503 and the rest of
the API works normally.

Examples:
  reconciler serve
  reconciler serve --port 9090 --max-concurrent-documents 8
  reconciler serve --env-file production.env`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().IntVar(&maxDocs, "max-concurrent-documents", 4, "batch reconciliation parallelism")
	serveCmd.Flags().Int64Var(&maxUploadMB, "max-upload-mb", 16, "maximum ledger upload size in megabytes")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("max-concurrent-documents", serveCmd.Flags().Lookup("max-concurrent-documents"))
	viper.BindPFlag("max-upload-mb", serveCmd.Flags().Lookup("max-upload-mb"))
}

func runServe(cmd *cobra.Command, args []string) error {
	servePort = viper.GetInt("port")
	maxDocs = viper.GetInt("max-concurrent-documents")
	maxUploadMB = viper.GetInt64("max-upload-mb")

	service, err := reconciler.NewService(matcher.NewEngine(nil), &reconciler.Config{
		MaxConcurrentDocuments: maxDocs,
		ValidateInputs:         true,
	})
	if err != nil {
		return fmt.Errorf("failed to create reconciliation service: %w", err)
	}

	extractor, err := createExtractor()
	if err != nil {
		return err
	}
	if extractor == nil {
		fmt.Fprintln(os.Stderr, "Extraction endpoint not configured; /api/invoice/extract is disabled")
	}

	serverConfig := config.CreateServerConfig(servePort, maxUploadMB)
	server, err := api.NewServer(serverConfig, service, extractor)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// createExtractor builds the extraction client from the environment.
// A missing endpoint disables extraction rather than failing startup.
func createExtractor() (*extraction.Client, error) {
	extractionConfig := config.CreateExtractionConfig()
	if extractionConfig == nil {
		return nil, nil
	}

	extractor, err := extraction.NewClient(extractionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}
	return extractor, nil
}

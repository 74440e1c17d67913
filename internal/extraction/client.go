// Package extraction calls an AI document-extraction endpoint to turn
// raw invoice text into a structured invoice document.
//
// The endpoint speaks the OpenAI-compatible chat completion shape; the
// model's reply is expected to contain a JSON invoice object, possibly
// wrapped in markdown fences, which is delegated to the parsers package.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"invoice-reconciliation-service/internal/models"
	"invoice-reconciliation-service/internal/parsers"
	apperrors "invoice-reconciliation-service/pkg/errors"
	"invoice-reconciliation-service/pkg/logger"
)

// Config holds the extraction endpoint settings.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns extraction defaults. Endpoint and APIKey must
// still be supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		Model:      "gpt-4o-mini",
		Timeout:    60 * time.Second,
		MaxRetries: 3,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("extraction endpoint is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("extraction model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Client extracts invoice documents from raw text.
type Client struct {
	config *Config
	http   *retryablehttp.Client
	log    logger.Logger
}

// NewClient creates an extraction client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, apperrors.ConfigError("extraction config is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigError("invalid extraction config", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = config.MaxRetries
	rc.HTTPClient.Timeout = config.Timeout
	rc.Logger = nil

	return &Client{
		config: config,
		http:   rc,
		log:    logger.GetGlobalLogger().WithComponent("extraction"),
	}, nil
}

const extractionPrompt = `Extract the purchase order number, invoice date and line items from the invoice below.
Respond with a single JSON object shaped like:
{"poNumber": "...", "invoiceDate": "...", "lineItems": [{"productName": "...", "quantity": 0, "unitPrice": 0, "totalPrice": 0, "deliveryDate": "..."}]}
Use null for values that are not present. Respond with JSON only.`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ExtractInvoice sends the document text to the extraction endpoint and
// parses the model's reply into a validated invoice document.
func (c *Client) ExtractInvoice(ctx context.Context, documentText string) (*models.InvoiceDocument, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionRequest,
			"document text cannot be empty", nil)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionPrompt},
			{Role: "user", Content: documentText},
		},
	})
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionRequest,
			"failed to build extraction request", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionRequest,
			"failed to build extraction request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	c.log.WithFields(logger.Fields{
		"model":      c.config.Model,
		"text_bytes": len(documentText),
	}).Debug("Sending extraction request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionRequest,
			"extraction request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			"failed to read extraction response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			fmt.Sprintf("extraction endpoint returned status %d", resp.StatusCode), nil)
	}

	var chat chatResponse
	if err := json.Unmarshal(payload, &chat); err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			"failed to decode extraction response", err)
	}
	if chat.Error != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			fmt.Sprintf("extraction endpoint error: %s", chat.Error.Message), nil)
	}
	if len(chat.Choices) == 0 {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			"extraction response has no choices", nil)
	}

	doc, err := parsers.ParseInvoiceJSON([]byte(chat.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logger.Fields{
		"po_number":  doc.PONumber,
		"line_items": len(doc.LineItems),
	}).Info("Extracted invoice document")
	return doc, nil
}

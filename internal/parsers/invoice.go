package parsers

import (
	"encoding/json"
	"strings"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// ParseInvoiceJSON parses an extracted invoice document. Extraction
// models frequently wrap their JSON in markdown code fences or lead
// with prose, so the payload is located as the outermost brace pair
// before unmarshaling.
func ParseInvoiceJSON(data []byte) (*models.InvoiceDocument, error) {
	payload := extractJSONObject(string(data))
	if payload == "" {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			"no JSON object found in extraction output", nil)
	}

	var doc models.InvoiceDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeExtractionResponse,
			"failed to parse extracted invoice", err)
	}

	if err := models.ValidateInvoiceDocument(&doc); err != nil {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidInvoice, err.Error())
	}
	return &doc, nil
}

// extractJSONObject returns the substring spanning the first '{' through
// the last '}', with any markdown code fences stripped first.
func extractJSONObject(s string) string {
	s = stripCodeFences(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the fence line.
	if i := strings.Index(s, "\n"); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || isLanguageTag(first) {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewLoggerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: DebugLevel, Format: TextFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.WithField("po_number", "PO-1001").Info("reconciliation started")

	out := buf.String()
	if !strings.Contains(out, "reconciliation started") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "PO-1001") {
		t.Errorf("expected field in output, got %q", out)
	}
}

func TestNewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.WithFields(Fields{"matches": 3, "component": "matcher"}).Warn("discrepancies found")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "discrepancies found" {
		t.Errorf("unexpected msg field: %v", entry["msg"])
	}
	if entry["component"] != "matcher" {
		t.Errorf("unexpected component field: %v", entry["component"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: ErrorLevel, Format: TextFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.Debug("hidden")
	log.Info("hidden")
	log.Error("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected low-level messages to be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected error message in output, got %q", out)
	}
}

func TestWithErrorAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: InfoLevel, Format: TextFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.WithComponent("parsers").WithError(errors.New("missing column")).Error("ledger rejected")

	out := buf.String()
	for _, want := range []string{"parsers", "missing column", "ledger rejected"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if err := (&Config{Level: "loud", Format: TextFormat}).Validate(); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := (&Config{Level: InfoLevel, Format: "xml"}).Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	var buf bytes.Buffer
	log, err := NewLogger(&Config{Level: InfoLevel, Format: TextFormat, Output: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	SetGlobalLogger(log)

	WithComponent("api").Info("request handled")
	if !strings.Contains(buf.String(), "request handled") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}
}

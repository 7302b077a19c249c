package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSONIncludesServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json")

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["service"] != "ignite-backend" {
		t.Fatalf("service field: got %v", entry["service"])
	}
	if entry["message"] != "hello" {
		t.Fatalf("message field: got %v", entry["message"])
	}
	if entry["component"] != "test" {
		t.Fatalf("component field: got %v", entry["component"])
	}
}

func TestNewPrettyIsNotJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty")

	log.Info().Msg("hello")

	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("pretty output should not be raw JSON: %q", buf.String())
	}
}

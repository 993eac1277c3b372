package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetupRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "bondd", "test", slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("deposit", slog.String("contract", "oprocontract1xyz"))

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{
		"service":  "bondd",
		"env":      "test",
		"severity": "INFO",
		"message":  "deposit",
		"contract": "oprocontract1xyz",
	} {
		if got, _ := line[key].(string); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
	if _, ok := line["timestamp"]; !ok {
		t.Fatalf("timestamp missing: %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestMaskField(t *testing.T) {
	if attr := MaskField("authorization", "Bearer abc"); attr.Value.String() != RedactedValue {
		t.Fatalf("authorization should be masked, got %s", attr.Value)
	}
	if attr := MaskField("Sender", "opro1abc"); attr.Value.String() != "opro1abc" {
		t.Fatalf("sender should pass through, got %s", attr.Value)
	}
	if attr := MaskField("token", ""); attr.Value.String() != "" {
		t.Fatalf("empty values stay empty, got %s", attr.Value)
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetOutputJSONFeedsGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("debug")
	SetOutput(&buf, "json")
	t.Cleanup(func() {
		SetLevel("info")
		SetFormat("console")
	})

	log.Info().Str("operation", "rfm").Msg("analysis computed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["operation"] != "rfm" || entry["message"] != "analysis computed" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetLevelFallsBackToInfo(t *testing.T) {
	SetLevel("verbose")
	t.Cleanup(func() { SetLevel("info") })

	if Log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", Log.GetLevel())
	}
}

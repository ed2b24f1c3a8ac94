package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) || !strings.Contains(out, `"caller":`) {
		t.Fatalf("warn line missing message or caller: %s", out)
	}
}

func TestNewWithWriterUnknownLevel(t *testing.T) {
	for _, level := range []string{"", "verbose"} {
		log := NewWithWriter(&bytes.Buffer{}, level)
		if got := log.GetLevel(); got != zerolog.InfoLevel {
			t.Fatalf("level for %q = %s, want info", level, got)
		}
	}
}

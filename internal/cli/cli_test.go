package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	apperrors "nse-insight/internal/errors"
)

func TestParseSentiment(t *testing.T) {
	features, err := parseSentiment([]string{
		"news_recommendation_score=0.6",
		"sentiment_confidence=0.85",
	})
	if err != nil {
		t.Fatalf("parseSentiment failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	if features["news_recommendation_score"] != 0.6 {
		t.Errorf("score = %f, want 0.6", features["news_recommendation_score"])
	}
	if features["sentiment_confidence"] != 0.85 {
		t.Errorf("confidence = %f, want 0.85", features["sentiment_confidence"])
	}
}

func TestParseSentimentEmpty(t *testing.T) {
	features, err := parseSentiment(nil)
	if err != nil {
		t.Fatalf("parseSentiment failed: %v", err)
	}
	if features != nil {
		t.Errorf("no pairs should yield nil features, got %v", features)
	}
}

func TestParseSentimentRejectsMalformedPairs(t *testing.T) {
	cases := []string{"noequals", "score=abc", "=0.5"}
	for _, pair := range cases {
		_, err := parseSentiment([]string{pair})
		if err == nil {
			t.Errorf("pair %q should be rejected", pair)
			continue
		}
		var verr *apperrors.ValidationError
		if !apperrors.As(err, &verr) {
			t.Errorf("pair %q: got %T, want ValidationError", pair, err)
		}
	}
}

func newTestOutput(jsonMode bool) (*Output, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", jsonMode, "")
	cmd.SetOut(buf)
	return NewOutput(cmd), buf
}

func TestOutputJSON(t *testing.T) {
	out, buf := newTestOutput(true)
	if !out.IsJSON() {
		t.Fatal("json flag should enable JSON mode")
	}

	if err := out.JSON(map[string]any{"symbol": "SBIN", "confidence": 0.8}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["symbol"] != "SBIN" {
		t.Errorf("symbol = %v, want SBIN", decoded["symbol"])
	}
}

func TestOutputPlainTextWithoutTerminal(t *testing.T) {
	out, buf := newTestOutput(false)

	out.Success("trained %s", "SBIN")
	out.Warning("skipping")

	text := buf.String()
	if strings.Contains(text, "\033[") {
		t.Errorf("non-terminal output must not contain ANSI codes: %q", text)
	}
	if !strings.Contains(text, "trained SBIN") || !strings.Contains(text, "skipping") {
		t.Errorf("messages missing from output: %q", text)
	}
}

func TestParseSentimentValidationMessage(t *testing.T) {
	_, err := parseSentiment([]string{"bad-pair"})
	if err == nil || !strings.Contains(err.Error(), "key=value") {
		t.Errorf("error should explain the expected format, got %v", err)
	}
}

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/gridwatch/internal/incident"
)

func sampleIncident() *incident.Incident {
	return &incident.Incident{
		ID:         "water_main_break:40.713,-74.006",
		Type:       "water_main_break",
		Status:     incident.StatusActive,
		Lat:        40.713,
		Lng:        -74.006,
		Severity:   0.866,
		Confidence: 0.91,
		Summary:    "Likely water main break; traffic impact expected.",
		Impact:     &incident.Impact{ETADeltaMinutes: 12},
		Sources: []incident.Source{
			{SourceType: "open311", Confidence: 0.8},
			{SourceType: "vendor-flow-feed", Confidence: 0.9},
		},
		Actions: []incident.ActionStep{
			{Step: "Notify Water Dept on-call", Owner: "Water", Priority: 1, Status: incident.ActionPending},
			{Step: "Stage cones at nearest cross-streets", Owner: "Traffic", Priority: 1, Status: incident.ActionPending},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSend_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Send(context.Background(), sampleIncident()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, summary, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "water_main_break") {
		t.Errorf("header text = %q, want to contain the incident type", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should carry the red circle for severity >= 0.7")
	}

	summary := blocks[4].(map[string]any)
	summaryText := summary["text"].(map[string]any)["text"].(string)
	if !strings.Contains(summaryText, "1. Notify Water Dept on-call (Water)") {
		t.Errorf("summary block %q missing numbered action steps", summaryText)
	}
}

func TestSend_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Send(context.Background(), sampleIncident()); err != nil {
		t.Fatalf("Send with empty URL should be no-op, got: %v", err)
	}
}

func TestSend_ErrorOnNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no_service", http.StatusGone)
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Send(context.Background(), sampleIncident())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "410") {
		t.Errorf("error %q should carry the status code", err)
	}
}

func TestSeverityEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity float64
		want     string
	}{
		{0.9, "\U0001f534"},
		{0.7, "\U0001f534"},
		{0.5, "\U0001f7e1"},
		{0.2, "\U0001f7e2"},
	}
	for _, tt := range tests {
		if got := severityEmoji(tt.severity); got != tt.want {
			t.Errorf("severityEmoji(%v) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", maxSummaryLen+100)
	got := truncate(long, maxSummaryLen)
	if len(got) != maxSummaryLen {
		t.Errorf("truncated length = %d, want %d", len(got), maxSummaryLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text should end with ellipsis")
	}

	if got := truncate("short", maxSummaryLen); got != "short" {
		t.Errorf("truncate(short) = %q, want unchanged", got)
	}
}

// Seed posts synthetic evidence batches to a running gridwatch server.
// Useful for demos and for exercising the fusion pipeline end to end
// without wiring real city feeds.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
)

type site struct {
	name string
	lat  float64
	lng  float64
}

var sites = []site{
	{"downtown", 40.7128, -74.0060},
	{"riverside", 40.7306, -73.9866},
	{"industrial park", 40.6782, -73.9442},
	{"north hills", 40.7831, -73.9712},
}

// scenario produces correlated evidence for one incident type: a primary
// report plus follow-ups from other sources near the same spot so the
// cluster crosses the corroboration thresholds some of the time.
type scenario struct {
	incidentType string
	sources      []sourceProfile
}

type sourceProfile struct {
	sourceType string
	confidence float64
	jamFactor  float64 // only emitted for vendor-flow-feed
}

var scenarios = []scenario{
	{
		incidentType: "water_main_break",
		sources: []sourceProfile{
			{sourceType: "open311", confidence: 0.8},
			{sourceType: "vendor-flow-feed", confidence: 0.9, jamFactor: 8},
			{sourceType: "social-post", confidence: 0.4},
		},
	},
	{
		incidentType: "road_closure",
		sources: []sourceProfile{
			{sourceType: "open311", confidence: 0.9},
			{sourceType: "news", confidence: 0.6},
		},
	},
	{
		incidentType: "power_outage",
		sources: []sourceProfile{
			{sourceType: "vendor-incident-feed", confidence: 0.85},
			{sourceType: "social-post", confidence: 0.5},
		},
	},
	{
		incidentType: "internet_outage",
		sources: []sourceProfile{
			{sourceType: "manual", confidence: 0.7},
		},
	},
}

type evidenceOut struct {
	EvidenceID string         `json:"evidence_id"`
	SourceType string         `json:"source_type"`
	Type       string         `json:"type"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	RadiusM    int            `json:"radius_m"`
	Confidence float64        `json:"confidence"`
	URL        string         `json:"url,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
}

func main() {
	var (
		baseURL  string
		token    string
		batches  int
		interval time.Duration
		seed     int64
	)
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the gridwatch server")
	flag.StringVar(&token, "token", "", "Bearer token for the ingest endpoint, empty to skip auth")
	flag.IntVar(&batches, "batches", 1, "Number of evidence batches to post")
	flag.DurationVar(&interval, "interval", 2*time.Second, "Delay between batches")
	flag.Int64Var(&seed, "seed", 0, "RNG seed, 0 uses current time")
	flag.Parse()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: demo data, not security sensitive

	client := &http.Client{Timeout: 15 * time.Second}
	ctx := context.Background()

	for i := 0; i < batches; i++ {
		batch := buildBatch(rng)
		if err := postBatch(ctx, client, baseURL, token, batch); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		if i < batches-1 {
			time.Sleep(interval)
		}
	}
}

// buildBatch picks a site per scenario and emits the scenario's sources
// jittered within ~30m so they land in the same rounded grid cell.
func buildBatch(rng *rand.Rand) []evidenceOut {
	var batch []evidenceOut
	for _, sc := range scenarios {
		s := sites[rng.Intn(len(sites))]
		for _, sp := range sc.sources {
			ev := evidenceOut{
				EvidenceID: ulid.Make().String(),
				SourceType: sp.sourceType,
				Type:       sc.incidentType,
				Lat:        s.lat + jitter(rng),
				Lng:        s.lng + jitter(rng),
				RadiusM:    80,
				Confidence: sp.confidence,
				Raw:        map[string]any{"area": s.name},
			}
			if sp.sourceType == "vendor-flow-feed" {
				ev.Raw["jamFactor"] = sp.jamFactor
			}
			batch = append(batch, ev)
		}
	}
	return batch
}

// jitter keeps points inside one 3-decimal grid cell most of the time.
func jitter(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 0.0004
}

func postBatch(ctx context.Context, client *http.Client, baseURL, token string, batch []evidenceOut) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/evidence", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody)
	}
	fmt.Printf("posted %d records: %s\n", len(batch), respBody)
	return nil
}

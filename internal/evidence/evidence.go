// Package evidence defines the Evidence record ingested from discovery
// producers and the time-bounded store that retains it.
package evidence

import (
	"errors"
	"fmt"
	"time"
)

// SourceType identifies the class of upstream producer an Evidence record
// came from. The scorer knows the values below; anything else is accepted
// and scored with a default weight.
type SourceType string

const (
	SourceOpen311      SourceType = "open311"
	SourceIncidentFeed SourceType = "vendor-incident-feed"
	SourceFlowFeed     SourceType = "vendor-flow-feed"
	SourceSocialPost   SourceType = "social-post"
	SourceNews         SourceType = "news"
	SourceManual       SourceType = "manual"
)

// Well-known incident type tags. The type set is open: producers may emit
// tags not listed here and they flow through the pipeline unchanged.
const (
	TypeWaterMainBreak  = "water_main_break"
	TypeRoadClosure     = "road_closure"
	TypeLaneRestriction = "lane_restriction"
	TypeCongestion      = "congestion"
	TypePowerOutage     = "power_outage"
	TypeInternetOutage  = "internet_outage"
	TypeGasLeak         = "gas_leak"
	TypeAccident        = "accident"
	TypeCrime           = "crime"
	TypeEnvironment     = "environment"
	TypeEmergency       = "emergency"
)

// DefaultRadiusM is applied when a producer omits radius_m.
const DefaultRadiusM = 80

// Evidence is one immutable, geotagged observation about a candidate
// event. Created once at ingest, never mutated, destroyed only by TTL
// eviction from the Store.
type Evidence struct {
	EvidenceID string         `json:"evidence_id"`
	SourceType SourceType     `json:"source_type"`
	Type       string         `json:"type"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	RadiusM    int            `json:"radius_m,omitempty"`
	StartTime  *time.Time     `json:"start_time,omitempty"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
	Confidence float64        `json:"confidence"`
	URL        string         `json:"url,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
}

// Validate checks the Evidence invariants. It does not reject unknown
// source or incident types; those degrade gracefully downstream.
func (e *Evidence) Validate() error {
	var errs []error

	if e.EvidenceID == "" {
		errs = append(errs, errors.New("evidence_id is required"))
	}
	if e.SourceType == "" {
		errs = append(errs, errors.New("source_type is required"))
	}
	if e.Type == "" {
		errs = append(errs, errors.New("type is required"))
	}
	if e.Lat < -90 || e.Lat > 90 {
		errs = append(errs, fmt.Errorf("lat %v out of range [-90, 90]", e.Lat))
	}
	if e.Lng < -180 || e.Lng > 180 {
		errs = append(errs, fmt.Errorf("lng %v out of range [-180, 180]", e.Lng))
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		errs = append(errs, fmt.Errorf("confidence %v out of range [0, 1]", e.Confidence))
	}
	// zero means "not set" and is filled by Normalize, so only reject
	// negatives here
	if e.RadiusM < 0 {
		errs = append(errs, fmt.Errorf("radius_m %d must not be negative", e.RadiusM))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Normalize fills defaults for optional fields: radius_m and detected_at.
// now supplies the arrival timestamp when the producer omitted one.
func (e *Evidence) Normalize(now time.Time) {
	if e.RadiusM == 0 {
		e.RadiusM = DefaultRadiusM
	}
	if e.DetectedAt.IsZero() {
		e.DetectedAt = now
	}
}

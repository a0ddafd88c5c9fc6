package evidence

// The raw payload is source-specific and opaque to the core; the scorer
// reads only the well-known keys below through typed accessors. Producers
// may attach any additional detail for audit and display.

const (
	rawKeyJamFactor = "jamFactor"
	rawKeyArea      = "area"
	rawKeyCity      = "city"
)

// jamFactorScale converts the 0-10 wire value to the 0.0-1.0 range.
const jamFactorScale = 10.0

// FlowDetail is the typed view of a vendor-flow-feed raw payload.
type FlowDetail struct {
	// JamFactor is the normalized 0.0-1.0 congestion metric.
	JamFactor float64
}

// FlowDetail extracts the flow-feed congestion detail. ok is false when
// the record is not flow-feed evidence or carries no usable jam factor.
// Only numeric values are accepted; stringly-typed payloads are not
// evaluated or coerced.
func (e *Evidence) FlowDetail() (FlowDetail, bool) {
	if e.SourceType != SourceFlowFeed || e.Raw == nil {
		return FlowDetail{}, false
	}
	v, ok := e.Raw[rawKeyJamFactor]
	if !ok {
		return FlowDetail{}, false
	}
	jf, ok := asFloat(v)
	if !ok {
		return FlowDetail{}, false
	}
	jf /= jamFactorScale
	if jf < 0 {
		jf = 0
	}
	if jf > 1 {
		jf = 1
	}
	return FlowDetail{JamFactor: jf}, true
}

// Area returns a human-readable location hint from the raw payload, if
// the producer attached one. Used only to enrich summary text.
func (e *Evidence) Area() (string, bool) {
	if e.Raw == nil {
		return "", false
	}
	for _, key := range []string{rawKeyArea, rawKeyCity} {
		if s, ok := e.Raw[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// asFloat handles the numeric types a decoded JSON payload can carry.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Package fusion reduces an evidence snapshot into scored incidents:
// deterministic spatial/type clustering, rule-based confidence and
// severity scoring, and incident assembly.
package fusion

import (
	"math"
	"strconv"

	"github.com/linnemanlabs/gridwatch/internal/evidence"
)

// DefaultGridPrecision rounds coordinates to 3 decimal places, roughly a
// 100 m grid cell. Tunable; no stated rationale beyond "city block".
const DefaultGridPrecision = 3

// Key identifies one candidate incident: same canonical type plus the
// same rounded grid cell. Two evidence points straddling a cell boundary
// at the same real-world location land in different clusters; types are
// never merged even when co-located.
type Key struct {
	Type string
	Lat  float64
	Lng  float64
}

// ID derives the stable incident identifier from the key, so a durable
// mirror can treat repeated computations as upserts of one object.
func (k Key) ID() string {
	return k.Type + ":" +
		strconv.FormatFloat(k.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(k.Lng, 'f', -1, 64)
}

// keyFor buckets ev at the given grid precision.
func keyFor(ev *evidence.Evidence, precision int) Key {
	return Key{
		Type: ev.Type,
		Lat:  roundTo(ev.Lat, precision),
		Lng:  roundTo(ev.Lng, precision),
	}
}

// Cluster groups a snapshot into buckets in a single pass. Bucket order
// is unspecified; member order within a bucket preserves snapshot order.
// An evidence item belongs to exactly one bucket per computation.
func Cluster(snapshot []evidence.Evidence, precision int) map[Key][]evidence.Evidence {
	buckets := make(map[Key][]evidence.Evidence)
	for _, ev := range snapshot {
		k := keyFor(&ev, precision)
		buckets[k] = append(buckets[k], ev)
	}
	return buckets
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

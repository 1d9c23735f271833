package simulate

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Device mix of generated views.
const (
	mobileShare  = 0.6
	desktopShare = 0.35
)

// generateVisits builds n page views. Roughly dupShare of them repeat the
// visit_id of an earlier view so the server-side deduplication is exercised.
// Categories are skewed toward the front of the list.
func generateVisits(n int, homeShare, dupShare float64, categories []string, seed uint64) []Visit {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic traffic
	visits := make([]Visit, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && rng.Float64() < dupShare {
			visits = append(visits, visits[rng.IntN(len(visits))])
			continue
		}
		v := Visit{
			Page:       "stats",
			DeviceType: pickDevice(rng),
			VisitID:    uuid.NewString(),
		}
		if rng.Float64() < homeShare {
			v.Page = "home"
			if len(categories) > 0 {
				v.Category = categories[skewedIndex(rng, len(categories))]
			}
		}
		visits = append(visits, v)
	}
	return visits
}

func pickDevice(rng *rand.Rand) string {
	switch p := rng.Float64(); {
	case p < mobileShare:
		return "mobile"
	case p < mobileShare+desktopShare:
		return "desktop"
	default:
		return "unknown"
	}
}

// skewedIndex picks an index in [0, n) with lower indexes more likely.
func skewedIndex(rng *rand.Rand, n int) int {
	a, b := rng.IntN(n), rng.IntN(n)
	return min(a, b)
}

// uniqueIDs counts distinct visit ids.
func uniqueIDs(visits []Visit) int {
	seen := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		seen[v.VisitID] = struct{}{}
	}
	return len(seen)
}

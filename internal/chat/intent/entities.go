package intent

import (
	"sort"
	"strings"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"
)

// MaxLocations is how many locations a single utterance can yield.
const MaxLocations = 2

// Extractor pulls entities out of folded text using the catalog.
type Extractor struct {
	store *catalog.Store
}

// NewExtractor creates an extractor over the catalog gazetteer.
func NewExtractor(store *catalog.Store) *Extractor {
	return &Extractor{store: store}
}

type hit struct {
	pos  int
	end  int
	name string
}

// Extract returns up to two locations in order of appearance, the first
// tracking code and the most specific container type mentioned.
func (x *Extractor) Extract(text string) Entities {
	t := textnorm.Fold(text)
	return Entities{
		Locations:     x.locations(t),
		TrackingCode:  FindTrackingCode(t),
		ContainerType: x.containerType(t),
	}
}

func (x *Extractor) locations(t string) []string {
	var hits []hit
	seen := map[string]bool{}
	for _, loc := range x.store.Gazetteer() {
		if seen[loc.Port.Code] {
			continue
		}
		idx := strings.Index(t, loc.Term)
		if idx < 0 {
			continue
		}
		end := idx + len(loc.Term)
		overlaps := false
		for _, h := range hits {
			if idx < h.end && end > h.pos {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		seen[loc.Port.Code] = true
		hits = append(hits, hit{pos: idx, end: end, name: loc.Port.Name})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var out []string
	for _, h := range hits {
		if len(out) == MaxLocations {
			break
		}
		out = append(out, h.name)
	}
	return out
}

func (x *Extractor) containerType(t string) string {
	best, bestLen := "", 0
	for _, ct := range x.store.ContainerTypes() {
		for _, kw := range ct.Keywords {
			k := textnorm.Fold(kw)
			if len(k) > bestLen && strings.Contains(t, k) {
				best, bestLen = ct.Code, len(k)
			}
		}
	}
	return best
}

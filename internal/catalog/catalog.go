// Package catalog is the read-only reference data store: routes, tariffs,
// ports, partner companies and ancillary services. The default data set is
// embedded in the binary; an alternative YAML file can replace it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Location is one gazetteer entry: a folded search term and the port it names.
type Location struct {
	Term string
	Port domain.Port
}

// Store wraps the parsed catalog with lookup indexes. It is never mutated
// after construction and is safe for concurrent readers.
type Store struct {
	data      domain.Catalog
	gazetteer []Location
}

// Load parses the embedded catalog.
func Load() (*Store, error) {
	return parse(embedded)
}

// MustLoad is Load for program start-up and tests.
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic("catalog: " + err.Error())
	}
	return s
}

// LoadFile parses a catalog from disk.
func LoadFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Store, error) {
	var c domain.Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Ports) == 0 || len(c.Routes) == 0 {
		return nil, fmt.Errorf("catalog must define ports and routes")
	}
	return &Store{data: c, gazetteer: buildGazetteer(c.Ports)}, nil
}

// buildGazetteer indexes port names and aliases longest-first so that
// "ciudad de mexico" wins over a shorter overlapping term.
func buildGazetteer(ports []domain.Port) []Location {
	var locs []Location
	for _, p := range ports {
		locs = append(locs, Location{Term: textnorm.Fold(p.Name), Port: p})
		for _, a := range p.Aliases {
			locs = append(locs, Location{Term: textnorm.Fold(a), Port: p})
		}
	}
	sort.SliceStable(locs, func(i, j int) bool {
		return len(locs[i].Term) > len(locs[j].Term)
	})
	return locs
}

// Data returns the full catalog.
func (s *Store) Data() domain.Catalog { return s.data }

// Company returns the operating company profile.
func (s *Store) Company() domain.Company { return s.data.Company }

// Routes returns every route.
func (s *Store) Routes() []domain.Route { return s.data.Routes }

// Gazetteer returns the location index, longest term first.
func (s *Store) Gazetteer() []Location { return s.gazetteer }

// ContainerTypes returns every container type.
func (s *Store) ContainerTypes() []domain.ContainerType { return s.data.ContainerTypes }

// ContainerType finds a container type by code.
func (s *Store) ContainerType(code string) (domain.ContainerType, bool) {
	for _, ct := range s.data.ContainerTypes {
		if strings.EqualFold(ct.Code, code) {
			return ct, true
		}
	}
	return domain.ContainerType{}, false
}

// FindRoute returns the route from a to b, falling back to b to a.
// Names are compared folded, so "Lazaro Cardenas" matches "Lázaro Cárdenas".
func (s *Store) FindRoute(a, b string) (domain.Route, bool) {
	fa, fb := textnorm.Fold(a), textnorm.Fold(b)
	if fa == "" || fb == "" {
		return domain.Route{}, false
	}
	for _, r := range s.data.Routes {
		if textnorm.Fold(r.Origin) == fa && textnorm.Fold(r.Destination) == fb {
			return r, true
		}
	}
	for _, r := range s.data.Routes {
		if textnorm.Fold(r.Origin) == fb && textnorm.Fold(r.Destination) == fa {
			return r, true
		}
	}
	return domain.Route{}, false
}

// RouteByID looks a route up by identifier.
func (s *Store) RouteByID(id string) (domain.Route, bool) {
	for _, r := range s.data.Routes {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Route{}, false
}

// RoutesFor returns routes touching any of the given port names. With no
// names it returns every route.
func (s *Store) RoutesFor(names ...string) []domain.Route {
	if len(names) == 0 {
		return s.data.Routes
	}
	var out []domain.Route
	for _, r := range s.data.Routes {
		o, d := textnorm.Fold(r.Origin), textnorm.Fold(r.Destination)
		for _, n := range names {
			fn := textnorm.Fold(n)
			if fn == o || fn == d {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

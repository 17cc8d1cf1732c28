package location

import (
	"log"
	"strings"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type entry struct {
	name   string
	coords Coordinates
}

// Registry is the static table of selectable locations. The same table backs
// the dashboard selector and weather resolution, so the two can never
// disagree about which names exist.
type Registry struct {
	entries []entry
	lookup  map[string]Coordinates
	def     string
}

// New builds a registry from canonical selector names. Aliases added later
// resolve to coordinates but do not appear in Names().
func New(defaultName string, entries map[string]Coordinates, order []string) *Registry {
	r := &Registry{
		lookup: make(map[string]Coordinates, len(entries)),
		def:    strings.ToLower(defaultName),
	}
	for _, name := range order {
		coords := entries[name]
		r.entries = append(r.entries, entry{name: name, coords: coords})
		r.lookup[strings.ToLower(name)] = coords
	}
	return r
}

// Alias registers an alternative spelling that resolves to the same
// coordinates as an existing name, e.g. a de-accented form.
func (r *Registry) Alias(alias, canonical string) {
	if coords, ok := r.lookup[strings.ToLower(canonical)]; ok {
		r.lookup[strings.ToLower(alias)] = coords
	}
}

// Resolve maps a location name to coordinates. Matching is case-insensitive.
// Unknown or empty input falls back to the default location; this call never
// fails.
func (r *Registry) Resolve(name string) Coordinates {
	if name == "" {
		log.Printf("[location] no location provided, using default %q", r.def)
		return r.lookup[r.def]
	}
	if coords, ok := r.lookup[strings.ToLower(name)]; ok {
		return coords
	}
	log.Printf("[location] unknown location %q, using default %q", name, r.def)
	return r.lookup[r.def]
}

// Contains reports whether the name resolves without falling back.
func (r *Registry) Contains(name string) bool {
	_, ok := r.lookup[strings.ToLower(name)]
	return ok
}

// Names returns the canonical selectable names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// DefaultName returns the fallback location name.
func (r *Registry) DefaultName() string {
	return r.def
}

// Sweden returns the registry of monitored Swedish growing regions, with
// de-accented spellings resolving to the same coordinates as the accented
// names.
func Sweden() *Registry {
	order := []string{
		"uppsala",
		"stockholm",
		"malmö",
		"göteborg",
		"örebro",
		"linköping",
		"västerås",
		"lund",
	}
	coords := map[string]Coordinates{
		"uppsala":   {Lat: 59.86, Lon: 17.64},
		"stockholm": {Lat: 59.33, Lon: 18.06},
		"malmö":     {Lat: 55.60, Lon: 13.00},
		"göteborg":  {Lat: 57.71, Lon: 11.97},
		"örebro":    {Lat: 59.27, Lon: 15.21},
		"linköping": {Lat: 58.41, Lon: 15.62},
		"västerås":  {Lat: 59.61, Lon: 16.55},
		"lund":      {Lat: 55.70, Lon: 13.19},
	}
	r := New("uppsala", coords, order)
	r.Alias("malmo", "malmö")
	r.Alias("goteborg", "göteborg")
	r.Alias("orebro", "örebro")
	r.Alias("linkoping", "linköping")
	r.Alias("vasteras", "västerås")
	return r
}

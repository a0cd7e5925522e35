package facilities

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrNotFound is returned by Get for unknown facility IDs.
var ErrNotFound = errors.New("facility not found")

// Filter narrows a directory search. Zero values match everything.
type Filter struct {
	Query     string // substring of name or address, case-insensitive
	Type      Type
	Specialty string
	// PublicOnly keeps only facilities of the public health system (SUS).
	PublicOnly bool
}

// Directory is a read-only set of facilities and emergency services.
type Directory struct {
	facilities []Facility
	services   []Service
}

// NewDirectory copies the given facilities and services.
func NewDirectory(fs []Facility, services []Service) *Directory {
	d := &Directory{
		facilities: make([]Facility, len(fs)),
		services:   make([]Service, len(services)),
	}
	copy(d.facilities, fs)
	copy(d.services, services)
	return d
}

// Default returns the Montes Claros directory.
func Default() *Directory {
	return NewDirectory(montesClaros, emergencyServices)
}

// Len is the number of facilities.
func (d *Directory) Len() int { return len(d.facilities) }

// Search returns facilities matching f, nearest first.
func (d *Directory) Search(f Filter) []Facility {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))
	specialty := fold.String(strings.TrimSpace(f.Specialty))

	var out []Facility
	for _, fac := range d.facilities {
		if f.Type != "" && fac.Type != f.Type {
			continue
		}
		if f.PublicOnly && !fac.Public {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(fac.Name), query) &&
			!strings.Contains(fold.String(fac.Address), query) {
			continue
		}
		if specialty != "" && !hasSpecialty(fac, specialty) {
			continue
		}
		out = append(out, clone(fac))
	}
	sortByDistance(out)
	return out
}

func hasSpecialty(f Facility, folded string) bool {
	fold := cases.Fold()
	for _, s := range f.Specialties {
		if fold.String(s) == folded {
			return true
		}
	}
	return false
}

// Get returns the facility with the given ID.
func (d *Directory) Get(id string) (Facility, error) {
	for _, f := range d.facilities {
		if f.ID == id {
			return clone(f), nil
		}
	}
	return Facility{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Nearest returns up to n emergency-capable facilities, nearest first.
// n <= 0 returns all of them.
func (d *Directory) Nearest(n int) []Facility {
	var out []Facility
	for _, f := range d.facilities {
		if f.Type.Emergency() {
			out = append(out, clone(f))
		}
	}
	sortByDistance(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Specialties returns every specialty offered, deduplicated and in
// Portuguese collation order.
func (d *Directory) Specialties() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range d.facilities {
		for _, s := range f.Specialties {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	collate.New(language.BrazilianPortuguese).SortStrings(out)
	return out
}

// Contacts returns the emergency services and the emergency rooms.
func (d *Directory) Contacts() Contacts {
	c := Contacts{Services: make([]Service, 0, len(d.services))}
	for _, s := range d.services {
		s.Call = TelURL(s.Number)
		c.Services = append(c.Services, s)
	}
	for _, f := range d.Nearest(0) {
		c.Hospitals = append(c.Hospitals, Listing{Facility: f, Links: LinksFor(f)})
	}
	return c
}

// List decorates facilities with their links.
func List(fs []Facility) []Listing {
	out := make([]Listing, 0, len(fs))
	for _, f := range fs {
		out = append(out, Listing{Facility: f, Links: LinksFor(f)})
	}
	return out
}

func sortByDistance(fs []Facility) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].DistanceKM < fs[j].DistanceKM })
}

func clone(f Facility) Facility {
	f.Specialties = append([]string(nil), f.Specialties...)
	return f
}

package rank

import (
	"errors"
	"fmt"
	"sort"

	"github.com/craftnest/teamforge-backend/internal/types"
)

// ErrUnknownRank is returned when a rank name outside the catalog is supplied.
var ErrUnknownRank = errors.New("unknown rank")

// Rank is a named tier in the seniority hierarchy. Threshold is the point
// total required to hold the rank; the single most senior rank has
// Infinite set and can only be assigned, never reached by points.
type Rank struct {
	Name        string
	Level       int
	Threshold   int
	Infinite    bool
	Permissions []string
}

// Catalog is the immutable, ordered rank table. It is loaded once at
// startup and shared by reference; all lookups are read-only.
type Catalog struct {
	ordered []*Rank
	byName  map[string]*Rank
	grants  map[string]map[string]bool
}

// Load validates the rank table and builds the catalog. Ranks may be given
// in any order; they are sorted most senior first. Validation rejects:
// duplicate names or levels, zero or multiple infinite ranks, an infinite
// rank that is not the most senior, thresholds that are not strictly
// decreasing with seniority, a least senior threshold other than 0, and
// unknown capability names.
func Load(ranks []Rank) (*Catalog, error) {
	if len(ranks) == 0 {
		return nil, errors.New("rank catalog is empty")
	}

	sorted := make([]*Rank, len(ranks))
	for i := range ranks {
		r := ranks[i]
		sorted[i] = &r
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Level > sorted[j].Level
	})

	c := &Catalog{
		ordered: sorted,
		byName:  make(map[string]*Rank, len(sorted)),
		grants:  make(map[string]map[string]bool, len(sorted)),
	}

	infiniteCount := 0
	for i, r := range sorted {
		if r.Name == "" {
			return nil, errors.New("rank with empty name")
		}
		if _, exists := c.byName[r.Name]; exists {
			return nil, fmt.Errorf("duplicate rank name: %s", r.Name)
		}
		if i > 0 && sorted[i-1].Level == r.Level {
			return nil, fmt.Errorf("duplicate rank level: %d", r.Level)
		}
		if r.Infinite {
			infiniteCount++
			if i != 0 {
				return nil, fmt.Errorf("infinite threshold on non-top rank: %s", r.Name)
			}
		} else {
			if r.Threshold < 0 {
				return nil, fmt.Errorf("negative threshold on rank: %s", r.Name)
			}
			// Strictly decreasing below the top rank; also rejects duplicates.
			if i > 0 && !sorted[i-1].Infinite && sorted[i-1].Threshold <= r.Threshold {
				return nil, fmt.Errorf("threshold not strictly decreasing at rank: %s", r.Name)
			}
		}

		grants := make(map[string]bool, len(r.Permissions))
		for _, p := range r.Permissions {
			if !types.IsValidCapability(p) {
				return nil, fmt.Errorf("unknown capability %q on rank %s", p, r.Name)
			}
			grants[p] = true
		}

		c.byName[r.Name] = r
		c.grants[r.Name] = grants
	}

	if infiniteCount != 1 {
		return nil, fmt.Errorf("catalog must have exactly one infinite rank, got %d", infiniteCount)
	}
	least := sorted[len(sorted)-1]
	if least.Infinite || least.Threshold != 0 {
		return nil, errors.New("least senior rank must have threshold 0")
	}

	return c, nil
}

// ByName looks up a rank by its unique name.
func (c *Catalog) ByName(name string) (*Rank, error) {
	r, ok := c.byName[name]
	if !ok {
		return nil, ErrUnknownRank
	}
	return r, nil
}

// Ordered returns all ranks ordered most senior first.
func (c *Catalog) Ordered() []*Rank {
	out := make([]*Rank, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// PermissionsOf returns the capability grants of the named rank.
func (c *Catalog) PermissionsOf(name string) ([]string, error) {
	r, err := c.ByName(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(r.Permissions))
	copy(out, r.Permissions)
	return out, nil
}

// Has reports whether the named rank holds the capability. Grants are flat
// and hand-authored per rank; seniority never implies a junior rank's
// capabilities.
func (c *Catalog) Has(name, capability string) bool {
	grants, ok := c.grants[name]
	if !ok {
		return false
	}
	return grants[capability]
}

// Resolve maps a point total to the rank whose threshold is the highest one
// the total still meets. Scans most senior to least senior; the threshold-0
// fallback makes the function total. The infinite top rank is skipped: it
// is held by assignment, not earned by points.
func (c *Catalog) Resolve(points int) *Rank {
	for _, r := range c.ordered {
		if r.Infinite {
			continue
		}
		if points >= r.Threshold {
			return r
		}
	}
	return c.ordered[len(c.ordered)-1]
}

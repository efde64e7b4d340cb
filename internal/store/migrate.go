package store

import (
	"github.com/google/uuid"

	"github.com/wildstyl3r/cowan/internal/catalog"
	"github.com/wildstyl3r/cowan/internal/grid"
	"github.com/wildstyl3r/cowan/internal/synth"
)

// migrateState fills the fields a version-1 state did not have.
func migrateState(s *synth.State, version int) {
	if s == nil {
		return
	}
	switch version {
	case 1:
		if s.Ratio == nil {
			s.Ratio = map[string]float64{}
		}
		if len(s.Active) != len(s.Ions) {
			s.Active = make([]bool, len(s.Ions))
			for i := range s.Active {
				s.Active[i] = true
			}
		}
		if s.Contributions == nil && s.Intensity != nil {
			s.Contributions = make([][]float64, len(s.Ions))
		}
		s.Grouped = false
		s.Threaded = false
		s.Arrays = nil
		s.ArrayContributions = nil
	}
}

func migrateGrid(g *grid.Grid, version int) {
	switch version {
	case 1:
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if g.Cells == nil {
			g.Cells = map[grid.Key]*synth.State{}
		}
	}
	for _, s := range g.Cells {
		migrateState(s, version)
	}
}

func migrateCatalog(c *catalog.Catalog, version int) {
	if c.Entries == nil {
		c.Entries = map[catalog.Key]*synth.State{}
	}
	for _, s := range c.Entries {
		migrateState(s, version)
	}
}

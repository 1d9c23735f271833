// Package schedule orders race identifiers by the season calendar.
package schedule

import (
	"sort"

	"github.com/okian/bgxboard/internal/domain/model"
)

// DefaultRaces is the 2025 calendar, in race order.
var DefaultRaces = []string{
	"vitosha",
	"plovdiv",
	"veliko_tarnovo",
	"bansko",
	"shumen",
	"varna",
	"stara_zagora",
	"sofia_final",
}

// Orderer sorts race identifiers by a fixed calendar. Identifiers missing
// from the calendar sort after every known race, keeping encounter order.
// An Orderer is immutable and safe for concurrent use.
type Orderer struct {
	position map[model.RaceID]int
	races    []model.RaceID
}

// New builds an Orderer from calendar-ordered slugs. Duplicate slugs keep
// their first position.
func New(slugs []string) *Orderer {
	o := &Orderer{
		position: make(map[model.RaceID]int, len(slugs)),
		races:    make([]model.RaceID, 0, len(slugs)),
	}
	for _, s := range slugs {
		id := model.RaceID(s)
		if _, dup := o.position[id]; dup {
			continue
		}
		o.position[id] = len(o.races)
		o.races = append(o.races, id)
	}
	return o
}

// Races returns the calendar.
func (o *Orderer) Races() []model.RaceID {
	out := make([]model.RaceID, len(o.races))
	copy(out, o.races)
	return out
}

// Position reports the calendar index of id.
func (o *Orderer) Position(id model.RaceID) (int, bool) {
	p, ok := o.position[id]
	return p, ok
}

// Order returns a new slice with ids in calendar order. The input is not modified.
func (o *Orderer) Order(ids []model.RaceID) []model.RaceID {
	out := make([]model.RaceID, len(ids))
	copy(out, ids)

	unknown := len(o.races)
	rank := func(id model.RaceID) int {
		if p, ok := o.position[id]; ok {
			return p
		}
		return unknown
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// Package model contains domain models passed between layers.
package model

// RaceID is the stable slug naming one race of the season, e.g. "veliko_tarnovo".
type RaceID string

// RiderResult is one rider's standing within one category.
//
// Optional values use pointers: nil means the source carried no value,
// which is distinct from a present zero.
type RiderResult struct {
	RaceNumber         int
	FirstName          string
	LastName           string
	FinalPosition      int
	TotalPoints        float64
	RacesParticipated  int
	BestPosition       int
	WorstResultDropped *float64
	WorstRace          *RaceID
	// PerRaceScore has exactly one key per race of the category; a nil
	// value means the rider did not score in that race.
	PerRaceScore map[RaceID]*float64
}

// FullName returns "<first> <last>".
func (r RiderResult) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

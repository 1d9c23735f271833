// Package leaderboard projects category results into a display-ready view.
package leaderboard

import (
	"math"
	"sort"
	"strconv"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/internal/domain/results"
	"github.com/okian/bgxboard/internal/domain/types"
)

// DefaultTopScore is the highest per-race award in the points scheme.
const DefaultTopScore = 25

// RaceHeader names one race column.
type RaceHeader struct {
	ID   model.RaceID `json:"id"`
	Name string       `json:"name"`
}

// RaceScore is one rider's classified result in one race.
type RaceScore struct {
	Race    model.RaceID `json:"race"`
	Class   ScoreClass   `json:"class"`
	Display string       `json:"display"`
}

// Row is one rider's presentation record.
type Row struct {
	FinalPosition      int         `json:"final_position"`
	Badge              BadgeTier   `json:"badge"`
	RaceNumber         string      `json:"race_number"`
	Name               string      `json:"name"`
	TotalPoints        float64     `json:"total_points"`
	TotalPointsDisplay string      `json:"total_points_display"`
	RacesParticipated  int         `json:"races_participated"`
	BestPosition       int         `json:"best_position"`
	WorstDropped       string      `json:"worst_dropped"`
	HasWorstDropped    bool        `json:"has_worst_dropped"`
	WorstRace          string      `json:"worst_race"`
	HasWorstRace       bool        `json:"has_worst_race"`
	Scores             []RaceScore `json:"scores"`
}

// View is the leaderboard of one category.
type View struct {
	Category     string       `json:"category"`
	CategoryName string       `json:"category_name"`
	Empty        bool         `json:"empty"`
	TotalRiders  int          `json:"total_riders"`
	TotalRaces   int          `json:"total_races"`
	Races        []RaceHeader `json:"races"`
	Rows         []Row        `json:"rows"`
}

// Projector turns CategoryResultSets into Views. It is stateless after
// construction and safe for concurrent use.
type Projector struct {
	topScore   float64
	categories types.Categories
}

// NewProjector creates a Projector with configuration options.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{
		topScore:   DefaultTopScore,
		categories: types.DefaultCategories(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Empty returns the neutral view for a category without results.
func (p *Projector) Empty(category string) View {
	v := View{
		Empty: true,
		Races: []RaceHeader{},
		Rows:  []Row{},
	}
	if category != "" {
		v.Category = category
		v.CategoryName = p.categories.Name(category)
	}
	return v
}

// Project builds the view for set. A nil set yields the empty view.
func (p *Projector) Project(set *results.CategoryResultSet) View {
	if set == nil {
		return p.Empty("")
	}

	races := set.Races()
	riders := set.Riders()

	v := View{
		Category:     set.Category(),
		CategoryName: p.categories.Name(set.Category()),
		Empty:        len(riders) == 0,
		TotalRiders:  len(riders),
		TotalRaces:   len(races),
		Races:        make([]RaceHeader, len(races)),
		Rows:         make([]Row, 0, len(riders)),
	}
	for i, id := range races {
		v.Races[i] = RaceHeader{ID: id, Name: FormatRaceName(id)}
	}

	// Positions come ranked upstream; equal positions keep source order.
	sort.SliceStable(riders, func(i, j int) bool {
		return riders[i].FinalPosition < riders[j].FinalPosition
	})
	for _, r := range riders {
		v.Rows = append(v.Rows, p.row(r, races))
	}
	return v
}

// Classify returns the display class of a single race score.
func (p *Projector) Classify(score *float64) ScoreClass {
	switch {
	case score == nil || math.IsNaN(*score) || *score <= 0:
		return ScoreNone
	case *score >= p.topScore:
		return ScoreTop
	default:
		return ScoreStandard
	}
}

func (p *Projector) row(r model.RiderResult, races []model.RaceID) Row {
	row := Row{
		FinalPosition:      r.FinalPosition,
		Badge:              Badge(r.FinalPosition),
		RaceNumber:         strconv.Itoa(r.RaceNumber),
		Name:               r.FullName(),
		TotalPoints:        r.TotalPoints,
		TotalPointsDisplay: FormatPoints(r.TotalPoints),
		RacesParticipated:  r.RacesParticipated,
		BestPosition:       r.BestPosition,
		WorstDropped:       Placeholder,
		WorstRace:          Placeholder,
		Scores:             make([]RaceScore, len(races)),
	}
	if r.WorstResultDropped != nil && !math.IsNaN(*r.WorstResultDropped) {
		row.WorstDropped = FormatPoints(*r.WorstResultDropped)
		row.HasWorstDropped = true
	}
	if r.WorstRace != nil && *r.WorstRace != "" {
		row.WorstRace = FormatRaceName(*r.WorstRace)
		row.HasWorstRace = true
	}
	for i, id := range races {
		score := r.PerRaceScore[id]
		class := p.Classify(score)
		display := Placeholder
		if class != ScoreNone {
			display = FormatPoints(*score)
		}
		row.Scores[i] = RaceScore{Race: id, Class: class, Display: display}
	}
	return row
}

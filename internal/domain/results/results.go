// Package results turns raw category result rows into typed rider standings.
package results

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/internal/domain/schedule"
)

// Source column names.
const (
	ColFinalPosition      = "FinalPosition"
	ColRaceNumber         = "RaceNumber"
	ColFirstName          = "FirstName"
	ColLastName           = "LastName"
	ColTotalPoints        = "TotalPoints"
	ColRacesParticipated  = "RacesParticipated"
	ColBestPosition       = "BestPosition"
	ColWorstResultDropped = "WorstResultDropped"
	ColWorstRace          = "WorstRace"

	DefaultRacePrefix = "Race_"
)

// RawRow maps column name to the raw cell text.
type RawRow map[string]string

// Table is one category's raw source: the header in source order and its rows.
type Table struct {
	Columns []string
	Rows    []RawRow
}

// CategoryResultSet is the typed, immutable form of one category's results.
// Rider order is the source order; race order follows the calendar.
type CategoryResultSet struct {
	category string
	races    []model.RaceID
	riders   []model.RiderResult
	skipped  []RowError
}

// Category returns the category key.
func (s *CategoryResultSet) Category() string { return s.category }

// Races returns the race identifiers in calendar order.
func (s *CategoryResultSet) Races() []model.RaceID {
	out := make([]model.RaceID, len(s.races))
	copy(out, s.races)
	return out
}

// Riders returns the rider results in source order.
func (s *CategoryResultSet) Riders() []model.RiderResult {
	out := make([]model.RiderResult, len(s.riders))
	copy(out, s.riders)
	return out
}

// Skipped returns the rows dropped as malformed.
func (s *CategoryResultSet) Skipped() []RowError {
	out := make([]RowError, len(s.skipped))
	copy(out, s.skipped)
	return out
}

// Len returns the number of riders.
func (s *CategoryResultSet) Len() int { return len(s.riders) }

// Builder builds CategoryResultSets. It holds no per-request state.
type Builder struct {
	orderer    *schedule.Orderer
	racePrefix string
}

// NewBuilder creates a Builder; without options it uses the default calendar.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		orderer:    schedule.New(schedule.DefaultRaces),
		racePrefix: DefaultRacePrefix,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build normalizes a category table. A nil or row-less table yields ErrNotFound.
// Malformed rows are skipped and reported through Skipped.
func (b *Builder) Build(category string, table *Table) (*CategoryResultSet, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, category)
	}

	set := &CategoryResultSet{
		category: category,
		races:    b.orderer.Order(b.raceColumns(table.Columns)),
		riders:   make([]model.RiderResult, 0, len(table.Rows)),
	}
	for i, row := range table.Rows {
		rider, err := b.parseRow(row, set.races)
		if err != nil {
			err.Index = i
			set.skipped = append(set.skipped, *err)
			continue
		}
		set.riders = append(set.riders, rider)
	}
	return set, nil
}

// RaceID maps a race column name or a WorstRace value to its identifier.
func (b *Builder) RaceID(column string) model.RaceID {
	return model.RaceID(strings.TrimPrefix(strings.TrimSpace(column), b.racePrefix))
}

func (b *Builder) raceColumns(columns []string) []model.RaceID {
	seen := make(map[model.RaceID]bool, len(columns))
	var out []model.RaceID
	for _, c := range columns {
		if !strings.HasPrefix(c, b.racePrefix) || len(c) == len(b.racePrefix) {
			continue
		}
		id := b.RaceID(c)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (b *Builder) parseRow(row RawRow, races []model.RaceID) (model.RiderResult, *RowError) {
	var r model.RiderResult
	var err error

	fail := func(col string, e error) (model.RiderResult, *RowError) {
		return model.RiderResult{}, &RowError{Column: col, Err: e}
	}

	if r.FinalPosition, err = positiveInt(row[ColFinalPosition]); err != nil {
		return fail(ColFinalPosition, err)
	}
	if r.RaceNumber, err = integer(row[ColRaceNumber]); err != nil {
		return fail(ColRaceNumber, err)
	}
	r.FirstName = strings.TrimSpace(row[ColFirstName])
	r.LastName = strings.TrimSpace(row[ColLastName])
	if r.TotalPoints, err = nonNegative(row[ColTotalPoints]); err != nil {
		return fail(ColTotalPoints, err)
	}
	if r.RacesParticipated, err = integer(row[ColRacesParticipated]); err != nil || r.RacesParticipated < 0 {
		if err == nil {
			err = fmt.Errorf("negative value %d", r.RacesParticipated)
		}
		return fail(ColRacesParticipated, err)
	}
	if r.BestPosition, err = positiveInt(row[ColBestPosition]); err != nil {
		return fail(ColBestPosition, err)
	}
	if r.WorstResultDropped, err = optionalFloat(row[ColWorstResultDropped]); err != nil {
		return fail(ColWorstResultDropped, err)
	}
	if v := row[ColWorstRace]; !isBlank(v) {
		id := b.RaceID(v)
		r.WorstRace = &id
	}

	r.PerRaceScore = make(map[model.RaceID]*float64, len(races))
	for _, id := range races {
		col := b.racePrefix + string(id)
		score, err := optionalFloat(row[col])
		if err == nil && score != nil && *score < 0 {
			err = fmt.Errorf("negative score %v", *score)
		}
		if err != nil {
			return fail(col, err)
		}
		r.PerRaceScore[id] = score
	}
	return r, nil
}

// isBlank reports whether a cell carries no value. Exports of missing
// numbers show up either empty or as NaN.
func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

func number(s string) (float64, error) {
	if isBlank(s) {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %q: infinite value", s)
	}
	return v, nil
}

// integer accepts whole numbers written either as "3" or "3.0".
func integer(s string) (int, error) {
	v, err := number(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("parse %q: not a whole number", s)
	}
	if v < math.MinInt || v >= math.MaxInt {
		return 0, fmt.Errorf("parse %q: out of range", s)
	}
	return int(v), nil
}

func positiveInt(s string) (int, error) {
	v, err := integer(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("value %d must be positive", v)
	}
	return v, nil
}

func nonNegative(s string) (float64, error) {
	v, err := number(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("value %v must not be negative", v)
	}
	return v, nil
}

func optionalFloat(s string) (*float64, error) {
	if isBlank(s) {
		return nil, nil
	}
	v, err := number(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

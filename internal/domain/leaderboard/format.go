package leaderboard

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/internal/domain/results"
)

// Placeholder is shown wherever a value is absent.
const Placeholder = "—"

// FormatRaceName turns a race slug or column name into a display name:
// "veliko_tarnovo" and "Race_veliko_tarnovo" both give "Veliko Tarnovo".
func FormatRaceName(id model.RaceID) string {
	slug := strings.TrimPrefix(strings.TrimSpace(string(id)), results.DefaultRacePrefix)
	s := strings.TrimSpace(strings.ReplaceAll(slug, "_", " "))
	// Casers keep state; one per call.
	return cases.Title(language.Und).String(s)
}

// FormatPoints renders a point value without decimals, rounding half to even.
func FormatPoints(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// Package analytics summarizes recorded page views.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/internal/domain/types"
)

// DefaultRecentLimit is the length of the recent activity list.
const DefaultRecentLimit = 20

// Share is a count with its share of a denominator.
type Share struct {
	Key          string  `json:"key"`
	Name         string  `json:"name,omitempty"`
	Count        int     `json:"count"`
	Percent      float64 `json:"percent"`
	PercentLabel string  `json:"percent_label"`
}

// Activity is one entry of the recent activity list.
type Activity struct {
	Timestamp    string           `json:"timestamp"`
	Display      string           `json:"display"`
	Page         model.Page       `json:"page"`
	Category     string           `json:"category,omitempty"`
	CategoryName string           `json:"category_name,omitempty"`
	DeviceType   model.DeviceType `json:"device_type"`
}

// View is a full visit analytics snapshot.
type View struct {
	TotalVisits int        `json:"total_visits"`
	HomeVisits  int        `json:"home_visits"`
	Pages       []Share    `json:"pages"`
	Devices     []Share    `json:"devices"`
	Categories  []Share    `json:"categories"`
	Recent      []Activity `json:"recent"`
}

// Aggregator computes Views. It keeps no state between calls.
type Aggregator struct {
	recentLimit int
	categories  types.Categories
}

// NewAggregator creates an Aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		recentLimit: DefaultRecentLimit,
		categories:  types.DefaultCategories(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate recomputes the analytics view from a snapshot of all events.
// The snapshot is not modified.
func (a *Aggregator) Aggregate(events []model.VisitEvent) View {
	total := len(events)
	pages := make(map[string]int, len(model.Pages))
	devices := make(map[string]int, len(model.DeviceTypes))
	categories := make(map[string]int)
	home := 0

	for _, e := range events {
		pages[string(e.Page)]++
		devices[string(e.Device())]++
		if e.Page != model.PageHome {
			continue
		}
		home++
		if e.Category != "" {
			categories[e.Category]++
		}
	}

	v := View{
		TotalVisits: total,
		HomeVisits:  home,
		Pages:       make([]Share, 0, len(pages)),
		Devices:     make([]Share, 0, len(model.DeviceTypes)),
		Categories:  make([]Share, 0, len(categories)),
		Recent:      a.recent(events),
	}

	for _, p := range orderedKeys(pages, pageKeys()) {
		v.Pages = append(v.Pages, share(p, "", pages[p], total))
	}
	for _, d := range model.DeviceTypes {
		v.Devices = append(v.Devices, share(string(d), "", devices[string(d)], total))
	}
	for key, n := range categories {
		v.Categories = append(v.Categories, share(key, a.categories.Name(key), n, home))
	}
	sort.Slice(v.Categories, func(i, j int) bool {
		if v.Categories[i].Count != v.Categories[j].Count {
			return v.Categories[i].Count > v.Categories[j].Count
		}
		return v.Categories[i].Key < v.Categories[j].Key
	})
	return v
}

func (a *Aggregator) recent(events []model.VisitEvent) []Activity {
	sorted := make([]model.VisitEvent, len(events))
	copy(sorted, events)
	// ISO-8601 strings of one format compare chronologically.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if len(sorted) > a.recentLimit {
		sorted = sorted[:a.recentLimit]
	}

	out := make([]Activity, len(sorted))
	for i, e := range sorted {
		out[i] = Activity{
			Timestamp:  e.Timestamp,
			Display:    FormatTimestamp(e.Timestamp),
			Page:       e.Page,
			Category:   e.Category,
			DeviceType: e.Device(),
		}
		if e.Category != "" {
			out[i].CategoryName = a.categories.Name(e.Category)
		}
	}
	return out
}

// Percent returns count as a percentage of total, or 0 when total is 0.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}

// PercentLabel renders the percentage rounded half-up to one decimal.
func PercentLabel(count, total int) string {
	if total <= 0 {
		return "0.0"
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		StringFixed(1)
}

func share(key, name string, count, total int) Share {
	return Share{
		Key:          key,
		Name:         name,
		Count:        count,
		Percent:      Percent(count, total),
		PercentLabel: PercentLabel(count, total),
	}
}

func pageKeys() []string {
	keys := make([]string, len(model.Pages))
	for i, p := range model.Pages {
		keys[i] = string(p)
	}
	return keys
}

// orderedKeys returns known first, then any other keys of counts sorted.
func orderedKeys(counts map[string]int, known []string) []string {
	out := append([]string(nil), known...)
	seen := make(map[string]bool, len(known))
	for _, k := range known {
		seen[k] = true
	}
	var extra []string
	for k := range counts {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// DefaultHorizonMonths bounds how far the timeline projects.
const DefaultHorizonMonths = 3

// decayFactor applies diminishing returns to each successive change.
const decayFactor = 0.9

// TimelineSimulator projects month-by-month score improvement from a
// recommendation sequence.
type TimelineSimulator struct {
	currentScore float64
}

func NewTimelineSimulator(currentScore float64) *TimelineSimulator {
	return &TimelineSimulator{currentScore: currentScore}
}

// Simulate applies each planned recommendation with diminishing returns,
// one per month, capped at 100. The output sequence never decreases.
func (s *TimelineSimulator) Simulate(planned []models.Recommendation, horizonMonths int) *models.TimelineProjection {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	if len(planned) > horizonMonths {
		planned = planned[:horizonMonths]
	}

	timeline := []models.TimelineEntry{
		{Month: 0, Score: round1(s.currentScore), Changes: "Baseline"},
	}

	score := s.currentScore
	effortPoints := 0
	for i, rec := range planned {
		boost := rec.ImpactPoints * math.Pow(decayFactor, float64(i))
		score = math.Min(100, score+boost)
		effortPoints += effortWeight(rec.Effort)

		timeline = append(timeline, models.TimelineEntry{
			Month:   i + 1,
			Score:   round1(score),
			Changes: rec.Action,
		})
	}

	return &models.TimelineProjection{
		Timeline:         timeline,
		FinalScore:       round1(score),
		TotalImprovement: round1(score - s.currentScore),
		HorizonMonths:    len(planned),
		EffortLevel:      effortLevel(effortPoints),
	}
}

func effortWeight(effort string) int {
	switch effort {
	case "Low":
		return 1
	case "High":
		return 3
	default:
		return 2
	}
}

func effortLevel(points int) string {
	switch {
	case points > 8:
		return models.PriorityHigh
	case points > 4:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// ImprovementSimulator projects the score impact of a caller-supplied
// hypothetical change-set instead of derived recommendations.
type ImprovementSimulator struct {
	brandName    string
	currentScore float64
}

func NewImprovementSimulator(brandName string, currentScore float64) *ImprovementSimulator {
	return &ImprovementSimulator{brandName: brandName, currentScore: currentScore}
}

// plannedChange is one change with its impact heuristic applied.
type plannedChange struct {
	label string
	boost float64
}

// Simulate estimates per-change visibility boosts from the gap profile of
// the current results and projects them as a timeline.
func (s *ImprovementSimulator) Simulate(changes models.ChangeSet, results []*models.ProviderResult) *models.TimelineProjection {
	themes := missingThemes(results)
	planned := s.assessChanges(changes, themes)

	timeline := []models.TimelineEntry{
		{Month: 0, Score: round1(s.currentScore), Changes: "Baseline"},
	}

	score := s.currentScore
	for i, change := range planned {
		boost := change.boost * math.Pow(decayFactor, float64(i))
		score = math.Min(100, score+boost)
		timeline = append(timeline, models.TimelineEntry{
			Month:   i + 1,
			Score:   round1(score),
			Changes: change.label,
		})
	}

	return &models.TimelineProjection{
		Timeline:         timeline,
		FinalScore:       round1(score),
		TotalImprovement: round1(score - s.currentScore),
		HorizonMonths:    len(planned),
		EffortLevel:      effortLevel(len(planned) * 2),
		Confidence:       s.confidence(changes),
	}
}

// missingThemes profiles which themes dominate the brand's non-mention
// queries.
func missingThemes(results []*models.ProviderResult) map[string]int {
	themes := map[string]int{}
	themeKeywords := map[string][]string{
		"pricing":        {"cheap", "affordable", "budget", "price"},
		"features":       {"feature", "option", "variety"},
		"trust":          {"trust", "review", "reliable", "popular"},
		"availability":   {"delivery", "shipping", "fast", "available"},
		"quality":        {"best", "quality", "premium"},
		"sustainability": {"eco", "organic", "sustainable"},
	}

	for _, r := range results {
		if r.Mentioned {
			continue
		}
		queryLower := strings.ToLower(r.QueryText)
		for theme, keywords := range themeKeywords {
			if matchesAny(queryLower, keywords) {
				themes[theme]++
			}
		}
	}
	return themes
}

func (s *ImprovementSimulator) assessChanges(changes models.ChangeSet, themes map[string]int) []plannedChange {
	var planned []plannedChange

	if changes.NewTagline != "" {
		planned = append(planned, plannedChange{
			label: fmt.Sprintf("Tagline update: %q", changes.NewTagline),
			boost: 6.5 * 1.5,
		})
	}
	if len(changes.NewKeywords) > 0 {
		impact := math.Min(10, float64(len(changes.NewKeywords))*1.5)
		planned = append(planned, plannedChange{
			label: fmt.Sprintf("SEO keywords: %s", joinCapped(changes.NewKeywords, 3)),
			boost: impact * 2.0,
		})
	}
	if len(changes.PageUpdates) > 0 {
		impact := math.Min(10, float64(len(changes.PageUpdates))*2.5)
		planned = append(planned, plannedChange{
			label: fmt.Sprintf("Content pages: %s", joinCapped(changes.PageUpdates, 2)),
			boost: impact * 1.8,
		})
	}
	if len(changes.NewFeatures) > 0 {
		impact := math.Min(10, float64(len(changes.NewFeatures))*2+float64(themes["features"])*0.5)
		planned = append(planned, plannedChange{
			label: fmt.Sprintf("New features: %s", joinCapped(changes.NewFeatures, 3)),
			boost: impact * 1.2,
		})
	}
	if changes.PricingStrategy != "" {
		impact := 5.0
		if themes["pricing"] > 5 {
			impact = 8.0
		}
		planned = append(planned, plannedChange{
			label: fmt.Sprintf("Pricing strategy: %s", changes.PricingStrategy),
			boost: impact * 1.3,
		})
	}

	return planned
}

// confidence reflects how much of the gap profile the change-set covers.
func (s *ImprovementSimulator) confidence(changes models.ChangeSet) string {
	count := 0
	if changes.NewTagline != "" {
		count++
	}
	if len(changes.NewFeatures) > 0 {
		count++
	}
	if len(changes.NewKeywords) > 0 {
		count++
	}
	if len(changes.PageUpdates) > 0 {
		count++
	}
	if changes.PricingStrategy != "" {
		count++
	}

	coverage := float64(count) / 6.0
	switch {
	case coverage > 0.7:
		return "High (75-90%)"
	case coverage > 0.4:
		return "Medium (60-75%)"
	default:
		return "Low (40-60%)"
	}
}

func joinCapped(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

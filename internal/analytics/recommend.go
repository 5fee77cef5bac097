package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// RecommendationEngine merges the other analyzers' findings into a
// prioritized action list.
type RecommendationEngine struct {
	brandName string
	industry  string
}

func NewRecommendationEngine(brandName, industry string) *RecommendationEngine {
	return &RecommendationEngine{brandName: brandName, industry: industry}
}

// Generate derives prioritized, deduplicated recommendations from the gap,
// competitor, and difficulty artifacts plus the raw result set.
func (e *RecommendationEngine) Generate(
	gap *models.GapReport,
	competitors *models.CompetitorReport,
	difficulty *models.DifficultyReport,
	results []*models.ProviderResult,
) []models.Recommendation {
	var recs []models.Recommendation

	// Quick wins from easy queries the brand misses
	if difficulty != nil && difficulty.EasyWinCount > 0 {
		var examples []string
		for i, q := range difficulty.EasyWins {
			if i == 3 {
				break
			}
			query := q.Query
			if len(query) > 40 {
				query = query[:40]
			}
			examples = append(examples, query)
		}
		recs = append(recs, models.Recommendation{
			Priority:       models.PriorityHigh,
			Category:       "Quick Wins",
			Action:         fmt.Sprintf("Create targeted content for %d low-competition queries", difficulty.EasyWinCount),
			Details:        fmt.Sprintf("Examples: %s...", strings.Join(examples, ", ")),
			ExpectedImpact: "+15-25% visibility in these segments",
			ImpactPoints:   20,
			Effort:         "Low",
			Timeframe:      "1-2 weeks",
		})
	}

	// Biggest content gap
	if gap != nil && len(gap.TopMissingThemes) > 0 {
		top := gap.TopMissingThemes[0]
		recs = append(recs, models.Recommendation{
			Priority:       models.PriorityHigh,
			Category:       "Content Gap",
			Action:         fmt.Sprintf("Create '%s' focused landing pages", top.Theme),
			Details:        fmt.Sprintf("Competitors emphasize %s in %d queries where you're absent. Add 3-5 pages highlighting this aspect.", top.Theme, top.Frequency),
			ExpectedImpact: fmt.Sprintf("+%d%% visibility", top.Frequency*2),
			ImpactPoints:   float64(top.Frequency * 2),
			Effort:         "Medium",
			Timeframe:      "2-4 weeks",
		})
	}

	// Learn from the top competitor
	if competitors != nil && len(competitors.Insights) > 0 {
		top := competitors.Insights[0]
		details := top.StrategicInsight
		if len(details) > 150 {
			details = details[:150]
		}
		recs = append(recs, models.Recommendation{
			Priority:       models.PriorityMedium,
			Category:       "Competitive Strategy",
			Action:         fmt.Sprintf("Adopt %s's positioning strategy", top.Name),
			Details:        details,
			ExpectedImpact: "+10-15% visibility",
			ImpactPoints:   12,
			Effort:         "High",
			Timeframe:      "1-2 months",
		})
	}

	// Broad SEO push when visibility is poor overall
	if len(results) > 0 {
		nonMentioned := 0
		for _, r := range results {
			if !r.Mentioned {
				nonMentioned++
			}
		}
		if float64(nonMentioned)/float64(len(results))*100 > 50 {
			recs = append(recs, models.Recommendation{
				Priority:       models.PriorityHigh,
				Category:       "SEO Optimization",
				Action:         "Implement AI-specific SEO best practices",
				Details:        "Add structured data, FAQ schema, comparison tables, and customer testimonials. AI models heavily weight these signals.",
				ExpectedImpact: "+20-30% overall visibility",
				ImpactPoints:   25,
				Effort:         "Medium",
				Timeframe:      "3-4 weeks",
			})
		}
	}

	// Always: authority signals
	recs = append(recs, models.Recommendation{
		Priority:       models.PriorityMedium,
		Category:       "Trust Building",
		Action:         "Increase trust signals and third-party validation",
		Details:        "Get featured in industry publications, add customer reviews widget, showcase partnerships/certifications prominently.",
		ExpectedImpact: "+10-15% visibility, especially on Claude and Gemini",
		ImpactPoints:   12,
		Effort:         "High",
		Timeframe:      "1-3 months",
	})

	return dedupeAndSort(recs)
}

func dedupeAndSort(recs []models.Recommendation) []models.Recommendation {
	seen := make(map[string]bool)
	out := recs[:0]
	for _, r := range recs {
		if seen[r.Action] {
			continue
		}
		seen[r.Action] = true
		out = append(out, r)
	}

	priorityOrder := map[string]int{models.PriorityHigh: 3, models.PriorityMedium: 2, models.PriorityLow: 1}
	sort.SliceStable(out, func(i, j int) bool {
		if priorityOrder[out[i].Priority] != priorityOrder[out[j].Priority] {
			return priorityOrder[out[i].Priority] > priorityOrder[out[j].Priority]
		}
		return out[i].ImpactPoints > out[j].ImpactPoints
	})
	return out
}

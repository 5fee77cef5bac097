package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

const maxAnalyzedCompetitors = 8

// CompetitorAnalyzer reverse-engineers why competitors get recommended.
type CompetitorAnalyzer struct {
	brandName string
	industry  string
	generator models.TextGenerator
}

// NewCompetitorAnalyzer creates a competitor analyzer. generator may be nil;
// narratives then fall back to templates.
func NewCompetitorAnalyzer(brandName, industry string, generator models.TextGenerator) *CompetitorAnalyzer {
	return &CompetitorAnalyzer{brandName: brandName, industry: industry, generator: generator}
}

// competitorMention is one sighting of a competitor with its query context.
type competitorMention struct {
	query    string
	answer   string
	category string
	rank     *int
}

// Analyze builds per-competitor insights plus landscape patterns.
func (a *CompetitorAnalyzer) Analyze(ctx context.Context, results []*models.ProviderResult) *models.CompetitorReport {
	mentions := extractCompetitorMentions(results)
	if len(mentions) == 0 {
		return &models.CompetitorReport{
			StrategicSummary: "No competitors detected in responses.",
		}
	}

	names := make([]string, 0, len(mentions))
	for name := range mentions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(mentions[names[i]]) != len(mentions[names[j]]) {
			return len(mentions[names[i]]) > len(mentions[names[j]])
		}
		return names[i] < names[j]
	})
	if len(names) > maxAnalyzedCompetitors {
		names = names[:maxAnalyzedCompetitors]
	}

	insights := make([]models.CompetitorInsight, 0, len(names))
	for _, name := range names {
		insights = append(insights, a.insightFor(ctx, name, mentions[name]))
	}

	areas := mostCompetitiveAreas(insights, 5)

	return &models.CompetitorReport{
		TotalCompetitors:     len(mentions),
		Insights:             insights,
		MostCompetitiveAreas: areas,
		StrategicSummary:     a.summarize(insights, areas),
	}
}

func extractCompetitorMentions(results []*models.ProviderResult) map[string][]competitorMention {
	mentions := make(map[string][]competitorMention)
	for _, r := range results {
		for _, comp := range r.Competitors {
			mentions[comp] = append(mentions[comp], competitorMention{
				query:    r.QueryText,
				answer:   r.Answer,
				category: r.Category,
				rank:     r.BrandRank,
			})
		}
	}
	return mentions
}

func (a *CompetitorAnalyzer) insightFor(ctx context.Context, name string, ms []competitorMention) models.CompetitorInsight {
	spread := make(map[string]int)
	for _, m := range ms {
		spread[m.category]++
	}

	strategy := a.strategicInsight(ctx, name, ms)

	return models.CompetitorInsight{
		Name:             name,
		MentionCount:     len(ms),
		AverageRank:      averageRank(ms),
		DominanceAreas:   dominanceAreas(ms),
		CategorySpread:   spread,
		StrategicInsight: strategy,
		KeyStrength:      keyStrength(strategy),
	}
}

func (a *CompetitorAnalyzer) strategicInsight(ctx context.Context, name string, ms []competitorMention) string {
	fallback := fmt.Sprintf("%s appears frequently in %d queries, suggesting strong market presence and brand recognition.", name, len(ms))
	if a.generator == nil {
		return fallback
	}

	var queries []string
	for i, m := range ms {
		if i == 5 {
			break
		}
		queries = append(queries, "- "+m.query)
	}
	var answers []string
	for i, m := range ms {
		if i == 3 {
			break
		}
		answer := m.answer
		if len(answer) > 300 {
			answer = answer[:300]
		}
		answers = append(answers, answer)
	}

	prompt := fmt.Sprintf(`Analyze why "%s" is frequently recommended in the %s industry.

Sample queries where %s appeared:
%s

Sample AI responses:
%s

Identify the KEY strategic advantages that make %s stand out. Focus on:
1. Brand positioning (price, quality, niche)
2. Specific strengths (features, trust signals, SEO)
3. Market advantages

Provide 2-3 concise strategic insights. Be specific and actionable.`,
		name, a.industry, name, strings.Join(queries, "\n"), strings.Join(answers, "\n"), name)

	insight, err := a.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(insight) == "" {
		return fallback
	}
	return strings.TrimSpace(insight)
}

func averageRank(ms []competitorMention) float64 {
	var sum float64
	var count int
	for _, m := range ms {
		if m.rank != nil {
			sum += float64(*m.rank)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round1(sum / float64(count))
}

var dominanceAreaKeywords = []struct {
	area     string
	keywords []string
}{
	{"Budget/Affordability", []string{"cheap", "affordable", "budget", "low cost", "inexpensive"}},
	{"Quality/Premium", []string{"best", "premium", "luxury", "high-quality", "top"}},
	{"Features/Variety", []string{"feature", "option", "variety", "customizable"}},
	{"Speed/Delivery", []string{"fast", "quick", "delivery", "shipping", "express"}},
	{"Trust/Authority", []string{"trusted", "reliable", "review", "rating", "popular"}},
	{"Sustainability", []string{"eco", "organic", "sustainable", "green", "natural"}},
	{"Convenience", []string{"easy", "convenient", "simple", "hassle-free"}},
}

func dominanceAreas(ms []competitorMention) []string {
	var allQueries strings.Builder
	for _, m := range ms {
		allQueries.WriteString(strings.ToLower(m.query))
		allQueries.WriteString(" ")
	}
	text := allQueries.String()

	var areas []string
	for _, da := range dominanceAreaKeywords {
		for _, kw := range da.keywords {
			if strings.Contains(text, kw) {
				areas = append(areas, da.area)
				break
			}
		}
	}
	if len(areas) == 0 {
		return []string{"General Market Presence"}
	}
	return areas
}

var strengthKeywords = []struct {
	strength string
	keywords []string
}{
	{"Pricing", []string{"price", "affordable", "budget", "cheap", "cost"}},
	{"Quality", []string{"quality", "premium", "best", "excellent"}},
	{"Features", []string{"feature", "option", "variety", "selection"}},
	{"Trust", []string{"trust", "reliable", "reputation", "review", "popular"}},
	{"Innovation", []string{"innovative", "technology", "modern", "advanced"}},
	{"Service", []string{"service", "support", "customer", "experience"}},
	{"Availability", []string{"available", "accessible", "coverage", "delivery"}},
}

func keyStrength(strategy string) string {
	lower := strings.ToLower(strategy)
	for _, sk := range strengthKeywords {
		for _, kw := range sk.keywords {
			if strings.Contains(lower, kw) {
				return sk.strength
			}
		}
	}
	return "Brand Authority"
}

func mostCompetitiveAreas(insights []models.CompetitorInsight, n int) []models.CompetitiveArea {
	counts := make(map[string]int)
	for _, ins := range insights {
		for _, area := range ins.DominanceAreas {
			counts[area]++
		}
	}

	areas := make([]models.CompetitiveArea, 0, len(counts))
	for area, count := range counts {
		areas = append(areas, models.CompetitiveArea{Area: area, CompetitorCount: count})
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].CompetitorCount != areas[j].CompetitorCount {
			return areas[i].CompetitorCount > areas[j].CompetitorCount
		}
		return areas[i].Area < areas[j].Area
	})
	if len(areas) > n {
		areas = areas[:n]
	}
	return areas
}

func (a *CompetitorAnalyzer) summarize(insights []models.CompetitorInsight, areas []models.CompetitiveArea) string {
	if len(insights) == 0 {
		return "No competitive insights available."
	}

	top := insights[0]
	topAreas := top.DominanceAreas
	if len(topAreas) > 2 {
		topAreas = topAreas[:2]
	}
	competitiveArea := "general market"
	if len(areas) > 0 {
		competitiveArea = areas[0].Area
	}

	return fmt.Sprintf("%s leads with %d mentions, dominating %s. The most competitive area is %s. %s needs to differentiate in less saturated segments or outcompete in %s.",
		top.Name, top.MentionCount, strings.Join(topAreas, ", "), competitiveArea, a.brandName, competitiveArea)
}

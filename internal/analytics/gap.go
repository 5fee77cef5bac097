package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// themes competitors commonly emphasize in answers the brand missed.
var gapThemes = []string{
	"pricing", "affordability", "budget",
	"quality", "premium", "luxury",
	"availability", "shipping", "delivery",
	"features", "functionality", "options",
	"reviews", "ratings", "trust", "reputation",
	"sustainability", "eco-friendly", "organic",
	"convenience", "ease-of-use", "simple",
	"variety", "selection", "choice",
	"customer service", "support", "warranty",
	"innovation", "technology", "modern",
}

const maxGapReasons = 5

// GapAnalyzer explains the queries where the brand was absent but
// competitors were present.
type GapAnalyzer struct {
	brandName string
	generator models.TextGenerator
}

// NewGapAnalyzer creates a gap analyzer. generator may be nil; reasons then
// fall back to templates.
func NewGapAnalyzer(brandName string, generator models.TextGenerator) *GapAnalyzer {
	return &GapAnalyzer{brandName: brandName, generator: generator}
}

// Analyze builds the gap report from the full result set.
func (a *GapAnalyzer) Analyze(ctx context.Context, results []*models.ProviderResult) *models.GapReport {
	var nonMentions []*models.ProviderResult
	for _, r := range results {
		if !r.Mentioned {
			nonMentions = append(nonMentions, r)
		}
	}

	if len(nonMentions) == 0 {
		return &models.GapReport{
			TotalResults: len(results),
			Summary:      fmt.Sprintf("%s was mentioned in all queries!", a.brandName),
		}
	}

	themeFreq := a.countThemes(nonMentions)
	topThemes := topMissingThemes(themeFreq, 5)

	report := &models.GapReport{
		TotalNonMentions: len(nonMentions),
		TotalResults:     len(results),
		NonMentionRate:   round1(float64(len(nonMentions)) / float64(len(results)) * 100),
		Reasons:          a.generateReasons(ctx, nonMentions),
		TopMissingThemes: topThemes,
	}
	report.Summary = a.summarize(report, topThemes)
	return report
}

func (a *GapAnalyzer) countThemes(nonMentions []*models.ProviderResult) map[string]int {
	freq := make(map[string]int)
	for _, r := range nonMentions {
		answer := strings.ToLower(r.Answer)
		for _, theme := range gapThemes {
			if strings.Contains(answer, theme) {
				freq[theme]++
			}
		}
	}
	return freq
}

func topMissingThemes(freq map[string]int, n int) []models.ThemeGap {
	gaps := make([]models.ThemeGap, 0, len(freq))
	for theme, count := range freq {
		impact := models.PriorityLow
		if count > 5 {
			impact = models.PriorityHigh
		} else if count > 2 {
			impact = models.PriorityMedium
		}
		gaps = append(gaps, models.ThemeGap{Theme: theme, Frequency: count, Impact: impact})
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Frequency != gaps[j].Frequency {
			return gaps[i].Frequency > gaps[j].Frequency
		}
		return gaps[i].Theme < gaps[j].Theme
	})
	if len(gaps) > n {
		gaps = gaps[:n]
	}
	return gaps
}

// generateReasons asks the text generator for a short reason per query group;
// generator failures degrade to a template.
func (a *GapAnalyzer) generateReasons(ctx context.Context, nonMentions []*models.ProviderResult) []models.GapReason {
	groups := make(map[string][]*models.ProviderResult)
	var order []string
	for _, r := range nonMentions {
		if _, ok := groups[r.Category]; !ok {
			order = append(order, r.Category)
		}
		groups[r.Category] = append(groups[r.Category], r)
	}
	sort.Slice(order, func(i, j int) bool {
		if len(groups[order[i]]) != len(groups[order[j]]) {
			return len(groups[order[i]]) > len(groups[order[j]])
		}
		return order[i] < order[j]
	})
	if len(order) > maxGapReasons {
		order = order[:maxGapReasons]
	}

	var reasons []models.GapReason
	for _, category := range order {
		sample := groups[category][0]
		reasons = append(reasons, models.GapReason{
			QueryCategory: category,
			QueryCount:    len(groups[category]),
			Reason:        a.reasonFor(ctx, sample),
			SampleQuery:   sample.QueryText,
		})
	}
	return reasons
}

func (a *GapAnalyzer) reasonFor(ctx context.Context, sample *models.ProviderResult) string {
	fallback := fmt.Sprintf("Competitors dominated this query category. %s may lack visibility or relevant positioning.", a.brandName)
	if a.generator == nil {
		return fallback
	}

	answer := sample.Answer
	if len(answer) > 1000 {
		answer = answer[:1000]
	}
	competitors := sample.Competitors
	if len(competitors) > 5 {
		competitors = competitors[:5]
	}

	prompt := fmt.Sprintf(`Analyze why the brand "%s" was NOT mentioned in this AI response.

Query: %s

AI Response: %s

Competitors Mentioned: %s

Provide a concise, actionable reason (2-3 sentences) explaining:
1. What competitors emphasized that %s likely lacks
2. Specific positioning gap or weakness

Format: Direct, businesslike, actionable.`,
		a.brandName, sample.QueryText, answer, strings.Join(competitors, ", "), a.brandName)

	reason, err := a.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(reason) == "" {
		return fallback
	}
	return strings.TrimSpace(reason)
}

func (a *GapAnalyzer) summarize(report *models.GapReport, themes []models.ThemeGap) string {
	if len(themes) == 0 {
		return fmt.Sprintf("%s appears to have strong visibility. No major gaps detected.", a.brandName)
	}

	names := make([]string, 0, 3)
	for i, t := range themes {
		if i == 3 {
			break
		}
		names = append(names, t.Theme)
	}

	return fmt.Sprintf("%s was not mentioned in %.1f%% of queries. The primary gap is '%s' - competitors consistently emphasize this while your brand positioning may lack clarity in this area. Consider strengthening messaging around %s.",
		a.brandName, report.NonMentionRate, themes[0].Theme, strings.Join(names, ", "))
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

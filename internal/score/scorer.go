package score

import (
	"math"
	"sort"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// Sub-score weights out of 100.
const (
	mentionWeight     = 40.0
	rankWeight        = 30.0
	dominanceWeight   = 20.0
	consistencyWeight = 10.0
)

// Scorer computes the composite visibility score for one brand. Every method
// is a deterministic function of its inputs.
type Scorer struct {
	brandName string
}

func NewScorer(brandName string) *Scorer {
	return &Scorer{brandName: brandName}
}

// Calculate computes the composite score breakdown for a result set.
func (s *Scorer) Calculate(results []*models.ProviderResult) models.ScoreBreakdown {
	if len(results) == 0 {
		return models.ScoreBreakdown{
			Interpretation:     "Minimal Visibility",
			InterpretationNote: "Your brand has very limited presence in AI responses",
		}
	}

	total := len(results)
	mentions := 0
	for _, r := range results {
		if r.Mentioned {
			mentions++
		}
	}

	mentionRate := float64(mentions) / float64(total) * mentionWeight
	rankScore, avgRank := s.rankScore(results)
	dominance := s.competitorDominance(results, mentions)
	consistency := s.modelConsistency(results)

	overall := round2(mentionRate + rankScore + dominance + consistency)
	interpretation, note := Interpret(overall)

	return models.ScoreBreakdown{
		OverallScore:        overall,
		MentionRate:         round2(mentionRate),
		RankScore:           round2(rankScore),
		CompetitorDominance: round2(dominance),
		ModelConsistency:    round2(consistency),
		Mentions:            mentions,
		TotalResults:        total,
		AverageRank:         round2(avgRank),
		Interpretation:      interpretation,
		InterpretationNote:  note,
	}
}

// rankScore degrades linearly from full points at rank 1: rank 5 earns 18,
// rank 11+ earns 0. No ranked mentions earns 0.
func (s *Scorer) rankScore(results []*models.ProviderResult) (float64, float64) {
	var sum float64
	var count int
	for _, r := range results {
		if r.BrandRank != nil {
			sum += float64(*r.BrandRank)
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	avgRank := sum / float64(count)
	score := rankWeight - (avgRank-1)*3
	if score < 0 {
		score = 0
	}
	return score, avgRank
}

// competitorDominance is the brand's mention share against the single most
// mentioned competitor across the same result set. A brand with no competing
// mentions anywhere takes full points; a never-mentioned brand takes zero.
func (s *Scorer) competitorDominance(results []*models.ProviderResult, brandMentions int) float64 {
	if brandMentions == 0 {
		return 0
	}

	top := TopCompetitors(results, 1)
	if len(top) == 0 {
		return dominanceWeight
	}

	topMentions := top[0].Mentions
	share := float64(brandMentions) / float64(brandMentions+topMentions)
	return share * dominanceWeight
}

// modelConsistency rewards low variance in per-provider mention rates.
// Variance spans [0, 0.25]; the penalty factor 40 maps that onto the full
// sub-score range. A single provider takes full points.
func (s *Scorer) modelConsistency(results []*models.ProviderResult) float64 {
	type tally struct{ mentioned, total int }
	perProvider := make(map[string]*tally)
	for _, r := range results {
		t, ok := perProvider[r.Provider]
		if !ok {
			t = &tally{}
			perProvider[r.Provider] = t
		}
		t.total++
		if r.Mentioned {
			t.mentioned++
		}
	}

	var rates []float64
	for _, t := range perProvider {
		if t.total > 0 {
			rates = append(rates, float64(t.mentioned)/float64(t.total))
		}
	}
	if len(rates) <= 1 {
		return consistencyWeight
	}

	var mean float64
	for _, r := range rates {
		mean += r
	}
	mean /= float64(len(rates))

	var variance float64
	for _, r := range rates {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(rates))

	score := consistencyWeight - variance*40
	if score < 0 {
		score = 0
	}
	return score
}

// CategoryBreakdown scores each query category independently.
func (s *Scorer) CategoryBreakdown(results []*models.ProviderResult) map[string]models.ScoreBreakdown {
	groups := make(map[string][]*models.ProviderResult)
	for _, r := range results {
		groups[r.Category] = append(groups[r.Category], r)
	}

	breakdown := make(map[string]models.ScoreBreakdown, len(groups))
	for category, group := range groups {
		breakdown[category] = s.Calculate(group)
	}
	return breakdown
}

// ProviderBreakdown reports per-provider coverage and mention rates.
func (s *Scorer) ProviderBreakdown(results []*models.ProviderResult) []models.ProviderCoverage {
	type tally struct{ total, succeeded, mentions int }
	perProvider := make(map[string]*tally)
	var order []string

	for _, r := range results {
		t, ok := perProvider[r.Provider]
		if !ok {
			t = &tally{}
			perProvider[r.Provider] = t
			order = append(order, r.Provider)
		}
		t.total++
		if r.Success {
			t.succeeded++
		}
		if r.Mentioned {
			t.mentions++
		}
	}
	sort.Strings(order)

	coverage := make([]models.ProviderCoverage, 0, len(order))
	for _, provider := range order {
		t := perProvider[provider]
		pct := 0.0
		if t.total > 0 {
			pct = round2(float64(t.mentions) / float64(t.total) * 100)
		}
		coverage = append(coverage, models.ProviderCoverage{
			Provider:   provider,
			Total:      t.total,
			Succeeded:  t.succeeded,
			Mentions:   t.mentions,
			MentionPct: pct,
		})
	}
	return coverage
}

// TopCompetitors returns the most frequently mentioned competitors across a
// result set, ties broken alphabetically for determinism.
func TopCompetitors(results []*models.ProviderResult, n int) []models.CompetitorCount {
	counts := make(map[string]int)
	for _, r := range results {
		for _, comp := range r.Competitors {
			counts[comp]++
		}
	}

	out := make([]models.CompetitorCount, 0, len(counts))
	for name, mentions := range counts {
		out = append(out, models.CompetitorCount{Name: name, Mentions: mentions})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Interpret maps a composite score onto a human-readable band.
func Interpret(score float64) (string, string) {
	switch {
	case score >= 90:
		return "Dominant Presence", "Your brand consistently appears at the top of AI recommendations"
	case score >= 70:
		return "Strong Visibility", "Your brand is frequently mentioned and well-ranked"
	case score >= 50:
		return "Moderate Visibility", "Your brand appears regularly but with room for improvement"
	case score >= 30:
		return "Low Visibility", "Your brand is rarely mentioned by AI models"
	default:
		return "Minimal Visibility", "Your brand has very limited presence in AI responses"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package analytics

import (
	"fmt"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

const maxEasyWins = 10

var competitiveKeywords = []string{"best", "top", "vs", "comparison", "review"}

// DifficultyAnalyzer scores how hard each query is to win.
type DifficultyAnalyzer struct {
	brandName string
}

func NewDifficultyAnalyzer(brandName string) *DifficultyAnalyzer {
	return &DifficultyAnalyzer{brandName: brandName}
}

// Analyze scores every result and surfaces easy queries the brand is absent
// from as quick wins.
func (a *DifficultyAnalyzer) Analyze(results []*models.ProviderResult) *models.DifficultyReport {
	report := &models.DifficultyReport{
		Distribution: map[string]int{},
	}

	var totalScore int
	for _, r := range results {
		scored := scoreDifficulty(r)
		report.ScoredQueries = append(report.ScoredQueries, scored)
		report.Distribution[scored.Difficulty]++
		totalScore += scored.Score

		if scored.Difficulty == models.DifficultyEasy && !scored.Mentioned {
			report.EasyWinCount++
			if len(report.EasyWins) < maxEasyWins {
				report.EasyWins = append(report.EasyWins, scored)
			}
		}
	}

	if len(results) > 0 {
		report.AverageScore = round1(float64(totalScore) / float64(len(results)))
	}
	return report
}

// scoreDifficulty combines competitor density, brand presence, and query
// competitiveness into a 0-100 score.
func scoreDifficulty(r *models.ProviderResult) models.ScoredQuery {
	score := 0
	var factors []string

	// Competitor count
	compCount := len(r.Competitors)
	switch {
	case compCount > 8:
		score += 40
		factors = append(factors, fmt.Sprintf("%d competitors", compCount))
	case compCount > 4:
		score += 25
		factors = append(factors, fmt.Sprintf("%d competitors", compCount))
	default:
		score += 10
		factors = append(factors, fmt.Sprintf("Only %d competitors", compCount))
	}

	// Brand presence
	if !r.Mentioned {
		score += 30
		factors = append(factors, "Brand absent")
	} else if r.BrandRank != nil && *r.BrandRank > 5 {
		score += 20
		factors = append(factors, fmt.Sprintf("Low rank (#%d)", *r.BrandRank))
	} else if r.BrandRank != nil {
		score += 5
		factors = append(factors, fmt.Sprintf("Good rank (#%d)", *r.BrandRank))
	} else {
		score += 20
		factors = append(factors, "Mentioned but unranked")
	}

	// Query competitiveness
	queryLower := strings.ToLower(r.QueryText)
	hasCompetitiveKw := false
	for _, kw := range competitiveKeywords {
		if strings.Contains(queryLower, kw) {
			hasCompetitiveKw = true
			break
		}
	}
	switch {
	case hasCompetitiveKw:
		score += 30
		factors = append(factors, "High-competition keywords")
	case len(strings.Fields(queryLower)) > 8:
		score += 10
		factors = append(factors, "Niche/specific query")
	default:
		score += 20
		factors = append(factors, "General query")
	}

	level := models.DifficultyEasy
	if score >= 70 {
		level = models.DifficultyHard
	} else if score >= 40 {
		level = models.DifficultyMedium
	}

	return models.ScoredQuery{
		Query:           r.QueryText,
		Difficulty:      level,
		Score:           score,
		Reasoning:       strings.Join(factors, ", "),
		Mentioned:       r.Mentioned,
		CompetitorCount: compCount,
	}
}

package mention

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/brandbeacon/brandbeacon/pkg/models"
)

const (
	fuzzyThreshold  = 80
	sentimentWindow = 200
	maxCompetitors  = 10
)

// Detection is the structured outcome of analyzing one answer.
type Detection struct {
	Mentioned      bool
	Confidence     float64
	MatchType      string
	Rank           *int
	Competitors    []string
	Sentiment      *string
	SentimentScore *float64
}

// Detector analyzes answer text for mentions of one brand. Pure functions
// over text; safe for concurrent use.
type Detector struct {
	brandName  string
	variations []string
}

func NewDetector(brandName string) *Detector {
	return &Detector{
		brandName:  brandName,
		variations: generateVariations(brandName),
	}
}

// generateVariations produces common spellings of a brand name: lowercase,
// suffix-stripped, and de-spaced forms.
func generateVariations(brand string) []string {
	lower := strings.ToLower(brand)
	variations := []string{lower}

	for _, suffix := range []string{" inc.", " llc.", " inc", " llc", " corp", " co", ".com"} {
		if strings.HasSuffix(lower, suffix) {
			clean := strings.TrimSpace(strings.TrimSuffix(lower, suffix))
			if clean != "" && !contains(variations, clean) {
				variations = append(variations, clean)
			}
		}
	}

	noSpace := strings.ReplaceAll(lower, " ", "")
	if !contains(variations, noSpace) {
		variations = append(variations, noSpace)
	}
	return variations
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Analyze runs the full detection pipeline over one answer.
func (d *Detector) Analyze(text string) Detection {
	mentioned, fuzzyScore, matchType := d.DetectMention(text)

	det := Detection{
		Mentioned:   mentioned,
		MatchType:   matchType,
		Competitors: d.ExtractCompetitors(text),
	}

	if mentioned {
		det.Rank = d.ExtractRank(text)
		sentiment := d.analyzeSentiment(text)
		score := sentimentScore(sentiment)
		det.Sentiment = &sentiment
		det.SentimentScore = &score
	}

	det.Confidence = confidence(mentioned, fuzzyScore, det.Rank != nil)
	return det
}

// DetectMention checks for the brand via exact word-boundary match on each
// variation, then fuzzy matching over n-grams of the answer.
func (d *Detector) DetectMention(text string) (bool, float64, string) {
	if text == "" {
		return false, 0, models.MatchNone
	}
	lower := strings.ToLower(text)

	for _, variant := range d.variations {
		pattern := `\b` + regexp.QuoteMeta(variant) + `\b`
		if matched, _ := regexp.MatchString(pattern, lower); matched {
			return true, 1.0, models.MatchExact
		}
	}

	words := strings.Fields(lower)
	n := len(strings.Fields(d.brandName))
	if n < 1 {
		n = 1
	}
	brandLower := strings.ToLower(d.brandName)
	for i := 0; i+n <= len(words); i++ {
		phrase := strings.Join(words[i:i+n], " ")
		if r := ratio(brandLower, phrase); r >= fuzzyThreshold {
			return true, float64(r) / 100, models.MatchFuzzy
		}
	}

	return false, 0, models.MatchNone
}

// ratio is a levenshtein-based similarity percentage between two strings.
func ratio(a, b string) int {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (total - 2*dist) * 100 / total
}

var (
	numberedLineRe = regexp.MustCompile(`(?m)^\s*(\d+)[\.\)]\s*\*?\*?(.+)$`)
	bulletPrefixes = []string{"•", "-", "*", "●"}
)

var ordinals = []struct {
	word string
	rank int
}{
	{"first", 1}, {"second", 2}, {"third", 3}, {"fourth", 4}, {"fifth", 5},
	{"1st", 1}, {"2nd", 2}, {"3rd", 3}, {"4th", 4}, {"5th", 5},
}

// ExtractRank finds the brand's 1-based position in any enumerated list in
// the answer. Returns nil if the brand is not ranked.
func (d *Detector) ExtractRank(text string) *int {
	brandLower := strings.ToLower(d.brandName)

	// Numbered lists: "1. Brand" / "2) Brand"
	for _, m := range numberedLineRe.FindAllStringSubmatch(text, -1) {
		if strings.Contains(strings.ToLower(m[2]), brandLower) {
			rank := atoiSafe(m[1])
			if rank > 0 {
				return &rank
			}
		}
	}

	// Bullet lists: position inferred from order
	rank := 0
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		for _, prefix := range bulletPrefixes {
			if strings.HasPrefix(stripped, prefix) {
				rank++
				if strings.Contains(strings.ToLower(stripped), brandLower) {
					r := rank
					return &r
				}
				break
			}
		}
	}

	// Ordinal phrases: "First: Brand ..."
	for _, ord := range ordinals {
		re := regexp.MustCompile(`(?i)\b` + ord.word + `\b[:\s]+([^\n]+)`)
		if m := re.FindStringSubmatch(text); m != nil {
			if strings.Contains(strings.ToLower(m[1]), brandLower) {
				r := ord.rank
				return &r
			}
		}
	}

	return nil
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n > 1000 {
			return 0
		}
	}
	return n
}

var (
	properNounRe  = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)
	numberedOrgRe = regexp.MustCompile(`\d+[\.\)]\s*\*?\*?([A-Z][a-zA-Z\s]+?)(?:\s*[-–—:]|\n|$)`)
)

var stopWords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"When": true, "Where": true, "What": true, "Which": true, "Here": true,
	"Each": true, "Some": true, "Best": true, "Top": true,
}

// ExtractCompetitors finds organization-like names in the answer, excluding
// the brand itself and generic words. Capped at 10, stable first-seen order.
func (d *Detector) ExtractCompetitors(text string) []string {
	brandLower := strings.ToLower(d.brandName)
	seen := make(map[string]bool)
	var competitors []string

	add := func(name string) {
		name = strings.TrimSpace(name)
		if len(name) <= 3 || strings.ToLower(name) == brandLower || stopWords[name] {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		competitors = append(competitors, name)
	}

	for _, m := range numberedOrgRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range properNounRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	if len(competitors) > maxCompetitors {
		competitors = competitors[:maxCompetitors]
	}
	return competitors
}

var (
	positiveWords = []string{"best", "excellent", "great", "top", "recommended", "popular", "leading", "trusted", "quality", "favorite", "amazing", "outstanding", "perfect", "ideal", "affordable", "fast", "reliable"}
	negativeWords = []string{"however", "but", "expensive", "limited", "lacks", "poor", "disappointing", "avoid", "issue", "problem", "worst", "bad", "overpriced"}
	hesitantWords = []string{"some", "might", "could", "may", "potentially", "sometimes", "depending", "mixed reviews", "varies", "uncertain"}
)

// analyzeSentiment classifies the tone of the text window around the first
// brand mention.
func (d *Detector) analyzeSentiment(text string) string {
	lower := strings.ToLower(text)

	brandIdx := -1
	for _, variant := range d.variations {
		if idx := strings.Index(lower, variant); idx != -1 {
			brandIdx = idx
			break
		}
	}
	if brandIdx == -1 {
		return models.SentimentNeutral
	}

	start := brandIdx - sentimentWindow
	if start < 0 {
		start = 0
	}
	end := brandIdx + len(d.brandName) + sentimentWindow
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]

	pos := countAny(window, positiveWords)
	neg := countAny(window, negativeWords)
	hes := countAny(window, hesitantWords)

	switch {
	case neg > pos:
		return models.SentimentNegative
	case hes >= 2:
		return models.SentimentHesitant
	case pos > 0:
		return models.SentimentPositive
	default:
		return models.SentimentNeutral
	}
}

func countAny(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

func sentimentScore(sentiment string) float64 {
	switch sentiment {
	case models.SentimentPositive:
		return 1.0
	case models.SentimentNeutral:
		return 0.5
	case models.SentimentHesitant:
		return 0.3
	case models.SentimentNegative:
		return 0.0
	default:
		return 0.5
	}
}

// confidence combines the match signals into a [0,1] detection confidence.
func confidence(mentioned bool, fuzzyScore float64, hasRank bool) float64 {
	if !mentioned {
		return 0
	}
	c := 0.5 + fuzzyScore*0.3
	if hasRank {
		c += 0.2
	}
	if c > 1 {
		c = 1
	}
	return c
}

package mention

import (
	"testing"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// --- generateVariations tests ---

func TestGenerateVariations(t *testing.T) {
	tests := []struct {
		name     string
		brand    string
		expected []string
	}{
		{
			name:     "simple name lowercased",
			brand:    "Acme",
			expected: []string{"acme"},
		},
		{
			name:     "strips inc suffix",
			brand:    "Acme Inc",
			expected: []string{"acme inc", "acme", "acmeinc"},
		},
		{
			name:     "strips dot com suffix",
			brand:    "HelloFresh.com",
			expected: []string{"hellofresh.com", "hellofresh"},
		},
		{
			name:     "multi word gets de-spaced form",
			brand:    "Blue Apron",
			expected: []string{"blue apron", "blueapron"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateVariations(tt.brand)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("variation %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

// --- DetectMention tests ---

func TestDetectMention(t *testing.T) {
	tests := []struct {
		name      string
		brand     string
		text      string
		mentioned bool
		matchType string
	}{
		{
			name:      "exact word boundary match",
			brand:     "Acme",
			text:      "I recommend Acme for affordable meals.",
			mentioned: true,
			matchType: models.MatchExact,
		},
		{
			name:      "case insensitive",
			brand:     "Acme",
			text:      "ACME is a solid choice.",
			mentioned: true,
			matchType: models.MatchExact,
		},
		{
			name:      "no match inside larger word",
			brand:     "Acme",
			text:      "Acmeopolis is a city, not a brand.",
			mentioned: false,
			matchType: models.MatchNone,
		},
		{
			name:      "fuzzy match catches typo",
			brand:     "HelloFresh",
			text:      "Many people like HelloFresg for meal kits.",
			mentioned: true,
			matchType: models.MatchFuzzy,
		},
		{
			name:      "suffix stripped variant matches",
			brand:     "Acme Inc",
			text:      "Acme delivers quickly.",
			mentioned: true,
			matchType: models.MatchExact,
		},
		{
			name:      "empty text",
			brand:     "Acme",
			text:      "",
			mentioned: false,
			matchType: models.MatchNone,
		},
		{
			name:      "unrelated text",
			brand:     "Acme",
			text:      "Try BrandX or BrandY instead.",
			mentioned: false,
			matchType: models.MatchNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.brand)
			mentioned, _, matchType := d.DetectMention(tt.text)
			if mentioned != tt.mentioned {
				t.Errorf("mentioned: expected %v, got %v", tt.mentioned, mentioned)
			}
			if matchType != tt.matchType {
				t.Errorf("matchType: expected %q, got %q", tt.matchType, matchType)
			}
		})
	}
}

// --- ExtractRank tests ---

func TestExtractRank(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		text  string
		rank  *int
	}{
		{
			name:  "numbered list",
			brand: "Acme Meals",
			text:  "1. Acme Meals — affordable and fast.\n2. BrandX — organic options.",
			rank:  intPtr(1),
		},
		{
			name:  "second position",
			brand: "BrandX",
			text:  "1. Acme Meals — affordable.\n2. BrandX — organic options.",
			rank:  intPtr(2),
		},
		{
			name:  "bullet list position",
			brand: "Acme",
			text:  "- HelloFresh\n- Acme\n- BrandX",
			rank:  intPtr(2),
		},
		{
			name:  "ordinal phrasing",
			brand: "Acme",
			text:  "The first option worth a look: Acme, known for speed.",
			rank:  intPtr(1),
		},
		{
			name:  "no ranking signal",
			brand: "Acme",
			text:  "Acme is a decent choice overall.",
			rank:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.brand)
			got := d.ExtractRank(tt.text)
			if tt.rank == nil {
				if got != nil {
					t.Fatalf("expected no rank, got %d", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected rank %d, got nil", *tt.rank)
			}
			if *got != *tt.rank {
				t.Errorf("expected rank %d, got %d", *tt.rank, *got)
			}
		})
	}
}

// --- ExtractCompetitors tests ---

func TestExtractCompetitors(t *testing.T) {
	d := NewDetector("Acme Meals")
	text := "1. Acme Meals — affordable and fast.\n2. BrandX — organic options.\n3. FreshCo — premium kits."

	got := d.ExtractCompetitors(text)

	if !containsStr(got, "BrandX") {
		t.Errorf("expected BrandX in competitors, got %v", got)
	}
	if !containsStr(got, "FreshCo") {
		t.Errorf("expected FreshCo in competitors, got %v", got)
	}
	for _, c := range got {
		if c == "Acme Meals" || c == "Acme" {
			t.Errorf("brand itself must not appear as a competitor: %v", got)
		}
	}
}

func TestExtractCompetitors_FiltersStopwordsAndShortTokens(t *testing.T) {
	d := NewDetector("Acme")
	text := "The best pick depends on you. Shoppers often choose Freshly over Top brands."

	got := d.ExtractCompetitors(text)

	for _, c := range got {
		switch c {
		case "The", "Top", "You":
			t.Errorf("stopword leaked into competitors: %q", c)
		}
	}
	if !containsStr(got, "Freshly") {
		t.Errorf("expected Freshly, got %v", got)
	}
}

func TestExtractCompetitors_CapsAtTen(t *testing.T) {
	d := NewDetector("Acme")
	text := "1. Alpha\n2. Bravo\n3. Charlie\n4. Deltaco\n5. Echoes\n6. Foxtrot\n7. Golfer\n8. Hotelier\n9. Indigo\n10. Juliet\n11. Kiloton\n12. Limabean"

	got := d.ExtractCompetitors(text)
	if len(got) > 10 {
		t.Errorf("expected at most 10 competitors, got %d: %v", len(got), got)
	}
}

// --- sentiment tests ---

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "positive window",
			text:     "Acme is an excellent and reliable service that customers love.",
			expected: models.SentimentPositive,
		},
		{
			name:     "negative outweighs positive",
			text:     "Acme is expensive and unreliable, with poor support and disappointing meals.",
			expected: models.SentimentNegative,
		},
		{
			name:     "hesitant phrasing",
			text:     "Acme might work for some users, and it may depend on what you need.",
			expected: models.SentimentHesitant,
		},
		{
			name:     "plain statement is neutral",
			text:     "Acme ships meal kits to most US states.",
			expected: models.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector("Acme")
			got := d.analyzeSentiment(tt.text)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// --- Analyze pipeline ---

func TestAnalyze_FullPipeline(t *testing.T) {
	d := NewDetector("Acme Meals")
	text := "1. Acme Meals — best affordable option, highly recommended.\n2. BrandX — organic options."

	det := d.Analyze(text)

	if !det.Mentioned {
		t.Fatal("expected brand to be mentioned")
	}
	if det.MatchType != models.MatchExact {
		t.Errorf("expected exact match, got %q", det.MatchType)
	}
	if det.Rank == nil || *det.Rank != 1 {
		t.Errorf("expected rank 1, got %v", det.Rank)
	}
	if !containsStr(det.Competitors, "BrandX") {
		t.Errorf("expected BrandX competitor, got %v", det.Competitors)
	}
	if det.Sentiment == nil || *det.Sentiment != models.SentimentPositive {
		t.Errorf("expected positive sentiment, got %v", det.Sentiment)
	}
	if det.SentimentScore == nil || *det.SentimentScore != 1.0 {
		t.Errorf("expected sentiment score 1.0, got %v", det.SentimentScore)
	}
	if det.Confidence < 0.5 || det.Confidence > 1.0 {
		t.Errorf("confidence out of range: %f", det.Confidence)
	}
}

func TestAnalyze_RankedListWithPraiseDescriptors(t *testing.T) {
	d := NewDetector("Acme Meals")
	det := d.Analyze("1. Acme Meals — affordable and fast. 2. BrandX — organic.")

	if !det.Mentioned {
		t.Fatal("expected brand to be mentioned")
	}
	if det.Rank == nil || *det.Rank != 1 {
		t.Errorf("expected rank 1, got %v", det.Rank)
	}
	if !containsStr(det.Competitors, "BrandX") {
		t.Errorf("expected BrandX competitor, got %v", det.Competitors)
	}
	if det.Sentiment == nil || *det.Sentiment != models.SentimentPositive {
		t.Errorf("expected positive sentiment from praise descriptors, got %v", det.Sentiment)
	}
	if det.SentimentScore == nil || *det.SentimentScore != 1.0 {
		t.Errorf("expected sentiment score 1.0, got %v", det.SentimentScore)
	}
}

func TestAnalyze_NotMentioned(t *testing.T) {
	d := NewDetector("Acme")
	det := d.Analyze("BrandX and FreshCo dominate this market.")

	if det.Mentioned {
		t.Fatal("expected no mention")
	}
	if det.Rank != nil {
		t.Errorf("expected no rank, got %d", *det.Rank)
	}
	if det.Sentiment != nil {
		t.Errorf("expected no sentiment, got %q", *det.Sentiment)
	}
	if det.Confidence != 0 {
		t.Errorf("expected zero confidence, got %f", det.Confidence)
	}
}

// --- ratio tests ---

func TestRatio(t *testing.T) {
	if got := ratio("acme", "acme"); got != 100 {
		t.Errorf("identical strings: expected 100, got %d", got)
	}
	if got := ratio("acme", "acmo"); got < 70 || got > 80 {
		t.Errorf("one edit on four chars: expected ~75, got %d", got)
	}
	if got := ratio("acme", "zzzz"); got > 20 {
		t.Errorf("unrelated strings: expected near 0, got %d", got)
	}
}

func intPtr(n int) *int { return &n }

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

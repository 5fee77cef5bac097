package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/google/uuid"
)

// --- mocks ---

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Delete(_ context.Context, key string) error { return nil }
func (c *memCache) Ping(_ context.Context) error               { return nil }
func (c *memCache) SetJobStatus(_ context.Context, _ uuid.UUID, _ string, _ time.Duration) error {
	return nil
}
func (c *memCache) GetJobStatus(_ context.Context, _ uuid.UUID) (string, bool, error) {
	return "", false, nil
}
func (c *memCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, nil
}

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return g.text, g.err
}

// --- Generate tests ---

func TestGenerate_TemplatesOnly(t *testing.T) {
	g := NewGenerator(newMemCache(), nil, time.Hour)

	queries, err := g.Generate(context.Background(), "Meal Kits & Food Delivery", "Acme", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 20 {
		t.Fatalf("expected 20 queries, got %d", len(queries))
	}
	for i, q := range queries {
		if q.Text == "" {
			t.Errorf("query %d has empty text", i)
		}
		if strings.Contains(q.Text, "{") {
			t.Errorf("query %d has unfilled placeholder: %q", i, q.Text)
		}
		if q.Category == "" {
			t.Errorf("query %d has empty category", i)
		}
	}
}

func TestGenerate_UsesCacheOnSecondCall(t *testing.T) {
	c := newMemCache()
	g := NewGenerator(c, nil, time.Hour)
	ctx := context.Background()

	first, err := g.Generate(ctx, "SaaS & Software", "Acme", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := g.Generate(ctx, "SaaS & Software", "Acme", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cache returned different length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("query %d differs across calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerate_LLMFailureFallsBackToTemplates(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	g := NewGenerator(newMemCache(), gen, time.Hour)

	queries, err := g.Generate(context.Background(), "Health & Wellness", "Acme", 15)
	if err != nil {
		t.Fatalf("llm failure must not fail generation: %v", err)
	}
	if len(queries) != 15 {
		t.Fatalf("expected 15 queries, got %d", len(queries))
	}
}

func TestGenerate_LLMQueriesIncluded(t *testing.T) {
	gen := &stubGenerator{text: "1. completely unique llm query about widgets\n2. another odd llm question on gadgets"}
	g := NewGenerator(newMemCache(), gen, time.Hour)

	queries, err := g.Generate(context.Background(), "E-commerce & Retail", "Acme", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, q := range queries {
		if strings.Contains(q.Text, "widgets") {
			found = true
		}
	}
	if !found {
		t.Error("expected llm-generated query in output")
	}
}

func TestGenerate_UnknownIndustryFallsBack(t *testing.T) {
	g := NewGenerator(newMemCache(), nil, time.Hour)

	queries, err := g.Generate(context.Background(), "Underwater Basket Weaving", "Acme", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) == 0 {
		t.Fatal("expected fallback templates to produce queries")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	ctx := context.Background()

	// Fresh cache each run: determinism must come from expansion itself.
	var runs [][]models.GeneratedQuery
	for i := 0; i < 3; i++ {
		g := NewGenerator(newMemCache(), nil, time.Hour)
		queries, err := g.Generate(ctx, "Meal Kits & Food Delivery", "Acme", 25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		runs = append(runs, queries)
	}
	for i := 1; i < len(runs); i++ {
		if len(runs[i]) != len(runs[0]) {
			t.Fatalf("run %d length differs", i)
		}
		for j := range runs[i] {
			if runs[i][j] != runs[0][j] {
				t.Errorf("run %d query %d differs: %+v vs %+v", i, j, runs[i][j], runs[0][j])
			}
		}
	}
}

// --- padFromTemplates tests ---

func TestPadFromTemplates_TopsUpShortSets(t *testing.T) {
	unique := []string{"completely unrelated seed query"}

	got := padFromTemplates(unique, "SaaS & Software", 8)

	if len(got) != 8 {
		t.Fatalf("expected set topped up to 8, got %d: %v", len(got), got)
	}
	if got[0] != "completely unrelated seed query" {
		t.Errorf("existing queries must be kept first, got %q", got[0])
	}
	for i, q := range got {
		if strings.Contains(q, "{") {
			t.Errorf("query %d has unfilled placeholder: %q", i, q)
		}
	}
}

func TestPadFromTemplates_AddsNoNearDuplicates(t *testing.T) {
	got := padFromTemplates(nil, "Meal Kits & Food Delivery", 12)

	for i := range got {
		for j := i + 1; j < len(got); j++ {
			if cosine(tokenVector(got[i]), tokenVector(got[j])) >= dedupThreshold {
				t.Errorf("padded set contains near-duplicates: %q vs %q", got[i], got[j])
			}
		}
	}
}

func TestPadFromTemplates_Deterministic(t *testing.T) {
	a := padFromTemplates(nil, "Health & Wellness", 10)
	b := padFromTemplates(nil, "Health & Wellness", 10)
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Errorf("padding not stable: %v vs %v", a, b)
	}
}

// --- ParseNumberedList tests ---

func TestParseNumberedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "numbered entries",
			input:    "1. best meal kits\n2. cheapest delivery service",
			expected: []string{"best meal kits", "cheapest delivery service"},
		},
		{
			name:     "dash bullets",
			input:    "- first query\n- second query",
			expected: []string{"first query", "second query"},
		},
		{
			name:     "skips prose lines",
			input:    "Here are some queries:\n1. real query\nHope that helps!",
			expected: []string{"real query"},
		},
		{
			name:     "blank lines ignored",
			input:    "1. one\n\n2. two\n",
			expected: []string{"one", "two"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumberedList(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("entry %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

// --- Deduplicate tests ---

func TestDeduplicate(t *testing.T) {
	queries := []string{
		"best meal kits for families",
		"best meal kits for families today", // near-duplicate of the first
		"cheapest software for startups",
	}

	got := Deduplicate(queries, 0.85)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique queries, got %d: %v", len(got), got)
	}
	// First-seen wins.
	if got[0] != "best meal kits for families" {
		t.Errorf("expected first-seen kept, got %q", got[0])
	}
}

func TestDeduplicate_KeepsDistinct(t *testing.T) {
	queries := []string{
		"affordable meal kits",
		"organic grocery delivery",
		"premium software reviews",
	}
	got := Deduplicate(queries, 0.85)
	if len(got) != 3 {
		t.Errorf("expected all 3 kept, got %d", len(got))
	}
}

func TestDeduplicate_SingleEntry(t *testing.T) {
	got := Deduplicate([]string{"only one"}, 0.85)
	if len(got) != 1 {
		t.Errorf("expected 1, got %d", len(got))
	}
}

// --- Categorize tests ---

func TestCategorize(t *testing.T) {
	tests := []struct {
		query    string
		expected string
	}{
		{"most affordable meal kits", models.CategoryPrice},
		{"best premium meal delivery", models.CategoryQuality},
		{"fastest shipping options", models.CategoryDelivery},
		{"meal kits with the most variety", models.CategoryFeatures},
		{"highly rated and trusted brands", models.CategoryTrust},
		{"organic and sustainable produce boxes", models.CategorySustainability},
		{"easy weeknight dinners", models.CategoryConvenience},
		{"meal kits for two people", models.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Categorize(tt.query); got != tt.expected {
				t.Errorf("Categorize(%q): expected %q, got %q", tt.query, tt.expected, got)
			}
		})
	}
}

func TestCategorize_PriceBeatsQuality(t *testing.T) {
	// "best cheap meal kits" matches both; price is evaluated first.
	if got := Categorize("best cheap meal kits"); got != models.CategoryPrice {
		t.Errorf("expected price category, got %q", got)
	}
}

// --- cosine helpers ---

func TestCosine(t *testing.T) {
	a := tokenVector("best meal kits")
	if got := cosine(a, a); got < 0.999 {
		t.Errorf("identical vectors: expected 1, got %f", got)
	}
	b := tokenVector("unrelated words entirely")
	if got := cosine(a, b); got != 0 {
		t.Errorf("disjoint vectors: expected 0, got %f", got)
	}
	if got := cosine(a, tokenVector("")); got != 0 {
		t.Errorf("empty vector: expected 0, got %f", got)
	}
}

func TestExpandTemplates_CountStable(t *testing.T) {
	for _, industry := range []string{"Meal Kits & Food Delivery", "SaaS & Software"} {
		a := expandTemplates(industry)
		b := expandTemplates(industry)
		if fmt.Sprint(a) != fmt.Sprint(b) {
			t.Errorf("%s: expansion not stable", industry)
		}
		if len(a) == 0 {
			t.Errorf("%s: no templates expanded", industry)
		}
	}
}

package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/brandbeacon/brandbeacon/internal/cache"
	"github.com/brandbeacon/brandbeacon/pkg/models"
)

const (
	variationsPerTemplate = 5
	maxPadRounds          = 30
	dedupThreshold        = 0.85
)

// Generator produces the ordered query set for one (industry, brand, count)
// triple, cache-first.
type Generator struct {
	cache     cache.Cache
	generator models.TextGenerator
	cacheTTL  time.Duration
}

// NewGenerator creates a query generator. textGen may be nil; template
// expansion alone then supplies the queries.
func NewGenerator(c cache.Cache, textGen models.TextGenerator, cacheTTL time.Duration) *Generator {
	return &Generator{cache: c, generator: textGen, cacheTTL: cacheTTL}
}

// Generate returns count queries for the industry/brand pair. Cache hits
// return the stored sequence unmodified; misses expand templates, optionally
// paraphrase via the text generator, deduplicate, top back up from extra
// template rotations if deduplication left the set short, categorize, and
// cache.
func (g *Generator) Generate(ctx context.Context, industry, brandName string, count int) ([]models.GeneratedQuery, error) {
	key := cache.QuerySetKey(industry, brandName, count)

	if data, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		var cached []models.GeneratedQuery
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// corrupt entry, regenerate
	} else if err != nil {
		slog.Warn("query cache read failed", "error", err)
	}

	candidates := expandTemplates(industry)

	if g.generator != nil {
		extra := count - len(candidates) + 20
		if extra > 0 {
			llmQueries, err := g.generateWithLLM(ctx, industry, brandName, extra)
			if err != nil {
				slog.Warn("llm query generation failed, using templates only",
					"industry", industry, "error", err)
			} else {
				candidates = append(candidates, llmQueries...)
			}
		}
	}

	unique := Deduplicate(candidates, dedupThreshold)
	if len(unique) > count {
		unique = unique[:count]
	} else if len(unique) < count {
		unique = padFromTemplates(unique, industry, count)
	}

	queries := make([]models.GeneratedQuery, len(unique))
	for i, text := range unique {
		queries[i] = models.GeneratedQuery{Text: text, Category: Categorize(text)}
	}

	if data, err := json.Marshal(queries); err == nil {
		if err := g.cache.Set(ctx, key, data, g.cacheTTL); err != nil {
			slog.Warn("query cache write failed", "error", err)
		}
	}

	return queries, nil
}

// expandTemplates fills each template's placeholders with rotating variation
// values. Deterministic for a given industry.
func expandTemplates(industry string) []string {
	tmpls, ok := templates[industry]
	if !ok {
		tmpls = templates[fallbackIndustry]
	}

	var out []string
	for _, tmpl := range tmpls {
		if !strings.Contains(tmpl, "{") {
			out = append(out, tmpl)
			continue
		}
		for i := 0; i < variationsPerTemplate; i++ {
			filled := tmpl
			for key, values := range variations {
				placeholder := "{" + key + "}"
				if strings.Contains(filled, placeholder) {
					filled = strings.ReplaceAll(filled, placeholder, values[i%len(values)])
				}
			}
			out = append(out, filled)
		}
	}
	return out
}

func (g *Generator) generateWithLLM(ctx context.Context, industry, brandName string, count int) ([]string, error) {
	prompt := fmt.Sprintf(`Generate %d diverse search queries that consumers would ask when looking for products/services in the %s industry.

Focus on:
- Product comparisons ("X vs Y")
- Best-of lists ("best X for Y")
- Reviews and recommendations
- Buying guides ("how to choose")
- Budget-focused queries ("most affordable")
- Specific use cases

Make queries natural and varied. Consider the brand: %s

Return as a numbered list, one query per line.`, count, industry, brandName)

	text, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseNumberedList(text), nil
}

// padFromTemplates tops a short set back up toward count with extra template
// rotations. Rounds beyond the initial expansion draw later variation values,
// so padding is deterministic; candidates that near-duplicate a kept query
// are skipped. The set can stay short if the rotations run out of distinct
// combinations.
func padFromTemplates(unique []string, industry string, count int) []string {
	tmpls, ok := templates[industry]
	if !ok {
		tmpls = templates[fallbackIndustry]
	}

	vectors := make([]map[string]float64, len(unique))
	for i, q := range unique {
		vectors[i] = tokenVector(q)
	}

	for round := variationsPerTemplate; round < maxPadRounds && len(unique) < count; round++ {
		for _, tmpl := range tmpls {
			if len(unique) >= count {
				break
			}
			if !strings.Contains(tmpl, "{") {
				continue
			}
			filled := tmpl
			for key, values := range variations {
				placeholder := "{" + key + "}"
				if strings.Contains(filled, placeholder) {
					filled = strings.ReplaceAll(filled, placeholder, values[round%len(values)])
				}
			}
			vec := tokenVector(filled)
			dup := false
			for _, kept := range vectors {
				if cosine(vec, kept) >= dedupThreshold {
					dup = true
					break
				}
			}
			if !dup {
				unique = append(unique, filled)
				vectors = append(vectors, vec)
			}
		}
	}
	return unique
}

// ParseNumberedList extracts entries from a numbered or bulleted list,
// tolerating formatting noise.
func ParseNumberedList(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := rune(line[0])
		if !unicode.IsDigit(first) && !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}
		entry := line
		if idx := strings.Index(line, "."); unicode.IsDigit(first) && idx >= 0 {
			entry = line[idx+1:]
		} else if !unicode.IsDigit(first) {
			entry = line[1:]
		}
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// Deduplicate removes near-duplicate queries by bag-of-words cosine
// similarity, keeping the first-seen of each near-duplicate group.
func Deduplicate(queries []string, threshold float64) []string {
	if len(queries) <= 1 {
		return queries
	}

	var unique []string
	var vectors []map[string]float64

	for _, q := range queries {
		vec := tokenVector(q)
		dup := false
		for _, kept := range vectors {
			if cosine(vec, kept) >= threshold {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, q)
			vectors = append(vectors, vec)
		}
	}
	return unique
}

func tokenVector(text string) map[string]float64 {
	vec := make(map[string]float64)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		vec[tok]++
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for tok, va := range a {
		normA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package industry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/brandbeacon/brandbeacon/pkg/models"
	"github.com/go-resty/resty/v2"
)

// Sentinel errors for industry detection.
var (
	ErrSiteUnreachable = errors.New("website unreachable")
	ErrEmptyPage       = errors.New("website returned no usable text")
)

// IndustryOther is the fallback bucket when nothing matches.
const IndustryOther = "Other"

const (
	scrapeTimeout = 10 * time.Second
	maxPageChars  = 3000
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Industries is the closed classification list.
var Industries = []string{
	"Meal Kits & Food Delivery",
	"E-commerce & Retail",
	"SaaS & Software",
	"Health & Wellness",
	"Travel & Hospitality",
	"Financial Services",
	"Education & E-learning",
	"Startup Incubators & Accelerators",
	"Marketing & Advertising",
	"Real Estate",
	"Automotive & EV",
}

var industryKeywords = map[string][]string{
	"Meal Kits & Food Delivery":         {"meal", "recipe", "chef", "ingredients", "cooking", "food", "delivery", "meal kit"},
	"SaaS & Software":                   {"platform", "dashboard", "api", "integration", "workflow", "software", "cloud", "saas"},
	"Health & Wellness":                 {"fitness", "nutrition", "wellness", "health", "exercise", "yoga", "meditation"},
	"E-commerce & Retail":               {"shop", "store", "retail", "products", "shopping", "ecommerce", "online store"},
	"Travel & Hospitality":              {"travel", "hotel", "booking", "vacation", "tourism", "hospitality"},
	"Financial Services":                {"finance", "banking", "investment", "insurance", "loan", "credit", "fintech"},
	"Education & E-learning":            {"education", "learning", "course", "training", "tutorial", "school", "edtech", "online learning"},
	"Startup Incubators & Accelerators": {"startup", "incubator", "accelerator", "entrepreneur", "founder", "innovator", "mentorship", "venture", "innovation"},
	"Marketing & Advertising":           {"marketing", "advertising", "branding", "campaign", "social media"},
	"Real Estate":                       {"real estate", "property", "housing", "rental", "apartment", "home"},
	"Automotive & EV":                   {"electric vehicle", "ev", "automotive", "car", "vehicle", "automobile", "mobility"},
}

var (
	tagRe        = regexp.MustCompile(`(?is)<(script|style|nav|footer|header)[^>]*>.*?</\s*(script|style|nav|footer|header)\s*>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Detector classifies a brand's industry from its homepage text.
type Detector struct {
	client    *resty.Client
	generator models.TextGenerator
}

// NewDetector creates a detector. generator may be nil; keyword fallback is
// always available.
func NewDetector(generator models.TextGenerator) *Detector {
	return &Detector{
		client: resty.New().
			SetTimeout(scrapeTimeout).
			SetHeader("User-Agent", userAgent),
		generator: generator,
	}
}

// Detect scrapes the brand's homepage and classifies its industry.
// A site that cannot be fetched or yields no text is a hard error; a failed
// LLM classification degrades to keyword matching.
func (d *Detector) Detect(ctx context.Context, brandName, websiteURL string) (string, error) {
	text, err := d.scrape(ctx, websiteURL)
	if err != nil {
		return "", err
	}

	if d.generator != nil {
		if industry, err := d.classifyWithGenerator(ctx, brandName, text); err == nil && industry != IndustryOther {
			return industry, nil
		}
	}

	return classifyWithKeywords(text), nil
}

func (d *Detector) scrape(ctx context.Context, websiteURL string) (string, error) {
	if !strings.HasPrefix(websiteURL, "http://") && !strings.HasPrefix(websiteURL, "https://") {
		websiteURL = "https://" + websiteURL
	}

	resp, err := d.client.R().SetContext(ctx).Get(websiteURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSiteUnreachable, err)
	}
	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("%w: status %d", ErrSiteUnreachable, resp.StatusCode())
	}

	text := stripHTML(resp.String())
	if text == "" {
		return "", ErrEmptyPage
	}
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text, nil
}

func (d *Detector) classifyWithGenerator(ctx context.Context, brandName, text string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this brand and website content to classify the industry.

Brand: %s
Website content: %s

Choose ONE industry from:
- %s
- Other

Respond with ONLY the industry name, nothing else.`,
		brandName, text, strings.Join(Industries, "\n- "))

	raw, err := d.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(raw)
	for _, industry := range Industries {
		if strings.EqualFold(answer, industry) {
			return industry, nil
		}
	}
	return IndustryOther, nil
}

func classifyWithKeywords(text string) string {
	lower := strings.ToLower(text)

	best := IndustryOther
	bestScore := 0
	for _, industry := range Industries {
		score := 0
		for _, keyword := range industryKeywords[industry] {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = industry
			bestScore = score
		}
	}
	return best
}

// stripHTML removes script/style/nav/footer/header blocks and remaining tags,
// collapsing whitespace.
func stripHTML(html string) string {
	cleaned := tagRe.ReplaceAllString(html, " ")
	cleaned = anyTagRe.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

package queries

import (
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// categoryOrder fixes evaluation order so categorization is deterministic.
var categoryOrder = []string{
	models.CategoryPrice,
	models.CategoryQuality,
	models.CategoryDelivery,
	models.CategoryFeatures,
	models.CategoryTrust,
	models.CategorySustainability,
	models.CategoryConvenience,
}

var categoryKeywords = map[string][]string{
	models.CategoryPrice:          {"cheap", "affordable", "budget", "cost", "price", "inexpensive"},
	models.CategoryQuality:        {"best", "quality", "premium", "luxury", "top", "high-end"},
	models.CategoryDelivery:       {"fast", "delivery", "shipping", "quick", "express"},
	models.CategoryFeatures:       {"feature", "option", "variety", "selection", "choice"},
	models.CategoryTrust:          {"review", "rating", "trusted", "reliable", "popular"},
	models.CategorySustainability: {"eco", "organic", "sustainable", "green", "natural"},
	models.CategoryConvenience:    {"easy", "convenient", "simple", "hassle-free"},
}

// Categorize assigns an intent category to a query by keyword match,
// first matching category wins.
func Categorize(query string) string {
	lower := strings.ToLower(query)
	for _, category := range categoryOrder {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				return category
			}
		}
	}
	return models.CategoryGeneral
}

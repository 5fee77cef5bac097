package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

const maxOpportunities = 20

var (
	industryQueryKeywords = []string{"meal kit", "delivery", "subscription", "service", "platform", "app"}
	featureQueryKeywords  = []string{"affordable", "organic", "fast", "easy", "best"}
)

// OpportunityDetector flags queries the brand should appear in but does not.
type OpportunityDetector struct {
	brandName string
}

func NewOpportunityDetector(brandName string) *OpportunityDetector {
	return &OpportunityDetector{brandName: brandName}
}

// Detect finds missed opportunities, prioritized by competitor density.
func (d *OpportunityDetector) Detect(results []*models.ProviderResult) *models.OpportunityReport {
	var opportunities []models.Opportunity

	for _, r := range results {
		if r.Mentioned {
			continue
		}
		reason, priority, relevant := d.relevance(r)
		if !relevant {
			continue
		}
		present := r.Competitors
		if len(present) > 5 {
			present = present[:5]
		}
		opportunities = append(opportunities, models.Opportunity{
			Query:              r.QueryText,
			Reason:             reason,
			CompetitorsPresent: present,
			Priority:           priority,
			Provider:           r.Provider,
		})
	}

	priorityOrder := map[string]int{models.PriorityHigh: 3, models.PriorityMedium: 2, models.PriorityLow: 1}
	sort.SliceStable(opportunities, func(i, j int) bool {
		return priorityOrder[opportunities[i].Priority] > priorityOrder[opportunities[j].Priority]
	})

	high := 0
	for _, o := range opportunities {
		if o.Priority == models.PriorityHigh {
			high++
		}
	}

	report := &models.OpportunityReport{
		Total:        len(opportunities),
		HighPriority: high,
	}
	if len(opportunities) > maxOpportunities {
		opportunities = opportunities[:maxOpportunities]
	}
	report.Opportunities = opportunities
	report.Summary = d.summarize(report)
	return report
}

func (d *OpportunityDetector) relevance(r *models.ProviderResult) (string, string, bool) {
	queryLower := strings.ToLower(r.QueryText)

	if len(r.Competitors) >= 2 {
		return fmt.Sprintf("Multiple similar competitors (%s) appear, but %s doesn't",
			strings.Join(r.Competitors[:2], ", "), d.brandName), models.PriorityHigh, true
	}

	if len(r.Competitors) > 0 {
		for _, kw := range industryQueryKeywords {
			if strings.Contains(queryLower, kw) {
				return "Industry-relevant query with competitors present", models.PriorityMedium, true
			}
		}
	}

	for _, kw := range featureQueryKeywords {
		if strings.Contains(queryLower, kw) {
			return "Query emphasizes features brand likely offers", models.PriorityMedium, true
		}
	}

	return "", models.PriorityLow, false
}

func (d *OpportunityDetector) summarize(report *models.OpportunityReport) string {
	if report.Total == 0 {
		return "No significant missed opportunities detected."
	}
	return fmt.Sprintf("Found %d missed opportunities where %s should appear but doesn't. %d are high-priority (direct competitors present). Prioritize these for immediate content creation.",
		report.Total, d.brandName, report.HighPriority)
}

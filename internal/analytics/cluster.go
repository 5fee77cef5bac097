package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brandbeacon/brandbeacon/pkg/models"
)

// intentClusters fixes the consumer-intent themes queries are grouped into.
var intentClusters = []struct {
	name     string
	keywords []string
}{
	{"Price-Sensitive", []string{"cheap", "affordable", "budget", "cost", "inexpensive", "discount"}},
	{"Quality-Focused", []string{"best", "quality", "premium", "top", "luxury", "rated"}},
	{"Health-Conscious", []string{"healthy", "nutrition", "organic", "diet", "wellness", "fitness"}},
	{"Fast-Delivery", []string{"fast", "quick", "express", "same-day", "speed", "delivery"}},
	{"Eco-Conscious", []string{"eco", "sustainable", "green", "organic", "environment", "carbon"}},
	{"Convenience", []string{"easy", "convenient", "simple", "hassle-free", "subscription"}},
}

const maxClusterCompetitors = 5

// ClusterAnalyzer groups competitor dominance by consumer intent.
type ClusterAnalyzer struct {
	brandName string
}

func NewClusterAnalyzer(brandName string) *ClusterAnalyzer {
	return &ClusterAnalyzer{brandName: brandName}
}

// Analyze maps each query onto its intent clusters and finds the dominant
// competitor per cluster.
func (a *ClusterAnalyzer) Analyze(results []*models.ProviderResult) *models.ClusterReport {
	brandLower := strings.ToLower(a.brandName)

	type clusterTally struct {
		competitors   map[string]int
		brandMentions int
	}
	tallies := make(map[string]*clusterTally)

	for _, r := range results {
		queryLower := strings.ToLower(r.QueryText)
		for _, cluster := range intentClusters {
			if !matchesAny(queryLower, cluster.keywords) {
				continue
			}
			t, ok := tallies[cluster.name]
			if !ok {
				t = &clusterTally{competitors: map[string]int{}}
				tallies[cluster.name] = t
			}
			if r.Mentioned {
				t.brandMentions++
			}
			for _, comp := range r.Competitors {
				if strings.ToLower(comp) != brandLower {
					t.competitors[comp]++
				}
			}
		}
	}

	report := &models.ClusterReport{}
	for _, cluster := range intentClusters {
		t, ok := tallies[cluster.name]
		if !ok {
			continue
		}

		names := make([]string, 0, len(t.competitors))
		total := 0
		for name, count := range t.competitors {
			names = append(names, name)
			total += count
		}
		sort.Slice(names, func(i, j int) bool {
			if t.competitors[names[i]] != t.competitors[names[j]] {
				return t.competitors[names[i]] > t.competitors[names[j]]
			}
			return names[i] < names[j]
		})

		ic := models.IntentCluster{
			Name:           cluster.name,
			TotalMentions:  total,
			BrandMentions:  t.brandMentions,
			TopCompetitors: map[string]int{},
		}
		for i, name := range names {
			if i == maxClusterCompetitors {
				break
			}
			ic.TopCompetitors[name] = t.competitors[name]
		}
		if len(names) > 0 {
			ic.DominantCompetitor = names[0]
			ic.DominantMentions = t.competitors[names[0]]
		} else {
			ic.DominantCompetitor = "None"
		}

		report.Clusters = append(report.Clusters, ic)

		if t.brandMentions > ic.DominantMentions {
			report.BrandDominates = append(report.BrandDominates, cluster.name)
		} else if t.brandMentions == 0 {
			report.BrandAbsentFrom = append(report.BrandAbsentFrom, cluster.name)
		}

		if ic.DominantMentions > 0 {
			note := "Moderate competition."
			if ic.DominantMentions > 5 {
				note = "Your brand should target this cluster."
			}
			report.Insights = append(report.Insights,
				fmt.Sprintf("%s: %s dominates with %d mentions. %s",
					cluster.name, ic.DominantCompetitor, ic.DominantMentions, note))
		}
	}

	return report
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

package ranking

import (
	"sort"

	"github.com/tbessen/geoscan/internal/agents"
)

// RankedCompany is one distinct company in the aggregated ranking,
// keyed by normalized domain across all agent responses in a batch.
type RankedCompany struct {
	CompanyName        string  `json:"companyName"`
	Domain             string  `json:"domain"`
	MentionCount       int     `json:"mentionCount"`
	PercentageMentions float64 `json:"percentageMentions"`
}

// Aggregate folds a batch of agent responses into a ranked list of
// distinct companies by mention count and share of total mentions.
//
// Identity is the normalized domain. The display domain is the last raw
// domain seen for that identity; the display name is the longest name
// seen (first seen wins a length tie), preferring descriptive names
// over abbreviations. The result is sorted by mention count descending,
// then percentage descending, with first-insertion order preserved for
// ties. Pure function over its input.
func Aggregate(responses []agents.Response) []RankedCompany {
	index := make(map[string]int)
	var companies []RankedCompany
	totalMentions := 0

	for _, resp := range responses {
		for _, rec := range resp.Recommendations {
			totalMentions++
			key := Normalize(rec.Domain)
			if i, ok := index[key]; ok {
				companies[i].MentionCount++
				companies[i].Domain = rec.Domain
				if len(rec.CompanyName) > len(companies[i].CompanyName) {
					companies[i].CompanyName = rec.CompanyName
				}
				continue
			}
			index[key] = len(companies)
			companies = append(companies, RankedCompany{
				CompanyName:  rec.CompanyName,
				Domain:       rec.Domain,
				MentionCount: 1,
			})
		}
	}

	if totalMentions > 0 {
		for i := range companies {
			companies[i].PercentageMentions = float64(companies[i].MentionCount) / float64(totalMentions) * 100
		}
	}

	sort.SliceStable(companies, func(a, b int) bool {
		if companies[a].MentionCount != companies[b].MentionCount {
			return companies[a].MentionCount > companies[b].MentionCount
		}
		return companies[a].PercentageMentions > companies[b].PercentageMentions
	})

	return companies
}

// TotalMentions counts every recommendation across a batch of responses.
func TotalMentions(responses []agents.Response) int {
	n := 0
	for _, resp := range responses {
		n += len(resp.Recommendations)
	}
	return n
}

// TargetMentions counts recommendations whose domain matches the target
// domain exactly. Matching is on the raw domain string, not the
// normalized identity, mirroring how hit rates have always been
// reported.
func TargetMentions(responses []agents.Response, targetDomain string) int {
	n := 0
	for _, resp := range responses {
		for _, rec := range resp.Recommendations {
			if rec.Domain == targetDomain {
				n++
			}
		}
	}
	return n
}

package ranking

import (
	"math"
	"testing"

	"github.com/tbessen/geoscan/internal/agents"
)

func rec(name, domain string) agents.Recommendation {
	return agents.Recommendation{CompanyName: name, Domain: domain}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("expected empty result for nil input, got %d entries", len(got))
	}
	if got := Aggregate([]agents.Response{{Question: "q", Err: "boom"}}); len(got) != 0 {
		t.Errorf("expected empty result for errored-only input, got %d entries", len(got))
	}
}

func TestAggregate_CountsAndPercentages(t *testing.T) {
	responses := []agents.Response{
		{Question: "best project tool", Recommendations: []agents.Recommendation{
			rec("Acme", "acme.com"),
			rec("Beta", "beta.io"),
			rec("Acme", "acme.com"),
		}},
		{Question: "top CRM", Recommendations: []agents.Recommendation{
			rec("Acme Inc", "www.acme.com"),
		}},
	}

	got := Aggregate(responses)

	if len(got) != 2 {
		t.Fatalf("expected 2 distinct companies, got %d", len(got))
	}

	acme := got[0]
	if acme.MentionCount != 3 {
		t.Errorf("expected acme mention count 3, got %d", acme.MentionCount)
	}
	// Longest name wins, last raw domain wins.
	if acme.CompanyName != "Acme Inc" {
		t.Errorf("expected longest name 'Acme Inc', got %q", acme.CompanyName)
	}
	if acme.Domain != "www.acme.com" {
		t.Errorf("expected last-seen raw domain 'www.acme.com', got %q", acme.Domain)
	}
	if math.Abs(acme.PercentageMentions-75) > 1e-9 {
		t.Errorf("expected 75%% for acme, got %f", acme.PercentageMentions)
	}

	beta := got[1]
	if beta.MentionCount != 1 || math.Abs(beta.PercentageMentions-25) > 1e-9 {
		t.Errorf("unexpected beta entry: %+v", beta)
	}
}

// The sum of per-company mention counts must equal the total number of
// recommendations, and non-empty percentages must sum to 100.
func TestAggregate_ConservationInvariants(t *testing.T) {
	responses := []agents.Response{
		{Recommendations: []agents.Recommendation{
			rec("A", "a.com"), rec("B", "b.com"), rec("C", "c.io"),
		}},
		{Recommendations: []agents.Recommendation{
			rec("A", "a.com"), rec("D", "d.dev"),
		}},
		{Err: "agent failed"},
		{Recommendations: []agents.Recommendation{
			rec("B Company", "b.com"), rec("A", "www.a.com"),
		}},
	}

	got := Aggregate(responses)

	wantTotal := TotalMentions(responses)
	sum := 0
	pctSum := 0.0
	for _, c := range got {
		sum += c.MentionCount
		pctSum += c.PercentageMentions
	}
	if sum != wantTotal {
		t.Errorf("mention counts sum to %d, want %d", sum, wantTotal)
	}
	if math.Abs(pctSum-100) > 1e-6 {
		t.Errorf("percentages sum to %f, want 100", pctSum)
	}
}

func TestAggregate_TieOrderIsFirstInsertion(t *testing.T) {
	responses := []agents.Response{
		{Recommendations: []agents.Recommendation{
			rec("First", "first.com"),
			rec("Second", "second.com"),
			rec("Third", "third.com"),
		}},
	}

	got := Aggregate(responses)

	want := []string{"first.com", "second.com", "third.com"}
	for i, w := range want {
		if got[i].Domain != w {
			t.Errorf("position %d: got %q, want %q (insertion order must be stable for ties)", i, got[i].Domain, w)
		}
	}
}

func TestAggregate_SortsByMentionCountDescending(t *testing.T) {
	responses := []agents.Response{
		{Recommendations: []agents.Recommendation{
			rec("Rare", "rare.com"),
			rec("Common", "common.com"),
		}},
		{Recommendations: []agents.Recommendation{
			rec("Common", "common.com"),
		}},
	}

	got := Aggregate(responses)
	if got[0].Domain != "common.com" || got[1].Domain != "rare.com" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestAggregate_NameLengthTieKeepsFirstSeen(t *testing.T) {
	responses := []agents.Response{
		{Recommendations: []agents.Recommendation{
			rec("Acme", "acme.com"),
			rec("Acmo", "acme.com"),
		}},
	}

	got := Aggregate(responses)
	if got[0].CompanyName != "Acme" {
		t.Errorf("equal-length name should keep first seen, got %q", got[0].CompanyName)
	}
}

func TestAggregate_SingleCompanyScenario(t *testing.T) {
	responses := []agents.Response{
		{Question: "best project tool", Recommendations: []agents.Recommendation{
			rec("Acme", "acme.com"),
			rec("Acme", "acme.com"),
		}},
		{Question: "top CRM", Err: "agent query failed"},
	}

	got := Aggregate(responses)
	if len(got) != 1 {
		t.Fatalf("expected 1 company, got %d", len(got))
	}
	c := got[0]
	if c.Domain != "acme.com" || c.CompanyName != "Acme" || c.MentionCount != 2 {
		t.Errorf("unexpected aggregate: %+v", c)
	}
	if math.Abs(c.PercentageMentions-100) > 1e-9 {
		t.Errorf("expected 100%%, got %f", c.PercentageMentions)
	}
}

func TestTargetMentions_ExactDomainMatch(t *testing.T) {
	responses := []agents.Response{
		{Recommendations: []agents.Recommendation{
			rec("Acme", "acme.com"),
			rec("Acme", "www.acme.com"), // raw mismatch does not count
			rec("Beta", "beta.io"),
		}},
	}

	if got := TargetMentions(responses, "acme.com"); got != 1 {
		t.Errorf("expected 1 exact target mention, got %d", got)
	}
	if got := TargetMentions(responses, "missing.com"); got != 0 {
		t.Errorf("expected 0 mentions for absent target, got %d", got)
	}
}

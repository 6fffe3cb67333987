package agents

// Question is a single natural-language search query posed to an agent.
type Question = string

// Recommendation is one company suggested by an agent for one question.
type Recommendation struct {
	CompanyName string `json:"companyName"`
	Domain      string `json:"domain"`
}

// Response holds the outcome of querying one agent with one question.
// Exactly one Response exists per input question, in input order,
// whether the underlying call succeeded or not. Err is non-empty and
// Recommendations is empty when the call failed; both are valid
// terminal states.
type Response struct {
	Question        Question         `json:"question"`
	Recommendations []Recommendation `json:"recommendations"`
	Err             string           `json:"error,omitempty"`
}

package questions

import (
	"encoding/json"
	"fmt"

	"github.com/tbessen/geoscan/internal/llm"
)

// wrapperKeys are the object keys providers have been observed to wrap
// a question array under, tried in order. A bare JSON array is accepted
// before any of these.
var wrapperKeys = []string{"questions", "queries", "search_questions", "newQuestions"}

// decodeQuestions extracts a question list from an LLM reply. Each
// extraction strategy is tried in sequence and the first match wins; if
// none apply the reply is a parse failure, never a silent guess.
func decodeQuestions(content string) ([]string, error) {
	// A literal JSON null decodes into a nil slice without error; that
	// is no match, not an empty question list.
	var bare []string
	if err := json.Unmarshal([]byte(content), &bare); err == nil && bare != nil {
		return bare, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("%w: reply is neither array nor object: %v", llm.ErrParse, err)
	}

	for _, key := range wrapperKeys {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var qs []string
		if err := json.Unmarshal(raw, &qs); err == nil && qs != nil {
			return qs, nil
		}
	}

	return nil, fmt.Errorf("%w: no question array under any known key", llm.ErrParse)
}

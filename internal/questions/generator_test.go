package questions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbessen/geoscan/internal/brandfetch"
	"github.com/tbessen/geoscan/internal/llm"
)

type scriptedChat struct {
	reply    string
	err      error
	lastSys  string
	lastUser string
}

func (s *scriptedChat) Complete(ctx context.Context, system, user string) (string, error) {
	s.lastSys = system
	s.lastUser = user
	return s.reply, s.err
}

func testBrand() *brandfetch.Brand {
	b := &brandfetch.Brand{
		Name:        "Acme",
		Domain:      "acme.com",
		Description: "Tools and gadgets",
	}
	b.Company.Industries = []brandfetch.Industry{{Name: "Manufacturing"}}
	return b
}

func TestDecodeQuestions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"bare array", `["q1","q2","q3"]`, 3, false},
		{"questions key", `{"questions":["a","b"]}`, 2, false},
		{"queries key", `{"queries":["a"]}`, 1, false},
		{"search_questions key", `{"search_questions":["a","b","c","d"]}`, 4, false},
		{"newQuestions key", `{"newQuestions":["a","b"]}`, 2, false},
		{"first matching key wins", `{"queries":["a"],"questions":["x","y"]}`, 2, false},
		{"empty array ok", `[]`, 0, false},
		{"literal null", `null`, 0, true},
		{"null under known key", `{"questions":null}`, 0, true},
		{"null key then populated key", `{"questions":null,"queries":["a"]}`, 1, false},
		{"unknown key", `{"items":["a"]}`, 0, true},
		{"wrong element type", `{"questions":[1,2]}`, 0, true},
		{"free text", `Here are some questions`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeQuestions(tt.content)
			if tt.wantErr {
				if !errors.Is(err, llm.ErrParse) {
					t.Fatalf("expected ErrParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d questions, got %d", tt.want, len(got))
			}
		})
	}
}

func TestGenerate_PromptContents(t *testing.T) {
	chat := &scriptedChat{reply: `["best tool shop","where to buy gadgets"]`}
	g := NewGenerator(chat, nil)

	got, err := g.Generate(context.Background(), testBrand(), "germany")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}

	for _, want := range []string{"Acme", "acme.com", "Manufacturing"} {
		if !strings.Contains(chat.lastUser, want) {
			t.Errorf("expected %q in user prompt", want)
		}
	}
	if !strings.Contains(chat.lastUser, "germany market") {
		t.Errorf("expected locale qualifier in prompt, got: %s", chat.lastUser)
	}
	if !strings.Contains(chat.lastSys, "WITHOUT mentioning the company name") {
		t.Errorf("system prompt must forbid naming the company")
	}
}

func TestGenerate_InternationalAddsNoQualifier(t *testing.T) {
	chat := &scriptedChat{reply: `["q"]`}
	g := NewGenerator(chat, nil)

	if _, err := g.Generate(context.Background(), testBrand(), "international"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(chat.lastUser, "market:") {
		t.Errorf("international locale should not add a market qualifier")
	}
}

func TestGenerate_TransportErrorSurfaces(t *testing.T) {
	chat := &scriptedChat{err: llm.ErrTransport}
	g := NewGenerator(chat, nil)

	_, err := g.Generate(context.Background(), testBrand(), "")
	if !errors.Is(err, llm.ErrTransport) {
		t.Errorf("expected transport error to surface, got %v", err)
	}
}

func TestGenerateOptimized_PromptContents(t *testing.T) {
	chat := &scriptedChat{reply: `{"newQuestions":["variant one","variant two"]}`}
	g := NewGenerator(chat, nil)

	oc := OptimizeContext{
		TargetDomain:       "acme.com",
		OriginalQuestions:  []string{"best tools"},
		UsedQuestions:      []string{"best tools", "tool shop"},
		HasPrevious:        true,
		PrevTotalMentions:  10,
		PrevTargetMentions: 2,
		Iteration:          2,
	}

	got, err := g.GenerateOptimized(context.Background(), oc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}

	for _, want := range []string{
		"acme.com",
		"1. best tools",
		"2. tool shop",
		"Total mentions across all questions: 10",
		"Target domain mentions: 2",
		"Hit rate: 20.0%",
		"Iteration: 2",
	} {
		if !strings.Contains(chat.lastUser, want) {
			t.Errorf("expected %q in optimize prompt", want)
		}
	}
}

func TestGenerateOptimized_NoBaseline(t *testing.T) {
	chat := &scriptedChat{reply: `["q"]`}
	g := NewGenerator(chat, nil)

	_, err := g.GenerateOptimized(context.Background(), OptimizeContext{
		TargetDomain:      "acme.com",
		OriginalQuestions: []string{"q0"},
		Iteration:         1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(chat.lastUser, "No previous results available.") {
		t.Errorf("expected missing-baseline wording in prompt")
	}
}

func TestGenerateOptimized_ParseFailure(t *testing.T) {
	chat := &scriptedChat{reply: `{"plan":"trust me"}`}
	g := NewGenerator(chat, nil)

	_, err := g.GenerateOptimized(context.Background(), OptimizeContext{TargetDomain: "a.com", Iteration: 1})
	if !errors.Is(err, llm.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

// Package optimize drives the iterative question-optimization loop:
// regenerate search questions with feedback from the previous round,
// fan them out to the agents, and compare aggregate visibility stats
// against the preceding iteration.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/metrics"
	"github.com/tbessen/geoscan/internal/questions"
	"github.com/tbessen/geoscan/internal/ranking"
)

// ErrGeneration marks a whole-step failure of optimized question
// generation. Per-question agent failures are not errors at this level.
var ErrGeneration = errors.New("question generation failed")

// ErrQuery marks a whole-step failure of the agent query stage.
var ErrQuery = errors.New("agent query step failed")

// State is the lifecycle of one optimization session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IterationResult is one entry in the session's append-only log.
type IterationResult struct {
	Iteration      int               `json:"iteration"`
	NewQuestions   []agents.Question `json:"newQuestions"`
	AgentResponses []agents.Response `json:"agentResponses"`
	Analysis       Analysis          `json:"analysis"`
	IsComplete     bool              `json:"isComplete"`
}

// QuestionSource generates the next round of questions. Satisfied by
// *questions.Generator.
type QuestionSource interface {
	GenerateOptimized(ctx context.Context, oc questions.OptimizeContext) ([]agents.Question, error)
}

// AgentQuerier fans questions out to the agents. Satisfied by
// *agents.Orchestrator.
type AgentQuerier interface {
	QueryAll(ctx context.Context, qs []agents.Question) []agents.Response
}

// Config tunes the loop. MaxIterations defaults to 3; it has always
// been a fixed cap in practice but is exposed here rather than
// hardcoded.
type Config struct {
	MaxIterations int
}

// Controller owns the state machine for one optimization session.
// Iterations run strictly in sequence: each consumes the previous
// round's responses as its baseline, so concurrent RunIteration calls
// serialize on the controller's lock. The caller decides the pace
// (auto-advance or pause for user confirmation between iterations).
type Controller struct {
	gen    QuestionSource
	agents AgentQuerier
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	target    string
	original  []agents.Question
	used      []agents.Question
	previous  []agents.Response
	hasPrev   bool
	iteration int // 1-based number of the next iteration to run
	results   []IterationResult
}

// New builds an idle controller.
func New(gen QuestionSource, querier AgentQuerier, cfg Config, logger *slog.Logger) *Controller {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gen:    gen,
		agents: querier,
		cfg:    cfg,
		logger: logger,
		state:  StateIdle,
	}
}

// Start transitions Idle -> Running. baseline is the pre-optimization
// agent batch the first iteration compares against; nil means no
// baseline. used seeds the already-tried question list, and
// startIteration allows resuming a session mid-way (0 or 1 starts
// fresh).
func (c *Controller) Start(target string, original []agents.Question, baseline []agents.Response, used []agents.Question, startIteration int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return fmt.Errorf("cannot start optimization from state %s", c.state)
	}
	if startIteration < 1 {
		startIteration = 1
	}

	c.target = target
	c.original = original
	c.used = append([]agents.Question(nil), used...)
	c.previous = baseline
	c.hasPrev = baseline != nil
	c.iteration = startIteration
	c.state = StateRunning
	return nil
}

// RunIteration executes the next iteration: generate questions with
// feedback, query the agents, and analyze the delta. On a whole-step
// failure the session moves to Failed but keeps every prior result;
// calling RunIteration again retries the same iteration number.
// Overlapping calls serialize: the lock is held across the whole
// iteration so iteration k+1 never observes k mid-flight.
func (c *Controller) RunIteration(ctx context.Context) (IterationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning && c.state != StateFailed {
		return IterationResult{}, fmt.Errorf("cannot run iteration from state %s", c.state)
	}

	oc := questions.OptimizeContext{
		TargetDomain:      c.target,
		OriginalQuestions: c.original,
		UsedQuestions:     c.used,
		HasPrevious:       c.hasPrev,
		Iteration:         c.iteration,
	}
	if c.hasPrev {
		oc.PrevTotalMentions = ranking.TotalMentions(c.previous)
		oc.PrevTargetMentions = ranking.TargetMentions(c.previous, c.target)
	}

	newQuestions, err := c.gen.GenerateOptimized(ctx, oc)
	if err != nil {
		c.state = StateFailed
		return IterationResult{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(newQuestions) == 0 {
		c.state = StateFailed
		return IterationResult{}, fmt.Errorf("%w: generator returned no questions", ErrQuery)
	}

	responses := c.agents.QueryAll(ctx, newQuestions)

	result := IterationResult{
		Iteration:      c.iteration,
		NewQuestions:   newQuestions,
		AgentResponses: responses,
		Analysis:       analyze(responses, c.previous, c.target),
		IsComplete:     c.iteration >= c.cfg.MaxIterations,
	}

	c.results = append(c.results, result)
	c.used = append(c.used, newQuestions...)
	c.previous = responses
	c.hasPrev = true
	c.iteration++
	metrics.OptimizationIterationsTotal.Inc()

	if result.IsComplete {
		c.state = StateComplete
	} else {
		c.state = StateRunning
	}

	c.logger.Info("optimization iteration finished",
		"iteration", result.Iteration,
		"target", c.target,
		"target_mentions", result.Analysis.CurrentTargetMentions,
		"improving", result.Analysis.IsImproving,
		"complete", result.IsComplete)

	return result, nil
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns the append-only iteration log. Prior results survive
// a failed iteration.
func (c *Controller) Results() []IterationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]IterationResult(nil), c.results...)
}

// UsedQuestions returns every question tried so far, seeds included.
func (c *Controller) UsedQuestions() []agents.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]agents.Question(nil), c.used...)
}

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/inspect"
	"github.com/tbessen/geoscan/internal/optimize"
	"github.com/tbessen/geoscan/internal/ranking"
	"github.com/tbessen/geoscan/internal/report"
)

// envelope is the JSON shape every API response uses.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "geoscan",
	})
}

type analyzeCompanyRequest struct {
	CompanyURL string `json:"companyUrl"`
	Locale     string `json:"locale"`
}

type analyzeCompanyResponse struct {
	Company         any                     `json:"company"`
	TargetDomain    string                  `json:"targetDomain"`
	SearchQuestions []agents.Question       `json:"searchQuestions"`
	AgentResponses  []agents.Response       `json:"agentResponses"`
	RankedCompanies []ranking.RankedCompany `json:"rankedCompanies"`
}

// handleAnalyzeCompany runs the full first-pass pipeline: brand
// metadata, question generation, agent fan-out and ranking.
func (s *Server) handleAnalyzeCompany(w http.ResponseWriter, r *http.Request) {
	var req analyzeCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CompanyURL == "" {
		respondError(w, http.StatusBadRequest, "companyUrl is required")
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}

	ctx := r.Context()
	domain := ranking.ExtractDomain(req.CompanyURL)

	brand, err := s.brands.Brand(ctx, domain)
	if err != nil {
		s.logger.Error("brand lookup failed", "domain", domain, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	searchQuestions, err := s.gen.Generate(ctx, brand, locale)
	if err != nil {
		s.logger.Error("question generation failed", "domain", domain, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responses := s.agents.QueryAll(ctx, searchQuestions)

	s.mu.Lock()
	s.lastTarget = domain
	s.lastResponses = responses
	s.mu.Unlock()

	respondData(w, analyzeCompanyResponse{
		Company:         brand,
		TargetDomain:    domain,
		SearchQuestions: searchQuestions,
		AgentResponses:  responses,
		RankedCompanies: ranking.Aggregate(responses),
	})
}

type optimizeRequest struct {
	SessionID         string            `json:"sessionId"`
	TargetDomain      string            `json:"targetDomain"`
	OriginalQuestions []agents.Question `json:"originalQuestions"`
	UsedQuestions     []agents.Question `json:"usedQuestions"`
	CurrentResults    *struct {
		AgentResponses []agents.Response `json:"agentResponses"`
	} `json:"currentResults"`
	Iteration int `json:"iteration"`
}

type optimizeResponse struct {
	SessionID string `json:"sessionId"`
	optimize.IterationResult
}

// handleOptimize runs one optimization iteration. The first request
// for a session carries the target, questions and baseline results;
// follow-up requests continue the session by ID, so the controller's
// own state drives the feedback prompt.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		sessionID  string
		controller *optimize.Controller
	)

	if req.SessionID != "" {
		s.mu.Lock()
		controller = s.sessions[req.SessionID]
		s.mu.Unlock()
		if controller == nil {
			respondError(w, http.StatusBadRequest, "unknown session")
			return
		}
		sessionID = req.SessionID
	} else {
		if req.TargetDomain == "" || len(req.OriginalQuestions) == 0 {
			respondError(w, http.StatusBadRequest, "missing required fields: targetDomain and originalQuestions array")
			return
		}

		var baseline []agents.Response
		if req.CurrentResults != nil {
			baseline = req.CurrentResults.AgentResponses
		}

		controller = optimize.New(s.gen, s.agents, optimize.Config{MaxIterations: s.cfg.MaxIterations}, s.logger)
		if err := controller.Start(req.TargetDomain, req.OriginalQuestions, baseline, req.UsedQuestions, req.Iteration); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		sessionID = uuid.NewString()
		s.mu.Lock()
		s.sessions[sessionID] = controller
		s.mu.Unlock()
	}

	result, err := controller.RunIteration(r.Context())
	if err != nil {
		s.logger.Error("optimization iteration failed", "session", sessionID, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.IsComplete {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
	}

	respondData(w, optimizeResponse{SessionID: sessionID, IterationResult: result})
}

// handleReport renders a summary of the most recent analyze-company
// run, for operators poking the service without the UI. The format
// query parameter selects json (default), text or html.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	target, responses := s.lastTarget, s.lastResponses
	s.mu.Unlock()

	if target == "" {
		respondError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}

	summary := report.GenerateSummary(target, responses)

	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		err = report.WriteJSON(w, summary)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = report.WriteText(w, summary)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = report.WriteHTML(w, summary)
	default:
		respondError(w, http.StatusBadRequest, "unknown format: "+format)
		return
	}
	if err != nil {
		s.logger.Error("report rendering failed", "error", err)
	}
}

type domainComparisonRequest struct {
	AnalyzedDomain    string   `json:"analyzedDomain"`
	CompetitorDomains []string `json:"competitorDomains"`
}

// handleDomainComparison inspects the analyzed domain and its
// competitors, then asks the LLM to contrast them.
func (s *Server) handleDomainComparison(w http.ResponseWriter, r *http.Request) {
	if s.inspector == nil || s.comparer == nil {
		respondError(w, http.StatusServiceUnavailable, "domain comparison is not configured")
		return
	}

	var req domainComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AnalyzedDomain == "" || len(req.CompetitorDomains) == 0 {
		respondError(w, http.StatusBadRequest, "missing required fields: analyzedDomain and competitorDomains array")
		return
	}

	ctx := r.Context()
	reports := inspect.InspectAll(ctx, s.inspector, append([]string{req.AnalyzedDomain}, req.CompetitorDomains...))

	result, err := s.comparer.Compare(ctx, reports[0], reports[1:])
	if err != nil {
		s.logger.Error("domain comparison failed", "domain", req.AnalyzedDomain, "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(w, result)
}

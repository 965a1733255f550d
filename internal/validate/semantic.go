package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pagewright/internal/llm"
	"pagewright/internal/logging"
	"pagewright/internal/types"
)

// =============================================================================
// SEMANTIC TIER - OPTIONAL MODEL-BASED REVIEW
// =============================================================================

// SemanticReviewer re-examines markup for mismatches the automated tiers
// cannot see (controls present but visually wrong, content that ignores the
// request). It is strictly additive: findings merge into the automated
// report, and its own failures degrade to an empty finding set so an
// optional tier can never fail a validation.
type SemanticReviewer struct {
	client llm.Client
}

// NewSemanticReviewer creates the reviewer.
func NewSemanticReviewer(client llm.Client) *SemanticReviewer {
	return &SemanticReviewer{client: client}
}

const semanticSystemPrompt = `You are a strict reviewer of generated static web pages.
Given a page plan and its markup, report only real problems with how the page
serves its declared content type and interaction pattern. Respond with JSON:
{"findings": [{"message": "...", "severity": "critical" | "warning"}]}
Return {"findings": []} when the page is acceptable.`

type semanticResponse struct {
	Findings []struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"findings"`
}

// Review asks the model for additional findings. Never returns an error.
func (s *SemanticReviewer) Review(ctx context.Context, markup string, p *types.Plan) []types.Issue {
	prompt := fmt.Sprintf("Content type: %s\nInteraction pattern: %s\nTitle: %s\n\nMarkup:\n%s",
		p.ContentType, p.InteractionPattern, p.Metadata.Title, markup)

	response, err := s.client.CompleteWithSystem(ctx, semanticSystemPrompt, prompt)
	if err != nil {
		logging.Validate("semantic review skipped: %v", err)
		return nil
	}

	jsonStr := llm.ExtractJSON(response)
	if jsonStr == "" {
		logging.Validate("semantic review returned no JSON; ignoring")
		return nil
	}

	var parsed semanticResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		logging.Validate("semantic review JSON malformed; ignoring: %v", err)
		return nil
	}

	var issues []types.Issue
	for _, f := range parsed.Findings {
		if strings.TrimSpace(f.Message) == "" {
			continue
		}
		severity := types.SeverityWarning
		if f.Severity == string(types.SeverityCritical) {
			severity = types.SeverityCritical
		}
		issues = append(issues, types.Issue{
			Code:     types.IssueSemanticMismatch,
			Message:  f.Message,
			Severity: severity,
		})
	}
	return issues
}

// Merge folds semantic findings into an automated report.
func Merge(r Report, extra []types.Issue) Report {
	for _, issue := range extra {
		r.add(issue)
	}
	return r
}

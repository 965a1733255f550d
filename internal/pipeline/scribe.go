package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pagewright/internal/llm"
	"pagewright/internal/logging"
	"pagewright/internal/types"
)

type scribeResponse struct {
	Metadata    types.PageMetadata `json:"metadata"`
	ReleaseText string             `json:"releaseText"`
}

// scribe reconciles metadata with what was actually built and writes the
// release note. This stage never aborts the pipeline: by the time it runs,
// content exists and deserves to ship even with thin documentation, so
// every failure path returns the fallback instead of an error.
func (o *Orchestrator) scribe(ctx context.Context, p *types.Plan, final *types.BuildAttempt, score int) *types.Documentation {
	timer := logging.StartTimer(logging.CategoryScribe, "scribe stage")
	defer timer.Stop()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan metadata: title=%q icon=%q description=%q collection=%q\n",
		p.Metadata.Title, p.Metadata.Icon, p.Metadata.Description, p.Metadata.Collection)
	fmt.Fprintf(&sb, "Content type: %s, interaction pattern: %s, score: %d\n",
		p.ContentType, p.InteractionPattern, score)
	if final != nil && len(final.Warnings) > 0 {
		sb.WriteString("Remaining warnings:\n")
		for _, w := range final.Warnings {
			fmt.Fprintf(&sb, "- %s: %s\n", w.Code, w.Message)
		}
	}
	if final != nil {
		fmt.Fprintf(&sb, "\nFinal markup:\n%s\n", truncate(final.GeneratedMarkup, 8000))
	}

	response, err := o.client.CompleteWithSystem(ctx, o.prompt(roleScribe), sb.String())
	if err != nil {
		logging.Scribe("generation failed, using fallback documentation: %v", err)
		return fallbackDocumentation(p)
	}

	jsonStr := llm.ExtractJSON(response)
	if jsonStr == "" {
		logging.Scribe("no JSON in response, using fallback documentation")
		return fallbackDocumentation(p)
	}

	var parsed scribeResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		logging.Scribe("malformed response, using fallback documentation: %v", err)
		return fallbackDocumentation(p)
	}

	doc := &types.Documentation{
		Metadata:    parsed.Metadata,
		ReleaseText: strings.TrimSpace(parsed.ReleaseText),
	}
	// Refinement may not drop fields the plan already had.
	if doc.Metadata.Title == "" {
		doc.Metadata.Title = p.Metadata.Title
	}
	if doc.Metadata.Icon == "" {
		doc.Metadata.Icon = p.Metadata.Icon
	}
	if doc.Metadata.Description == "" {
		doc.Metadata.Description = p.Metadata.Description
	}
	if doc.Metadata.Collection == "" {
		doc.Metadata.Collection = p.Metadata.Collection
	}
	if doc.ReleaseText == "" {
		doc.ReleaseText = genericReleaseText(p)
	}
	return doc
}

func fallbackDocumentation(p *types.Plan) *types.Documentation {
	return &types.Documentation{
		Metadata:    p.Metadata,
		ReleaseText: genericReleaseText(p),
		Fallback:    true,
	}
}

func genericReleaseText(p *types.Plan) string {
	return fmt.Sprintf("%s %s is now available.", p.Metadata.Icon, p.Metadata.Title)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pagewright/internal/llm"
	"pagewright/internal/logging"
	"pagewright/internal/policy"
	"pagewright/internal/types"
)

// build generates the page for one attempt. priorIssues is empty on the
// first attempt; later attempts are fresh generations conditioned on the
// enumerated findings, never diffs of the previous markup.
func (o *Orchestrator) build(ctx context.Context, p *types.Plan, attempt int, priorIssues []types.Issue) (markup, script string, err error) {
	timer := logging.StartTimer(logging.CategoryBuilder, fmt.Sprintf("builder attempt %d", attempt))
	defer timer.Stop()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Build the page %q (%s).\n", p.Metadata.Title, p.ContentType)
	fmt.Fprintf(&sb, "Description: %s\n", p.Metadata.Description)
	if len(p.Features) > 0 {
		fmt.Fprintf(&sb, "Features: %s\n", strings.Join(p.Features, ", "))
	}
	sb.WriteString("\n")
	sb.WriteString(policy.BuilderGuidance(p.InteractionPattern))
	if p.ScriptFile() != "" {
		fmt.Fprintf(&sb, "\nOutput two fenced code blocks: ```html for %s and ```js for %s. The HTML must load the script with <script src=%q></script>.\n",
			p.MarkupFile(), p.ScriptFile(), p.ScriptFile())
	} else {
		sb.WriteString("\nOutput the raw HTML only, with no markdown fences.\n")
	}
	if feedback := formatFeedback(priorIssues); feedback != "" {
		sb.WriteString("\n")
		sb.WriteString(feedback)
	}

	response, err := o.client.CompleteWithSystem(ctx, o.prompt(roleBuilder), sb.String())
	if err != nil {
		return "", "", fmt.Errorf("builder generation failed: %w", err)
	}

	markup = llm.ExtractCodeBlock(response, "html")
	if strings.TrimSpace(markup) == "" {
		return "", "", fmt.Errorf("builder returned no markup")
	}
	if p.ScriptFile() != "" {
		script = extractScript(response)
	}

	return markup, script, nil
}

// extractScript pulls a companion js block, tolerating either fence tag.
func extractScript(response string) string {
	for _, tag := range []string{"js", "javascript"} {
		if idx := strings.Index(response, "```"+tag); idx != -1 {
			return llm.ExtractCodeBlock(response[idx:], tag)
		}
	}
	return ""
}

// writeArtifacts persists an attempt's output to the declared paths
// immediately, before testing. A later attempt simply overwrites; only the
// last attempt's artifact survives the loop.
func (o *Orchestrator) writeArtifacts(p *types.Plan, files map[string]string) error {
	for rel, content := range files {
		dst := filepath.Join(o.artifactsDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
		if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write artifact %s: %w", rel, err)
		}
	}
	logging.BuilderDebug("wrote %d artifacts for %s", len(files), p.Slug)
	return nil
}

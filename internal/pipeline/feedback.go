package pipeline

import (
	"fmt"
	"strings"

	"pagewright/internal/types"
)

// formatFeedback renders prior findings for the next Builder prompt.
// Every finding appears verbatim (code, severity, message); this is what
// makes the retry loop more than blind resampling.
func formatFeedback(issues []types.Issue) string {
	if len(issues) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("The previous attempt failed validation. Fix ALL of the following:\n")
	for _, i := range issues {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", i.Severity, i.Code, i.Message)
	}
	return sb.String()
}

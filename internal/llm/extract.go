package llm

import (
	"strings"
)

// ExtractJSON finds the first complete JSON object in a model response,
// tolerating markdown wrappers and prose around it. Returns "" when no
// balanced object exists.
func ExtractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}

// ExtractCodeBlock pulls the contents of the first fenced code block with
// the given language tag ("" matches any fence). When the response has no
// fences at all it is returned as-is, trimmed: models sometimes emit bare
// content despite instructions.
func ExtractCodeBlock(response, lang string) string {
	marker := "```" + lang
	start := strings.Index(response, marker)
	if start == -1 {
		if lang != "" {
			// Fall back to an untagged fence
			return ExtractCodeBlock(response, "")
		}
		return strings.TrimSpace(response)
	}

	body := response[start+len(marker):]
	// Skip the remainder of the fence line (e.g. ```html\n)
	if nl := strings.Index(body, "\n"); nl != -1 {
		body = body[nl+1:]
	}

	end := strings.Index(body, "```")
	if end == -1 {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(body[:end])
}

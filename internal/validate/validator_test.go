package validate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagewright/internal/types"
)

// pageSkeleton passes every structural check; tests splice pattern-specific
// bodies and styles into it.
func pageSkeleton(style, body string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="../theme.css">
<style>` + style + `</style>
</head>
<body>
<a href="index.html">Home</a>
` + body + `
</body>
</html>`
}

func planFor(ct types.ContentType, pattern types.InteractionPattern) *types.Plan {
	return &types.Plan{
		Slug:               "test-page",
		ContentType:        ct,
		InteractionPattern: pattern,
		Files:              []string{"test-page.html"},
		Metadata:           types.PageMetadata{Title: "Test"},
	}
}

func hasIssue(issues []types.Issue, code types.IssueCode) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

const dpad = `<div class="dpad">
<button class="btn-up">▲</button>
<button class="btn-down">▼</button>
<button class="btn-left">◀</button>
<button class="btn-right">▶</button>
</div>`

func TestStructuralTier(t *testing.T) {
	v := New(Options{})
	plan := planFor(types.ContentStory, types.PatternPassiveScroll)

	t.Run("clean page has no structural findings", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "<p>hello</p>"), plan)
		if r.HasCritical() {
			t.Errorf("unexpected criticals: %+v", r.Issues)
		}
	})

	t.Run("truncated document", func(t *testing.T) {
		markup := strings.TrimSuffix(pageSkeleton("", "<p>hi</p>"), "</html>")
		r := v.Validate(markup, plan)
		if !hasIssue(r.Issues, types.IssueIncompleteDocument) {
			t.Error("expected INCOMPLETE_DOCUMENT")
		}
	})

	t.Run("missing viewport", func(t *testing.T) {
		markup := strings.Replace(pageSkeleton("", ""), `name="viewport"`, `name="nope"`, 1)
		r := v.Validate(markup, plan)
		if !hasIssue(r.Issues, types.IssueMissingViewport) {
			t.Error("expected MISSING_VIEWPORT")
		}
	})

	t.Run("missing theme link is critical", func(t *testing.T) {
		markup := strings.Replace(pageSkeleton("", ""), "theme.css", "other.css", 1)
		r := v.Validate(markup, plan)
		if !hasIssue(r.Issues, types.IssueMissingThemeLink) {
			t.Error("expected MISSING_THEME_LINK")
		}
	})

	t.Run("missing home link is a warning", func(t *testing.T) {
		markup := strings.Replace(pageSkeleton("", ""), `<a href="index.html">Home</a>`, "", 1)
		r := v.Validate(markup, plan)
		if hasIssue(r.Issues, types.IssueMissingHomeLink) {
			t.Error("MISSING_HOME_LINK must not be critical")
		}
		if !hasIssue(r.Warnings, types.IssueMissingHomeLink) {
			t.Error("expected MISSING_HOME_LINK warning")
		}
	})

	t.Run("unbalanced script blocks", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "<script>let x = 1;"), plan)
		if !hasIssue(r.Issues, types.IssueMismatchedScriptBlocks) {
			t.Error("expected MISMATCHED_SCRIPT_BLOCKS")
		}
	})

	t.Run("markdown fence leakage", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "```html\n<p>hi</p>\n```"), plan)
		if !hasIssue(r.Issues, types.IssueMarkdownArtifacts) {
			t.Error("expected MARKDOWN_ARTIFACTS")
		}
	})

	t.Run("placeholder markers warn", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "<p>TODO finish this section</p>"), plan)
		if !hasIssue(r.Warnings, types.IssueIncompleteCode) {
			t.Error("expected INCOMPLETE_CODE warning")
		}
	})

	t.Run("padding conflict warns", func(t *testing.T) {
		style := "body { padding: 0; padding-top: 20px; }"
		r := v.Validate(pageSkeleton(style, ""), plan)
		if !hasIssue(r.Warnings, types.IssuePaddingConflict) {
			t.Error("expected PADDING_CONFLICT warning")
		}
	})
}

func TestPatternTier(t *testing.T) {
	v := New(Options{})

	t.Run("directional-movement satisfied", func(t *testing.T) {
		markup := pageSkeleton("@media (max-width: 600px) { .dpad { scale: 1.2; } }", dpad)
		r := v.Validate(markup, planFor(types.ContentGame, types.PatternDirectionalMovement))
		if r.HasCritical() {
			t.Errorf("unexpected criticals: %+v", r.Issues)
		}
	})

	t.Run("directional-movement missing controls", func(t *testing.T) {
		markup := pageSkeleton("@media (max-width: 600px) {}", "<p>no controls</p>")
		r := v.Validate(markup, planFor(types.ContentGame, types.PatternDirectionalMovement))
		if !hasIssue(r.Issues, types.IssueMissingDirectional) {
			t.Error("expected MISSING_DIRECTIONAL_CONTROLS")
		}
	})

	t.Run("directional-movement missing breakpoints", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", dpad), planFor(types.ContentGame, types.PatternDirectionalMovement))
		if !hasIssue(r.Issues, types.IssueNoResponsiveBreakpoints) {
			t.Error("expected NO_RESPONSIVE_BREAKPOINTS critical")
		}
	})

	t.Run("direct-touch with stray dpad", func(t *testing.T) {
		markup := pageSkeleton("@media (max-width: 600px) {}", dpad+`<button onclick="tap()">Tap</button>`)
		r := v.Validate(markup, planFor(types.ContentGame, types.PatternDirectTouch))
		if !hasIssue(r.Issues, types.IssueUnwantedDirectional) {
			t.Error("expected UNWANTED_DIRECTIONAL_CONTROLS")
		}
	})

	t.Run("direct-touch without handlers", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "<p>static</p>"), planFor(types.ContentUtility, types.PatternDirectTouch))
		if !hasIssue(r.Issues, types.IssueMissingTouchHandlers) {
			t.Error("expected MISSING_TOUCH_HANDLERS")
		}
	})

	t.Run("direct-touch game without breakpoints warns", func(t *testing.T) {
		markup := pageSkeleton("", `<button onclick="tap()">Tap</button>`)
		r := v.Validate(markup, planFor(types.ContentGame, types.PatternDirectTouch))
		if !hasIssue(r.Warnings, types.IssueNoResponsiveBreakpoints) {
			t.Error("expected NO_RESPONSIVE_BREAKPOINTS warning for game content")
		}
	})

	t.Run("hybrid missing action control warns", func(t *testing.T) {
		markup := pageSkeleton("@media (max-width: 600px) {}", dpad)
		r := v.Validate(markup, planFor(types.ContentGame, types.PatternHybridControls))
		if r.HasCritical() {
			t.Errorf("unexpected criticals: %+v", r.Issues)
		}
		if !hasIssue(r.Warnings, types.IssueMissingActionControl) {
			t.Error("expected MISSING_ACTION_CONTROL warning")
		}
	})

	t.Run("form-based without inputs warns", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "<p>nothing to fill</p>"), planFor(types.ContentUtility, types.PatternFormBased))
		if !hasIssue(r.Warnings, types.IssueMissingFormElements) {
			t.Error("expected MISSING_FORM_ELEMENTS warning")
		}
	})

	t.Run("passive-scroll with game controls", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", dpad), planFor(types.ContentStory, types.PatternPassiveScroll))
		if !hasIssue(r.Issues, types.IssueUnwantedGameControls) {
			t.Error("expected UNWANTED_GAME_CONTROLS")
		}
	})

	t.Run("passive-scroll with game loop", func(t *testing.T) {
		body := "<script>function loop(){requestAnimationFrame(loop)}loop()</script>"
		r := v.Validate(pageSkeleton("", body), planFor(types.ContentStory, types.PatternPassiveScroll))
		if !hasIssue(r.Issues, types.IssueUnwantedGameControls) {
			t.Error("expected UNWANTED_GAME_CONTROLS for game loop")
		}
	})
}

func TestCanvasChecks(t *testing.T) {
	v := New(Options{MaxCanvasWidth: 800})
	plan := planFor(types.ContentGame, types.PatternDirectTouch)

	t.Run("oversized fixed canvas warns", func(t *testing.T) {
		body := `<canvas id="game" width="1200" height="800"></canvas><button onclick="tap()">Go</button>`
		r := v.Validate(pageSkeleton("@media (max-width: 600px) {}", body), plan)
		if !hasIssue(r.Warnings, types.IssueCanvasTooLarge) {
			t.Error("expected CANVAS_TOO_LARGE warning")
		}
	})

	t.Run("non-responsive canvas warns", func(t *testing.T) {
		body := `<canvas id="game" width="400"></canvas><button onclick="tap()">Go</button>`
		r := v.Validate(pageSkeleton("@media (max-width: 600px) {}", body), plan)
		if !hasIssue(r.Warnings, types.IssueCanvasNotResponsive) {
			t.Error("expected CANVAS_NOT_RESPONSIVE warning")
		}
	})

	t.Run("responsive canvas is clean", func(t *testing.T) {
		style := "canvas { max-width: 100%; height: auto; } @media (max-width: 600px) {}"
		body := `<canvas id="game" width="400"></canvas><button onclick="tap()">Go</button>`
		r := v.Validate(pageSkeleton(style, body), plan)
		if hasIssue(r.Warnings, types.IssueCanvasTooLarge) || hasIssue(r.Warnings, types.IssueCanvasNotResponsive) {
			t.Errorf("unexpected canvas warnings: %+v", r.Warnings)
		}
	})

	t.Run("no canvas means no canvas findings", func(t *testing.T) {
		r := v.Validate(pageSkeleton("", "<p>text</p>"), planFor(types.ContentStory, types.PatternPassiveScroll))
		if hasIssue(r.Warnings, types.IssueCanvasNotResponsive) {
			t.Error("canvas checks must only run when a canvas exists")
		}
	})
}

func TestValidator_Deterministic(t *testing.T) {
	v := New(Options{})
	markup := pageSkeleton("body { padding: 0; padding: 10px; }", dpad+"<canvas width='900'></canvas>")
	plan := planFor(types.ContentGame, types.PatternDirectTouch)

	first := v.Validate(markup, plan)
	second := v.Validate(markup, plan)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("validator output not deterministic (-first +second):\n%s", diff)
	}
}

package validate

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"pagewright/internal/types"
)

// canvasResponsiveRe matches a CSS rule giving canvas a fluid width.
var canvasResponsiveRe = regexp.MustCompile(`canvas[^{}]*\{[^}]*(max-width|width\s*:\s*100%)`)

// checkCanvas flags drawing surfaces that will not fit a phone screen.
// Runs only when the page actually has a canvas element.
func (v *Validator) checkCanvas(markup, lower string, report *Report) {
	if !strings.Contains(lower, "<canvas") {
		return
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// Malformed enough to defeat the parser is already covered by the
		// structural tier; nothing more to add here.
		return
	}

	var visit func(*html.Node)
	var widths []int
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "canvas" {
			for _, attr := range n.Attr {
				if attr.Key == "width" {
					if w, err := strconv.Atoi(strings.TrimSpace(attr.Val)); err == nil {
						widths = append(widths, w)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	for _, w := range widths {
		if w > v.opts.MaxCanvasWidth {
			report.addf(types.IssueCanvasTooLarge, types.SeverityWarning,
				"canvas width %d exceeds the mobile-friendly ceiling of %d", w, v.opts.MaxCanvasWidth)
			break
		}
	}

	if !canvasResponsiveRe.MatchString(lower) {
		report.addf(types.IssueCanvasNotResponsive, types.SeverityWarning,
			"canvas has no responsive max-width rule")
	}
}

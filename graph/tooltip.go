package graph

import (
	"html"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// nodeTooltip builds the hover text shown for a node: the header, a break, then
// the body. Long comma-separated bodies (author lists) are wrapped so the tooltip
// stays readable. Both parts are HTML-escaped since the renderer injects titles as markup.
func nodeTooltip(header, body string) string {
	var lines []string
	if len(strings.Split(body, ",")) >= tooltipWrapMinItems {
		lines = strings.Split(wordwrap.WrapString(body, tooltipWrapWidth), "\n")
	} else {
		lines = []string{body}
	}

	parts := make([]string, 0, len(lines)+1)
	parts = append(parts, html.EscapeString(header))
	for _, line := range lines {
		parts = append(parts, html.EscapeString(strings.TrimSpace(line)))
	}
	return strings.Join(parts, tooltipBreak)
}

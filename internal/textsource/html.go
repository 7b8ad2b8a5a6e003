package textsource

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLDocument is the readable content of an HTML policy export.
type HTMLDocument struct {
	Title string
	Text  string
}

// FromHTML extracts readable text from an HTML policy export. Block elements
// and table rows end lines, table cells are separated by a space, and script
// or style content is dropped. Layout inside <pre> is preserved.
func FromHTML(input []byte) HTMLDocument {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return HTMLDocument{}
	}
	title := ""
	if t := findFirst(node, "title"); t != nil && t.FirstChild != nil {
		title = strings.TrimSpace(t.FirstChild.Data)
	}
	root := findFirst(node, "body")
	if root == nil {
		root = node
	}
	var b strings.Builder
	collectText(&b, root, false)
	return HTMLDocument{Title: title, Text: tidyLines(b.String())}
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	name := ""
	if n.Type == html.ElementNode {
		name = strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "template", "head":
			return
		case "pre":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "table", "ul", "ol":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}
	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(data)
		}
		b.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}
	switch name {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "table":
		b.WriteString("\n\n")
	case "li", "tr", "div", "pre":
		b.WriteString("\n")
	}
}

// tidyLines trims every line, collapses space runs inside lines and keeps at
// most one blank line in a row.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) == 0 || out[len(out)-1] == "" {
				continue
			}
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// Package help renders the editor's compiled-in Markdown documentation
// to plain terminal text for the "help"/"show" commands (§6's "dumps for
// introspection" and "built-in configs").
package help

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/ked-editor/ked/internal/errbuf"
)

//go:embed docs/*.md
var docsFS embed.FS

const mdExtensions = blackfriday.NoIntraEmphasis |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough |
	blackfriday.SpaceHeadings |
	blackfriday.HeadingIDs |
	blackfriday.BackslashLineBreak

// Topics lists the available help topic names (doc filenames without
// their .md extension), sorted.
func Topics() []string {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Render returns topic's documentation as plain text, headings
// underlined and code fences indented, the way a terminal pager without
// markdown support would want it.
func Render(topic string) (string, error) {
	source, err := docsFS.ReadFile("docs/" + topic + ".md")
	if err != nil {
		return "", &errbuf.NotFoundError{Kind: "help topic", Name: topic}
	}
	md := blackfriday.New(blackfriday.WithExtensions(mdExtensions))
	root := md.Parse(source)

	var b strings.Builder
	listDepth := 0
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Heading:
			if !entering {
				return blackfriday.GoToNext
			}
			text := strings.TrimSpace(headingText(node))
			b.WriteString(text)
			b.WriteByte('\n')
			rule := "="
			if node.HeadingData.Level > 1 {
				rule = "-"
			}
			b.WriteString(strings.Repeat(rule, len(text)))
			b.WriteString("\n\n")
			return blackfriday.SkipChildren
		case blackfriday.Paragraph:
			if !entering {
				b.WriteString("\n\n")
			}
		case blackfriday.CodeBlock:
			for _, line := range strings.Split(strings.TrimRight(string(node.Literal), "\n"), "\n") {
				b.WriteString("    ")
				b.WriteString(line)
				b.WriteByte('\n')
			}
			b.WriteByte('\n')
		case blackfriday.List:
			if entering {
				listDepth++
			} else {
				listDepth--
				if listDepth == 0 {
					b.WriteByte('\n')
				}
			}
		case blackfriday.Item:
			if entering {
				b.WriteString(strings.Repeat("  ", listDepth-1))
				b.WriteString("* ")
			} else {
				b.WriteByte('\n')
			}
		case blackfriday.Text:
			if entering {
				b.Write(node.Literal)
			}
		case blackfriday.Code:
			if entering {
				b.WriteByte('`')
				b.Write(node.Literal)
				b.WriteByte('`')
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			b.WriteByte('\n')
		}
		return blackfriday.GoToNext
	})

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// headingText collects the plain-text content of a heading node, walking
// past inline formatting (strong/emph/code) to get at the literal runs.
func headingText(node *blackfriday.Node) string {
	var b bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.Next {
		collectText(child, &b)
	}
	return b.String()
}

func collectText(node *blackfriday.Node, b *bytes.Buffer) {
	if node.Literal != nil {
		b.Write(node.Literal)
	}
	for child := node.FirstChild; child != nil; child = child.Next {
		collectText(child, b)
	}
}

// Table renders name/value pairs as a simple two-column table, the shape
// a "show" command with no argument (dump every option) wants.
func Table(rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-*s  %s\n", width, r[0], r[1])
	}
	return b.String()
}

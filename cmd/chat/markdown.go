package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// renderMarkdown turns a model reply into plain terminal text. Fenced code
// is indented under a language label, headings are underlined, list items
// are indented with their marker and emphasis markers are dropped.
func renderMarkdown(content string) string {
	src := []byte(content)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	r := &termRenderer{src: src}
	ast.Walk(doc, r.walk)
	return strings.TrimRight(r.b.String(), "\n")
}

type listState struct {
	ordered bool
	next    int
}

type termRenderer struct {
	src   []byte
	b     strings.Builder
	lists []listState
	mark  int
}

func (r *termRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	// blank line between top-level blocks
	if entering && n.Type() == ast.TypeBlock && n.PreviousSibling() != nil &&
		n.Parent() != nil && n.Parent().Kind() == ast.KindDocument {
		r.b.WriteByte('\n')
	}

	switch n := n.(type) {
	case *ast.Heading:
		if entering {
			r.mark = r.b.Len()
			break
		}
		title := r.b.String()[r.mark:]
		r.b.WriteString("\n" + strings.Repeat("-", utf8.RuneCountInString(title)) + "\n")

	case *ast.Paragraph, *ast.TextBlock:
		if !entering {
			r.b.WriteByte('\n')
		}

	case *ast.List:
		if entering {
			r.lists = append(r.lists, listState{ordered: n.IsOrdered(), next: n.Start})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
		}

	case *ast.ListItem:
		if !entering || len(r.lists) == 0 {
			break
		}
		top := &r.lists[len(r.lists)-1]
		indent := strings.Repeat("  ", len(r.lists))
		if top.ordered {
			fmt.Fprintf(&r.b, "%s%d. ", indent, top.next)
			top.next++
		} else {
			r.b.WriteString(indent + "• ")
		}

	case *ast.FencedCodeBlock:
		lang := string(n.Language(r.src))
		if lang == "" {
			lang = "code"
		}
		r.writeCode(n, lang)
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		r.writeCode(n, "code")
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.b.Write(seg.Value(r.src))
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			r.b.WriteString("----\n")
		}

	case *ast.CodeSpan:
		r.b.WriteByte('`')

	case *ast.Link:
		if !entering {
			fmt.Fprintf(&r.b, " (%s)", n.Destination)
		}

	case *ast.AutoLink:
		if entering {
			r.b.Write(n.URL(r.src))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if !entering {
			break
		}
		r.b.Write(n.Segment.Value(r.src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			r.b.WriteByte('\n')
		}

	case *ast.String:
		if entering {
			r.b.Write(n.Value)
		}
	}
	return ast.WalkContinue, nil
}

func (r *termRenderer) writeCode(n ast.Node, label string) {
	r.b.WriteString("    ---- " + label + "\n")
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.src)), "\n")
		r.b.WriteString("    " + line + "\n")
	}
	r.b.WriteString("    ----\n")
}

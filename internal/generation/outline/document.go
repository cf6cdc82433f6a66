package outline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// document is the outline extracted from raw course content.
//
// Level one headings name the course, level two headings open a section that
// becomes a learning objective, and level three headings or list items inside
// a section become knowledge components. Paragraphs describe the closest
// heading and links become resources.
type document struct {
	Title      string
	Objectives []string
	Sections   []*section
}

type section struct {
	Title       string
	Description string
	Components  []*component
	Links       []link
}

type component struct {
	Title       string
	Description string
	Links       []link
}

type link struct {
	Title string
	URL   string
}

type frontMatter struct {
	Title      string   `yaml:"title"`
	Objectives []string `yaml:"objectives"`
}

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
).Parser()

func parseDocument(raw string) (*document, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(strings.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	doc := &document{
		Title:      strings.TrimSpace(meta.Title),
		Objectives: trimAll(meta.Objectives),
	}

	source := bytes.TrimSpace(body)
	root := markdownParser.Parse(text.NewReader(source))

	var current *section
	var currentComponent *component
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			title := nodeText(n, source)
			if title == "" {
				continue
			}
			switch {
			case n.Level == 1:
				if doc.Title == "" {
					doc.Title = title
				}
			case n.Level == 2:
				current = &section{Title: title}
				currentComponent = nil
				doc.Sections = append(doc.Sections, current)
			case current != nil:
				currentComponent = &component{Title: title}
				current.Components = append(current.Components, currentComponent)
			}
		case *ast.List:
			if current == nil {
				continue
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				title := nodeText(item, source)
				if title == "" {
					continue
				}
				current.Components = append(current.Components, &component{
					Title: title,
					Links: collectLinks(item, source),
				})
			}
			currentComponent = nil
		default:
			if current == nil {
				continue
			}
			paragraph := nodeText(n, source)
			links := collectLinks(n, source)
			if currentComponent != nil {
				currentComponent.Description = joinText(currentComponent.Description, paragraph)
				currentComponent.Links = append(currentComponent.Links, links...)
				continue
			}
			current.Description = joinText(current.Description, paragraph)
			current.Links = append(current.Links, links...)
		}
	}
	return doc, nil
}

// section finds a section by objective title, ignoring case.
func (d *document) section(title string) *section {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Title, strings.TrimSpace(title)) {
			return s
		}
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

func collectLinks(node ast.Node, source []byte) []link {
	var links []link
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch l := child.(type) {
		case *ast.Link:
			url := string(l.Destination)
			title := nodeText(l, source)
			if title == "" {
				title = url
			}
			links = append(links, link{Title: title, URL: url})
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			url := string(l.URL(source))
			links = append(links, link{Title: string(l.Label(source)), URL: url})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return links
}

func joinText(existing, addition string) string {
	switch {
	case addition == "":
		return existing
	case existing == "":
		return addition
	default:
		return existing + " " + addition
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package docs

import (
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// Glyph types that render as numbered list items.
var orderedGlyphs = map[string]bool{
	"DECIMAL":      true,
	"ZERO_DECIMAL": true,
	"ALPHA":        true,
	"UPPER_ALPHA":  true,
	"ROMAN":        true,
	"UPPER_ROMAN":  true,
}

// section is one body of content: the document body or a single tab.
type section struct {
	title   string
	index   int
	depth   int
	content []*docs.StructuralElement
	lists   map[string]docs.List
	inline  map[string]docs.InlineObject
}

// sections flattens a document into its bodies. Documents fetched with tab
// content carry everything in Tabs; older responses only have Body.
func sections(doc *docs.Document) []section {
	if len(doc.Tabs) == 0 {
		if doc.Body == nil {
			return nil
		}
		return []section{{content: doc.Body.Content, lists: doc.Lists, inline: doc.InlineObjects}}
	}

	var out []section
	var walk func(tabs []*docs.Tab, depth int)
	walk = func(tabs []*docs.Tab, depth int) {
		for i, tab := range tabs {
			s := section{index: i, depth: depth}
			if tab.TabProperties != nil {
				s.title = tab.TabProperties.Title
			}
			if tab.DocumentTab != nil {
				s.lists = tab.DocumentTab.Lists
				s.inline = tab.DocumentTab.InlineObjects
				if tab.DocumentTab.Body != nil {
					s.content = tab.DocumentTab.Body.Content
				}
			}
			out = append(out, s)
			walk(tab.ChildTabs, depth+1)
		}
	}
	walk(doc.Tabs, 0)
	return out
}

// Markdown renders a document as Markdown. Tabs become headings below the
// document title.
func Markdown(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	w := &markdownWriter{}
	if doc.Title != "" {
		fmt.Fprintf(&w.b, "# %s\n\n", doc.Title)
	}

	tabbed := len(doc.Tabs) > 0
	for _, s := range sections(doc) {
		if tabbed {
			w.tabHeading(s)
		}
		w.lists, w.inline = s.lists, s.inline
		for _, el := range s.content {
			w.element(el)
		}
	}
	return w.b.String(), nil
}

type markdownWriter struct {
	b      strings.Builder
	lists  map[string]docs.List
	inline map[string]docs.InlineObject
}

func (w *markdownWriter) tabHeading(s section) {
	level := strings.Repeat("#", s.depth+2)
	switch {
	case s.title != "" && s.depth == 0:
		fmt.Fprintf(&w.b, "%s Tab: %s\n\n", level, s.title)
	case s.title != "":
		fmt.Fprintf(&w.b, "%s %s\n\n", level, s.title)
	case s.depth > 0:
		fmt.Fprintf(&w.b, "%s Subtab %d\n\n", level, s.index+1)
	case s.index > 0:
		fmt.Fprintf(&w.b, "%s Tab %d\n\n", level, s.index+1)
	}
}

func (w *markdownWriter) element(el *docs.StructuralElement) {
	switch {
	case el.Paragraph != nil:
		w.paragraph(el.Paragraph)
	case el.Table != nil:
		w.table(el.Table)
	case el.SectionBreak != nil:
		w.b.WriteString("\n---\n\n")
	}
}

func (w *markdownWriter) paragraph(p *docs.Paragraph) {
	if len(p.Elements) == 0 {
		return
	}

	var line strings.Builder
	if heading := headingLevel(p.ParagraphStyle); heading > 0 {
		line.WriteString(strings.Repeat("#", heading) + " ")
	}
	if p.Bullet != nil {
		line.WriteString(strings.Repeat("  ", int(p.Bullet.NestingLevel)))
		if w.ordered(p.Bullet) {
			line.WriteString("1. ")
		} else {
			line.WriteString("- ")
		}
	}

	for _, el := range p.Elements {
		switch {
		case el.TextRun != nil:
			writeRun(&line, el.TextRun)
		case el.InlineObjectElement != nil:
			line.WriteString(w.image(el.InlineObjectElement.InlineObjectId))
		}
	}

	// Paragraphs end in a newline of their own; list items stay together.
	w.b.WriteString(strings.TrimRight(line.String(), "\n") + "\n")
	if p.Bullet == nil {
		w.b.WriteString("\n")
	}
}

func (w *markdownWriter) ordered(b *docs.Bullet) bool {
	list, ok := w.lists[b.ListId]
	if !ok || list.ListProperties == nil {
		return false
	}
	levels := list.ListProperties.NestingLevels
	if int(b.NestingLevel) >= len(levels) || levels[b.NestingLevel] == nil {
		return false
	}
	return orderedGlyphs[levels[b.NestingLevel].GlyphType]
}

func (w *markdownWriter) image(id string) string {
	obj, ok := w.inline[id]
	if ok && obj.InlineObjectProperties != nil && obj.InlineObjectProperties.EmbeddedObject != nil {
		emb := obj.InlineObjectProperties.EmbeddedObject
		if emb.ImageProperties != nil && emb.ImageProperties.ContentUri != "" {
			return fmt.Sprintf("![%s](%s)", emb.Title, emb.ImageProperties.ContentUri)
		}
	}
	return "[inline object]"
}

func (w *markdownWriter) table(t *docs.Table) {
	if len(t.TableRows) == 0 {
		return
	}

	for i, row := range t.TableRows {
		w.b.WriteString("|")
		for _, cell := range row.TableCells {
			text := strings.TrimSpace(cellText(cell))
			text = strings.ReplaceAll(text, "\n", " ")
			text = strings.ReplaceAll(text, "|", `\|`)
			fmt.Fprintf(&w.b, " %s |", text)
		}
		w.b.WriteString("\n")

		if i == 0 {
			w.b.WriteString("|" + strings.Repeat(" --- |", len(row.TableCells)) + "\n")
		}
	}
	w.b.WriteString("\n")
}

// writeRun emits one text run with its inline styles. Markers wrap the run
// without its trailing newline so that "**bold\n**" never appears.
func writeRun(b *strings.Builder, run *docs.TextRun) {
	content := run.Content
	if content == "" {
		return
	}
	style := run.TextStyle
	if style == nil {
		b.WriteString(content)
		return
	}

	text := strings.TrimRight(content, "\n")
	tail := content[len(text):]
	if strings.TrimSpace(text) == "" {
		b.WriteString(content)
		return
	}

	switch {
	case style.Link != nil && style.Link.Url != "":
		fmt.Fprintf(b, "[%s](%s)", strings.TrimSpace(text), style.Link.Url)
	case style.WeightedFontFamily != nil && strings.Contains(style.WeightedFontFamily.FontFamily, "Courier"):
		fmt.Fprintf(b, "`%s`", strings.TrimSpace(text))
	default:
		marker := ""
		switch {
		case style.Bold && style.Italic:
			marker = "***"
		case style.Bold:
			marker = "**"
		case style.Italic:
			marker = "*"
		}
		if style.Strikethrough {
			marker = "~~" + marker
		}
		b.WriteString(marker + text + reverse(marker))
	}
	b.WriteString(tail)
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func headingLevel(style *docs.ParagraphStyle) int {
	if style == nil {
		return 0
	}
	var level int
	if _, err := fmt.Sscanf(style.NamedStyleType, "HEADING_%d", &level); err != nil {
		return 0
	}
	if level < 1 || level > MaxHeadingLevel {
		return 0
	}
	return level
}

// PlainText extracts the text of a document. Table cells are separated by
// tabs and tab titles are framed with "===".
func PlainText(doc *docs.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var b strings.Builder
	if doc.Title != "" {
		b.WriteString(doc.Title + "\n\n")
	}

	tabbed := len(doc.Tabs) > 0
	for _, s := range sections(doc) {
		if tabbed {
			indent := strings.Repeat("  ", s.depth)
			frame := "==="
			if s.depth > 0 {
				frame = "---"
			}
			switch {
			case s.title != "":
				fmt.Fprintf(&b, "%s%s %s %s\n\n", indent, frame, s.title, frame)
			case s.depth > 0:
				fmt.Fprintf(&b, "%s%s Subtab %d %s\n\n", indent, frame, s.index+1, frame)
			case s.index > 0:
				fmt.Fprintf(&b, "%s Tab %d %s\n\n", frame, s.index+1, frame)
			}
		}

		for _, el := range s.content {
			switch {
			case el.Paragraph != nil:
				b.WriteString(paragraphText(el.Paragraph))
			case el.Table != nil:
				for _, row := range el.Table.TableRows {
					cells := make([]string, 0, len(row.TableCells))
					for _, cell := range row.TableCells {
						cells = append(cells, strings.TrimRight(cellText(cell), "\n"))
					}
					b.WriteString(strings.Join(cells, "\t") + "\n")
				}
			}
		}
		if tabbed {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func paragraphText(p *docs.Paragraph) string {
	var b strings.Builder
	for _, el := range p.Elements {
		if el.TextRun != nil {
			b.WriteString(el.TextRun.Content)
		}
	}
	return b.String()
}

func cellText(cell *docs.TableCell) string {
	var b strings.Builder
	for _, el := range cell.Content {
		if el.Paragraph != nil {
			b.WriteString(paragraphText(el.Paragraph))
		}
	}
	return b.String()
}

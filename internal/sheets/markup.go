package sheets

import (
	"strings"

	"golang.org/x/net/html"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/mcp-google-workspace/internal/colors"
)

// Font sizes applied by heading and small tags.
var markupFontSizes = map[string]int64{
	"h1":    24,
	"h2":    20,
	"h3":    16,
	"small": 10,
}

// ParseMarkup strips HTML-style tags from text and returns the plain text
// plus the cell format the tags describe, or nil when no tag applied a style.
//
// Recognised tags: b/strong, i/em, u, s/strike/del, h1-h3, small,
// font color="#RRGGBB", bg color="#RRGGBB" and center/left/right.
// Styles apply to the whole cell; closing tags are ignored.
func ParseMarkup(text string) (string, *sheets.CellFormat) {
	var (
		plain  strings.Builder
		tf     sheets.TextFormat
		format sheets.CellFormat
		styled bool
	)

	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF once the input is consumed.
			return finishMarkup(plain.String(), &format, &tf, styled)
		case html.TextToken:
			plain.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := map[string]string{}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				attrs[string(k)] = string(v)
			}
			if applyTag(string(name), attrs, &format, &tf) {
				styled = true
			}
		}
	}
}

func finishMarkup(plain string, format *sheets.CellFormat, tf *sheets.TextFormat, styled bool) (string, *sheets.CellFormat) {
	plain = strings.TrimSpace(plain)
	if !styled {
		return plain, nil
	}
	if len(tf.ForceSendFields) > 0 || tf.FontSize != 0 || tf.ForegroundColor != nil {
		format.TextFormat = tf
	}
	return plain, format
}

func applyTag(name string, attrs map[string]string, format *sheets.CellFormat, tf *sheets.TextFormat) bool {
	switch name {
	case "b", "strong":
		tf.Bold = true
		tf.ForceSendFields = append(tf.ForceSendFields, "Bold")
	case "i", "em":
		tf.Italic = true
		tf.ForceSendFields = append(tf.ForceSendFields, "Italic")
	case "s", "strike", "del":
		tf.Strikethrough = true
		tf.ForceSendFields = append(tf.ForceSendFields, "Strikethrough")
	case "u":
		tf.Underline = true
		tf.ForceSendFields = append(tf.ForceSendFields, "Underline")
	case "h1", "h2", "h3", "small":
		tf.FontSize = markupFontSizes[name]
	case "font":
		c, ok := markupColor(attrs)
		if !ok {
			return false
		}
		tf.ForegroundColor = c
	case "bg":
		c, ok := markupColor(attrs)
		if !ok {
			return false
		}
		format.BackgroundColor = c
	case "center", "left", "right":
		format.HorizontalAlignment = strings.ToUpper(name)
	default:
		return false
	}
	return true
}

func markupColor(attrs map[string]string) (*sheets.Color, bool) {
	raw, ok := attrs["color"]
	if !ok {
		return nil, false
	}
	rgb, err := colors.ParseHex(raw)
	if err != nil {
		return nil, false
	}
	return &sheets.Color{
		Red:             rgb.Red,
		Green:           rgb.Green,
		Blue:            rgb.Blue,
		Alpha:           1,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}, true
}

package pagetext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// ignoredSelector matches elements whose text never reaches the prompt.
const ignoredSelector = "nav, footer, script, style, noscript, template, [hidden], [aria-hidden=true]"

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepComments:            false,
		KeepConditionalComments: false,
		KeepSpecialComments:     false,
		KeepDefaultAttrVals:     false,
		KeepDocumentTags:        false,
		KeepEndTags:             true,
		KeepQuotes:              false,
		KeepWhitespace:          false,
	})
	return m
}

// VisibleText returns the text a reader would see in the body of an HTML page, with
// navigation, footers, scripts and hidden elements dropped and whitespace collapsed.
func VisibleText(page string) (string, error) {
	minified, err := minifier.String("text/html", page)
	if err != nil {
		return "", fmt.Errorf("minify html: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(minified))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	body := doc.Find("body")
	body.Find(ignoredSelector).Remove()
	body.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		return hiddenByStyle(style)
	}).Remove()

	var b strings.Builder
	collectText(body, &b)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			b.WriteByte(' ')
			b.WriteString(c.Text())
		case "#comment":
		default:
			collectText(c, b)
		}
	})
}

// hiddenByStyle reports whether an inline style attribute hides its element.
func hiddenByStyle(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))

		switch prop {
		case "display":
			if value == "none" {
				return true
			}
		case "visibility":
			if value == "hidden" {
				return true
			}
		case "opacity":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f == 0 {
				return true
			}
		case "width", "height":
			if isZeroLength(value) {
				return true
			}
		}
	}
	return false
}

// lengthUnits lists CSS length units, longer suffixes before the ones they end with.
var lengthUnits = []string{"rem", "em", "px", "pt", "pc", "vh", "vw", "vmin", "vmax", "ch", "ex", "cm", "mm", "in", "%"}

func isZeroLength(value string) bool {
	for _, unit := range lengthUnits {
		if strings.HasSuffix(value, unit) {
			value = strings.TrimSuffix(value, unit)
			break
		}
	}
	f, err := strconv.ParseFloat(value, 64)
	return err == nil && f == 0
}

package format

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// Kind identifies how a payload was decoded.
type Kind int

const (
	// KindText is a payload shown as trimmed text.
	KindText Kind = iota
	// KindXML is a payload parsed as an XML document.
	KindXML
	// KindStructured is a payload parsed as a JSON value.
	KindStructured
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindXML:
		return "xml"
	case KindStructured:
		return "structured"
	default:
		return "text"
	}
}

// RenderOptions controls payload decoding.
type RenderOptions struct {
	// NoXML skips the XML attempt even when the payload looks like markup.
	NoXML bool
}

// Rendered is a decoded payload ready for display.
type Rendered struct {
	Kind Kind
	// Text is the trimmed payload as received.
	Text string
	// Value holds the decoded JSON value for KindStructured.
	Value any
	// Doc holds the parsed document for KindXML.
	Doc *etree.Document
}

var jsonDisplay = &ojg.Options{Indent: 2, Sort: true}

// Render decodes raw for display. Decoding problems never surface: the next
// fallback is tried and, in the end, the trimmed text is returned.
func Render(raw string, opts RenderOptions) Rendered {
	text := strings.TrimSpace(raw)

	if !opts.NoXML && looksLikeXML(text) {
		if doc, ok := parseXML(text); ok {
			return Rendered{Kind: KindXML, Text: text, Doc: doc}
		}
	}

	if text != "" {
		if v, err := oj.ParseString(text); err == nil {
			return Rendered{Kind: KindStructured, Text: text, Value: v}
		}
	}

	return Rendered{Kind: KindText, Text: text}
}

// String returns the display form: indented XML, indented JSON, or the text.
func (r Rendered) String() string {
	switch r.Kind {
	case KindXML:
		if r.Doc == nil {
			return r.Text
		}
		doc := r.Doc.Copy()
		doc.Indent(2)
		s, err := doc.WriteToString()
		if err != nil {
			return r.Text
		}
		return strings.TrimRight(s, "\n")
	case KindStructured:
		return oj.JSON(r.Value, jsonDisplay)
	default:
		return r.Text
	}
}

func looksLikeXML(text string) bool {
	return len(text) >= 2 && text[0] == '<' && text[len(text)-1] == '>'
}

func parseXML(text string) (*etree.Document, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, false
	}
	if doc.Root() == nil {
		return nil, false
	}
	return doc, true
}

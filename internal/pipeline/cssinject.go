package pipeline

import "strings"

// CSSInjector places a stylesheet into an HTML document.
type CSSInjector interface {
	InjectCSS(document, css string) string
}

// StyleTag inlines CSS as a <style> element.
type StyleTag struct{}

var _ CSSInjector = StyleTag{}

// styleAnchors are tried in order. A closing tag gets the style before it,
// an opening tag after its ">".
var styleAnchors = []struct {
	tag   string
	after bool
}{
	{"</head>", false},
	{"<body", true},
}

// InjectCSS returns document with css inlined at the end of <head>, at the
// start of <body>, or in front of everything. Blank css changes nothing.
// "</" inside css is escaped so the element cannot be closed early.
func (StyleTag) InjectCSS(document, css string) string {
	if strings.TrimSpace(css) == "" {
		return document
	}
	style := "<style>" + strings.ReplaceAll(css, "</", `<\/`) + "</style>"

	lower := strings.ToLower(document)
	for _, a := range styleAnchors {
		at := strings.Index(lower, a.tag)
		if at < 0 {
			continue
		}
		if a.after {
			end := strings.IndexByte(document[at:], '>')
			if end < 0 {
				continue
			}
			at += end + 1
		}
		return document[:at] + style + document[at:]
	}
	return style + document
}

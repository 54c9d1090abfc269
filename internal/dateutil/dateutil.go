// Package dateutil turns date formats such as "DD/MM/YYYY HH:mm" into
// formatters for time.Time. Text inside [brackets] is printed as is.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds a format string.
const MaxDateFormatLength = 50

// DefaultDateFormat is the layout printed on receipts.
const DefaultDateFormat = "DD/MM/YYYY - HH:mm:ss"

// tokens are tried longest first. Case matters: MM is the month, mm the minute.
var tokens = []struct{ name, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets are named formats accepted wherever a format is.
var DatePresets = map[string]string{
	"br":       DefaultDateFormat,
	"iso":      "YYYY-MM-DD HH:mm:ss",
	"date":     "DD/MM/YYYY",
	"european": "DD/MM/YYYY HH:mm",
	"us":       "MM/DD/YYYY HH:mm",
}

// part is either a Go layout fragment or literal text.
type part struct {
	text    string
	literal bool
}

// Layout is a compiled date format.
type Layout struct {
	parts []part
}

// Compile parses a preset name (case-insensitive) or a token format.
// An empty value compiles DefaultDateFormat.
func Compile(value string) (*Layout, error) {
	if value == "" {
		value = DefaultDateFormat
	}
	if preset, ok := DatePresets[strings.ToLower(value)]; ok {
		value = preset
	}
	return compile(value)
}

func compile(format string) (*Layout, error) {
	switch {
	case format == "":
		return nil, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return nil, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	l := &Layout{}
	for rest := format; rest != ""; {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed bracket at position %d",
					ErrInvalidDateFormat, len(format)-len(rest))
			}
			l.add(rest[1:end], true)
			rest = rest[end+1:]
			continue
		}
		if name, layout, ok := matchToken(rest); ok {
			l.add(layout, false)
			rest = rest[len(name):]
			continue
		}
		l.add(rest[:1], true)
		rest = rest[1:]
	}
	return l, nil
}

func matchToken(s string) (name, layout string, ok bool) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.name) {
			return t.name, t.layout, true
		}
	}
	return "", "", false
}

// add appends text. Adjacent literals are merged; each token stays its own
// part so fragments such as "2" and "006" never combine into "2006".
func (l *Layout) add(text string, literal bool) {
	if n := len(l.parts); literal && n > 0 && l.parts[n-1].literal {
		l.parts[n-1].text += text
		return
	}
	l.parts = append(l.parts, part{text: text, literal: literal})
}

// Format renders t. Literal text never goes through time.Format, so
// "[Jan 2]" prints "Jan 2" rather than a month and day.
func (l *Layout) Format(t time.Time) string {
	var b strings.Builder
	for _, p := range l.parts {
		if p.literal {
			b.WriteString(p.text)
		} else {
			b.WriteString(t.Format(p.text))
		}
	}
	return b.String()
}

// String returns the equivalent Go layout. Literals that look like layout
// elements are not escaped, so prefer Format for rendering.
func (l *Layout) String() string {
	var b strings.Builder
	for _, p := range l.parts {
		b.WriteString(p.text)
	}
	return b.String()
}

// ParseDateFormat converts a token format to a Go layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss.
func ParseDateFormat(format string) (string, error) {
	l, err := compile(format)
	if err != nil {
		return "", err
	}
	return l.String(), nil
}

// Format renders t with a preset or token format.
func Format(t time.Time, value string) (string, error) {
	l, err := Compile(value)
	if err != nil {
		return "", err
	}
	return l.Format(t), nil
}

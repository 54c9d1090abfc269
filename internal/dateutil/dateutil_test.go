package dateutil

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestParseDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "YYYY converts to Go year", format: "YYYY", want: "2006"},
		{name: "YY converts to short year", format: "YY", want: "06"},
		{name: "MMMM converts to full month name", format: "MMMM", want: "January"},
		{name: "MMM converts to short month name", format: "MMM", want: "Jan"},
		{name: "MM converts to padded month", format: "MM", want: "01"},
		{name: "M converts to bare month", format: "M", want: "1"},
		{name: "DD converts to padded day", format: "DD", want: "02"},
		{name: "D converts to bare day", format: "D", want: "2"},
		{name: "HH converts to 24h hour", format: "HH", want: "15"},
		{name: "mm converts to minute", format: "mm", want: "04"},
		{name: "ss converts to second", format: "ss", want: "05"},
		{name: "month and minute stay distinct", format: "MM:mm", want: "01:04"},
		{name: "receipt layout", format: DefaultDateFormat, want: "02/01/2006 - 15:04:05"},
		{name: "bracket literal", format: "[Emitido em] DD/MM/YYYY", want: "Emitido em 02/01/2006"},
		{name: "bracket protects tokens", format: "[DD]", want: "DD"},
		{name: "non-token characters kept", format: "YYYY.MM.DD", want: "2006.01.02"},

		{name: "empty", format: "", wantErr: ErrInvalidDateFormat},
		{name: "too long", format: strings.Repeat("Y", MaxDateFormatLength+1), wantErr: ErrInvalidDateFormat},
		{name: "unclosed bracket", format: "[DD/MM", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateFormat(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseDateFormat(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateFormat(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseDateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	issued := time.Date(2021, time.March, 5, 9, 7, 3, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "empty uses receipt layout", value: "", want: "05/03/2021 - 09:07:03"},
		{name: "br preset", value: "br", want: "05/03/2021 - 09:07:03"},
		{name: "preset is case-insensitive", value: "ISO", want: "2021-03-05 09:07:03"},
		{name: "date preset", value: "date", want: "05/03/2021"},
		{name: "custom tokens", value: "D/M/YY HH[h]mm", want: "5/3/21 09h07"},
		{name: "literal looks like a layout", value: "[Jan 2] DD", want: "Jan 2 05"},
		{name: "invalid format", value: "[oops", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(issued, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Format(%q) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	l, err := Compile("[às] HH:mm")
	if err != nil {
		t.Fatalf("Compile() unexpected error: %v", err)
	}
	want := []part{{"às ", true}, {"15", false}, {":", true}, {"04", false}}
	if !slices.Equal(l.parts, want) {
		t.Errorf("parts = %+v, want %+v", l.parts, want)
	}
	if got := l.String(); got != "às 15:04" {
		t.Errorf("String() = %q, want %q", got, "às 15:04")
	}

	if _, err := Compile(strings.Repeat("Y", MaxDateFormatLength+1)); !errors.Is(err, ErrInvalidDateFormat) {
		t.Errorf("long format error = %v, want ErrInvalidDateFormat", err)
	}
}

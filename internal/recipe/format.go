package recipe

import (
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultTimezone is the location creation dates are shown in
	DefaultTimezone = "Asia/Bangkok"
	// CreatedAtLayout renders as DD/MM/YYYY HH:mm:ss
	CreatedAtLayout = "02/01/2006 15:04:05"
	// FallbackAuthorName is used for initials when the author has no name
	FallbackAuthorName = "User"
)

// DateFormat holds the settings used to render timestamps. It is passed
// explicitly to the formatter rather than configured process-wide.
type DateFormat struct {
	Location *time.Location
	Layout   string
}

// NewDateFormat loads the named timezone and returns a DateFormat using CreatedAtLayout
func NewDateFormat(timezone string) (DateFormat, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return DateFormat{}, err
	}
	return DateFormat{Location: loc, Layout: CreatedAtLayout}, nil
}

// FormatCreatedAt renders t with f, or "" for the zero time
func FormatCreatedAt(t time.Time, f DateFormat) string {
	if t.IsZero() {
		return ""
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := f.Layout
	if layout == "" {
		layout = CreatedAtLayout
	}
	return t.In(loc).Format(layout)
}

// Initials returns up to two upper-cased initials for an author avatar
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		fields = []string{FallbackAuthorName}
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}

	var b strings.Builder
	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		b.WriteRune(r)
	}
	return cases.Upper(language.Und).String(b.String())
}

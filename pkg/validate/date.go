// pkg/validate/date.go
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts tried, in order, once the current year has been appended to the
// input. The first match wins.
var noYearLayouts = []struct {
	sep    string
	layout string
}{
	{"/", "1/2/2006"},
	{" ", "January 2 2006"},
	{" ", "Jan 2 2006"},
}

// Layouts tried, in order, against the input as given.
var fullLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"Jan 2 2006",
	"Jan 2 06",
	"January 2 2006",
	"January 2 06",
}

var dateSeparators = strings.NewReplacer(",", "", "-", "/", ".", "/")

// normalizeDate lower-cases, drops commas, maps '-' and '.' to '/', and
// collapses runs of whitespace.
func normalizeDate(input string) string {
	s := dateSeparators.Replace(strings.ToLower(strings.TrimSpace(input)))
	return strings.Join(strings.Fields(s), " ")
}

// Date accepts a calendar date such as "12/25", "Dec 25, 2024" or
// "12-25-24". Dates without a year fall in the current year. Two-digit years
// 69-99 map to the 1900s, the rest to the 2000s.
func (v *Validator) Date(input string) Outcome {
	if strings.TrimSpace(input) == "" {
		return rejected("empty input")
	}
	s := normalizeDate(input)
	if o, done := v.sentinel(s); done {
		return o
	}

	year := strconv.Itoa(v.now().In(v.loc).Year())
	for _, c := range noYearLayouts {
		if t, err := time.ParseInLocation(c.layout, s+c.sep+year, v.loc); err == nil {
			return Outcome{Kind: Accepted, Value: t.Format(time.DateOnly), Date: t}
		}
	}
	for _, layout := range fullLayouts {
		if t, err := time.ParseInLocation(layout, s, v.loc); err == nil {
			return Outcome{Kind: Accepted, Value: t.Format(time.DateOnly), Date: t}
		}
	}
	return rejected(fmt.Sprintf("%q is not a recognised date", strings.TrimSpace(input)))
}

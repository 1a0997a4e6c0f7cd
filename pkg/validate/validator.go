// pkg/validate/validator.go
package validate

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sentinel words, recognised case-insensitively by every validator before any
// type-specific parsing.
const (
	SentinelBack  = "back"
	SentinelExit  = "exit"
	SentinelClose = "close"
)

const positiveIntegerHint = "Please enter a positive integer."

// ExitFunc tears the session down when the user types an exit sentinel. In
// production it does not return.
type ExitFunc func()

// Options configures a Validator. Every field is optional.
type Options struct {
	// Hints receives the user-facing rejection hints. Nil discards them.
	Hints io.Writer
	// Exit runs on "exit" or "close".
	Exit ExitFunc
	// Now supplies the current year for dates entered without one.
	Now      func() time.Time
	Location *time.Location
	Logger   *zap.Logger
}

// Validator parses raw user text. It holds no per-call state.
type Validator struct {
	hints  io.Writer
	exit   ExitFunc
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger
}

// New returns a Validator.
func New(opts Options) *Validator {
	v := &Validator{
		hints:  opts.Hints,
		exit:   opts.Exit,
		now:    opts.Now,
		loc:    opts.Location,
		logger: opts.Logger,
	}
	if v.hints == nil {
		v.hints = io.Discard
	}
	if v.now == nil {
		v.now = time.Now
	}
	if v.loc == nil {
		v.loc = time.Local
	}
	if v.logger == nil {
		v.logger = zap.NewNop()
	}
	v.logger = v.logger.Named("validate")
	return v
}

// sentinel checks folded input for a control word. The bool is true when the
// caller must return the outcome as is.
func (v *Validator) sentinel(folded string) (Outcome, bool) {
	switch folded {
	case SentinelBack:
		return Outcome{Kind: Back}, true
	case SentinelExit, SentinelClose:
		v.logger.Info("Exit requested from user input.", zap.String("word", folded))
		if v.exit != nil {
			v.exit()
		}
		return Outcome{Kind: ExitRequested}, true
	}
	return Outcome{}, false
}

func (v *Validator) hint(msg string) {
	fmt.Fprintf(v.hints, "\n%s\n", msg)
}

// PositiveInteger accepts a base-10 integer greater than zero and returns its
// canonical form ("007" becomes "7").
func (v *Validator) PositiveInteger(input string) Outcome {
	folded := strings.ToLower(strings.TrimSpace(input))
	if folded == "" {
		return rejected("empty input")
	}
	if o, done := v.sentinel(folded); done {
		return o
	}

	n, err := strconv.Atoi(folded)
	if err != nil {
		v.hint(positiveIntegerHint)
		return rejected(fmt.Sprintf("%q is not an integer", folded))
	}
	if n <= 0 {
		v.hint(positiveIntegerHint)
		return rejected(fmt.Sprintf("%d is not positive", n))
	}
	return Outcome{Kind: Accepted, Value: strconv.Itoa(n)}
}

// NumericOptions selects which numbers Numeric accepts.
type NumericOptions struct {
	AllowFloat    bool
	AllowNegative bool
	AllowZero     bool
	AllowPositive bool
}

func (o NumericOptions) satisfiable() bool {
	return o.AllowNegative || o.AllowZero || o.AllowPositive
}

func (o NumericOptions) describe() string {
	var signs []string
	if o.AllowNegative {
		signs = append(signs, "negative")
	}
	if o.AllowZero {
		signs = append(signs, "zero")
	}
	if o.AllowPositive {
		signs = append(signs, "positive")
	}
	kind := "a whole number"
	if o.AllowFloat {
		kind = "a number"
	}
	return fmt.Sprintf("Please enter %s (%s).", kind, strings.Join(signs, " or "))
}

// Numeric accepts a number whose sign and integrality match opts and returns
// the trimmed input unchanged. Options that exclude every sign reject all
// input, sentinels included, without parsing.
func (v *Validator) Numeric(input string, opts NumericOptions) Outcome {
	if !opts.satisfiable() {
		return rejected("no value satisfies the numeric options")
	}
	trimmed := strings.TrimSpace(input)
	folded := strings.ToLower(trimmed)
	if folded == "" {
		return rejected("empty input")
	}
	if o, done := v.sentinel(folded); done {
		return o
	}

	f, err := strconv.ParseFloat(folded, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		v.hint(opts.describe())
		return rejected(fmt.Sprintf("%q is not a number", trimmed))
	}

	var reason string
	switch {
	case !opts.AllowFloat && f != math.Trunc(f):
		reason = "fractional values are not allowed"
	case f < 0 && !opts.AllowNegative:
		reason = "negative values are not allowed"
	case f == 0 && !opts.AllowZero:
		reason = "zero is not allowed"
	case f > 0 && !opts.AllowPositive:
		reason = "positive values are not allowed"
	}
	if reason != "" {
		v.hint(opts.describe())
		return rejected(reason)
	}
	return Outcome{Kind: Accepted, Value: trimmed}
}

// Enumerated accepts input that, as typed, capitalised, or lower-cased, is a
// member of acceptable. description completes the hint "Please enter ...".
func (v *Validator) Enumerated(input string, acceptable []string, description string) Outcome {
	trimmed := strings.TrimSpace(input)
	folded := strings.ToLower(trimmed)
	if trimmed == "" {
		return rejected("empty input")
	}
	if o, done := v.sentinel(folded); done {
		return o
	}

	candidates := [...]string{trimmed, capitalize(trimmed), folded}
	for _, a := range acceptable {
		for _, c := range candidates {
			if a == c {
				return Outcome{Kind: Accepted, Value: trimmed}
			}
		}
	}
	v.hint(fmt.Sprintf("Please enter %s.", description))
	return rejected(fmt.Sprintf("%q is not an accepted choice", trimmed))
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// pkg/validate/outcome.go
package validate

import (
	"fmt"
	"time"
)

// Kind tags a validation outcome.
type Kind int

const (
	Rejected Kind = iota
	Back
	ExitRequested
	Accepted
)

func (k Kind) String() string {
	switch k {
	case Rejected:
		return "rejected"
	case Back:
		return "back"
	case ExitRequested:
		return "exit_requested"
	case Accepted:
		return "accepted"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of one validator call. Value carries the accepted
// text; Date is set only by the date validator.
type Outcome struct {
	Kind   Kind
	Value  string
	Date   time.Time
	Reason string
}

// OK reports whether the input was accepted.
func (o Outcome) OK() bool { return o.Kind == Accepted }

func rejected(reason string) Outcome { return Outcome{Kind: Rejected, Reason: reason} }

// cmd/ask.go
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/tabwarden/internal/observability"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
	"github.com/xkilldash9x/tabwarden/pkg/validate"
)

// errNoAnswer is returned when input ends before a value is accepted.
var errNoAnswer = errors.New("input ended without an accepted value")

const (
	askInt    = "int"
	askNumber = "number"
	askChoice = "choice"
	askDate   = "date"
)

type askOptions struct {
	kind     string
	prompt   string
	choices  []string
	describe string
	numeric  validate.NumericOptions
}

func newAskCmd() *cobra.Command {
	var o askOptions

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Read a value from stdin until it passes validation.",
		Long: `Ask keeps reading lines until one is accepted and prints the normalized
value. Typing "back" prints back; "exit" or "close" ends the program.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.InOrStdin(), cmd.OutOrStdout(), o)
		},
	}

	cmd.Flags().StringVar(&o.kind, "kind", askInt, "value kind: int, number, choice or date")
	cmd.Flags().StringVar(&o.prompt, "prompt", "", "text printed before each read")
	cmd.Flags().StringSliceVar(&o.choices, "choices", nil, "accepted values for --kind choice")
	cmd.Flags().StringVar(&o.describe, "describe", "one of the listed choices", "hint shown after a rejected choice")
	cmd.Flags().BoolVar(&o.numeric.AllowFloat, "float", false, "accept fractional numbers")
	cmd.Flags().BoolVar(&o.numeric.AllowNegative, "negative", false, "accept negative numbers")
	cmd.Flags().BoolVar(&o.numeric.AllowZero, "zero", false, "accept zero")
	cmd.Flags().BoolVar(&o.numeric.AllowPositive, "positive", true, "accept positive numbers")
	return cmd
}

func runAsk(in io.Reader, out io.Writer, o askOptions) error {
	check, err := askCheck(o)
	if err != nil {
		return err
	}

	v := validate.New(validate.Options{
		Hints:  out,
		Exit:   func() { osExit(0) },
		Logger: observability.GetLogger(),
	})

	scanner := bufio.NewScanner(in)
	for {
		if o.prompt != "" {
			fmt.Fprint(out, o.prompt+" ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return errNoAnswer
		}

		outcome := check(v, scanner.Text())
		switch outcome.Kind {
		case validate.Accepted:
			fmt.Fprintln(out, outcome.Value)
			return nil
		case validate.Back:
			fmt.Fprintln(out, validate.SentinelBack)
			return nil
		case validate.ExitRequested:
			return nil
		}
	}
}

// askCheck resolves the validator for o.kind.
func askCheck(o askOptions) (func(*validate.Validator, string) validate.Outcome, error) {
	switch strings.ToLower(o.kind) {
	case askInt:
		return (*validate.Validator).PositiveInteger, nil
	case askNumber:
		if !o.numeric.AllowNegative && !o.numeric.AllowZero && !o.numeric.AllowPositive {
			return nil, fault.Configuration("ask", "positive", "at least one of --negative, --zero or --positive must be set")
		}
		return func(v *validate.Validator, s string) validate.Outcome { return v.Numeric(s, o.numeric) }, nil
	case askChoice:
		if len(o.choices) == 0 {
			return nil, fault.Configuration("ask", "choices", "--kind choice needs --choices")
		}
		return func(v *validate.Validator, s string) validate.Outcome {
			return v.Enumerated(s, o.choices, o.describe)
		}, nil
	case askDate:
		return (*validate.Validator).Date, nil
	default:
		return nil, fault.Configuration("ask", "kind", fmt.Sprintf("unknown kind %q", o.kind))
	}
}

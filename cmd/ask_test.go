// cmd/ask_test.go
package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

func TestAsk(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		last  string
		hint  string
	}{
		{
			name:  "positive integer after rejections",
			stdin: "abc\n0\n007\n",
			args:  []string{"ask"},
			last:  "7",
			hint:  "Please enter a positive integer.",
		},
		{
			name:  "negative float",
			stdin: "x\n-2.5\n",
			args:  []string{"ask", "--kind", "number", "--float", "--negative"},
			last:  "-2.5",
			hint:  "Please enter a number (negative or positive).",
		},
		{
			name:  "choice is matched capitalized",
			stdin: "maybe\nyes\n",
			args:  []string{"ask", "--kind", "choice", "--choices", "Yes,No", "--describe", "Yes or No"},
			last:  "yes",
			hint:  "Please enter Yes or No.",
		},
		{
			name:  "date",
			stdin: "not a date\nDec 25, 2024\n",
			args:  []string{"ask", "--kind", "date"},
			last:  "2024-12-25",
		},
		{
			name:  "back",
			stdin: "BACK\n",
			args:  []string{"ask"},
			last:  "back",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			out, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(out), "\n")
			assert.Equal(t, tt.last, lines[len(lines)-1])
			if tt.hint != "" {
				assert.Contains(t, out, tt.hint)
			}
			assert.Empty(t, env.Exits)
			assert.Zero(t, env.Launcher.Count(), "ask never launches a browser")
		})
	}
}

func TestAsk_ExitSentinel(t *testing.T) {
	env := setup(t)
	out, err := execute(t, "close\n", "ask", "--kind", "date")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, env.Exits)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestAsk_Prompt(t *testing.T) {
	setup(t)
	out, err := execute(t, "3\n", "ask", "--prompt", "How many?")
	require.NoError(t, err)
	assert.Equal(t, "How many? 3\n", out)
}

func TestAsk_InputEnds(t *testing.T) {
	setup(t)
	_, err := execute(t, "-1\n", "ask")
	assert.ErrorIs(t, err, errNoAnswer)
}

func TestAsk_BadFlags(t *testing.T) {
	tests := map[string][]string{
		"unknown kind":    {"ask", "--kind", "colour"},
		"choice no list":  {"ask", "--kind", "choice"},
		"no sign allowed": {"ask", "--kind", "number", "--positive=false"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			setup(t)
			_, err := execute(t, "1\n", args...)
			require.Error(t, err)
			assert.True(t, fault.IsConfiguration(err))
		})
	}
}

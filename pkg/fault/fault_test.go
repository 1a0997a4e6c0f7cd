// pkg/fault/fault_test.go
package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	err := Configuration("find_element", "strategy", "unknown locator strategy \"name\"")
	assert.Equal(t, `find_element: invalid argument "strategy": unknown locator strategy "name"`, err.Error())

	bare := Configuration("new", "", "window size must be positive")
	assert.Equal(t, "new: invalid configuration: window size must be positive", bare.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsConfiguration(wrapped))
	assert.False(t, IsEnvironment(wrapped))
}

func TestEnvironmentFailure(t *testing.T) {
	cause := errors.New("no such element")

	tests := []struct {
		name string
		err  *EnvironmentFailure
		want string
	}{
		{"message and cause", Environment("click", "Failed to click submit", cause), "click: Failed to click submit: no such element"},
		{"message only", Environment("start", "driver did not start", nil), "start: driver did not start"},
		{"cause only", Environment("stop", "", cause), "stop: no such element"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	ef := Environment("click", "Failed to click submit", cause)
	assert.ErrorIs(t, ef, cause)
	assert.True(t, IsEnvironment(fmt.Errorf("stage: %w", ef)))
	assert.False(t, IsConfiguration(ef))
}

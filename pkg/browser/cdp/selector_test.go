// pkg/browser/cdp/selector_test.go
package cdp

import (
	"reflect"
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

func sameOption(a, b chromedp.QueryOption) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestSelector(t *testing.T) {
	tests := []struct {
		loc      browser.Locator
		want     string
		isSearch bool
	}{
		{browser.Locator{Strategy: browser.ByID, Value: "login"}, `[id="login"]`, false},
		{browser.Locator{Strategy: browser.ByID, Value: `we"ird`}, `[id="we\"ird"]`, false},
		{browser.Locator{Strategy: browser.ByClassName, Value: "btn"}, `[class~="btn"]`, false},
		{browser.Locator{Strategy: browser.ByTagName, Value: "input"}, "input", false},
		{browser.Locator{Strategy: browser.ByCSSSelector, Value: "form > input[name=q]"}, "form > input[name=q]", false},
		{browser.Locator{Strategy: browser.ByXPath, Value: "//div[@id='x']"}, "//div[@id='x']", true},
		{browser.Locator{Strategy: browser.ByLinkText, Value: "Sign in"}, "//a[normalize-space(.)='Sign in']", true},
		{browser.Locator{Strategy: browser.ByPartialLinkText, Value: "Don't"}, `//a[contains(., "Don't")]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.loc.String(), func(t *testing.T) {
			sel, by, err := Selector(tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel)
			if tt.isSearch {
				assert.True(t, sameOption(chromedp.BySearch, by))
			} else {
				assert.True(t, sameOption(chromedp.ByQueryAll, by))
			}
		})
	}
}

func TestSelector_InvalidStrategy(t *testing.T) {
	_, _, err := Selector(browser.Locator{Strategy: browser.Strategy(42), Value: "x"})
	assert.True(t, fault.IsConfiguration(err))
}

func TestParseFlag(t *testing.T) {
	name, value := ParseFlag("--lang=en-US")
	assert.Equal(t, "lang", name)
	assert.Equal(t, "en-US", value)

	name, value = ParseFlag(" --mute-audio ")
	assert.Equal(t, "mute-audio", name)
	assert.Equal(t, true, value)

	name, _ = ParseFlag("--")
	assert.Empty(t, name)
}

func TestPageHandles(t *testing.T) {
	infos := []*target.Info{
		{TargetID: "A", Type: "page"},
		{TargetID: "W", Type: "service_worker"},
		{TargetID: "B", Type: "page"},
		{TargetID: "F", Type: "iframe"},
	}
	assert.Equal(t, []browser.WindowHandle{"A", "B"}, PageHandles(infos))
	assert.Empty(t, PageHandles(nil))
}

func TestAllocatorOptions(t *testing.T) {
	base := len(AllocatorOptions(browser.LaunchOptions{}))
	withExtras := AllocatorOptions(browser.LaunchOptions{
		Width: 800, Height: 600, ExecPath: "/usr/bin/chromium", Args: []string{"--lang=en-US", "--"},
	})
	// window size, exec path and one usable extra flag
	assert.Equal(t, base+3, len(withExtras))
}

func TestKeySequence(t *testing.T) {
	seq, err := keySequence(browser.KeyEnter)
	require.NoError(t, err)
	assert.Equal(t, "\r", seq)

	_, err = keySequence(browser.Key(7))
	assert.Error(t, err)
}

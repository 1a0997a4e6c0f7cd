// pkg/browser/cdp/selector.go
package cdp

import (
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// Selector translates a locator into a chromedp query. Strategies without a
// native DevTools equivalent are expressed as CSS or XPath.
func Selector(loc browser.Locator) (string, chromedp.QueryOption, error) {
	v := loc.Value
	switch loc.Strategy {
	case browser.ByID:
		return "[id=" + browser.CSSString(v) + "]", chromedp.ByQueryAll, nil
	case browser.ByClassName:
		return "[class~=" + browser.CSSString(v) + "]", chromedp.ByQueryAll, nil
	case browser.ByTagName, browser.ByCSSSelector:
		return v, chromedp.ByQueryAll, nil
	case browser.ByXPath:
		return v, chromedp.BySearch, nil
	case browser.ByLinkText:
		return browser.LinkTextXPath(v, false), chromedp.BySearch, nil
	case browser.ByPartialLinkText:
		return browser.LinkTextXPath(v, true), chromedp.BySearch, nil
	default:
		return "", nil, fault.Configuration("cdp_selector", "strategy",
			fmt.Sprintf("%s is not a valid locator strategy", loc.Strategy))
	}
}

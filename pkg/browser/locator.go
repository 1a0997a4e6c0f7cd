// pkg/browser/locator.go
package browser

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// Strategy is the closed set of element lookup methods.
type Strategy int

const (
	// strategyInvalid is the zero value so an unset Strategy never passes validation.
	strategyInvalid Strategy = iota
	ByID
	ByXPath
	ByLinkText
	ByPartialLinkText
	ByTagName
	ByClassName
	ByCSSSelector
)

var strategyNames = map[Strategy]string{
	ByID:              "id",
	ByXPath:           "xpath",
	ByLinkText:        "link_text",
	ByPartialLinkText: "partial_link_text",
	ByTagName:         "tag_name",
	ByClassName:       "class_name",
	ByCSSSelector:     "css_selector",
}

var strategyAliases = map[string]Strategy{
	"id":                ByID,
	"xpath":             ByXPath,
	"link_text":         ByLinkText,
	"linktext":          ByLinkText,
	"partial_link_text": ByPartialLinkText,
	"partiallinktext":   ByPartialLinkText,
	"tag_name":          ByTagName,
	"tagname":           ByTagName,
	"class_name":        ByClassName,
	"classname":         ByClassName,
	"css_selector":      ByCSSSelector,
	"cssselector":       ByCSSSelector,
}

// Strategies returns every valid strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{ByID, ByXPath, ByLinkText, ByPartialLinkText, ByTagName, ByClassName, ByCSSSelector}
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// ParseStrategy maps a strategy name to its Strategy. Both snake_case
// ("link_text") and camelCase ("linkText") spellings are accepted. Unknown
// names are a caller bug and yield a *fault.ConfigurationError.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := strategyAliases[key]; ok {
		return s, nil
	}
	return strategyInvalid, fault.Configuration("parse_strategy", "strategy",
		fmt.Sprintf("%q is not a valid locator strategy; use one of %s", name, strategyList()))
}

func strategyList() string {
	names := make([]string, 0, len(strategyNames))
	for _, s := range Strategies() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// Locator pairs a strategy with the value to search for.
type Locator struct {
	Strategy Strategy
	Value    string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}

// XPathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so values containing both quote kinds are built with concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, `'`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, `'`+p+`'`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// LinkTextXPath returns an XPath matching anchors whose normalized text is
// text, or that contain text when partial is set.
func LinkTextXPath(text string, partial bool) string {
	if partial {
		return "//a[contains(., " + XPathLiteral(text) + ")]"
	}
	return "//a[normalize-space(.)=" + XPathLiteral(text) + "]"
}

// CSSString quotes s as a double-quoted CSS string.
func CSSString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return `"` + r.Replace(s) + `"`
}

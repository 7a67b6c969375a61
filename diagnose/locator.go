// ABOUTME: Extracts the UI selector named in a failure message, if any.
// ABOUTME: Extraction only proves a selector was mentioned, so Found is always false.

package diagnose

import "regexp"

// LocatorInfo describes a selector referenced by a failure message.
type LocatorInfo struct {
	Selector string `json:"selector" yaml:"selector"`
	// Found is false by construction. Nothing here probes the DOM; the
	// selector was only named in the message.
	Found bool `json:"found" yaml:"found"`
}

// locatorPatterns are tried in order; the first capture wins.
var locatorPatterns = []*regexp.Regexp{
	// selector: 'foo', locator "foo", selector='foo'
	regexp.MustCompile(`(?i)(?:selector|locator)\s*[:=]?\s*['"]([^'"]+)['"]`),
	// locator('foo'), selector("foo")
	regexp.MustCompile(`(?i)(?:selector|locator)\(\s*['"]([^'"]+)['"]\s*\)`),
	// selector: foo
	regexp.MustCompile(`(?i)selector:\s*([^\s'"]+)`),
}

// ExtractLocator returns the selector named in message, or nil when none of
// the known phrasings match.
func ExtractLocator(message string) *LocatorInfo {
	for _, re := range locatorPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			return &LocatorInfo{Selector: m[1], Found: false}
		}
	}
	return nil
}

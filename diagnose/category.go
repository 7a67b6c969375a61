// ABOUTME: Keyword categorizer mapping a failure message to one or more probable failure classes.
// ABOUTME: Rules are evaluated in a fixed priority order; every matching rule contributes a label.

package diagnose

import "strings"

// Category is a label describing the probable class of a test failure.
type Category string

const (
	CategoryTimeout    Category = "Database/API Timeout"
	CategoryLocator    Category = "UI Locator/DOM Change"
	CategorySchema     Category = "API Schema Change"
	CategoryNetwork    Category = "Network/Connection Issue"
	CategoryAuth       Category = "Authentication/Authorization"
	CategoryNotFound   Category = "Resource Not Found"
	CategoryValidation Category = "Data Validation Error"
	CategoryUnknown    Category = "Unknown Error"
)

// categoryRule pairs a label with the keywords that select it. Keywords are
// lower-case and matched against the lower-cased message.
type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules is ordered by priority; Categorize preserves this order.
var categoryRules = []categoryRule{
	{category: CategoryTimeout, keywords: []string{"timeout"}},
	{category: CategoryLocator, keywords: []string{"element", "locator", "selector"}},
	{category: CategorySchema, keywords: []string{"schema", "field", "property"}},
	{category: CategoryNetwork, keywords: []string{"network", "fetch", "request"}},
	{category: CategoryAuth, keywords: []string{"auth", "unauthorized", "permission"}},
	{category: CategoryNotFound, keywords: []string{"not found", "404"}},
	{category: CategoryValidation, keywords: []string{"validation", "invalid"}},
}

// Categorize returns every category whose keywords appear in message, in
// priority order. A message that matches nothing yields exactly
// [CategoryUnknown]. Matching ignores case.
func Categorize(message string) []Category {
	lower := strings.ToLower(message)

	var out []Category
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			out = append(out, rule.category)
		}
	}
	if len(out) == 0 {
		return []Category{CategoryUnknown}
	}
	return out
}

// HasCategory reports whether cats contains want.
func HasCategory(cats []Category, want Category) bool {
	for _, c := range cats {
		if c == want {
			return true
		}
	}
	return false
}

// JoinCategories renders categories as a comma separated list.
func JoinCategories(cats []Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

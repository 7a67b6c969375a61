// ABOUTME: Renders the quick failure summary printed as soon as a failure is categorized.
// ABOUTME: Fixed section layout with canned root cause, fix, and prevention text chosen by category.

package diagnose

import (
	"fmt"
	"strings"
)

// Banner frames the summary and the detailed analysis.
var Banner = strings.Repeat("=", 80)

// Section headings, exported so callers can style or search for them.
const (
	SummaryTitle          = "TEST FAILURE ANALYSIS"
	HeadingCategories     = "CATEGORIES:"
	HeadingError          = "ERROR:"
	HeadingRootCause      = "ROOT CAUSE:"
	HeadingWhy            = "WHY IT HAPPENED:"
	HeadingRecommendedFix = "RECOMMENDED FIX:"
	HeadingPrevention     = "PREVENTION:"
	HeadingDetailed       = "DETAILED ANALYSIS:"
)

// rootCauses is checked in order; the first category present wins.
var rootCauses = []struct {
	category Category
	text     string
}{
	{CategoryLocator, "The UI element could not be located. The page structure or the selector most likely changed."},
	{CategoryTimeout, "An operation exceeded its time limit. The backend, database, or page load is slower than the test allows."},
	{CategoryNotFound, "A requested resource does not exist. A route, record, or endpoint was moved or removed."},
	{CategoryNetwork, "A network request failed. The service was unreachable or the connection dropped."},
}

const genericRootCause = "The failure does not match a known pattern. Review the error details below."

var preventionTips = []string{
	"Prefer stable test ids (data-testid) over CSS structure or visible text.",
	"Wait on explicit conditions instead of fixed sleeps.",
	"Run the suite against every UI and API change in CI.",
}

// RootCause returns the canned root cause sentence for cats.
func RootCause(cats []Category) string {
	for _, rc := range rootCauses {
		if HasCategory(cats, rc.category) {
			return rc.text
		}
	}
	return genericRootCause
}

// RenderSummary produces the quick summary for a failure. The output depends
// only on its arguments. RECOMMENDED FIX appears only when loc is non-nil.
func RenderSummary(message string, cats []Category, loc *LocatorInfo) string {
	var b strings.Builder

	b.WriteString(Banner + "\n")
	b.WriteString(SummaryTitle + "\n")
	b.WriteString(Banner + "\n\n")

	fmt.Fprintf(&b, "%s %s\n\n", HeadingCategories, JoinCategories(cats))

	b.WriteString(HeadingError + "\n")
	b.WriteString(message + "\n\n")

	b.WriteString(HeadingRootCause + "\n")
	b.WriteString(RootCause(cats) + "\n\n")

	b.WriteString(HeadingWhy + "\n")
	if loc != nil {
		fmt.Fprintf(&b, "  - The selector %q did not match any element in time.\n", loc.Selector)
		b.WriteString("  - The element may have been renamed, moved, or removed from the DOM.\n")
		b.WriteString("  - The element may render late, behind a loader, or inside an iframe.\n")
	} else {
		b.WriteString("  - See the error details above for the failing operation.\n")
	}
	b.WriteString("\n")

	if loc != nil {
		b.WriteString(HeadingRecommendedFix + "\n")
		fmt.Fprintf(&b, "  1. Open the page and inspect whether %q still exists.\n", loc.Selector)
		b.WriteString("  2. Update the selector to a stable attribute such as data-testid.\n")
		b.WriteString("  3. Wait for the element to be visible before interacting with it.\n")
		b.WriteString("  4. Re-run the test to confirm the fix.\n\n")
	}

	b.WriteString(HeadingPrevention + "\n")
	for _, tip := range preventionTips {
		fmt.Fprintf(&b, "  - %s\n", tip)
	}
	b.WriteString(Banner + "\n")

	return b.String()
}

// ABOUTME: Builds the structured escalation prompt sent to the external analyzer.
// ABOUTME: Optional blocks (locator, network errors, page content) appear only when there is data for them.

package diagnose

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPageContent bounds the page content excerpt embedded in the prompt.
const maxPageContent = 2000

// AnalystSystemPrompt is sent as the system message when escalating.
const AnalystSystemPrompt = "You are a senior QA engineer who diagnoses failing browser automation tests. Be specific and concise."

// BuildPrompt renders the escalation prompt for a failure.
func BuildPrompt(c Context, cats []Category, loc *LocatorInfo) string {
	var b strings.Builder

	b.WriteString("Analyze this failing browser automation test and explain what went wrong.\n\n")

	fmt.Fprintf(&b, "CATEGORIES: %s\n\n", JoinCategories(cats))

	b.WriteString("ERROR DETAILS:\n")
	fmt.Fprintf(&b, "- Message: %s\n", c.ErrorMessage)
	fmt.Fprintf(&b, "- Page URL: %s\n", c.PageURL)
	fmt.Fprintf(&b, "- Timestamp: %s\n", c.Timestamp)
	fmt.Fprintf(&b, "- Platform: %s\n\n", c.Platform)

	if loc != nil {
		b.WriteString("LOCATOR ANALYSIS:\n")
		fmt.Fprintf(&b, "- Selector: %s\n", loc.Selector)
		fmt.Fprintf(&b, "- Element found: %t\n", loc.Found)
		b.WriteString("- The selector was named in the error, which suggests the element is missing, renamed, or not yet rendered.\n\n")
	}

	if len(c.NetworkErrors) > 0 {
		b.WriteString("NETWORK ERRORS:\n")
		for _, ne := range c.NetworkErrors {
			fmt.Fprintf(&b, "- %s\n", ne)
		}
		b.WriteString("\n")
	}

	if c.PageContent != "" {
		b.WriteString("PAGE CONTENT (excerpt):\n")
		b.WriteString(truncateRunes(c.PageContent, maxPageContent))
		b.WriteString("\n\n")
	}

	b.WriteString("STACK TRACE:\n")
	b.WriteString(c.ErrorStack)
	b.WriteString("\n\n")

	b.WriteString("Provide:\n")
	b.WriteString("1. ROOT CAUSE: the single most likely cause of this failure.\n")
	b.WriteString("2. WHY IT HAPPENED: what changed in the application or environment.\n")
	b.WriteString("3. IMPACT: which users or flows are affected.\n")
	b.WriteString("4. FIX: concrete code or test changes, with selectors or snippets where relevant.\n")
	b.WriteString("5. PREVENTION: how to stop this class of failure from recurring.\n")
	b.WriteString("6. WORKAROUND: what to do right now to unblock the pipeline.\n")

	return b.String()
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

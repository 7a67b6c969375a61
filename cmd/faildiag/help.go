// ABOUTME: Help display for the faildiag CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for usage output and envStatus for credential detection.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jancsp3/GHCPCLI-Shekhar/config"
	"github.com/jancsp3/GHCPCLI-Shekhar/llm"
)

// printHelp writes usage, grouped flags, examples, and environment status to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "faildiag %s - categorize a browser test failure and explain it\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  faildiag [flags] <error message>")
	fmt.Fprintln(w, "  faildiag [flags] -message <error message>")
	fmt.Fprintln(w, "  <command> 2>&1 | faildiag [flags]")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Context Flags:")
	fmt.Fprintln(w, "  -url <url>              Page URL at the time of failure")
	fmt.Fprintln(w, "  -open <url>             Open the URL in headless Chrome and capture URL and content")
	fmt.Fprintln(w, "  -chrome <path>          Chrome binary for -open (default: search PATH)")
	fmt.Fprintln(w, "  -stack-file <path>      File holding the failure's stack trace")
	fmt.Fprintln(w, "  -network-error <text>   Failed request observed during the test (repeatable)")
	fmt.Fprintln(w, "  -context <file.yaml>    YAML file with page_url, error_stack, network_errors, ...")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Escalation Flags:")
	fmt.Fprintln(w, "  -config <file.toml>     Settings file (default: faildiag.toml if present)")
	fmt.Fprintln(w, "  -timeout <duration>     Deadline for the AI analysis (default: 2s)")
	fmt.Fprintln(w, "  -model <name>           Model for the AI analysis")
	fmt.Fprintln(w, "  -base-url <url>         Custom OpenAI-compatible API base URL")
	fmt.Fprintln(w, "  -no-escalate            Print the quick summary only")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -color <mode>           auto, always, never (default: auto)")
	fmt.Fprintln(w, "  -verbose                Log pipeline decisions to stderr")
	fmt.Fprintln(w, "  -version                Print version and exit")
	fmt.Fprintln(w, "  -help                   Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, `  faildiag "Timeout 30000ms exceeded waiting for selector: '.login-btn'"`)
	fmt.Fprintln(w, "  faildiag -url https://app.test/login -stack-file stack.txt -message \"401 Unauthorized\"")
	fmt.Fprintln(w, "  npx playwright test 2>&1 | tail -n 20 | faildiag -no-escalate")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	for _, key := range llm.TokenEnvVars {
		fmt.Fprintf(w, "  %-22s%s\n", key, envStatus(key))
	}
	fmt.Fprintf(w, "  %-22s%s\n", "OPENAI_API_KEY", envStatus("OPENAI_API_KEY"))
	fmt.Fprintf(w, "  %-22s%s\n", config.EnvModel, envStatus(config.EnvModel))
	fmt.Fprintf(w, "  %-22s%s\n", config.EnvBaseURL, envStatus(config.EnvBaseURL))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  AI analysis runs only when GITHUB_TOKEN or GH_TOKEN is set.")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}

// ABOUTME: Tests for the faildiag help display covering usage, flags, and env detection.
// ABOUTME: Env status lines are checked against t.Setenv values.
package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintHelpContainsVersionAndUsage(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "1.2.3")
	out := buf.String()

	for _, want := range []string{"faildiag 1.2.3", "faildiag [flags] <error message>", "| faildiag"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestPrintHelpContainsAllFlags(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "dev")
	out := buf.String()

	flags := []string{
		"-url", "-open", "-chrome", "-stack-file", "-network-error", "-context",
		"-config", "-timeout", "-model", "-base-url", "-no-escalate",
		"-color", "-verbose", "-version", "-help",
	}
	for _, f := range flags {
		if !strings.Contains(out, f) {
			t.Errorf("help missing flag %q", f)
		}
	}
}

func TestPrintHelpEnvironmentStatus(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_x")
	t.Setenv("GH_TOKEN", "")

	var buf bytes.Buffer
	printHelp(&buf, "dev")

	var ghLine, ghTokenLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "GITHUB_TOKEN") && !strings.Contains(line, "AI analysis"):
			ghLine = line
		case strings.HasPrefix(strings.TrimSpace(line), "GH_TOKEN"):
			ghTokenLine = line
		}
	}
	if !strings.Contains(ghLine, "[set]") {
		t.Errorf("GITHUB_TOKEN line = %q", ghLine)
	}
	if !strings.Contains(ghTokenLine, "[not set]") {
		t.Errorf("GH_TOKEN line = %q", ghTokenLine)
	}
}

func TestEnvStatus(t *testing.T) {
	t.Setenv("FAILDIAG_TEST_STATUS", "x")
	if envStatus("FAILDIAG_TEST_STATUS") != "[set]" {
		t.Error("expected [set]")
	}
	t.Setenv("FAILDIAG_TEST_STATUS", "")
	if envStatus("FAILDIAG_TEST_STATUS") != "[not set]" {
		t.Error("expected [not set]")
	}
}

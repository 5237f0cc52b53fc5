// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/forgecv/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTailorResult outputs a human-readable summary of a tailoring run:
// what changed, where, and why.
func (p *Printer) PrintTailorResult(result *types.TailorResult) {
	if result == nil || result.Resume == nil {
		return
	}

	var sb strings.Builder

	if result.Resume.Contact.Name != "" {
		sb.WriteString(fmt.Sprintf("Candidate: %s\n", result.Resume.Contact.Name))
	}
	sb.WriteString(fmt.Sprintf("Sections:  %d experience, %d skill groups, %d education\n",
		len(result.Resume.Experience), len(result.Resume.Skills), len(result.Resume.Education)))
	sb.WriteString("\n")

	if len(result.Highlights) > 0 {
		sb.WriteString("Changes:\n")
		count := min(len(result.Highlights), maxItemsToShow)
		for i := 0; i < count; i++ {
			h := result.Highlights[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", h.Path, h.Type))
		}
		if len(result.Highlights) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Highlights)-maxItemsToShow))
		}
	} else {
		sb.WriteString("No changes proposed.\n")
	}

	p.printBox("TAILORED RESUME", strings.TrimSuffix(sb.String(), "\n"))

	p.PrintReasoning(result.Reasoning)
}

// PrintReasoning outputs the model's per-section reasoning entries.
func (p *Printer) PrintReasoning(reasoning []types.ReasoningEntry) {
	if len(reasoning) == 0 {
		return
	}

	var sb strings.Builder
	for i, entry := range reasoning {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n", entry.Section, entry.Change))
		if entry.Why != "" {
			sb.WriteString(fmt.Sprintf("  why: %s\n", entry.Why))
		}
		if entry.CoachingNote != "" {
			sb.WriteString(fmt.Sprintf("  tip: %s\n", entry.CoachingNote))
		}
	}

	p.printBox("REASONING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the final summary line of a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSummary(jobID, status string, elapsed string) {
	fmt.Fprintf(p.out, "\njob %s finished: %s (%s)\n", jobID, status, elapsed)
}

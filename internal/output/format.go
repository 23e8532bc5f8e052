// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todont/internal/service"
)

const (
	// Separator is printed between successive lists in watch output.
	Separator = "------------"

	markDone = "[x]"
	markOpen = "[ ]"
)

// FormatItem formats one item line.
// Format: "{N:>4}  [x] {DESC}\n" (4-wide right-aligned number, two spaces,
// completion mark, description)
func FormatItem(w io.Writer, num int, item service.Item) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, Mark(item.Complete), NormalizeDesc(item.Desc))
}

// FormatItems formats a whole list, numbering items from 1.
func FormatItems(w io.Writer, items []service.Item) {
	for i, item := range items {
		FormatItem(w, i+1, item)
	}
}

// FormatSummary formats the "N items, M done" line.
func FormatSummary(w io.Writer, items []service.Item) {
	done := 0
	for _, it := range items {
		if it.Complete {
			done++
		}
	}
	noun := "items"
	if len(items) == 1 {
		noun = "item"
	}
	fmt.Fprintf(w, "%d %s, %d done\n", len(items), noun, done)
}

// Mark returns the completion mark for an item.
func Mark(complete bool) string {
	if complete {
		return markDone
	}
	return markOpen
}

// NormalizeDesc normalizes an item description for display.
// - Empty or whitespace-only descriptions become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeDesc(desc string) string {
	desc = strings.ReplaceAll(desc, "\r", " ")
	desc = strings.ReplaceAll(desc, "\n", " ")

	if strings.TrimSpace(desc) == "" {
		return "(untitled)"
	}
	return desc
}

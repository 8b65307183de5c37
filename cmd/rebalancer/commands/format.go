package commands

import (
	"fmt"
	"os"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled double-line header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintField prints an aligned "label : value" line
func PrintField(label string, value interface{}) {
	fmt.Printf("  %-10s: %v\n", label, value)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message to stderr
func PrintWarning(message string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "⚠️  %s\n", message)
	fmt.Fprintln(os.Stderr)
}

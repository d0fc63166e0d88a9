// Package ui styles the command line output with lipgloss.
//
// A [Palette] renders titles, success and error lines, warnings and help text. [Plain] is the uncolored palette used
// when output is not a terminal and in tests.
package ui

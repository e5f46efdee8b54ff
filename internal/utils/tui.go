// Package utils provides terminal output helpers: themed message printers
// and go-pretty table rendering shared by all commands.
package utils

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Theme holds the semantic colors used for terminal output
var Theme = struct {
	Success     text.Colors
	Info        text.Colors
	Warning     text.Colors
	Error       text.Colors
	Heading     text.Colors
	Subtle      text.Colors
	Accent      text.Colors
	TableHeader text.Colors
	TableBorder text.Colors
}{
	Success:     text.Colors{text.FgGreen},
	Info:        text.Colors{text.FgBlue},
	Warning:     text.Colors{text.FgYellow},
	Error:       text.Colors{text.FgRed},
	Heading:     text.Colors{text.FgHiCyan, text.Bold},
	Subtle:      text.Colors{text.FgHiBlack},
	Accent:      text.Colors{text.FgCyan},
	TableHeader: text.Colors{text.FgHiBlue, text.Bold},
	TableBorder: text.Colors{text.FgBlue},
}

// PrintHeading prints a formatted heading
func PrintHeading(title string) {
	fmt.Println(Theme.Heading.Sprint(title))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(Theme.Success.Sprint("✓ ") + message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Println(Theme.Info.Sprint("ℹ ") + message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(Theme.Warning.Sprint("⚠ ") + message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(Theme.Error.Sprint("✗ ") + message)
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	fmt.Printf("%s: %s\n", text.Colors{text.Bold}.Sprint(key), value)
}

// PrintDivider prints a horizontal divider
func PrintDivider() {
	fmt.Println(Theme.Subtle.Sprint("---------------------------------------------------"))
}

// CreateTable creates a table writer with the application style
func CreateTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	style := table.StyleLight
	style.Color.Header = Theme.TableHeader
	style.Color.Border = Theme.TableBorder
	style.Title.Colors = Theme.Heading
	style.Options.DrawBorder = true
	style.Options.SeparateColumns = true
	style.Options.SeparateHeader = true

	t.SetStyle(style)
	if title != "" {
		t.SetTitle(title)
	}

	return t
}

// PrintTable prints a table with headers and rows
func PrintTable(title string, headers []string, rows [][]string) {
	t := CreateTable(title)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := table.Row{}
		for _, cell := range row {
			tableRow = append(tableRow, cell)
		}
		t.AppendRow(tableRow)
	}

	t.Render()
}

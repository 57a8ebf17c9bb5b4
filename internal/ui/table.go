package ui

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// ColumnAlignment selects the horizontal alignment of a table column.
type ColumnAlignment int

// Supported column alignments.
const (
	AlignLeft ColumnAlignment = iota
	AlignRight
)

// StatusKind classifies a status cell for colouring.
type StatusKind int

// Supported status kinds.
const (
	StatusNeutral StatusKind = iota
	StatusSuccess
	StatusWarning
	StatusFailure
)

// RenderTable renders rows under headers with rounded borders.
func RenderTable(headers []string, rows [][]string, aligns []ColumnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tableWriter := table.NewWriter()
	tableWriter.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for columnIndex := 0; columnIndex < columns; columnIndex++ {
		header[columnIndex] = headers[columnIndex]
	}
	tableWriter.AppendHeader(header)

	for _, row := range rows {
		tableRow := make(table.Row, columns)
		for columnIndex := 0; columnIndex < columns; columnIndex++ {
			if columnIndex < len(row) {
				tableRow[columnIndex] = row[columnIndex]
			} else {
				tableRow[columnIndex] = ""
			}
		}
		tableWriter.AppendRow(tableRow)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for columnIndex := 0; columnIndex < columns; columnIndex++ {
		align := text.AlignLeft
		if columnIndex < len(aligns) && aligns[columnIndex] == AlignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      columnIndex + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tableWriter.SetColumnConfigs(columnConfigs)

	return tableWriter.Render()
}

// FormatStatus colours value by kind when colorize is set.
func FormatStatus(value string, kind StatusKind, colorize bool) string {
	if !colorize {
		return value
	}
	switch kind {
	case StatusSuccess:
		return text.Colors{text.FgGreen}.Sprint(value)
	case StatusWarning:
		return text.Colors{text.FgYellow}.Sprint(value)
	case StatusFailure:
		return text.Colors{text.FgRed}.Sprint(value)
	default:
		return value
	}
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Package formatter provides markdown table formatting for run reports.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 3

// FormatTable renders header and rows as a markdown pipe table whose columns are
// padded to the widest cell, measured in terminal display width so that CJK
// category names stay aligned. Short rows are padded with empty cells.
func FormatTable(header []string, rows [][]string) string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	colWidths := make([]int, colCount)

	measure := func(row []string) {
		for i := 0; i < len(row) && i < colCount; i++ {
			if w := runewidth.StringWidth(cleanCell(row[i])); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	measure(header)

	for _, row := range rows {
		measure(row)
	}

	for i := range colWidths {
		if colWidths[i] < minColumnWidth {
			colWidths[i] = minColumnWidth
		}
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(header, colWidths), formatSeparator(colWidths))

	for _, row := range rows {
		lines = append(lines, formatRow(row, colWidths))
	}

	return strings.Join(lines, "\n")
}

func formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = cleanCell(row[j])
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func formatSeparator(colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for _, width := range colWidths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}

	return sb.String()
}

// cleanCell trims a cell and escapes pipes so it cannot split the row.
func cleanCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}

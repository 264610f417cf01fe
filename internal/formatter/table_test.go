package formatter

import (
	"strings"
	"testing"
)

func TestFormatTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table",
			header: []string{"Category", "Articles"},
			rows:   [][]string{{"Billing", "12"}, {"Devices", "3"}},
			expected: `
| Category | Articles |
| -------- | -------- |
| Billing  | 12       |
| Devices  | 3        |
`,
		},
		{
			name:   "Minimum width",
			header: []string{"A", "B"},
			rows:   [][]string{{"x", "y"}},
			expected: `
| A   | B   |
| --- | --- |
| x   | y   |
`,
		},
		{
			name:   "Trim spaces in cells",
			header: []string{"  Col A  ", "Col B"},
			rows:   [][]string{{"  val A  ", "  val B"}},
			expected: `
| Col A | Col B |
| ----- | ----- |
| val A | val B |
`,
		},
		{
			name:   "Short rows padded",
			header: []string{"Name", "Sections", "Articles"},
			rows:   [][]string{{"Other"}},
			expected: `
| Name  | Sections | Articles |
| ----- | -------- | -------- |
| Other |          |          |
`,
		},
		{
			name:   "Pipes escaped",
			header: []string{"Name"},
			rows:   [][]string{{"A|B"}},
			expected: `
| Name |
| ---- |
| A\|B |
`,
		},
		{
			// "帳單與方案" is 5 wide characters: display width 10.
			name:   "Mixed CJK and ASCII",
			header: []string{"Category", "Articles"},
			rows:   [][]string{{"帳單與方案", "4"}, {"Devices", "12"}},
			expected: `
| Category   | Articles |
| ---------- | -------- |
| 帳單與方案 | 4        |
| Devices    | 12       |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTable(tt.header, tt.rows)
			if got != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatTable() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestFormatTable_Empty(t *testing.T) {
	if got := FormatTable(nil, nil); got != "" {
		t.Errorf("FormatTable() = %q, want empty", got)
	}
}

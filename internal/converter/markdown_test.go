package converter

import (
	"testing"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty input", input: "", expected: ""},
		{name: "Plain text unchanged", input: "Hello world", expected: "Hello world"},
		{name: "Plain text trimmed", input: "  Hello world\n", expected: "Hello world"},
		{name: "Paragraph with bold", input: "<p>Use <b>card</b>.</p>", expected: "Use **card**."},
		{name: "Strong", input: "<strong>Important</strong>", expected: "**Important**"},
		{name: "Mismatched bold pair", input: "<b>text</i>", expected: "text"},
		{name: "Mismatched strong pair", input: "<strong>text</b>", expected: "text"},
		{name: "Italic", input: "<i>soft</i> and <em>softer</em>", expected: "*soft* and *softer*"},
		{name: "Mismatched italic pair", input: "<em>text</i>", expected: "text"},
		{name: "Nested emphasis", input: "<strong><em>x</em></strong>", expected: "***x***"},
		{name: "Nested bold", input: "<strong><b>x</b></strong>", expected: "**x**"},
		{
			name:     "Headings descending",
			input:    "<h1>Title</h1>\n<h6> Small </h6>",
			expected: "# Title\n###### Small",
		},
		{name: "Heading with attributes", input: `<h2 id="setup">Setup</h2>`, expected: "## Setup"},
		{name: "Heading with bold", input: "<h3><strong>Note</strong></h3>", expected: "### **Note**"},
		{name: "Heading spanning lines", input: "<h4>\n  Multi\n</h4>", expected: "#### Multi"},
		{name: "Image with alt", input: `<img src="a.png" alt="Diagram" />`, expected: "[Diagram]"},
		{name: "Image without alt", input: `<p>Before<img src="a.png">After</p>`, expected: "BeforeAfter"},
		{
			name:     "Link",
			input:    `<a href="https://example.com/help" target="_blank">help page</a>`,
			expected: "[help page](https://example.com/help)",
		},
		{name: "Anchor without href", input: `<a name="top">Top</a>`, expected: "Top"},
		{
			name:     "List",
			input:    "<ul>\n<li>One</li>\n<li class=\"x\">Two</li>\n</ul>",
			expected: "- One\n- Two",
		},
		{name: "Line breaks", input: "a<br>b<br/>c<br />d", expected: "a\nb\nc\nd"},
		{name: "Paragraphs", input: "<p>One</p><p>Two</p>", expected: "One\n\nTwo"},
		{name: "Divs", input: "<div>One</div><div>Two</div>", expected: "One\nTwo"},
		{name: "Entities", input: "Fish &amp; chips &lt;3", expected: "Fish & chips <3"},
		{name: "Escaped tags stay literal", input: "&lt;b&gt;bold&lt;/b&gt;", expected: "<b>bold</b>"},
		{name: "Blank lines collapsed", input: "<p>A</p>\n\n\n<p>B</p>", expected: "A\n\nB"},
		{name: "Unclosed paragraph", input: "<p>unclosed", expected: "unclosed"},
		{name: "Bare angle bracket", input: "5 > 3 and a < b", expected: "5 > 3 and a < b"},
		{name: "Unknown tags stripped", input: "<span style=\"x\">kept</span>", expected: "kept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMarkdown(tt.input)
			if got != tt.expected {
				t.Errorf("ToMarkdown() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestToMarkdown_ArticleBody(t *testing.T) {
	input := `<h2>Paying an invoice</h2>
<p>You can pay with a <strong>credit card</strong> or <em>bank transfer</em>.</p>
<ol>
<li>Open <a href="https://example.com/billing">Billing</a></li>
<li>Choose <b>Pay now</b></li>
</ol>
<p><img src="pay.png" alt="Pay button"></p>
<div>Questions? Contact&nbsp;us.</div>`

	expected := "## Paying an invoice\n" +
		"You can pay with a **credit card** or *bank transfer*.\n\n" +
		"- Open [Billing](https://example.com/billing)\n" +
		"- Choose **Pay now**\n\n" +
		"[Pay button]\n\n" +
		"Questions? Contact\u00a0us."

	if got := ToMarkdown(input); got != expected {
		t.Errorf("ToMarkdown() =\n%q\nwant\n%q", got, expected)
	}
}

func TestToMarkdown_Deterministic(t *testing.T) {
	input := "<p>Same <b>input</b></p><ul><li>x</li></ul>"

	first := ToMarkdown(input)
	for range 5 {
		if got := ToMarkdown(input); got != first {
			t.Fatalf("ToMarkdown() not deterministic: %q vs %q", got, first)
		}
	}
}

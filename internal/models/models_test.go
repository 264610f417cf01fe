package models

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{name: "number", input: `360001234567`, want: "360001234567"},
		{name: "string", input: `"abc-1"`, want: "abc-1"},
		{name: "null", input: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ID
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Unmarshal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestID_UnmarshalJSON_Invalid(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestArticle_Decode(t *testing.T) {
	raw := `{"id":100,"title":"How to pay","body":null,"section_id":10,"draft":true,
		"updated_at":"2024-01-02T03:04:05Z","html_url":"https://x/100"}`

	var a Article
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if a.ID != "100" || a.SectionID != "10" {
		t.Errorf("ids = %q/%q, want 100/10", a.ID, a.SectionID)
	}

	if a.Body != "" {
		t.Errorf("Body = %q, want empty for null", a.Body)
	}

	if !a.Draft {
		t.Error("Draft = false, want true")
	}

	if got := a.UpdatedDate(); got != "2024-01-02" {
		t.Errorf("UpdatedDate() = %q, want 2024-01-02", got)
	}
}

func TestArticle_UpdatedDate_Short(t *testing.T) {
	a := Article{UpdatedAt: "2024"}
	if got := a.UpdatedDate(); got != "2024" {
		t.Errorf("UpdatedDate() = %q, want 2024", got)
	}
}

func TestID_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]ID{"42", "x", ""})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if string(data) != `[42,"x",null]` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestContentTree_Counts(t *testing.T) {
	tree := &ContentTree{
		Categories: []*CategoryNode{
			{Name: "A", Sections: []*SectionNode{
				{Name: "empty"},
				{Name: "full", Articles: []Article{{ID: "1"}, {ID: "2"}}},
			}},
			{Name: "B", Sections: []*SectionNode{{Name: "empty"}}},
		},
	}

	if got := tree.ArticleCount(); got != 2 {
		t.Errorf("ArticleCount() = %d, want 2", got)
	}

	if !tree.Categories[0].HasArticles() {
		t.Error("category A should have articles")
	}

	if tree.Categories[1].HasArticles() {
		t.Error("category B should be empty")
	}

	if got := len(tree.Categories[0].NonEmptySections()); got != 1 {
		t.Errorf("NonEmptySections() = %d, want 1", got)
	}
}

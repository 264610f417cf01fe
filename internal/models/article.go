// Package models defines the Help Center records and the content tree built from them.
package models

// Article is a single Help Center article as returned by the articles listing.
type Article struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	SectionID ID     `json:"section_id"`
	UpdatedAt string `json:"updated_at"`
	HTMLURL   string `json:"html_url"`
	Draft     bool   `json:"draft"`
}

// UpdatedDate returns the date portion (YYYY-MM-DD) of UpdatedAt.
func (a Article) UpdatedDate() string {
	if len(a.UpdatedAt) <= 10 {
		return a.UpdatedAt
	}

	return a.UpdatedAt[:10]
}

package models

// ContentTree is the ordered Category -> Section -> Article hierarchy of one run.
// It is built once by the aggregator and only read afterwards.
type ContentTree struct {
	Categories []*CategoryNode
}

// CategoryNode is a category bucket in the tree.
type CategoryNode struct {
	ID       ID
	Name     string
	Sections []*SectionNode
	// Synthetic marks placeholder categories created for dangling references.
	Synthetic bool
}

// SectionNode is a section bucket holding articles in retrieval order.
type SectionNode struct {
	ID       ID
	Name     string
	Articles []Article
}

// ArticleCount returns the number of articles placed anywhere in the tree.
func (t *ContentTree) ArticleCount() int {
	total := 0
	for _, c := range t.Categories {
		total += c.ArticleCount()
	}

	return total
}

// ArticleCount returns the number of articles across the category's sections.
func (c *CategoryNode) ArticleCount() int {
	total := 0
	for _, s := range c.Sections {
		total += len(s.Articles)
	}

	return total
}

// HasArticles reports whether any section of the category holds an article.
func (c *CategoryNode) HasArticles() bool {
	for _, s := range c.Sections {
		if len(s.Articles) > 0 {
			return true
		}
	}

	return false
}

// NonEmptySections returns the sections holding at least one article, in order.
func (c *CategoryNode) NonEmptySections() []*SectionNode {
	var sections []*SectionNode

	for _, s := range c.Sections {
		if len(s.Articles) > 0 {
			sections = append(sections, s)
		}
	}

	return sections
}

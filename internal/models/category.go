package models

// Category is a top-level Help Center grouping.
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Section groups articles and belongs to exactly one category.
type Section struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	CategoryID ID     `json:"category_id"`
}

// RecordSet holds the three decoded listings of one sync run, in retrieval order.
type RecordSet struct {
	Categories []Category `json:"categories"`
	Sections   []Section  `json:"sections"`
	Articles   []Article  `json:"articles"`
}

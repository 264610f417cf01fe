// Package aggregator builds the ordered content tree from the three flat Help Center listings.
//
// Cross references between the listings are not trusted: sections may point at
// categories that were not returned and articles may point at unknown sections.
// Missing parents are synthesized so that every article ends up in the tree.
package aggregator

import (
	"fmt"

	"kbsync/internal/models"
)

// Placeholder names used for synthesized buckets.
const (
	OtherCategoryName   = "Other"
	UnknownSectionName  = "Unknown"
	unknownCategoryName = "Unknown (%s)"
	// missingID stands in for an absent parent id in placeholder names.
	missingID = "none"
)

// Stats describes how much of the tree had to be synthesized.
type Stats struct {
	PlaceholderCategories int
	OrphanArticles        int
}

// builder carries the lookup state of one Build call.
type builder struct {
	tree *models.ContentTree
	// categories indexes category buckets by id, placeholders included.
	categories map[models.ID]*models.CategoryNode
	// buckets records the first bucket registered for each section id.
	buckets map[models.ID]*models.SectionNode
	// sectionNames holds the declared name of every known section record.
	sectionNames map[models.ID]string
	other        *models.CategoryNode
	otherBuckets map[models.ID]*models.SectionNode
	stats        Stats
}

// Build arranges categories, sections and articles into a content tree.
// It never fails and never drops an article.
func Build(categories []models.Category, sections []models.Section, articles []models.Article) *models.ContentTree {
	tree, _ := BuildWithStats(categories, sections, articles)

	return tree
}

// BuildWithStats is Build that also reports what was synthesized.
func BuildWithStats(categories []models.Category, sections []models.Section, articles []models.Article) (*models.ContentTree, Stats) {
	b := &builder{
		tree:         &models.ContentTree{},
		categories:   make(map[models.ID]*models.CategoryNode, len(categories)),
		buckets:      make(map[models.ID]*models.SectionNode, len(sections)),
		sectionNames: make(map[models.ID]string, len(sections)),
		otherBuckets: make(map[models.ID]*models.SectionNode),
	}

	for _, c := range categories {
		b.addCategory(c)
	}

	for _, s := range sections {
		b.addSection(s)
	}

	for _, a := range articles {
		b.addArticle(a)
	}

	return b.tree, b.stats
}

func (b *builder) addCategory(c models.Category) {
	if _, exists := b.categories[c.ID]; exists {
		return
	}

	node := &models.CategoryNode{ID: c.ID, Name: c.Name}
	b.categories[c.ID] = node
	b.tree.Categories = append(b.tree.Categories, node)
}

func (b *builder) addSection(s models.Section) {
	if _, known := b.sectionNames[s.ID]; !known {
		b.sectionNames[s.ID] = s.Name
	}

	parent, exists := b.categories[s.CategoryID]
	if !exists {
		label := string(s.CategoryID)
		if label == "" {
			label = missingID
		}

		parent = &models.CategoryNode{
			ID:        s.CategoryID,
			Name:      fmt.Sprintf(unknownCategoryName, label),
			Synthetic: true,
		}
		b.categories[s.CategoryID] = parent
		b.tree.Categories = append(b.tree.Categories, parent)
		b.stats.PlaceholderCategories++
	}

	for _, existing := range parent.Sections {
		if existing.ID == s.ID {
			return
		}
	}

	bucket := &models.SectionNode{ID: s.ID, Name: s.Name}
	parent.Sections = append(parent.Sections, bucket)

	// A section id seen again under another category gets its own bucket,
	// but articles keep flowing to the first one.
	if _, registered := b.buckets[s.ID]; !registered {
		b.buckets[s.ID] = bucket
	}
}

func (b *builder) addArticle(a models.Article) {
	if bucket, ok := b.buckets[a.SectionID]; ok {
		bucket.Articles = append(bucket.Articles, a)
		return
	}

	b.stats.OrphanArticles++

	bucket := b.otherBucket(a.SectionID)
	bucket.Articles = append(bucket.Articles, a)
}

// otherBucket returns the bucket under the synthesized Other category for an
// unknown section id, creating both on first use.
func (b *builder) otherBucket(sectionID models.ID) *models.SectionNode {
	if b.other == nil {
		b.other = &models.CategoryNode{Name: OtherCategoryName, Synthetic: true}
		b.tree.Categories = append(b.tree.Categories, b.other)
	}

	if bucket, ok := b.otherBuckets[sectionID]; ok {
		return bucket
	}

	name, ok := b.sectionNames[sectionID]
	if !ok {
		name = UnknownSectionName
	}

	bucket := &models.SectionNode{ID: sectionID, Name: name}
	b.otherBuckets[sectionID] = bucket
	b.other.Sections = append(b.other.Sections, bucket)

	return bucket
}

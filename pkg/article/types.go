package article

import "fmt"

// Category is the classification label assigned to an article offline.
// The set is closed: articles were classified upstream via Wikidata P31
// instance types expanded with P279 subclass hierarchies.
type Category string

const (
	CategoryConcept      Category = "concept"
	CategoryEvent        Category = "event"
	CategoryHuman        Category = "human"
	CategoryOrganization Category = "organization"
	CategoryOther        Category = "other"
	CategoryNone         Category = "none"
)

// Categories returns all categories in canonical display order.
func Categories() []Category {
	return []Category{
		CategoryEvent,
		CategoryConcept,
		CategoryOrganization,
		CategoryHuman,
		CategoryNone,
		CategoryOther,
	}
}

// ParseCategory validates a wire value against the closed category set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryConcept, CategoryEvent, CategoryHuman,
		CategoryOrganization, CategoryOther, CategoryNone:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Item represents one classified article in the source table's wide form:
// one row per article, with a present-or-absent locator per language.
type Item struct {
	QID      string            `json:"qid"`
	Category Category          `json:"category"`
	Articles map[string]string `json:"articles"` // language code -> article URL
}

// Validate checks that the item carries the required fields.
func (i *Item) Validate() error {
	if i.QID == "" {
		return fmt.Errorf("item QID cannot be empty")
	}
	if _, err := ParseCategory(string(i.Category)); err != nil {
		return fmt.Errorf("item %s: %w", i.QID, err)
	}
	return nil
}

// LongRow is the long-form derived entity: one row per (item, language)
// pair. Absent locators never produce a row.
type LongRow struct {
	QID        string   `json:"qid"`
	Language   string   `json:"language_code"`
	ArticleURL string   `json:"article_url"`
	Category   Category `json:"category"`
}

// CategoryDefinitions describes how articles were classified, keyed by
// category. Shown on the dashboard's definitions panel.
func CategoryDefinitions() map[Category]string {
	return map[Category]string{
		CategoryConcept:      "Scientific concepts, theories, properties, phenomena (e.g., greenhouse effect, carbon cycle)",
		CategoryEvent:        "Conferences, protests, disasters, climate summits (e.g., COP meetings, climate strikes)",
		CategoryHuman:        "Biographies of climate activists, scientists, politicians (e.g., Greta Thunberg, Al Gore)",
		CategoryOrganization: "Companies, NGOs, government agencies, research institutions (e.g., IPCC, Greenpeace)",
		CategoryNone:         "Articles with no instance type information in Wikidata",
		CategoryOther:        "Articles that don't fit the above categories (technologies, geographic features, policies, etc.)",
	}
}

// Package categories maps the legacy per-category flags of the submission
// export onto the canonical category taxonomy.
package categories

import "showcase_ingest/internal/models"

var canonical = []models.CanonicalCategory{
	{ID: "advertising", Name: "Advertising"},
	{ID: "animation", Name: "Animation"},
	{ID: "architecture_and_set_design", Name: "Architecture & Set Design"},
	{ID: "branding_and_packaging", Name: "Branding & Packaging"},
	{ID: "ceramics", Name: "Ceramics"},
	{ID: "fashion_and_costume_design", Name: "Fashion & Costume Design"},
	{ID: "film_and_video", Name: "Film & Video"},
	{ID: "fine_art", Name: "Fine Art"},
	{ID: "game_design", Name: "Game Design"},
	{ID: "graphic_design", Name: "Graphic Design"},
	{ID: "illustration", Name: "Illustration"},
	{ID: "jewellery_design", Name: "Jewellery Design"},
	{ID: "photography", Name: "Photography"},
	{ID: "product_design", Name: "Product Design"},
	{ID: "textiles", Name: "Textiles"},
}

// legacy lists the category columns of the raw export.
var legacy = []string{
	"advertising", "animation", "architecture", "branding", "packaging", "ceramics",
	"fashion", "costume", "film", "video", "marketing", "fine_art", "game", "graphic",
	"illustration", "jewellery", "communication", "photo", "product", "theatre",
	"sculpture", "textile", "contemporary",
}

// Rule merges one legacy flag into a canonical category.
type Rule struct {
	From string
	To   string
}

var rules = []Rule{
	{"architecture", "architecture_and_set_design"},
	{"theatre", "architecture_and_set_design"},
	{"branding", "branding_and_packaging"},
	{"packaging", "branding_and_packaging"},
	{"fashion", "fashion_and_costume_design"},
	{"costume", "fashion_and_costume_design"},
	{"film", "film_and_video"},
	{"video", "film_and_video"},
	{"fine_art", "fine_art"},
	{"sculpture", "fine_art"},
	{"contemporary", "fine_art"},
	{"graphic", "graphic_design"},
	{"marketing", "graphic_design"},
	{"communication", "graphic_design"},
	{"game", "game_design"},
	{"jewellery", "jewellery_design"},
	{"photo", "photography"},
	{"product", "product_design"},
	{"textile", "textiles"},
}

var canonicalIndex = func() map[string]int {
	idx := make(map[string]int, len(canonical))
	for i, c := range canonical {
		idx[c.ID] = i
	}
	return idx
}()

// Canonical returns a copy of the canonical category list.
func Canonical() []models.CanonicalCategory {
	return append([]models.CanonicalCategory(nil), canonical...)
}

// Legacy returns the legacy flag column names recognised in input rows.
func Legacy() []string {
	return append([]string(nil), legacy...)
}

func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

func IsCanonical(id string) bool {
	_, ok := canonicalIndex[id]
	return ok
}

// Reconcile resolves the record's true flags into canonical ids, deduplicated
// and ordered as in Canonical. A record without true flags yields an empty slice.
func Reconcile(record models.RawRecord) []string {
	selected := make([]bool, len(canonical))
	for flag, on := range record.Flags {
		if !on {
			continue
		}
		if i, ok := canonicalIndex[flag]; ok {
			selected[i] = true
		}
	}
	for _, rule := range rules {
		if record.Flags[rule.From] {
			selected[canonicalIndex[rule.To]] = true
		}
	}

	ids := make([]string, 0, len(canonical))
	for i, on := range selected {
		if on {
			ids = append(ids, canonical[i].ID)
		}
	}
	return ids
}

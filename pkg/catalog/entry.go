package catalog

// Category classifies what kind of item a catalog entry is. The retrieval
// engine treats replacement parts differently from everything else.
type Category string

const (
	CategoryMainProduct     Category = "main_product"
	CategoryBundle          Category = "bundle"
	CategoryAccessory       Category = "accessory"
	CategoryReplacementPart Category = "replacement_part"
)

// Entry is one sellable item in the catalog snapshot.
type Entry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Price       *float64 `json:"price,omitempty"` // nil = price not listed
	Category    Category `json:"category"`
	Group       string   `json:"group"` // merchandising group, e.g. "hemp_clothing", "uv_jars"
	Description string   `json:"description"`
	InStock     bool     `json:"in_stock"`
	Boost       float64  `json:"boost,omitempty"` // curated search-boost weight
}

// Ref is the lightweight identity of an entry, carried in session history
// so follow-up resolution does not hold the whole record.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

func (e *Entry) Ref() Ref {
	return Ref{ID: e.ID, Name: e.Name, Group: e.Group}
}

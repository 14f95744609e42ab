package model

// TaxonomyEntry is one row of the chart of accounts (plano de contas).
type TaxonomyEntry struct {
	Type        string
	Category    string
	Subcategory string
	Pattern     string // normalised Subcategory used for matching
}

// Classification returns the entry's triple.
func (e TaxonomyEntry) Classification() Classification {
	return Classification{Type: e.Type, Category: e.Category, Subcategory: e.Subcategory}
}

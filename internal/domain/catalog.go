package domain

import "time"

// ContentType is the kind of content a catalog discovers.
type ContentType string

// Supported content types.
const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// Valid reports whether the content type is one of the supported values.
func (t ContentType) Valid() bool {
	return t == ContentTypeMovie || t == ContentTypeSeries
}

// FilterKey identifies one filter of a catalog. The vocabulary is fixed but
// extensible: unknown keys are rejected at persist time.
type FilterKey string

// Recognized filter keys.
const (
	FilterGenres    FilterKey = "genres"
	FilterCast      FilterKey = "with_cast"
	FilterCompanies FilterKey = "with_companies"
	FilterKeywords  FilterKey = "with_keywords"
	FilterNetworks  FilterKey = "with_networks"
	FilterYear      FilterKey = "year"
	FilterRating    FilterKey = "vote_average"
	FilterSortBy    FilterKey = "sort_by"
)

// filterVocabulary is the full set of recognized keys.
var filterVocabulary = map[FilterKey]bool{
	FilterGenres:    true,
	FilterCast:      true,
	FilterCompanies: true,
	FilterKeywords:  true,
	FilterNetworks:  true,
	FilterYear:      true,
	FilterRating:    true,
	FilterSortBy:    true,
}

// referenceNamespaces maps reference-type filter keys to the identifier
// namespace their values are drawn from. Keys absent here hold plain values.
var referenceNamespaces = map[FilterKey]Namespace{
	FilterCast:      NamespacePerson,
	FilterCompanies: NamespaceCompany,
	FilterKeywords:  NamespaceKeyword,
	FilterNetworks:  NamespaceNetwork,
}

// Recognized reports whether the key belongs to the filter vocabulary.
func (k FilterKey) Recognized() bool {
	return filterVocabulary[k]
}

// Reference reports whether the key's value is a list of entity identifiers.
func (k FilterKey) Reference() bool {
	_, ok := referenceNamespaces[k]
	return ok
}

// Namespace returns the identifier namespace for a reference-type key.
// The second return is false for non-reference keys.
func (k FilterKey) Namespace() (Namespace, bool) {
	ns, ok := referenceNamespaces[k]
	return ns, ok
}

// Delimiter returns the separator used in the persisted value of a
// reference-type key. Keywords join with "|" (any-of), everything else ",".
func (k FilterKey) Delimiter() string {
	if k == FilterKeywords {
		return "|"
	}
	return ","
}

// ReferenceKeys returns the reference-type filter keys in a stable order.
func ReferenceKeys() []FilterKey {
	return []FilterKey{FilterCast, FilterCompanies, FilterKeywords, FilterNetworks}
}

// Namespace is one of the independent identifier domains an entity reference
// can belong to. Each namespace has its own lookup calls and cache.
type Namespace string

// Supported namespaces.
const (
	NamespacePerson  Namespace = "person"
	NamespaceCompany Namespace = "company"
	NamespaceKeyword Namespace = "keyword"
	NamespaceNetwork Namespace = "network"
)

// Valid reports whether the namespace is one of the supported values.
func (n Namespace) Valid() bool {
	switch n {
	case NamespacePerson, NamespaceCompany, NamespaceKeyword, NamespaceNetwork:
		return true
	}
	return false
}

// Catalog is a named, typed collection of discovery filters edited as one
// unit. The ID is assigned once at creation and never changes; filter values
// for reference-type keys hold the persisted (delimiter-joined id) form.
type Catalog struct {
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	ID          string               `json:"id" validate:"required"`
	Name        string               `json:"name" validate:"required,min=1,max=100"`
	ContentType ContentType          `json:"content_type" validate:"required,oneof=movie series"`
	Filters     map[FilterKey]string `json:"filters,omitempty"`
	Enabled     bool                 `json:"enabled"`
}

// Clone returns a deep copy of the catalog. The filter map is copied so the
// clone can be mutated without aliasing the original.
func (c *Catalog) Clone() Catalog {
	out := *c
	if c.Filters != nil {
		out.Filters = make(map[FilterKey]string, len(c.Filters))
		for k, v := range c.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// Filter returns the raw persisted value for a key, or "" if unset.
func (c *Catalog) Filter(key FilterKey) string {
	return c.Filters[key]
}

// SetFilter sets a filter value, allocating the map on first use.
func (c *Catalog) SetFilter(key FilterKey, value string) {
	if c.Filters == nil {
		c.Filters = make(map[FilterKey]string)
	}
	c.Filters[key] = value
	c.UpdatedAt = time.Now()
}

// DeleteFilter removes a filter value. Removing an absent key is a no-op.
func (c *Catalog) DeleteFilter(key FilterKey) {
	if _, ok := c.Filters[key]; !ok {
		return
	}
	delete(c.Filters, key)
	c.UpdatedAt = time.Now()
}

// UnrecognizedFilterKeys returns any filter keys outside the vocabulary.
func (c *Catalog) UnrecognizedFilterKeys() []FilterKey {
	var bad []FilterKey
	for k := range c.Filters {
		if !k.Recognized() {
			bad = append(bad, k)
		}
	}
	return bad
}

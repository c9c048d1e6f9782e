package search

import (
	"cmp"
	"strings"

	"real-estate-marketplace/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey is a sortable property field.
type SortKey string

const (
	SortByPrice     SortKey = "price"
	SortByTitle     SortKey = "title"
	SortByDateAdded SortKey = "dateAdded"
	SortByStatus    SortKey = "status"
	SortByInquiries SortKey = "inquiries"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortSpec selects the comparison rule and its direction.
type SortSpec struct {
	Key   SortKey   `json:"key"`
	Order SortOrder `json:"order"`
}

// DefaultSort is used whenever a caller supplies an unknown sort key.
var DefaultSort = SortSpec{Key: SortByDateAdded, Order: Descending}

var sortKeyAliases = map[string]SortKey{
	"price":     SortByPrice,
	"title":     SortByTitle,
	"name":      SortByTitle,
	"dateAdded": SortByDateAdded,
	"createdAt": SortByDateAdded,
	"status":    SortByStatus,
	"inquiries": SortByInquiries,
}

// ParseSortSpec resolves UI sort input. An unknown or missing key yields
// DefaultSort; an unknown order on a known key yields Descending.
func ParseSortSpec(key, order string) SortSpec {
	k, ok := sortKeyAliases[key]
	if !ok {
		return DefaultSort
	}
	spec := SortSpec{Key: k, Order: Descending}
	if strings.EqualFold(order, string(Ascending)) {
		spec.Order = Ascending
	}
	return spec
}

func (s SortSpec) valid() bool {
	_, ok := sortKeyAliases[string(s.Key)]
	return ok
}

func (s SortSpec) normalized() SortSpec {
	if !s.valid() {
		return DefaultSort
	}
	return ParseSortSpec(string(s.Key), string(s.Order))
}

type comparator struct {
	spec     SortSpec
	collator *collate.Collator
}

// newComparator is not safe for concurrent use because collators keep
// internal buffers; build one per sort.
func newComparator(spec SortSpec) *comparator {
	c := &comparator{spec: spec.normalized()}
	if c.spec.Key == SortByTitle {
		c.collator = collate.New(language.English)
	}
	return c
}

func (c *comparator) compare(a, b *models.Property) int {
	r := c.primary(a, b)
	if c.spec.Order == Descending {
		r = -r
	}
	if r != 0 {
		return r
	}
	return cmp.Compare(a.ID, b.ID)
}

func (c *comparator) primary(a, b *models.Property) int {
	switch c.spec.Key {
	case SortByPrice:
		return cmp.Compare(a.Price, b.Price)
	case SortByTitle:
		return c.collator.CompareString(a.Title, b.Title)
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortByInquiries:
		return cmp.Compare(a.Inquiries, b.Inquiries)
	default:
		return a.DateAdded.Compare(b.DateAdded)
	}
}

// Compare orders two records under spec and returns -1, 0 or 1. Ties on the
// sort key fall back to ascending ID, so only records with the same ID compare equal.
func Compare(a, b *models.Property, spec SortSpec) int {
	return sign(newComparator(spec).compare(a, b))
}

func sign(r int) int {
	switch {
	case r < 0:
		return -1
	case r > 0:
		return 1
	}
	return 0
}

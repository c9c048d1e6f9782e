package search

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"real-estate-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 16, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture() []models.Property {
	return []models.Property{
		{ID: 1, Title: "Modern Downtown Apartment", Location: "123 Main St, Downtown", Agent: "Sarah Johnson",
			Price: 450000, PropertyType: models.PropertyTypeApartment, Bedrooms: 2, Bathrooms: 2, Area: 1200,
			Status: models.PropertyStatusActive, Inquiries: 8, DateAdded: day(2025, 1, 15)},
		{ID: 2, Title: "Luxury Family Home", Location: "456 Oak Avenue, Suburbs", Agent: "Michael Chen",
			Price: 750000, PropertyType: models.PropertyTypeHouse, Bedrooms: 4, Bathrooms: 3, Area: 2800,
			Status: models.PropertyStatusPending, Inquiries: 15, DateAdded: day(2025, 1, 10)},
		{ID: 3, Title: "Cozy Studio Loft", Location: "789 Creative District", Agent: "Sarah Johnson",
			Price: 320000, PropertyType: models.PropertyTypeCondo, Bedrooms: 1, Bathrooms: 1, Area: 800,
			Status: models.PropertyStatusActive, Inquiries: 3, DateAdded: day(2025, 1, 8)},
		{ID: 4, Title: "Waterfront Condo", Location: "321 Harbor View, Marina", Agent: "David Kim",
			Price: 890000, PropertyType: models.PropertyTypeCondo, Bedrooms: 3, Bathrooms: 2, Area: 1800,
			Status: models.PropertyStatusSold, Inquiries: 22, DateAdded: day(2024, 12, 20)},
		{ID: 5, Title: "Suburban Townhouse", Location: "654 Maple Street, Westside", Agent: "Michael Chen",
			Price: 580000, PropertyType: models.PropertyTypeTownhouse, Bedrooms: 3, Bathrooms: 2.5, Area: 2200,
			Status: models.PropertyStatusActive, Inquiries: 6, DateAdded: day(2025, 1, 12)},
	}
}

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return testNow }))
}

func ids(props []models.Property) []int64 {
	out := make([]int64, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func byID(props []models.Property) []int64 {
	out := ids(props)
	slices.Sort(out)
	return out
}

func TestSearch_TextAndCategoricalScenario(t *testing.T) {
	records := []models.Property{
		{ID: 1, Title: "Modern Downtown Apartment", PropertyType: models.PropertyTypeApartment, Price: 450000},
		{ID: 2, Title: "Luxury Family Home", PropertyType: models.PropertyTypeHouse, Price: 750000},
	}
	c := NewCriteria(P(KeyQuery, "modern"), P(KeyPropertyType, "all"))

	got := newTestEngine().Search(records, c, DefaultSort)
	require.Len(t, got, 1)
	assert.Equal(t, records[0], got[0])
}

func TestSearch_NumericRangeScenario(t *testing.T) {
	records := []models.Property{
		{ID: 1, Title: "Modern Downtown Apartment", PropertyType: models.PropertyTypeApartment, Price: 450000},
		{ID: 2, Title: "Luxury Family Home", PropertyType: models.PropertyTypeHouse, Price: 750000},
	}
	c := NewCriteria(P(KeyPriceMin, "500000"), P(KeyPriceMax, ""))

	got := newTestEngine().Search(records, c, DefaultSort)
	assert.Equal(t, []int64{2}, ids(got))
}

func TestMatches(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"empty criteria", Criteria{}, []int64{1, 2, 3, 4, 5}},
		{"query is case-insensitive", NewCriteria(P(KeyQuery, "DOWNTOWN")), []int64{1}},
		{"query matches location", NewCriteria(P(KeyQuery, "harbor")), []int64{4}},
		{"query matches agent", NewCriteria(P(KeyQuery, "michael")), []int64{2, 5}},
		{"search alias", NewCriteria(P(KeySearch, "loft")), []int64{3}},
		{"whitespace query inactive", NewCriteria(P(KeyQuery, "   ")), []int64{1, 2, 3, 4, 5}},
		{"query is not tokenized", NewCriteria(P(KeyQuery, "modern apartment")), []int64{}},
		{"property type", NewCriteria(P(KeyPropertyType, "condo")), []int64{3, 4}},
		{"property type is case-sensitive", NewCriteria(P(KeyPropertyType, "Condo")), []int64{}},
		{"status", NewCriteria(P(KeyStatus, "active")), []int64{1, 3, 5}},
		{"status alias available", NewCriteria(P(KeyStatus, "available")), []int64{1, 3, 5}},
		{"unknown status matches literally", NewCriteria(P(KeyStatus, "archived")), []int64{}},
		{"literal all category", NewCriteria(Pair{Key: KeyStatus, Value: Text("all")}), []int64{}},
		{"price bucket", NewCriteria(P(KeyPriceRange, "250000-500000")), []int64{1, 3}},
		{"price bucket bounds inclusive", NewCriteria(P(KeyPriceRange, "450000-580000")), []int64{1, 5}},
		{"open price bucket", NewCriteria(P(KeyPriceRange, "750000+")), []int64{2, 4}},
		{"open price bucket from decoded plus", NewCriteria(P(KeyPriceRange, "750000 ")), []int64{2, 4}},
		{"explicit price pair", NewCriteria(Pair{Key: KeyPriceRange, Value: Between(500000, 800000)}), []int64{2, 5}},
		{"explicit open pair", NewCriteria(Pair{Key: KeyPriceRange, Value: AtLeast(800000)}), []int64{4}},
		{"inverted bucket inactive", NewCriteria(P(KeyPriceRange, "900000-100")), []int64{1, 2, 3, 4, 5}},
		{"garbage bucket inactive", NewCriteria(P(KeyPriceRange, "cheap")), []int64{1, 2, 3, 4, 5}},
		{"price min and max", NewCriteria(P(KeyPriceMin, "400000"), P(KeyPriceMax, "600000")), []int64{1, 5}},
		{"currency formatted min", NewCriteria(P(KeyPriceMin, "$800,000")), []int64{4}},
		{"malformed min inactive", NewCriteria(P(KeyPriceMin, "lots")), []int64{1, 2, 3, 4, 5}},
		{"bedrooms minimum", NewCriteria(P(KeyBedrooms, "3")), []int64{2, 4, 5}},
		{"bedrooms plus form", NewCriteria(P(KeyBedrooms, "4+")), []int64{2}},
		{"fractional bathrooms", NewCriteria(P(KeyBathrooms, "2.5")), []int64{2, 5}},
		{"malformed bedrooms inactive", NewCriteria(P(KeyBedrooms, "many")), []int64{1, 2, 3, 4, 5}},
		{"location", NewCriteria(P(KeyLocation, "downtown")), []int64{1}},
		{"date today", NewCriteria(P(KeyDateRange, "today")), []int64{}},
		{"date week", NewCriteria(P(KeyDateRange, "week")), []int64{1, 2, 5}},
		{"date month", NewCriteria(P(KeyDateRange, "month")), []int64{1, 2, 3, 4, 5}},
		{"unknown date bucket inactive", NewCriteria(P(KeyDateRange, "decade")), []int64{1, 2, 3, 4, 5}},
		{"inquiries high", NewCriteria(P(KeyInquiryLevel, "high")), []int64{2, 4}},
		{"inquiries medium", NewCriteria(P(KeyInquiryLevel, "medium")), []int64{1, 5}},
		{"inquiries low", NewCriteria(P(KeyInquiryLevel, "low")), []int64{3}},
		{"inquiries none", NewCriteria(P(KeyInquiryLevel, "none")), []int64{}},
		{"unknown key ignored", NewCriteria(P("showMap", "true"), P(KeyStatus, "sold")), []int64{4}},
		{"and across keys", NewCriteria(P(KeyStatus, "active"), P(KeyBedrooms, "2"), P(KeyPriceMax, "500000")), []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, p := range fixture() {
				if e.Matches(&p, tt.criteria) {
					got = append(got, p.ID)
				}
			}
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatches_DateTodayUsesClockDay(t *testing.T) {
	e := newTestEngine()
	p := models.Property{ID: 9, DateAdded: time.Date(2025, 1, 16, 1, 30, 0, 0, time.UTC)}
	assert.True(t, e.Matches(&p, NewCriteria(P(KeyDateRange, "today"))))

	p.DateAdded = time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)
	assert.False(t, e.Matches(&p, NewCriteria(P(KeyDateRange, "today"))))
}

func TestMatches_StatusAvailableRecord(t *testing.T) {
	e := newTestEngine()
	p := models.Property{ID: 9, Status: "available"}

	assert.True(t, e.Matches(&p, NewCriteria(P(KeyStatus, "available"))))
	assert.True(t, e.Matches(&p, NewCriteria(P(KeyStatus, "active"))))
	assert.False(t, e.Matches(&p, NewCriteria(P(KeyStatus, "sold"))))

	tags := slices.Collect(e.ActiveFilterTags(NewCriteria(P(KeyStatus, "available"))))
	assert.Equal(t, []Tag{{Key: KeyStatus, Label: "Status: Available"}}, tags)
}

func TestParseQueryString_UnescapedPlusPriceBucket(t *testing.T) {
	e := newTestEngine()
	c := ParseQueryString("priceRange=750000+")

	assert.Equal(t, []int64{2, 4}, ids(e.Search(fixture(), c, ParseSortSpec("price", "asc"))))
	tags := slices.Collect(e.ActiveFilterTags(c))
	assert.Equal(t, []Tag{{Key: KeyPriceRange, Label: "Price: $750,000+"}}, tags)

	// "query=modern+loft" still decodes the plus to a space.
	v, _ := ParseQueryString("query=modern+loft").Get(KeyQuery)
	assert.Equal(t, Text("modern loft"), v)
}

func TestWithSearchFields(t *testing.T) {
	e := NewEngine(WithSearchFields(FieldTitle))
	got := e.Search(fixture(), NewCriteria(P(KeyQuery, "michael")), DefaultSort)
	assert.Empty(t, got)

	got = e.Search(fixture(), NewCriteria(P(KeyQuery, "condo")), DefaultSort)
	assert.Equal(t, []int64{4}, ids(got))
}

func TestSearch_Sorting(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		spec SortSpec
		want []int64
	}{
		{"default date desc", DefaultSort, []int64{1, 5, 2, 3, 4}},
		{"date asc", ParseSortSpec("createdAt", "asc"), []int64{4, 3, 2, 5, 1}},
		{"price asc", ParseSortSpec("price", "asc"), []int64{3, 1, 5, 2, 4}},
		{"price desc", ParseSortSpec("price", "desc"), []int64{4, 2, 5, 1, 3}},
		{"title asc", ParseSortSpec("name", "asc"), []int64{3, 2, 1, 5, 4}},
		{"inquiries desc", ParseSortSpec("inquiries", "desc"), []int64{4, 2, 1, 5, 3}},
		{"status asc ties by id", ParseSortSpec("status", "asc"), []int64{1, 3, 5, 2, 4}},
		{"status desc ties still by id asc", ParseSortSpec("status", "desc"), []int64{4, 2, 1, 3, 5}},
		{"unknown key falls back", SortSpec{Key: "rating", Order: Ascending}, []int64{1, 5, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Search(fixture(), Criteria{}, tt.spec)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearch_ReversedOrderIsReverseWithoutTies(t *testing.T) {
	e := newTestEngine()
	asc := ids(e.Search(fixture(), Criteria{}, ParseSortSpec("price", "asc")))
	desc := ids(e.Search(fixture(), Criteria{}, ParseSortSpec("price", "desc")))

	slices.Reverse(desc)
	assert.Equal(t, asc, desc)
}

func TestSearch_Idempotent(t *testing.T) {
	e := newTestEngine()
	records := fixture()
	c := NewCriteria(P(KeyStatus, "active"), P(KeyPriceRange, "0-1000000"))
	spec := ParseSortSpec("title", "asc")

	first := e.Search(records, c, spec)
	second := e.Search(records, c, spec)
	assert.Equal(t, first, second)
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	records := fixture()
	before := fixture()

	got := e.Search(records, Criteria{}, ParseSortSpec("price", "asc"))
	require.Len(t, got, 5)
	got[0].Title = "changed"

	assert.Equal(t, before, records)
}

func TestSearch_SortKeepsFilteredMultiset(t *testing.T) {
	e := newTestEngine()
	c := NewCriteria(P(KeyPriceMin, "400000"))

	var unsorted []models.Property
	for _, p := range fixture() {
		if e.Matches(&p, c) {
			unsorted = append(unsorted, p)
		}
	}

	for _, key := range []string{"price", "title", "dateAdded", "status", "inquiries"} {
		got := e.Search(fixture(), c, ParseSortSpec(key, "asc"))
		assert.Equal(t, byID(unsorted), byID(got), key)

		spec := ParseSortSpec(key, "asc")
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, Compare(&got[i-1], &got[i], spec), 0, key)
		}
	}
}

func TestSearch_FilterMonotonicity(t *testing.T) {
	e := newTestEngine()
	steps := []Pair{
		P(KeyPriceRange, "0-1000000"),
		P(KeyStatus, "active"),
		P(KeyBedrooms, "2"),
		P(KeyBathrooms, "2"),
		P(KeyQuery, "street"),
		P(KeyInquiryLevel, "medium"),
	}

	var c Criteria
	prev := len(e.Search(fixture(), c, DefaultSort))
	for _, step := range steps {
		c = c.With(step.Key, step.Value)
		size := len(e.Search(fixture(), c, DefaultSort))
		assert.LessOrEqual(t, size, prev, "adding %s", step.Key)
		prev = size
	}
	assert.Equal(t, 1, prev)
}

func TestCompare_PriceCoercion(t *testing.T) {
	var a, b models.Property
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"price":"$450,000"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"price":"$300,000"}`), &b))

	spec := SortSpec{Key: SortByPrice, Order: Ascending}
	assert.Equal(t, 1, Compare(&a, &b, spec))
	assert.Equal(t, -1, Compare(&b, &a, spec))

	got := newTestEngine().Search([]models.Property{a, b}, Criteria{}, spec)
	assert.Equal(t, []int64{2, 1}, ids(got))
}

func TestCompare_TieBreakAndEquality(t *testing.T) {
	a := models.Property{ID: 1, Price: 100}
	b := models.Property{ID: 2, Price: 100}

	for _, order := range []SortOrder{Ascending, Descending} {
		spec := SortSpec{Key: SortByPrice, Order: order}
		assert.Equal(t, -1, Compare(&a, &b, spec))
		assert.Equal(t, 1, Compare(&b, &a, spec))
		assert.Equal(t, 0, Compare(&a, &a, spec))
	}
}

func TestParseSortSpec(t *testing.T) {
	assert.Equal(t, DefaultSort, ParseSortSpec("", ""))
	assert.Equal(t, DefaultSort, ParseSortSpec("bogus", "asc"))
	assert.Equal(t, SortSpec{Key: SortByTitle, Order: Ascending}, ParseSortSpec("name", "ASC"))
	assert.Equal(t, SortSpec{Key: SortByPrice, Order: Descending}, ParseSortSpec("price", "sideways"))
	assert.Equal(t, SortSpec{Key: SortByDateAdded, Order: Ascending}, ParseSortSpec("createdAt", "asc"))
}

func TestActiveFilterCount(t *testing.T) {
	e := newTestEngine()

	c := NewCriteria(P(KeyPropertyType, "all"), P(KeyPriceRange, "all"), P(KeyBedrooms, "2"))
	assert.Equal(t, 1, e.ActiveFilterCount(c))

	c = NewCriteria(
		P(KeyQuery, "loft"),
		P(KeyStatus, ""),
		P(KeyPriceMin, "abc"),
		P("viewMode", "grid"),
		P(KeyInquiryLevel, "high"),
	)
	assert.Equal(t, 2, e.ActiveFilterCount(c))
	assert.Equal(t, 0, e.ActiveFilterCount(Criteria{}))
}

func TestActiveFilterTags(t *testing.T) {
	e := newTestEngine()
	c := NewCriteria(
		P(KeyQuery, "modern"),
		P(KeyPropertyType, "apartment"),
		P(KeyStatus, "all"),
		P(KeyPriceRange, "0-500000"),
		P("compare", "on"),
		P(KeyBedrooms, "2"),
		P(KeyBathrooms, "2.5"),
		P(KeyLocation, "downtown"),
		P(KeyPriceMin, "$100,000"),
		P(KeyDateRange, "week"),
		P(KeyInquiryLevel, "high"),
	)

	want := []Tag{
		{Key: KeyQuery, Label: "Search: modern"},
		{Key: KeyPropertyType, Label: "Type: Apartment"},
		{Key: KeyPriceRange, Label: "Price: $0 - $500,000"},
		{Key: KeyBedrooms, Label: "Beds: 2+"},
		{Key: KeyBathrooms, Label: "Baths: 2.5+"},
		{Key: KeyLocation, Label: "Location: downtown"},
		{Key: KeyPriceMin, Label: "Min price: $100,000"},
		{Key: KeyDateRange, Label: "Added: This Week"},
		{Key: KeyInquiryLevel, Label: "Inquiries: High Activity (10+)"},
	}

	tags := e.ActiveFilterTags(c)
	assert.Equal(t, want, slices.Collect(tags))
	// restartable
	assert.Equal(t, want, slices.Collect(tags))
	assert.Equal(t, e.ActiveFilterCount(c), len(want))
}

func TestActiveFilterTags_EarlyStop(t *testing.T) {
	e := newTestEngine()
	c := NewCriteria(P(KeyStatus, "sold"), P(KeyPriceRange, "1000000+"), P(KeyBedrooms, "3"))

	var seen []string
	for tag := range e.ActiveFilterTags(c) {
		seen = append(seen, tag.Label)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"Status: Sold", "Price: $1,000,000+"}, seen)
}

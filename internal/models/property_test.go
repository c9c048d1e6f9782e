package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$450,000", 450000, true},
		{"450000", 450000, true},
		{"$1,200.50/mo", 1200.5, true},
		{"USD 75,000", 75000, true},
		{"-15", -15, true},
		{"12.5.3", 12.5, true},
		{"", 0, false},
		{"call for price", 0, false},
		{"$-", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePrice(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestMoney_UnmarshalJSON(t *testing.T) {
	var p Property
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"price":"$450,000"}`), &p))
	assert.Equal(t, Money(450000), p.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"price":300000}`), &p))
	assert.Equal(t, Money(300000), p.Price)

	err := json.Unmarshal([]byte(`{"id":3,"price":"n/a"}`), &p)
	assert.Error(t, err)
}

func TestMoney_UnmarshalYAML(t *testing.T) {
	var p Property
	require.NoError(t, yaml.Unmarshal([]byte("id: 4\nprice: \"$890,000\"\n"), &p))
	assert.Equal(t, Money(890000), p.Price)

	require.NoError(t, yaml.Unmarshal([]byte("id: 5\nprice: 580000\n"), &p))
	assert.Equal(t, Money(580000), p.Price)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "$450,000", Money(450000).String())
	assert.Equal(t, "$0", Money(0).String())
}

func TestParsePropertyStatus(t *testing.T) {
	s, ok := ParsePropertyStatus("available")
	assert.True(t, ok)
	assert.Equal(t, PropertyStatusActive, s)

	s, ok = ParsePropertyStatus("rented")
	assert.True(t, ok)
	assert.Equal(t, PropertyStatusRented, s)

	_, ok = ParsePropertyStatus("Sold")
	assert.False(t, ok)
}

func TestProperty_Validate(t *testing.T) {
	valid := Property{ID: 1, Price: 100, PropertyType: PropertyTypeCondo, Status: PropertyStatusPending, Bathrooms: 2.5}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		mut  func(p *Property)
	}{
		{"negative price", func(p *Property) { p.Price = -1 }},
		{"negative area", func(p *Property) { p.Area = -10 }},
		{"negative bedrooms", func(p *Property) { p.Bedrooms = -1 }},
		{"negative bathrooms", func(p *Property) { p.Bathrooms = -0.5 }},
		{"negative inquiries", func(p *Property) { p.Inquiries = -2 }},
		{"unknown type", func(p *Property) { p.PropertyType = "castle" }},
		{"unknown status", func(p *Property) { p.Status = "archived" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mut(&p)
			assert.Error(t, p.Validate())
		})
	}
}

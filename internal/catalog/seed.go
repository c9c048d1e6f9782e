package catalog

import (
	"fmt"
	"os"
	"time"

	"real-estate-marketplace/internal/models"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Properties []models.Property `yaml:"properties"`
}

// LoadSeedFile reads listings from a YAML file of the form
//
//	properties:
//	  - id: 1
//	    title: Modern Downtown Apartment
//	    price: "$450,000"
//	    date_added: 2025-01-15
func LoadSeedFile(path string) ([]models.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return seed.Properties, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultSeed returns the built-in mock listings.
func DefaultSeed() []models.Property {
	return []models.Property{
		{
			ID: 1, Title: "Modern Downtown Apartment", Location: "123 Main St, Downtown", Agent: "Sarah Johnson",
			Price: 450000, PropertyType: models.PropertyTypeApartment, Bedrooms: 2, Bathrooms: 2, Area: 1200,
			Status: models.PropertyStatusActive, Inquiries: 8, DateAdded: date(2025, 1, 15), Featured: true,
		},
		{
			ID: 2, Title: "Luxury Family Home", Location: "456 Oak Avenue, Suburbs", Agent: "Michael Chen",
			Price: 750000, PropertyType: models.PropertyTypeHouse, Bedrooms: 4, Bathrooms: 3, Area: 2800,
			Status: models.PropertyStatusPending, Inquiries: 15, DateAdded: date(2025, 1, 10),
		},
		{
			ID: 3, Title: "Cozy Studio Loft", Location: "789 Creative District", Agent: "Sarah Johnson",
			Price: 320000, PropertyType: models.PropertyTypeCondo, Bedrooms: 1, Bathrooms: 1, Area: 800,
			Status: models.PropertyStatusActive, Inquiries: 3, DateAdded: date(2025, 1, 8),
		},
		{
			ID: 4, Title: "Waterfront Condo", Location: "321 Harbor View, Marina", Agent: "David Thompson",
			Price: 890000, PropertyType: models.PropertyTypeCondo, Bedrooms: 3, Bathrooms: 2, Area: 1800,
			Status: models.PropertyStatusSold, Inquiries: 22, DateAdded: date(2024, 12, 20), Featured: true,
		},
		{
			ID: 5, Title: "Suburban Townhouse", Location: "654 Maple Street, Westside", Agent: "Michael Chen",
			Price: 580000, PropertyType: models.PropertyTypeTownhouse, Bedrooms: 3, Bathrooms: 2.5, Area: 2200,
			Status: models.PropertyStatusActive, Inquiries: 6, DateAdded: date(2025, 1, 12),
		},
		{
			ID: 6, Title: "Corner Retail Space", Location: "12 Commerce Blvd, Bellevue", Agent: "Lisa Park",
			Price: 1250000, PropertyType: models.PropertyTypeCommercial, Bedrooms: 0, Bathrooms: 2, Area: 3400,
			Status: models.PropertyStatusRented, Inquiries: 0, DateAdded: date(2024, 11, 2),
		},
	}
}

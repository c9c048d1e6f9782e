package models

import (
	"fmt"
	"time"
)

type Property struct {
	// 基本情報
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Location string `json:"location" yaml:"location"`
	Agent    string `json:"agent,omitempty" yaml:"agent,omitempty"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// フィルタ用属性
	Price        Money        `json:"price" yaml:"price"`
	PropertyType PropertyType `json:"propertyType" yaml:"property_type"`
	Bedrooms     int          `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms    float64      `json:"bathrooms" yaml:"bathrooms"`
	Area         float64      `json:"sqft" yaml:"sqft"`
	Inquiries    int          `json:"inquiries" yaml:"inquiries"`
	Featured     bool         `json:"featured" yaml:"featured"`

	// ステータス管理
	Status PropertyStatus `json:"status" yaml:"status"`

	// タイムスタンプ
	DateAdded time.Time `json:"dateAdded" yaml:"date_added"`
}

// PropertyStatus は物件のステータス
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusSold     PropertyStatus = "sold"
	PropertyStatusRented   PropertyStatus = "rented"
	PropertyStatusInactive PropertyStatus = "inactive"

	// propertyStatusAvailable is accepted on input and stored as active.
	propertyStatusAvailable PropertyStatus = "available"
)

// PropertyStatuses lists every status in display order.
var PropertyStatuses = []PropertyStatus{
	PropertyStatusActive,
	PropertyStatusPending,
	PropertyStatusSold,
	PropertyStatusRented,
	PropertyStatusInactive,
}

// ParsePropertyStatus normalizes a raw status label.
func ParsePropertyStatus(s string) (PropertyStatus, bool) {
	status := PropertyStatus(s)
	if status == propertyStatusAvailable {
		return PropertyStatusActive, true
	}
	for _, known := range PropertyStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// PropertyType is the closed set of listing categories.
type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeCondo      PropertyType = "condo"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeCommercial PropertyType = "commercial"
)

var PropertyTypes = []PropertyType{
	PropertyTypeHouse,
	PropertyTypeApartment,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
	PropertyTypeCommercial,
}

// IsValid reports whether t is one of PropertyTypes.
func (t PropertyType) IsValid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsActive は物件が掲載中かどうか
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusActive
}

// Validate checks the numeric invariants and the enumerations of a record.
// An empty status or property type is allowed and left for the caller to default.
func (p *Property) Validate() error {
	switch {
	case p.ID < 0:
		return fmt.Errorf("id must not be negative: %d", p.ID)
	case p.Price < 0:
		return fmt.Errorf("price must not be negative: %d", p.Price)
	case p.Area < 0:
		return fmt.Errorf("sqft must not be negative: %v", p.Area)
	case p.Bedrooms < 0:
		return fmt.Errorf("bedrooms must not be negative: %d", p.Bedrooms)
	case p.Bathrooms < 0:
		return fmt.Errorf("bathrooms must not be negative: %v", p.Bathrooms)
	case p.Inquiries < 0:
		return fmt.Errorf("inquiries must not be negative: %d", p.Inquiries)
	}

	if p.PropertyType != "" && !p.PropertyType.IsValid() {
		return fmt.Errorf("unknown property type %q", p.PropertyType)
	}
	if p.Status != "" {
		if _, ok := ParsePropertyStatus(string(p.Status)); !ok {
			return fmt.Errorf("unknown status %q", p.Status)
		}
	}
	return nil
}

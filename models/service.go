package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceCategories is the closed set of catalog categories
var ServiceCategories = []string{"Shirts", "Pants", "Dresses", "Bedding", "Jackets", "Accessories", "Others"}

// Sub-service type keys as used in order items
const (
	SubServiceWash        = "wash"
	SubServiceIron        = "iron"
	SubServiceDryClean    = "dryClean"
	SubServiceWashAndIron = "washAndIron"
)

// SubService is one treatment option (availability + unit price)
type SubService struct {
	Available bool    `gorm:"not null;default:false" json:"available"`
	Price     float64 `gorm:"not null;default:0" json:"price"`
}

// SubServices is the fixed treatment map every catalog entry carries
type SubServices struct {
	Wash        SubService `gorm:"embedded;embeddedPrefix:wash_" json:"wash"`
	Iron        SubService `gorm:"embedded;embeddedPrefix:iron_" json:"iron"`
	DryClean    SubService `gorm:"embedded;embeddedPrefix:dry_clean_" json:"dryClean"`
	WashAndIron SubService `gorm:"embedded;embeddedPrefix:wash_and_iron_" json:"washAndIron"`
}

// ForType returns the sub-service for a given serviceType key.
// Unknown keys return ok=false; serviceType is an open string, not a closed enum.
func (s SubServices) ForType(serviceType string) (SubService, bool) {
	switch serviceType {
	case SubServiceWash:
		return s.Wash, true
	case SubServiceIron:
		return s.Iron, true
	case SubServiceDryClean:
		return s.DryClean, true
	case SubServiceWashAndIron:
		return s.WashAndIron, true
	}
	return SubService{}, false
}

// Service represents a catalog entry (a garment/item category with its treatments)
type Service struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Name                string         `gorm:"uniqueIndex;not null" json:"name"`
	Description         string         `gorm:"not null" json:"description"`
	Category            string         `gorm:"not null;index;default:'Others'" json:"category"`
	Services            SubServices    `gorm:"embedded" json:"services"`
	Image               string         `gorm:"default:'/images/default-service.jpg'" json:"image"`
	IsActive            bool           `gorm:"not null" json:"isActive"` // soft delete flag; no column default so an explicit false survives Create
	MinQuantity         int            `gorm:"default:1" json:"minQuantity"`
	MaxQuantity         int            `gorm:"default:50" json:"maxQuantity"`
	EstimatedTime       string         `gorm:"default:'24-48 hours'" json:"estimatedTime"`
	SpecialInstructions string         `json:"specialInstructions"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// ValidCategory reports whether category is one of the closed catalog categories
func ValidCategory(category string) bool {
	for _, c := range ServiceCategories {
		if c == category {
			return true
		}
	}
	return false
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceTableName(t *testing.T) {
	assert.Equal(t, "services", Service{}.TableName())
}

func TestSubServicesForType(t *testing.T) {
	subs := SubServices{
		Wash:        SubService{Available: true, Price: 25},
		Iron:        SubService{Available: true, Price: 15},
		DryClean:    SubService{Available: false, Price: 60},
		WashAndIron: SubService{Available: true, Price: 35},
	}

	tests := []struct {
		name        string
		serviceType string
		wantPrice   float64
		wantOK      bool
	}{
		{"wash", "wash", 25, true},
		{"iron", "iron", 15, true},
		{"dry clean", "dryClean", 60, true},
		{"wash and iron", "washAndIron", 35, true},
		{"unknown type", "folding", 0, false},
		{"empty type", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, ok := subs.ForType(tt.serviceType)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantPrice, sub.Price)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range ServiceCategories {
		assert.True(t, ValidCategory(c))
	}
	assert.False(t, ValidCategory("cleaning"))
	assert.False(t, ValidCategory(""))
}

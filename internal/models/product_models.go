package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductType classifies catalog items.
type ProductType string

const (
	ProductRawMaterial  ProductType = "RAW_MATERIAL"
	ProductSemiFinished ProductType = "SEMI_FINISHED"
	ProductFinished     ProductType = "FINISHED_PRODUCT"
)

// ParseProductType accepts the remote spelling in any case.
func ParseProductType(s string) (ProductType, bool) {
	switch ProductType(strings.ToUpper(strings.TrimSpace(s))) {
	case ProductRawMaterial:
		return ProductRawMaterial, true
	case ProductSemiFinished:
		return ProductSemiFinished, true
	case ProductFinished:
		return ProductFinished, true
	}
	return "", false
}

// Product is a catalog entry. The client never mutates it outside admin flows.
type Product struct {
	ID            int64           `json:"product_id"`
	Name          string          `json:"product_name"`
	Type          ProductType     `json:"product_type"`
	Unit          string          `json:"unit"`
	ShelfLifeDays int             `json:"shelf_life_days"`
	Price         decimal.Decimal `json:"price"`
	ImageGlyph    string          `json:"image"`
}

// ProductPayload is the admin create/update form.
type ProductPayload struct {
	Name          string          `json:"product_name" binding:"required"`
	Type          ProductType     `json:"product_type" binding:"required,oneof=RAW_MATERIAL SEMI_FINISHED FINISHED_PRODUCT"`
	Unit          string          `json:"unit" binding:"required"`
	ShelfLifeDays int             `json:"shelf_life_days" binding:"gte=0"`
	Price         decimal.Decimal `json:"price"`
	ImageGlyph    string          `json:"image"`
}

package models

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type CareLevel string

const (
	CareEasy   CareLevel = "easy"
	CareMedium CareLevel = "medium"
	CareHard   CareLevel = "hard"
)

type PlantSize string

const (
	SizeSmall      PlantSize = "small"
	SizeMedium     PlantSize = "medium"
	SizeLarge      PlantSize = "large"
	SizeExtraLarge PlantSize = "extra-large"
)

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon,omitempty"`
	Image string `json:"image,omitempty"`
}

// Product is read-only once it leaves the catalog.
type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	Images           []string         `json:"images"`
	Category         Category         `json:"category"`
	Tags             []string         `json:"tags"`
	Stock            int              `json:"stock"`
	Rating           float64          `json:"rating"`
	ReviewCount      int              `json:"reviewCount"`
	CareLevel        CareLevel        `json:"careLevel"`
	LightRequirement string           `json:"lightRequirement"`
	WaterFrequency   string           `json:"waterFrequency"`
	Size             PlantSize        `json:"size"`
	IsAvailable      bool             `json:"isAvailable"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// SaleablePrice is the sale price when one is set, the list price otherwise.
func (p Product) SaleablePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountPercent rounds the sale discount to a whole percent. Zero when there is no sale.
func (p Product) DiscountPercent() int64 {
	if p.SalePrice == nil || !p.Price.IsPositive() {
		return 0
	}
	pct := p.Price.Sub(*p.SalePrice).Div(p.Price).Mul(decimal.NewFromInt(100))
	return pct.Round(0).IntPart()
}

type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	ProductID  string    `json:"productId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Images     []string  `json:"images,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProductFilter is the query for GET /products. Zero values are omitted.
type ProductFilter struct {
	Category  string           `json:"category,omitempty" form:"category"`
	Search    string           `json:"search,omitempty" form:"search"`
	SortBy    string           `json:"sortBy,omitempty" form:"sortBy"`
	MinPrice  *decimal.Decimal `json:"minPrice,omitempty" form:"-"`
	MaxPrice  *decimal.Decimal `json:"maxPrice,omitempty" form:"-"`
	CareLevel CareLevel        `json:"careLevel,omitempty" form:"careLevel"`
	Size      PlantSize        `json:"size,omitempty" form:"size"`
	Limit     int              `json:"limit,omitempty" form:"limit"`
}

// Query encodes the filter for the given page.
func (f ProductFilter) Query(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", f.MaxPrice.String())
	}
	if f.CareLevel != "" {
		q.Set("careLevel", string(f.CareLevel))
	}
	if f.Size != "" {
		q.Set("size", string(f.Size))
	}
	return q
}

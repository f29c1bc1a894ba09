package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

type CategoryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type VariantDTO struct {
	ID          uint            `json:"id"`
	SKU         string          `json:"sku"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	DisplayName string          `json:"display_name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type ProductDTO struct {
	ID              uint             `json:"id"`
	CategoryID      uint             `json:"category_id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Price           decimal.Decimal  `json:"price"`
	PriceEUR        decimal.Decimal  `json:"price_eur"`
	OldPrice        *decimal.Decimal `json:"old_price,omitempty"`
	OldPriceEUR     *decimal.Decimal `json:"old_price_eur,omitempty"`
	DiscountPercent *int64           `json:"discount_percent,omitempty"`
	Stock           int              `json:"stock"`
	Image           string           `json:"image,omitempty"`
	Active          bool             `json:"active"`
	Variants        []VariantDTO     `json:"variants,omitempty"`
}

type CreateCategoryDTO struct {
	Name string `json:"name" validate:"required,max=80"`
	Slug string `json:"slug" validate:"required,max=80"`
}

type CreateProductDTO struct {
	CategoryID uint             `json:"category_id" validate:"required"`
	Name       string           `json:"name" validate:"required,max=120"`
	Slug       string           `json:"slug" validate:"required,max=120"`
	Price      decimal.Decimal  `json:"price"`
	OldPrice   *decimal.Decimal `json:"old_price"`
	Stock      int              `json:"stock" validate:"gte=0"`
	Image      string           `json:"image" validate:"max=255"`
	Active     *bool            `json:"active"`
}

// UpdateProductDTO 只更新有帶的欄位, old_price 為 0 代表清除
type UpdateProductDTO struct {
	Name     *string          `json:"name" validate:"omitempty,max=120"`
	Price    *decimal.Decimal `json:"price"`
	OldPrice *decimal.Decimal `json:"old_price"`
	Stock    *int             `json:"stock" validate:"omitempty,gte=0"`
	Active   *bool            `json:"active"`
}

type CreateVariantDTO struct {
	SKU   string          `json:"sku" validate:"required,max=64"`
	Size  string          `json:"size" validate:"max=32"`
	Color string          `json:"color" validate:"max=32"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func ToCategoryDTO(c model.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func ToVariantDTO(v model.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:          v.ID,
		SKU:         v.SKU,
		Size:        v.Size,
		Color:       v.Color,
		DisplayName: v.DisplayName(),
		Price:       v.Price,
		Stock:       v.Stock,
	}
}

func ToProductDTO(p *model.Product) ProductDTO {
	out := ProductDTO{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Slug:       p.Slug,
		Price:      p.Price,
		PriceEUR:   p.PriceEUR(),
		Stock:      p.Stock,
		Image:      p.Image,
		Active:     p.Active,
	}
	if p.OldPrice.Valid {
		old := p.OldPrice.Decimal
		out.OldPrice = &old
	}
	if eur, ok := p.OldPriceEUR(); ok {
		out.OldPriceEUR = &eur
	}
	if pct, ok := p.DiscountPercent(); ok {
		out.DiscountPercent = &pct
	}
	for _, v := range p.Variants {
		if v.Product == nil {
			v.Product = p
		}
		out.Variants = append(out.Variants, ToVariantDTO(v))
	}
	return out
}

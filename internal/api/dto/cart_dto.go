package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/shopspring/decimal"
)

// AddCartItemDTO product_id 與 variant_id 擇一, qty 預設 1
type AddCartItemDTO struct {
	ProductID uint `json:"product_id" validate:"required_without=VariantID,excluded_with=VariantID"`
	VariantID uint `json:"variant_id" validate:"required_without=ProductID"`
	Qty       *int `json:"qty" validate:"omitempty,gte=1"`
}

func (d AddCartItemDTO) Quantity() int {
	if d.Qty == nil {
		return 1
	}
	return *d.Qty
}

func (d AddCartItemDTO) Ref() cart.ItemRef {
	if d.VariantID != 0 {
		return cart.VariantRef{ID: d.VariantID}
	}
	return cart.ProductRef{ID: d.ProductID}
}

type UpdateCartItemDTO struct {
	Qty int `json:"qty" validate:"gte=0"`
}

type CartItemDTO struct {
	LineID    string          `json:"line_id"`
	Type      cart.Kind       `json:"type"`
	ItemID    uint            `json:"item_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Stock     int             `json:"stock"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ProductID *uint           `json:"product_id,omitempty"`
	VariantID *uint           `json:"variant_id,omitempty"`
}

type CartDTO struct {
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type CartMutationDTO struct {
	LineID string  `json:"line_id"`
	Added  *int    `json:"added,omitempty"`
	Qty    int     `json:"qty"`
	Notice string  `json:"notice,omitempty"`
	Cart   CartDTO `json:"cart"`
}

func ToCartDTO(v *service.CartView) CartDTO {
	out := CartDTO{Items: make([]CartItemDTO, 0, len(v.Items)), Total: v.Total.Round(2), Count: v.Count}
	for _, it := range v.Items {
		out.Items = append(out.Items, CartItemDTO{
			LineID:    it.LineID,
			Type:      it.Kind,
			ItemID:    it.ItemID,
			Name:      it.Name,
			Price:     it.Price,
			Qty:       it.Qty,
			Stock:     it.Stock,
			Subtotal:  it.Subtotal,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
		})
	}
	return out
}

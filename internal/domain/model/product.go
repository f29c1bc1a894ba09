package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// 價格以 BGN 儲存, EUR 只用於顯示
var BGNPerEUR = decimal.RequireFromString("1.95583")

type Category struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"not null;type:varchar(80);uniqueIndex" json:"name"`
	Slug     string    `gorm:"not null;type:varchar(80);uniqueIndex" json:"slug"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	BaseModel
}

type Product struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	CategoryID uint                `gorm:"not null;index" json:"category_id"`
	Category   *Category           `json:"category,omitempty"`
	Name       string              `gorm:"not null;type:varchar(120)" json:"name"`
	Slug       string              `gorm:"not null;type:varchar(120);uniqueIndex" json:"slug"`
	Price      decimal.Decimal     `gorm:"not null;type:decimal(10,2)" json:"price"`
	OldPrice   decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"old_price"`
	Stock      int                 `gorm:"not null" json:"stock"`
	Image      string              `gorm:"type:varchar(255)" json:"image,omitempty"`
	Active     bool                `gorm:"not null;index" json:"active"`
	Variants   []ProductVariant    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"` // 一對多，級聯刪除
	BaseModel
}

// PriceEUR 四捨五入到分
func (p *Product) PriceEUR() decimal.Decimal {
	return p.Price.Div(BGNPerEUR).Round(2)
}

func (p *Product) OldPriceEUR() (decimal.Decimal, bool) {
	if !p.OldPrice.Valid {
		return decimal.Decimal{}, false
	}
	return p.OldPrice.Decimal.Div(BGNPerEUR).Round(2), true
}

// DiscountPercent old price 大於 price 時回傳整數折扣百分比
func (p *Product) DiscountPercent() (int64, bool) {
	if !p.OldPrice.Valid || !p.OldPrice.Decimal.IsPositive() || !p.OldPrice.Decimal.GreaterThan(p.Price) {
		return 0, false
	}
	old := p.OldPrice.Decimal
	pct := old.Sub(p.Price).Div(old).Mul(decimal.NewFromInt(100)).Round(0)
	return pct.IntPart(), true
}

type ProductVariant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `json:"-"`
	SKU       string          `gorm:"not null;type:varchar(64);uniqueIndex" json:"sku"`
	Size      string          `gorm:"type:varchar(32)" json:"size,omitempty"`
	Color     string          `gorm:"type:varchar(32)" json:"color,omitempty"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Stock     int             `gorm:"not null" json:"stock"`
	BaseModel
}

// DisplayName 例: "T-Shirt [M, Red]", 沒有屬性時用 SKU
func (v *ProductVariant) DisplayName() string {
	attrs := make([]string, 0, 2)
	for _, a := range []string{v.Size, v.Color} {
		if a != "" {
			attrs = append(attrs, a)
		}
	}
	label := strings.Join(attrs, ", ")
	if label == "" {
		label = v.SKU
	}
	name := ""
	if v.Product != nil {
		name = v.Product.Name
	}
	return fmt.Sprintf("%s [%s]", name, label)
}

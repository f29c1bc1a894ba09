package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	Code       string              `gorm:"not null;type:varchar(40);uniqueIndex" json:"code"`
	PercentOff *int                `json:"percent_off"`
	AmountOff  decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"amount_off"`
	Active     bool                `gorm:"not null" json:"active"`
	ValidFrom  *time.Time          `json:"valid_from"`
	ValidTo    *time.Time          `json:"valid_to"`
	MaxUses    *int                `json:"max_uses"`
	Used       int                 `gorm:"not null" json:"used"`
	BaseModel
}

// IsValid 啟用中、在有效期間內且未超過使用次數
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}
	if c.MaxUses != nil && c.Used >= *c.MaxUses {
		return false
	}
	return true
}

// Apply 先打折再扣固定金額, 最低為 0
func (c *Coupon) Apply(total decimal.Decimal) decimal.Decimal {
	result := total
	if c.PercentOff != nil {
		result = result.Mul(hundred.Sub(decimal.NewFromInt(int64(*c.PercentOff)))).Div(hundred)
	}
	if c.AmountOff.Valid {
		result = result.Sub(c.AmountOff.Decimal)
	}
	if result.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return result.Round(2)
}

package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/shopspring/decimal"
)

type CouponDTO struct {
	Code       string           `json:"code" validate:"required,max=40"`
	PercentOff *int             `json:"percent_off" validate:"omitempty,gte=0,lte=100"`
	AmountOff  *decimal.Decimal `json:"amount_off"`
	Active     bool             `json:"active"`
	ValidFrom  *time.Time       `json:"valid_from"`
	ValidTo    *time.Time       `json:"valid_to"`
	MaxUses    *int             `json:"max_uses" validate:"omitempty,gte=0"`
	Used       int              `json:"used"`
}

func (d CouponDTO) Input() service.CouponInput {
	return service.CouponInput{
		Code:       d.Code,
		PercentOff: d.PercentOff,
		AmountOff:  d.AmountOff,
		Active:     d.Active,
		ValidFrom:  d.ValidFrom,
		ValidTo:    d.ValidTo,
		MaxUses:    d.MaxUses,
	}
}

func ToCouponDTO(c *model.Coupon) CouponDTO {
	out := CouponDTO{
		Code:       c.Code,
		PercentOff: c.PercentOff,
		Active:     c.Active,
		ValidFrom:  c.ValidFrom,
		ValidTo:    c.ValidTo,
		MaxUses:    c.MaxUses,
		Used:       c.Used,
	}
	if c.AmountOff.Valid {
		amount := c.AmountOff.Decimal
		out.AmountOff = &amount
	}
	return out
}

package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/shopspring/decimal"
)

type CheckoutDTO struct {
	Email         string `json:"email" validate:"required,email,max=254"`
	FullName      string `json:"full_name" validate:"required,max=120"`
	Address       string `json:"address" validate:"required,max=255"`
	Phone         string `json:"phone" validate:"max=32"`
	Coupon        string `json:"coupon" validate:"max=40"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cod card"`
}

func (d CheckoutDTO) Input() service.CheckoutInput {
	method := constants.PaymentMethod(d.PaymentMethod)
	if method == "" {
		method = constants.PaymentCOD
	}
	return service.CheckoutInput{
		Email:         d.Email,
		FullName:      d.FullName,
		Address:       d.Address,
		Phone:         d.Phone,
		Coupon:        d.Coupon,
		PaymentMethod: method,
	}
}

type CheckoutResultDTO struct {
	OrderID       uint            `json:"order_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CouponApplied bool            `json:"coupon_applied"`
	RedirectURL   string          `json:"redirect_url,omitempty"`
}

func ToCheckoutResultDTO(r *service.CheckoutResult) CheckoutResultDTO {
	return CheckoutResultDTO{
		OrderID:       r.Order.ID,
		Total:         r.Order.Total,
		PaymentMethod: r.Order.PaymentMethod,
		CouponApplied: r.CouponApplied,
		RedirectURL:   r.RedirectURL,
	}
}

type OrderItemDTO struct {
	ID          uint            `json:"id"`
	ProductID   *uint           `json:"product_id,omitempty"`
	VariantID   *uint           `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         int             `json:"qty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type OrderDTO struct {
	ID            uint              `json:"id"`
	Email         string            `json:"email"`
	FullName      string            `json:"full_name"`
	Address       string            `json:"address"`
	Phone         string            `json:"phone,omitempty"`
	Paid          bool              `json:"paid"`
	Total         decimal.Decimal   `json:"total"`
	Status        model.OrderStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemDTO    `json:"items,omitempty"`
}

// CheckoutReturnDTO 金流導回頁, order_id 來自 query string
type CheckoutReturnDTO struct {
	Message string  `json:"message"`
	OrderID *uint64 `json:"order_id,omitempty"`
}

type SetOrderStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=new paid fulfilled canceled refunded"`
}

func ToOrderDTO(o *model.Order) OrderDTO {
	out := OrderDTO{
		ID:            o.ID,
		Email:         o.Email,
		FullName:      o.FullName,
		Address:       o.Address,
		Phone:         o.Phone,
		Paid:          o.Paid,
		Total:         o.Total,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		CouponCode:    o.CouponCode,
		CreatedAt:     o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemDTO{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Qty:         it.Qty,
			LineTotal:   it.LineTotal(),
		})
	}
	return out
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPaid, OrderStatusFulfilled, OrderStatusCanceled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Email         string          `gorm:"not null;type:varchar(254)" json:"email"`
	FullName      string          `gorm:"not null;type:varchar(120)" json:"full_name"`
	Address       string          `gorm:"not null;type:varchar(255)" json:"address"`
	Phone         string          `gorm:"type:varchar(32)" json:"phone"`
	Paid          bool            `gorm:"not null;index" json:"paid"`
	Total         decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total"`
	Status        OrderStatus     `gorm:"not null;type:varchar(16);index" json:"status"`
	PaymentMethod string          `gorm:"not null;type:varchar(16)" json:"payment_method"`
	CouponCode    string          `gorm:"type:varchar(40)" json:"coupon_code,omitempty"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 一對多，級聯刪除
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SetStatus Paid 同時設定 paid flag
func (o *Order) SetStatus(status OrderStatus) {
	o.Status = status
	if status == OrderStatusPaid {
		o.Paid = true
	}
}

// OrderItem 建單當下的購物車快照, product/variant 只留參考供扣庫存
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   *uint           `gorm:"index" json:"product_id,omitempty"`
	VariantID   *uint           `gorm:"index" json:"variant_id,omitempty"`
	ProductName string          `gorm:"not null;type:varchar(120)" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"unit_price"`
	Qty         int             `gorm:"not null" json:"qty"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

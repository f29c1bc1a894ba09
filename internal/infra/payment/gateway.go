package payment

//go:generate mockgen -destination=mock/mock_gateway.go -package=mock_payment . Gateway

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

const (
	EventCheckoutCompleted = "checkout.session.completed"

	MetadataOrderID = "order_id"
	MetadataCoupon  = "coupon_code"
)

var hundred = decimal.NewFromInt(100)

// Gateway 外部金流, 建立託管結帳頁並驗證回呼
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook 簽章不符時回傳 ErrInvalidSignature
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	Currency      string
	Items         []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	OrderID       uint
	CouponCode    string
}

func (r CheckoutRequest) Metadata() map[string]string {
	md := map[string]string{MetadataOrderID: strconv.FormatUint(uint64(r.OrderID), 10)}
	if r.CouponCode != "" {
		md[MetadataCoupon] = r.CouponCode
	}
	return md
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event 已驗證的回呼, OrderID 為 0 代表 metadata 沒有訂單
type Event struct {
	ID         string
	Type       string
	OrderID    uint
	CouponCode string
}

// MinorUnits 金額轉成最小貨幣單位, 小數直接捨去
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

func eventFromMetadata(id, typ string, md map[string]string) *Event {
	evt := &Event{ID: id, Type: typ, CouponCode: md[MetadataCoupon]}
	if raw, ok := md[MetadataOrderID]; ok {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			evt.OrderID = uint(n)
		}
	}
	return evt
}

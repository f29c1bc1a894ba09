package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/notify"
	"github.com/RoyceAzure/lab/storefront/internal/infra/payment"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ICheckoutService interface {
	Checkout(ctx context.Context, sess *session.Session, in CheckoutInput) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ConfirmPayment(ctx context.Context, orderID uint, couponCode string) (bool, error)
}

type CheckoutInput struct {
	Email         string
	FullName      string
	Address       string
	Phone         string
	Coupon        string
	PaymentMethod constants.PaymentMethod
}

// CheckoutResult RedirectURL 只有線上付款時才有值
type CheckoutResult struct {
	Order         *model.Order
	RedirectURL   string
	CouponApplied bool
}

type CheckoutConfig struct {
	Currency string
	SiteURL  string
}

type CheckoutService struct {
	store    db.UnifiedDB
	carts    ICartService
	coupons  ICouponService
	gateway  payment.Gateway
	notifier notify.Notifier
	metrics  *metrics.ServerMetrics
	logger   *zerolog.Logger
	cfg      CheckoutConfig
	now      func() time.Time
}

var _ ICheckoutService = (*CheckoutService)(nil)

// NewCheckoutService gateway 為 nil 代表未啟用線上付款, 一律貨到付款
func NewCheckoutService(
	store db.UnifiedDB,
	carts ICartService,
	coupons ICouponService,
	gateway payment.Gateway,
	notifier notify.Notifier,
	m *metrics.ServerMetrics,
	logger *zerolog.Logger,
	cfg CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		store:    store,
		carts:    carts,
		coupons:  coupons,
		gateway:  gateway,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *CheckoutService) PaymentsEnabled() bool {
	return s.gateway != nil
}

/*
Checkout 購物車轉成訂單
 1. 計算總額, 有效的折扣碼才套用, 無效的直接忽略
 2. 同一個 transaction 寫入 Order 與全部 OrderItem
 3. 貨到付款: 立即扣庫存、通知、清空購物車
    線上付款: 建立金流結帳頁, 庫存與購物車等付款通知回來再處理
*/
func (s *CheckoutService) Checkout(ctx context.Context, sess *session.Session, in CheckoutInput) (*CheckoutResult, error) {
	c := s.carts.Load(ctx, sess)
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]cart.Item, 0, c.Len())
	cartTotal := decimal.Zero
	for item, err := range c.Items(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		cartTotal = cartTotal.Add(item.Subtotal)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := cartTotal
	couponCode := ""
	coupon, err := s.coupons.Resolve(ctx, in.Coupon, s.now())
	if err != nil {
		return nil, err
	}
	if coupon != nil {
		total = coupon.Apply(cartTotal)
		couponCode = coupon.Code
	}

	method := constants.PaymentCOD
	if in.PaymentMethod == constants.PaymentCard && s.PaymentsEnabled() {
		method = constants.PaymentCard
	}

	order := &model.Order{
		Email:         strings.TrimSpace(in.Email),
		FullName:      strings.TrimSpace(in.FullName),
		Address:       strings.TrimSpace(in.Address),
		Phone:         strings.TrimSpace(in.Phone),
		Total:         total,
		Status:        model.OrderStatusNew,
		PaymentMethod: string(method),
		CouponCode:    couponCode,
		Items:         make([]model.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Name,
			UnitPrice:   item.Price,
			Qty:         item.Qty,
		})
	}

	err = s.store.ExecTx(ctx, func(tx db.UnifiedDB) error {
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.metrics.OrderCreated(order.PaymentMethod)
	log := s.logger.With().Uint("order_id", order.ID).Str("payment_method", order.PaymentMethod).Logger()
	log.Info().Str("total", order.Total.StringFixed(2)).Msg("order created")

	result := &CheckoutResult{Order: order, CouponApplied: coupon != nil}

	if method == constants.PaymentCard {
		checkout, err := s.gateway.CreateCheckoutSession(ctx, s.checkoutRequest(order, cartTotal))
		if err != nil {
			return nil, err
		}
		result.RedirectURL = checkout.URL
		return result, nil
	}

	s.deductStock(ctx, &log, order)
	s.bestEffort(&log, "order_received", func() error { return s.notifier.OrderReceived(ctx, order) })

	c.Clear()
	if err := s.carts.Save(ctx, sess, c); err != nil {
		log.Error().Err(err).Msg("failed to clear cart after order")
	}
	return result, nil
}

// checkoutRequest 折扣後的總額與明細不同時, 送單一行總額
func (s *CheckoutService) checkoutRequest(order *model.Order, cartTotal decimal.Decimal) payment.CheckoutRequest {
	req := payment.CheckoutRequest{
		Currency:      s.cfg.Currency,
		SuccessURL:    fmt.Sprintf("%s/checkout/success?order=%d", strings.TrimRight(s.cfg.SiteURL, "/"), order.ID),
		CancelURL:     fmt.Sprintf("%s/checkout/cancel?order=%d", strings.TrimRight(s.cfg.SiteURL, "/"), order.ID),
		CustomerEmail: order.Email,
		OrderID:       order.ID,
		CouponCode:    order.CouponCode,
	}
	if !order.Total.Equal(cartTotal) {
		req.Items = []payment.LineItem{{
			Name:       fmt.Sprintf("Order #%d", order.ID),
			UnitAmount: payment.MinorUnits(order.Total),
			Quantity:   1,
		}}
		return req
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, payment.LineItem{
			Name:       item.ProductName,
			UnitAmount: payment.MinorUnits(item.UnitPrice),
			Quantity:   int64(item.Qty),
		})
	}
	return req
}

/*
HandleWebhook 驗證簽章後處理付款完成
簽章錯誤回傳 ErrInvalidSignature, 其餘情況都回傳 nil 讓金流不要重送
*/
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.PaymentsEnabled() {
		return nil
	}
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		s.logger.Warn().Err(err).Msg("ignoring unreadable payment callback")
		return nil
	}
	if evt.Type != payment.EventCheckoutCompleted {
		return nil
	}
	if evt.OrderID == 0 {
		s.logger.Warn().Str("event_id", evt.ID).Msg("payment callback without order id")
		return nil
	}
	if _, err := s.ConfirmPayment(ctx, evt.OrderID, evt.CouponCode); err != nil {
		s.logger.Error().Err(err).Uint("order_id", evt.OrderID).Str("event_id", evt.ID).Msg("payment confirmation failed")
	}
	return nil
}

/*
ConfirmPayment 訂單轉為 Paid 並扣庫存
已付款的訂單回傳 false 且不做任何事, 同一訂單只會扣一次庫存
*/
func (s *CheckoutService) ConfirmPayment(ctx context.Context, orderID uint, couponCode string) (bool, error) {
	log := s.logger.With().Uint("order_id", orderID).Logger()

	won, err := s.store.MarkOrderPaid(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !won {
		if _, err := s.store.GetOrderByID(ctx, orderID); errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Msg("payment callback for unknown order")
			return false, nil
		}
		s.metrics.DuplicateWebhook()
		log.Info().Msg("order already paid, callback ignored")
		return false, nil
	}
	s.metrics.PaymentConfirmed()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return true, err
	}
	s.deductStock(ctx, &log, order)

	if couponCode != "" {
		coupon, err := s.store.GetCouponByCode(ctx, couponCode)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Warn().Str("coupon", couponCode).Msg("coupon from payment callback not found")
		case err != nil:
			log.Error().Err(err).Str("coupon", couponCode).Msg("coupon lookup failed")
		default:
			if err := s.store.IncrementCouponUsed(ctx, coupon.ID); err != nil {
				log.Error().Err(err).Str("coupon", couponCode).Msg("failed to increment coupon usage")
			}
		}
	}

	s.bestEffort(&log, "order_paid", func() error { return s.notifier.OrderPaid(ctx, order) })
	log.Info().Msg("order paid")
	return true, nil
}

// deductStock 讀取後寫回, 失敗只記錄不影響訂單
func (s *CheckoutService) deductStock(ctx context.Context, log *zerolog.Logger, order *model.Order) {
	for _, item := range order.Items {
		var (
			stock int
			err   error
		)
		switch {
		case item.VariantID != nil:
			stock, err = s.store.DeductVariantStock(ctx, *item.VariantID, item.Qty)
		case item.ProductID != nil:
			stock, err = s.store.DeductProductStock(ctx, *item.ProductID, item.Qty)
		default:
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("item", item.ProductName).Msg("failed to deduct stock")
			continue
		}
		log.Debug().Str("item", item.ProductName).Int("stock", stock).Msg("stock deducted")
	}
}

// bestEffort 副作用失敗只記錄, 不回傳給呼叫端
func (s *CheckoutService) bestEffort(log *zerolog.Logger, kind string, fn func() error) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.metrics.NotificationFailed(kind)
			log.Error().Interface("panic", r).Str("kind", kind).Msg("notification panicked")
		}
	}()
	if err := fn(); err != nil {
		s.metrics.NotificationFailed(kind)
		log.Warn().Err(err).Str("kind", kind).Msg("notification failed")
	}
}

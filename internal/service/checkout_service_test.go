package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	mock_notify "github.com/RoyceAzure/lab/storefront/internal/infra/notify/mock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/payment"
	mock_payment "github.com/RoyceAzure/lab/storefront/internal/infra/payment/mock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CheckoutTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *db.UnifiedDBImpl
	sessions *session.MemoryStore
	ctrl     *gomock.Controller
	gateway  *mock_payment.MockGateway
	notifier *mock_notify.MockNotifier
	metrics  *metrics.ServerMetrics
	catalog  *CatalogService
	carts    *CartService
	coupons  *CouponService
	svc      *CheckoutService

	productA *model.Product
	productB *model.Product
	variantB *model.ProductVariant
}

func TestCheckoutTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutTestSuite))
}

func newTestStore(t *testing.T) *db.UnifiedDBImpl {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := db.NewMemoryDB(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := store.GetDB().DB()
		sqlDB.Close()
	})
	return store
}

func (s *CheckoutTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newTestStore(s.T())
	s.sessions = session.NewMemoryStore(constants.DefaultSessionTTL)
	s.ctrl = gomock.NewController(s.T())
	s.gateway = mock_payment.NewMockGateway(s.ctrl)
	s.notifier = mock_notify.NewMockNotifier(s.ctrl)
	s.metrics = metrics.NewServerMetrics("test")

	s.catalog = NewCatalogService(s.store)
	s.carts = NewCartService(s.catalog, s.sessions, s.metrics, logger.Nop())
	s.coupons = NewCouponService(s.store)
	s.svc = s.newCheckout(s.gateway)

	category := &model.Category{Name: "Shirts", Slug: "shirts"}
	require.NoError(s.T(), s.store.CreateCategory(s.ctx, category))
	s.productA = &model.Product{CategoryID: category.ID, Name: "Tee", Slug: "tee", Price: decimal.RequireFromString("10.00"), Stock: 5, Active: true}
	require.NoError(s.T(), s.store.CreateProduct(s.ctx, s.productA))
	s.productB = &model.Product{CategoryID: category.ID, Name: "Cap", Slug: "cap", Price: decimal.RequireFromString("99.00"), Stock: 9, Active: true}
	require.NoError(s.T(), s.store.CreateProduct(s.ctx, s.productB))
	s.variantB = &model.ProductVariant{ProductID: s.productB.ID, SKU: "CAP-RED", Color: "Red", Price: decimal.RequireFromString("5.00"), Stock: 4}
	require.NoError(s.T(), s.store.CreateVariant(s.ctx, s.variantB))
}

func (s *CheckoutTestSuite) newCheckout(gateway payment.Gateway) *CheckoutService {
	return NewCheckoutService(s.store, s.carts, s.coupons, gateway, s.notifier, s.metrics, logger.Nop(), CheckoutConfig{
		Currency: "bgn",
		SiteURL:  "http://shop.test/",
	})
}

// filledSession 兩行: Tee x2 @10.00, Cap [Red] x1 @5.00
func (s *CheckoutTestSuite) filledSession() *session.Session {
	sess := session.New()
	_, err := s.carts.Add(s.ctx, sess, cart.ProductRef{ID: s.productA.ID}, 2)
	require.NoError(s.T(), err)
	_, err = s.carts.Add(s.ctx, sess, cart.VariantRef{ID: s.variantB.ID}, 1)
	require.NoError(s.T(), err)
	return sess
}

func (s *CheckoutTestSuite) input(method constants.PaymentMethod, coupon string) CheckoutInput {
	return CheckoutInput{
		Email:         "buyer@example.com",
		FullName:      "Ivan Petrov",
		Address:       "Sofia",
		Phone:         "+359",
		Coupon:        coupon,
		PaymentMethod: method,
	}
}

func (s *CheckoutTestSuite) productStock(id uint) int {
	p, err := s.store.GetProductByID(s.ctx, id)
	require.NoError(s.T(), err)
	return p.Stock
}

func (s *CheckoutTestSuite) variantStock(id uint) int {
	v, err := s.store.GetActiveVariant(s.ctx, id)
	require.NoError(s.T(), err)
	return v.Stock
}

func (s *CheckoutTestSuite) cartCount(sess *session.Session) int {
	view, err := s.carts.View(s.ctx, sess)
	require.NoError(s.T(), err)
	return view.Count
}

func (s *CheckoutTestSuite) TestCashOnDelivery() {
	sess := s.filledSession()
	s.notifier.EXPECT().OrderReceived(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.svc.Checkout(s.ctx, sess, s.input(constants.PaymentCOD, ""))
	require.NoError(s.T(), err)
	require.Empty(s.T(), res.RedirectURL)
	require.False(s.T(), res.CouponApplied)

	order, err := s.store.GetOrderByID(s.ctx, res.Order.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), order.Total.Equal(decimal.RequireFromString("25.00")))
	require.Equal(s.T(), model.OrderStatusNew, order.Status)
	require.Equal(s.T(), "cod", order.PaymentMethod)
	require.Len(s.T(), order.Items, 2)
	require.Equal(s.T(), "Tee", order.Items[0].ProductName)
	require.Equal(s.T(), 2, order.Items[0].Qty)
	require.True(s.T(), order.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	require.Equal(s.T(), "Cap [Red]", order.Items[1].ProductName)
	require.Equal(s.T(), 1, order.Items[1].Qty)
	require.True(s.T(), order.Items[1].UnitPrice.Equal(decimal.NewFromInt(5)))
	require.Equal(s.T(), s.variantB.ID, *order.Items[1].VariantID)

	_, total, err := s.store.ListOrders(s.ctx, db.OrderFilter{})
	require.NoError(s.T(), err)
	require.EqualValues(s.T(), 1, total)

	require.Equal(s.T(), 3, s.productStock(s.productA.ID))
	require.Equal(s.T(), 3, s.variantStock(s.variantB.ID))
	require.Equal(s.T(), 9, s.productStock(s.productB.ID))

	require.Zero(s.T(), s.cartCount(sess))
	stored, err := s.sessions.Load(s.ctx, sess.ID)
	require.NoError(s.T(), err)
	require.Zero(s.T(), s.cartCount(stored))
}

func (s *CheckoutTestSuite) TestNotificationFailureDoesNotBlockOrder() {
	sess := s.filledSession()
	s.notifier.EXPECT().OrderReceived(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	res, err := s.svc.Checkout(s.ctx, sess, s.input(constants.PaymentCOD, ""))
	require.NoError(s.T(), err)
	require.NotZero(s.T(), res.Order.ID)
	require.Zero(s.T(), s.cartCount(sess))
	require.Equal(s.T(), float64(1), testutil.ToFloat64(s.metrics.NotificationFailures.WithLabelValues("order_received")))
}

func (s *CheckoutTestSuite) TestEmptyCart() {
	_, err := s.svc.Checkout(s.ctx, session.New(), s.input(constants.PaymentCOD, ""))
	require.ErrorIs(s.T(), err, ErrEmptyCart)

	// 只剩下架商品時也視為空購物車
	sess := session.New()
	_, err = s.carts.Add(s.ctx, sess, cart.ProductRef{ID: s.productA.ID}, 1)
	require.NoError(s.T(), err)
	s.productA.Active = false
	require.NoError(s.T(), s.store.UpdateProduct(s.ctx, s.productA))

	_, err = s.svc.Checkout(s.ctx, sess, s.input(constants.PaymentCOD, ""))
	require.ErrorIs(s.T(), err, ErrEmptyCart)
}

func (s *CheckoutTestSuite) TestInvalidCouponIgnored() {
	pct := 50
	require.NoError(s.T(), s.store.CreateCoupon(s.ctx, &model.Coupon{Code: "OFF", PercentOff: &pct, Active: false}))
	s.notifier.EXPECT().OrderReceived(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	for _, code := range []string{"NOPE", "off"} {
		res, err := s.svc.Checkout(s.ctx, s.filledSession(), s.input(constants.PaymentCOD, code))
		require.NoError(s.T(), err)
		require.False(s.T(), res.CouponApplied)
		require.True(s.T(), res.Order.Total.Equal(decimal.NewFromInt(25)))
		require.Empty(s.T(), res.Order.CouponCode)
	}
}

func (s *CheckoutTestSuite) TestCardCheckoutDefersStock() {
	sess := s.filledSession()
	s.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
			require.Equal(s.T(), "bgn", req.Currency)
			require.Len(s.T(), req.Items, 2)
			require.Equal(s.T(), payment.LineItem{Name: "Tee", UnitAmount: 1000, Quantity: 2}, req.Items[0])
			require.Equal(s.T(), payment.LineItem{Name: "Cap [Red]", UnitAmount: 500, Quantity: 1}, req.Items[1])
			require.NotZero(s.T(), req.OrderID)
			require.True(s.T(), strings.HasPrefix(req.SuccessURL, "http://shop.test/checkout/success?order="))
			return &payment.CheckoutSession{ID: "cs_1", URL: "https://pay.test/cs_1"}, nil
		})

	res, err := s.svc.Checkout(s.ctx, sess, s.input(constants.PaymentCard, ""))
	require.NoError(s.T(), err)
	require.Equal(s.T(), "https://pay.test/cs_1", res.RedirectURL)
	require.Equal(s.T(), "card", res.Order.PaymentMethod)

	require.Equal(s.T(), 5, s.productStock(s.productA.ID))
	require.Equal(s.T(), 4, s.variantStock(s.variantB.ID))
	require.Equal(s.T(), 3, s.cartCount(sess))

	order, err := s.store.GetOrderByID(s.ctx, res.Order.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), model.OrderStatusNew, order.Status)
	require.False(s.T(), order.Paid)
}

func (s *CheckoutTestSuite) TestWebhookIsIdempotent() {
	sess := s.filledSession()
	s.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&payment.CheckoutSession{ID: "cs_1", URL: "https://pay.test/cs_1"}, nil)
	res, err := s.svc.Checkout(s.ctx, sess, s.input(constants.PaymentCard, ""))
	require.NoError(s.T(), err)

	payload := []byte(`{"id":"evt_1"}`)
	s.gateway.EXPECT().ParseWebhook(payload, "sig").
		Return(&payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, OrderID: res.Order.ID}, nil).
		Times(2)
	s.notifier.EXPECT().OrderPaid(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	require.NoError(s.T(), s.svc.HandleWebhook(s.ctx, payload, "sig"))
	require.NoError(s.T(), s.svc.HandleWebhook(s.ctx, payload, "sig"))

	order, err := s.store.GetOrderByID(s.ctx, res.Order.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), model.OrderStatusPaid, order.Status)
	require.True(s.T(), order.Paid)
	require.Equal(s.T(), 3, s.productStock(s.productA.ID))
	require.Equal(s.T(), 3, s.variantStock(s.variantB.ID))
	require.Equal(s.T(), float64(1), testutil.ToFloat64(s.metrics.DuplicateWebhooks))
}

func (s *CheckoutTestSuite) TestCouponWithGateway() {
	pct := 10
	require.NoError(s.T(), s.store.CreateCoupon(s.ctx, &model.Coupon{Code: "SPRING10", PercentOff: &pct, Active: true}))

	s.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
			require.Len(s.T(), req.Items, 1)
			require.Equal(s.T(), int64(2250), req.Items[0].UnitAmount)
			require.Equal(s.T(), int64(1), req.Items[0].Quantity)
			require.Equal(s.T(), "SPRING10", req.CouponCode)
			return &payment.CheckoutSession{ID: "cs_2", URL: "https://pay.test/cs_2"}, nil
		})

	res, err := s.svc.Checkout(s.ctx, s.filledSession(), s.input(constants.PaymentCard, "spring10"))
	require.NoError(s.T(), err)
	require.True(s.T(), res.CouponApplied)
	require.True(s.T(), res.Order.Total.Equal(decimal.RequireFromString("22.50")))

	s.notifier.EXPECT().OrderPaid(gomock.Any(), gomock.Any()).Return(nil)
	paid, err := s.svc.ConfirmPayment(s.ctx, res.Order.ID, "SPRING10")
	require.NoError(s.T(), err)
	require.True(s.T(), paid)

	coupon, err := s.store.GetCouponByCode(s.ctx, "SPRING10")
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, coupon.Used)
}

func (s *CheckoutTestSuite) TestWebhookRejectsBadSignature() {
	s.gateway.EXPECT().ParseWebhook(gomock.Any(), "bad").Return(nil, payment.ErrInvalidSignature)

	err := s.svc.HandleWebhook(s.ctx, []byte(`{}`), "bad")
	require.ErrorIs(s.T(), err, ErrInvalidSignature)
}

func (s *CheckoutTestSuite) TestWebhookUnknownOrderAcknowledged() {
	s.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).
		Return(&payment.Event{Type: payment.EventCheckoutCompleted, OrderID: 999, CouponCode: "GHOST"}, nil)

	require.NoError(s.T(), s.svc.HandleWebhook(s.ctx, []byte(`{}`), "sig"))
}

func (s *CheckoutTestSuite) TestWebhookOtherEventIgnored() {
	s.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).
		Return(&payment.Event{Type: "payment_intent.created"}, nil)

	require.NoError(s.T(), s.svc.HandleWebhook(s.ctx, []byte(`{}`), "sig"))
}

func (s *CheckoutTestSuite) TestPaymentsDisabledFallsBackToCOD() {
	svc := s.newCheckout(nil)
	s.notifier.EXPECT().OrderReceived(gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Checkout(s.ctx, s.filledSession(), s.input(constants.PaymentCard, ""))
	require.NoError(s.T(), err)
	require.Equal(s.T(), "cod", res.Order.PaymentMethod)
	require.Empty(s.T(), res.RedirectURL)
	require.Equal(s.T(), 3, s.productStock(s.productA.ID))

	require.NoError(s.T(), svc.HandleWebhook(s.ctx, []byte("garbage"), ""))
}

// 目前行為: 庫存不加鎖, 兩筆訂單都成功, 庫存扣到 0 為止
func (s *CheckoutTestSuite) TestConcurrentCheckoutsOversell() {
	first, second := session.New(), session.New()
	for _, sess := range []*session.Session{first, second} {
		added, err := s.carts.Add(s.ctx, sess, cart.ProductRef{ID: s.productA.ID}, 5)
		require.NoError(s.T(), err)
		require.Equal(s.T(), 5, added.Added)
	}
	s.notifier.EXPECT().OrderReceived(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := s.svc.Checkout(s.ctx, first, s.input(constants.PaymentCOD, ""))
	require.NoError(s.T(), err)
	_, err = s.svc.Checkout(s.ctx, second, s.input(constants.PaymentCOD, ""))
	require.NoError(s.T(), err)

	orders, _, err := s.store.ListOrders(s.ctx, db.OrderFilter{})
	require.NoError(s.T(), err)
	sold := 0
	for _, o := range orders {
		for _, item := range o.Items {
			sold += item.Qty
		}
	}
	require.Equal(s.T(), 10, sold)
	require.Equal(s.T(), 0, s.productStock(s.productA.ID))
}

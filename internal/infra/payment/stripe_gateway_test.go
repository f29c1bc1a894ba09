package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload string, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestMinorUnits(t *testing.T) {
	testCases := []struct {
		amount string
		want   int64
	}{
		{"10.00", 1000},
		{"0.10", 10},
		{"19.999", 1999},
		{"0", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			require.Equal(t, tc.want, MinorUnits(decimal.RequireFromString(tc.amount)))
		})
	}
}

func TestParseWebhookCompleted(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret)
	payload := `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "metadata": {"order_id": "42", "coupon_code": "SPRING10"}}}
	}`

	evt, err := g.ParseWebhook([]byte(payload), sign(t, payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, EventCheckoutCompleted, evt.Type)
	require.EqualValues(t, 42, evt.OrderID)
	require.Equal(t, "SPRING10", evt.CouponCode)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret)
	payload := `{"id": "evt_1", "object": "event", "type": "checkout.session.completed", "data": {"object": {}}}`

	_, err := g.ParseWebhook([]byte(payload), sign(t, payload, "whsec_other"))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = g.ParseWebhook([]byte(payload), "")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookOtherEvent(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret)
	payload := `{"id": "evt_2", "object": "event", "type": "payment_intent.created", "data": {"object": {"id": "pi_1"}}}`

	evt, err := g.ParseWebhook([]byte(payload), sign(t, payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, "payment_intent.created", evt.Type)
	require.Zero(t, evt.OrderID)
}

func TestParseWebhookMissingOrder(t *testing.T) {
	g := NewStripeGateway("sk_test", testSecret)
	payload := `{"id": "evt_3", "object": "event", "type": "checkout.session.completed", "data": {"object": {"id": "cs_2", "metadata": {"order_id": "abc"}}}}`

	evt, err := g.ParseWebhook([]byte(payload), sign(t, payload, testSecret))
	require.NoError(t, err)
	require.Zero(t, evt.OrderID)
}

func TestBuildSessionParams(t *testing.T) {
	params := buildSessionParams(CheckoutRequest{
		Currency:      "bgn",
		Items:         []LineItem{{Name: "Tee", UnitAmount: 1000, Quantity: 2}},
		SuccessURL:    "http://shop/checkout/success",
		CancelURL:     "http://shop/checkout/cancel",
		CustomerEmail: "a@b.c",
		OrderID:       7,
		CouponCode:    "X",
	})

	require.Equal(t, "payment", *params.Mode)
	require.Len(t, params.LineItems, 1)
	require.Equal(t, int64(1000), *params.LineItems[0].PriceData.UnitAmount)
	require.Equal(t, "bgn", *params.LineItems[0].PriceData.Currency)
	require.Equal(t, "Tee", *params.LineItems[0].PriceData.ProductData.Name)
	require.Equal(t, "7", params.Metadata[MetadataOrderID])
	require.Equal(t, "X", params.Metadata[MetadataCoupon])
	require.Equal(t, "a@b.c", *params.CustomerEmail)
}

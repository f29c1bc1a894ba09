package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

//go:generate mockgen -destination=mock/mock_notifier.go -package=mock_notify . Notifier,Writer

// Notifier 訂單通知, 呼叫端視為 best-effort
type Notifier interface {
	OrderReceived(ctx context.Context, order *model.Order) error
	OrderPaid(ctx context.Context, order *model.Order) error
}

// MultiNotifier 依序通知全部, 錯誤合併回傳
type MultiNotifier []Notifier

var _ Notifier = MultiNotifier(nil)

func (m MultiNotifier) OrderReceived(ctx context.Context, order *model.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderReceived(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) OrderPaid(ctx context.Context, order *model.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderPaid(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// messageData 信件模板資料
type messageData struct {
	SiteName string
	Currency string
	Order    *model.Order
}

var (
	orderReceivedTmpl = template.Must(template.New("orderReceived").Parse(orderReceivedText))
	orderPaidTmpl     = template.Must(template.New("orderPaid").Parse(orderPaidText))
)

func render(tmpl *template.Template, data messageData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("執行模板失敗: %w", err)
	}
	return buf.String(), nil
}

const orderReceivedText = `Hello {{.Order.FullName}},

Thank you for your order #{{.Order.ID}} at {{.SiteName}}.
{{range .Order.Items}}
  {{.ProductName}} x {{.Qty}} @ {{.UnitPrice.StringFixed 2}}{{end}}

Total: {{.Order.Total.StringFixed 2}} {{.Currency}}
Payment: cash on delivery

We will contact you at {{.Order.Phone}} before delivery to {{.Order.Address}}.
`

const orderPaidText = `Hello {{.Order.FullName}},

We received your payment for order #{{.Order.ID}} at {{.SiteName}}.

Total paid: {{.Order.Total.StringFixed 2}} {{.Currency}}

Your order will be shipped to {{.Order.Address}}.
`

package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/rj/infra/mail"
)

// emailSender 與 mail.EmailSender 相同簽章
type emailSender interface {
	SendEmail(subject string, content string, to []string, cc []string, bcc []string, attachFiles []string) error
}

type MailNotifier struct {
	sender   emailSender
	siteName string
	currency string
}

var _ Notifier = (*MailNotifier)(nil)

// NewMailNotifier 初始化 gmail 寄件
// 參數:
//
//	senderName: 寄件者屬名
//	fromEmailAddress: 寄件者郵件地址
//	fromEmailPassword: 寄件者郵件密碼
func NewMailNotifier(senderName, fromEmailAddress, fromEmailPassword, currency string) *MailNotifier {
	return newMailNotifier(mail.NewGmailSender(senderName, fromEmailAddress, fromEmailPassword), senderName, currency)
}

func newMailNotifier(sender emailSender, siteName, currency string) *MailNotifier {
	return &MailNotifier{
		sender:   sender,
		siteName: siteName,
		currency: strings.ToUpper(currency),
	}
}

func (m *MailNotifier) OrderReceived(ctx context.Context, order *model.Order) error {
	body, err := render(orderReceivedTmpl, messageData{SiteName: m.siteName, Currency: m.currency, Order: order})
	if err != nil {
		return err
	}
	return m.send(fmt.Sprintf("Order #%d received", order.ID), body, order.Email)
}

func (m *MailNotifier) OrderPaid(ctx context.Context, order *model.Order) error {
	body, err := render(orderPaidTmpl, messageData{SiteName: m.siteName, Currency: m.currency, Order: order})
	if err != nil {
		return err
	}
	return m.send(fmt.Sprintf("Order #%d paid", order.ID), body, order.Email)
}

func (m *MailNotifier) send(subject, body, to string) error {
	if err := m.sender.SendEmail(subject, body, []string{to}, nil, nil, nil); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

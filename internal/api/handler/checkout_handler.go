package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/rs/zerolog"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBytes       = 64 << 10
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
}

func NewCheckoutHandler(checkoutService service.ICheckoutService) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService}
}

/*
Checkout POST /checkout
貨到付款直接完成, 線上付款回傳 redirect_url 由前端導向金流頁
*/
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req dto.CheckoutDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.checkoutService.Checkout(r.Context(), sess, req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, dto.ToCheckoutResultDTO(res))
}

// Success 金流成功頁, 訂單狀態以 webhook 為準
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	api.SuccessJSON(w, dto.CheckoutReturnDTO{Message: "Thank you! Your order has been received.", OrderID: orderRef(r)}, nil)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	api.SuccessJSON(w, dto.CheckoutReturnDTO{Message: "Payment was canceled. Your cart has been kept.", OrderID: orderRef(r)}, nil)
}

/*
Webhook POST /checkout/stripe/webhook
只有簽章錯誤回 400, 其他情況一律 200 避免金流重送
*/
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to read payment callback body")
		api.ErrorJSON(w, int(er.BadRequestCode), er.New(er.BadRequestCode, "unreadable body"), er.ErrStrMap[er.BadRequestCode])
		return
	}
	if err := h.checkoutService.HandleWebhook(r.Context(), payload, r.Header.Get(stripeSignatureHeader)); err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, map[string]bool{"received": true}, nil)
}

func orderRef(r *http.Request) *uint64 {
	id, err := strconv.ParseUint(r.URL.Query().Get("order"), 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

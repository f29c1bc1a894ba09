package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	view, err := h.cartService.View(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.ToCartDTO(view), nil)
}

/*
Add POST /cart/items
超過庫存時不是錯誤, 回傳 notice 與實際加入數量
*/
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req dto.AddCartItemDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ref := req.Ref()
	res, err := h.cartService.Add(r.Context(), sess, ref, req.Quantity())
	if err != nil {
		writeError(w, r, err)
		return
	}
	added := res.Added
	h.respondMutation(w, r, sess, dto.CartMutationDTO{LineID: ref.LineID(), Added: &added, Qty: res.Qty, Notice: res.Notice})
}

// Update PATCH /cart/items/{lineID}, qty 0 代表刪除
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	ref, err := lineRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateCartItemDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.cartService.Update(r.Context(), sess, ref, req.Qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondMutation(w, r, sess, dto.CartMutationDTO{LineID: ref.LineID(), Qty: res.Qty, Notice: res.Notice})
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	ref, err := lineRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.cartService.Remove(r.Context(), sess, ref); err != nil {
		writeError(w, r, err)
		return
	}
	h.respondMutation(w, r, sess, dto.CartMutationDTO{LineID: ref.LineID()})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := h.cartService.Clear(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.CartDTO{Items: []dto.CartItemDTO{}}, nil)
}

func (h *CartHandler) respondMutation(w http.ResponseWriter, r *http.Request, sess *session.Session, out dto.CartMutationDTO) {
	view, err := h.cartService.View(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out.Cart = dto.ToCartDTO(view)
	api.SuccessJSON(w, out, nil)
}

func lineRef(r *http.Request) (cart.ItemRef, error) {
	ref, err := cart.ParseLineID(chi.URLParam(r, "lineID"))
	if err != nil {
		return nil, service.NewValidationError("line_id", err.Error())
	}
	return ref, nil
}

package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
)

type CouponHandler struct {
	couponService service.ICouponService
}

func NewCouponHandler(couponService service.ICouponService) *CouponHandler {
	if couponService == nil {
		panic("couponService cannot be nil")
	}
	return &CouponHandler{couponService: couponService}
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.couponService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.CouponDTO, 0, len(coupons))
	for i := range coupons {
		out = append(out, dto.ToCouponDTO(&coupons[i]))
	}
	api.SuccessJSON(w, out, nil)
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CouponDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.couponService.Create(r.Context(), req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, dto.ToCouponDTO(c))
}

// Delete DELETE /admin/coupons/{code}
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.couponService.Delete(r.Context(), code); err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, map[string]string{"deleted": code}, nil)
}

// Update PUT /admin/coupons/{code}, 整筆覆蓋, used 不可修改
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.CouponDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.couponService.Update(r.Context(), chi.URLParam(r, "code"), req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.ToCouponDTO(c), nil)
}

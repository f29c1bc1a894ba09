package handler

import (
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// List GET /admin/orders?status=&paid=&page=&page_size=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, total, err := h.orderService.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, dto.ToOrderDTO(&orders[i]))
	}
	api.SuccessJSON(w, out, &api.MetaData{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.ToOrderDTO(o), nil)
}

func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.SetOrderStatusDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orderService.SetStatus(r.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.ToOrderDTO(o), nil)
}

func orderFilter(r *http.Request) (db.OrderFilter, error) {
	q := r.URL.Query()
	filter := db.OrderFilter{Status: model.OrderStatus(q.Get("status")), Page: 1, PageSize: db.DefaultPageSize}
	if v := q.Get("paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return filter, service.NewValidationError("paid", "must be true or false")
		}
		filter.Paid = &paid
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, service.NewValidationError("page", "must be a positive integer")
		}
		filter.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > db.MaxPageSize {
			return filter, service.NewValidationError("page_size", "must be between 1 and "+strconv.Itoa(db.MaxPageSize))
		}
		filter.PageSize = size
	}
	return filter, nil
}

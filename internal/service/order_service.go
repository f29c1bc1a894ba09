package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

type IOrderService interface {
	Get(ctx context.Context, id uint) (*model.Order, error)
	List(ctx context.Context, filter db.OrderFilter) ([]model.Order, int64, error)
	SetStatus(ctx context.Context, id uint, status model.OrderStatus) (*model.Order, error)
}

type OrderService struct {
	store db.UnifiedDB
}

var _ IOrderService = (*OrderService)(nil)

func NewOrderService(store db.UnifiedDB) *OrderService {
	return &OrderService{store: store}
}

func (s *OrderService) Get(ctx context.Context, id uint) (*model.Order, error) {
	o, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %d", id)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, filter db.OrderFilter) ([]model.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, NewValidationError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	return s.store.ListOrders(ctx, filter)
}

// SetStatus 沒有狀態轉移限制, Paid 同時設定 paid
func (s *OrderService) SetStatus(ctx context.Context, id uint, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	o, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %d", id)
	}
	o.SetStatus(status)
	if err := s.store.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return o, nil
}

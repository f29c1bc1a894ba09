package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type OrderFilter struct {
	Status   model.OrderStatus
	Paid     *bool
	Page     int
	PageSize int
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder 連同 Items 一起寫入
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *OrderRepo) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders 依建立時間新到舊分頁
func (s *OrderRepo) ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := s.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Paid != nil {
		q = q.Where("paid = ?", *filter.Paid)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := q.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(filter.PageSize).
		Find(&orders).Error
	return orders, total, err
}

func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus) error {
	updates := map[string]any{"status": status}
	if status == model.OrderStatusPaid {
		updates["paid"] = true
	}
	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkOrderPaid 條件更新, 已付款時回傳 false
// 重複的付款通知只有第一次會回傳 true
func (s *OrderRepo) MarkOrderPaid(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND paid = ?", id, false).
		Updates(map[string]any{"paid": true, "status": model.OrderStatusPaid})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

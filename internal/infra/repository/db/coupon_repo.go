package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

type CouponRepo struct {
	db *DbDao
}

func NewCouponRepo(db *DbDao) *CouponRepo {
	return &CouponRepo{db: db}
}

func (s *CouponRepo) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	return s.db.WithContext(ctx).Create(coupon).Error
}

func (s *CouponRepo) UpdateCoupon(ctx context.Context, coupon *model.Coupon) error {
	return s.db.WithContext(ctx).Save(coupon).Error
}

// DeleteCoupon 實際刪除, 讓同一個 code 可以重新建立
// 訂單只保存 code 字串, 不受影響
func (s *CouponRepo) DeleteCoupon(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(&model.Coupon{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *CouponRepo) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := s.db.WithContext(ctx).Order("code ASC").Find(&coupons).Error
	return coupons, err
}

// GetCouponByCode 不分大小寫
func (s *CouponRepo) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := s.db.WithContext(ctx).Where("UPPER(code) = UPPER(?)", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (s *CouponRepo) IncrementCouponUsed(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ?", id).
		Update("used", gorm.Expr("used + ?", 1)).Error
}

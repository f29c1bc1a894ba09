package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ICouponService interface {
	Resolve(ctx context.Context, code string, now time.Time) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Create(ctx context.Context, in CouponInput) (*model.Coupon, error)
	Update(ctx context.Context, code string, in CouponInput) (*model.Coupon, error)
	Delete(ctx context.Context, code string) error
}

type CouponInput struct {
	Code       string
	PercentOff *int
	AmountOff  *decimal.Decimal
	Active     bool
	ValidFrom  *time.Time
	ValidTo    *time.Time
	MaxUses    *int
}

type CouponService struct {
	store db.UnifiedDB
}

var _ ICouponService = (*CouponService)(nil)

func NewCouponService(store db.UnifiedDB) *CouponService {
	return &CouponService{store: store}
}

// Resolve 找不到或無效時回傳 nil, nil
func (s *CouponService) Resolve(ctx context.Context, code string, now time.Time) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	c, err := s.store.GetCouponByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !c.IsValid(now) {
		return nil, nil
	}
	return c, nil
}

func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	return s.store.ListCoupons(ctx)
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*model.Coupon, error) {
	c := &model.Coupon{}
	if err := applyCouponInput(c, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateCoupon(ctx, c); err != nil {
		return nil, conflict(err, "code")
	}
	return c, nil
}

// Update 以 code 找到後整筆覆蓋, used 保留
func (s *CouponService) Update(ctx context.Context, code string, in CouponInput) (*model.Coupon, error) {
	c, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "coupon %s", code)
	}
	if in.Code == "" {
		in.Code = c.Code
	}
	if err := applyCouponInput(c, in); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCoupon(ctx, c); err != nil {
		return nil, conflict(err, "code")
	}
	return c, nil
}

// Delete 已套用在訂單上的 code 不受影響
func (s *CouponService) Delete(ctx context.Context, code string) error {
	c, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		return notFound(err, "coupon %s", code)
	}
	return notFound(s.store.DeleteCoupon(ctx, c.ID), "coupon %s", code)
}

func applyCouponInput(c *model.Coupon, in CouponInput) error {
	v := &ValidationError{Fields: map[string]string{}}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		v.Fields["code"] = "required"
	}
	if in.PercentOff != nil && (*in.PercentOff < 0 || *in.PercentOff > 100) {
		v.Fields["percent_off"] = "must be between 0 and 100"
	}
	if in.AmountOff != nil && in.AmountOff.IsNegative() {
		v.Fields["amount_off"] = "must not be negative"
	}
	if in.ValidFrom != nil && in.ValidTo != nil && in.ValidTo.Before(*in.ValidFrom) {
		v.Fields["valid_to"] = "must not be before valid_from"
	}
	if in.MaxUses != nil && *in.MaxUses < 0 {
		v.Fields["max_uses"] = "must not be negative"
	}
	if len(v.Fields) > 0 {
		return v
	}

	c.Code = code
	c.PercentOff = in.PercentOff
	c.AmountOff = decimal.NullDecimal{}
	if in.AmountOff != nil {
		c.AmountOff = decimal.NewNullDecimal(*in.AmountOff)
	}
	c.Active = in.Active
	c.ValidFrom = in.ValidFrom
	c.ValidTo = in.ValidTo
	c.MaxUses = in.MaxUses
	return nil
}

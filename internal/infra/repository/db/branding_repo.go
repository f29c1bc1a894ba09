package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type BrandingRepo struct {
	db *DbDao
}

func NewBrandingRepo(db *DbDao) *BrandingRepo {
	return &BrandingRepo{db: db}
}

// GetBranding 不存在時以預設值建立
func (s *BrandingRepo) GetBranding(ctx context.Context) (*model.SiteBranding, error) {
	branding := model.DefaultBranding(constants.BrandingSingleton)
	err := s.db.WithContext(ctx).
		Where(model.SiteBranding{ID: constants.BrandingSingleton}).
		FirstOrCreate(&branding).Error
	if err != nil {
		return nil, err
	}
	return &branding, nil
}

// SaveBranding 固定寫入 id 1
func (s *BrandingRepo) SaveBranding(ctx context.Context, branding *model.SiteBranding) error {
	branding.ID = constants.BrandingSingleton
	return s.db.WithContext(ctx).Save(branding).Error
}

package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	return s.db.WithContext(ctx).Create(category).Error
}

func (s *ProductRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (s *ProductRepo) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// UpdateProduct 只更新商品本身, variants 另外維護
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Omit("Variants", "Category").Save(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).Preload("Variants").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveProduct 下架商品視同不存在
func (s *ProductRepo) GetActiveProduct(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetActiveProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("slug = ? AND active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductSlugExists 包含下架商品
func (s *ProductRepo) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ListActiveProducts categorySlug 為空時列出全部
func (s *ProductRepo) ListActiveProducts(ctx context.Context, categorySlug string) ([]model.Product, error) {
	var products []model.Product
	q := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("products.active = ?", true)
	if categorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	err := q.Order("products.name ASC").Find(&products).Error
	return products, err
}

func (s *ProductRepo) CreateVariant(ctx context.Context, variant *model.ProductVariant) error {
	return s.db.WithContext(ctx).Create(variant).Error
}

func (s *ProductRepo) UpdateVariant(ctx context.Context, variant *model.ProductVariant) error {
	return s.db.WithContext(ctx).Omit("Product").Save(variant).Error
}

// GetActiveVariant 母商品下架時 variant 也不可購買
func (s *ProductRepo) GetActiveVariant(ctx context.Context, id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	activeProducts := s.db.WithContext(ctx).Model(&model.Product{}).Select("id").Where("active = ?", true)
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("product_id IN (?)", activeProducts).
		First(&variant, id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// DeductProductStock 讀取後寫回, 最低為 0
// 不加鎖, 同時結帳時後寫者覆蓋前者
func (s *ProductRepo) DeductProductStock(ctx context.Context, id uint, qty int) (int, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return 0, err
	}
	stock := max(product.Stock-qty, 0)
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", stock).Error
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (s *ProductRepo) DeductVariantStock(ctx context.Context, id uint, qty int) (int, error) {
	var variant model.ProductVariant
	if err := s.db.WithContext(ctx).First(&variant, id).Error; err != nil {
		return 0, err
	}
	stock := max(variant.Stock-qty, 0)
	err := s.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ?", id).
		Update("stock", stock).Error
	if err != nil {
		return 0, err
	}
	return stock, nil
}

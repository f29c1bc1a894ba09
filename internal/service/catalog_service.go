package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ICatalogService interface {
	cart.Catalog
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListProducts(ctx context.Context, categorySlug string) ([]model.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	CreateCategory(ctx context.Context, name, slug string) (*model.Category, error)
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductUpdate) (*model.Product, error)
	CreateVariant(ctx context.Context, productID uint, in VariantInput) (*model.ProductVariant, error)
}

type ProductInput struct {
	CategoryID uint
	Name       string
	Slug       string
	Price      decimal.Decimal
	OldPrice   *decimal.Decimal
	Stock      int
	Image      string
	Active     bool
}

// ProductUpdate nil 代表不修改
type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	OldPrice *decimal.Decimal
	Stock    *int
	Active   *bool
}

type VariantInput struct {
	SKU   string
	Size  string
	Color string
	Price decimal.Decimal
	Stock int
}

type CatalogService struct {
	store db.UnifiedDB
}

var _ ICatalogService = (*CatalogService)(nil)

func NewCatalogService(store db.UnifiedDB) *CatalogService {
	return &CatalogService{store: store}
}

// ActiveProduct 下架或不存在都回傳 cart.ErrItemNotFound
func (s *CatalogService) ActiveProduct(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.store.GetActiveProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrItemNotFound
	}
	return p, err
}

func (s *CatalogService) ActiveVariant(ctx context.Context, id uint) (*model.ProductVariant, error) {
	v, err := s.store.GetActiveVariant(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrItemNotFound
	}
	return v, err
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListProducts 未知分類回傳 ErrNotFound
func (s *CatalogService) ListProducts(ctx context.Context, categorySlug string) ([]model.Product, error) {
	if categorySlug != "" {
		if _, err := s.store.GetCategoryBySlug(ctx, categorySlug); err != nil {
			return nil, notFound(err, "category %s", categorySlug)
		}
	}
	return s.store.ListActiveProducts(ctx, categorySlug)
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := s.store.GetActiveProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "product %s", slug)
	}
	return p, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*model.Category, error) {
	c := &model.Category{Name: name, Slug: slug}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, conflict(err, "slug")
	}
	return c, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := validateMoney(in.Price, in.Stock); err != nil {
		return nil, err
	}
	p := &model.Product{
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Slug:       in.Slug,
		Price:      in.Price,
		Stock:      in.Stock,
		Image:      in.Image,
		Active:     in.Active,
	}
	if in.OldPrice != nil {
		p.OldPrice = decimal.NewNullDecimal(*in.OldPrice)
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, NewValidationError("category_id", "unknown category")
		}
		return nil, conflict(err, "slug")
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductUpdate) (*model.Product, error) {
	p, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product %d", id)
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OldPrice != nil {
		if in.OldPrice.IsZero() {
			p.OldPrice = decimal.NullDecimal{}
		} else {
			p.OldPrice = decimal.NewNullDecimal(*in.OldPrice)
		}
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := validateMoney(p.Price, p.Stock); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) CreateVariant(ctx context.Context, productID uint, in VariantInput) (*model.ProductVariant, error) {
	if err := validateMoney(in.Price, in.Stock); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return nil, notFound(err, "product %d", productID)
	}
	v := &model.ProductVariant{
		ProductID: productID,
		SKU:       in.SKU,
		Size:      in.Size,
		Color:     in.Color,
		Price:     in.Price,
		Stock:     in.Stock,
	}
	if err := s.store.CreateVariant(ctx, v); err != nil {
		return nil, conflict(err, "sku")
	}
	return v, nil
}

func validateMoney(price decimal.Decimal, stock int) error {
	if price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	return nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}

func conflict(err error, field string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError(field, "already exists")
	}
	return err
}

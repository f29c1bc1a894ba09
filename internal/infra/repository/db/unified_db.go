package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	InitMigrate() error
	// ExecTx fn 內只能使用傳入的 UnifiedDB, 失敗時整筆 rollback
	ExecTx(ctx context.Context, fn func(UnifiedDB) error) error

	IProductRepository
	IOrderRepository
	ICouponRepository
	IBrandingRepository
}

// IProductRepository Category, Product 與 Variant 相關操作
type IProductRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	GetActiveProduct(ctx context.Context, id uint) (*model.Product, error)
	GetActiveProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	ListActiveProducts(ctx context.Context, categorySlug string) ([]model.Product, error)
	CreateVariant(ctx context.Context, variant *model.ProductVariant) error
	UpdateVariant(ctx context.Context, variant *model.ProductVariant) error
	GetActiveVariant(ctx context.Context, id uint) (*model.ProductVariant, error)
	DeductProductStock(ctx context.Context, id uint, qty int) (int, error)
	DeductVariantStock(ctx context.Context, id uint, qty int) (int, error)
}

// IOrderRepository Order 相關操作
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uint) (*model.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus) error
	MarkOrderPaid(ctx context.Context, id uint) (bool, error)
}

// ICouponRepository Coupon 相關操作
type ICouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *model.Coupon) error
	DeleteCoupon(ctx context.Context, id uint) error
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	IncrementCouponUsed(ctx context.Context, id uint) error
}

type IBrandingRepository interface {
	GetBranding(ctx context.Context) (*model.SiteBranding, error)
	SaveBranding(ctx context.Context, branding *model.SiteBranding) error
}

var _ UnifiedDB = (*UnifiedDBImpl)(nil)

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*OrderRepo
	*CouponRepo
	*BrandingRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:           db,
		dbDao:        dbDao,
		ProductRepo:  NewProductRepo(dbDao),
		OrderRepo:    NewOrderRepo(dbDao),
		CouponRepo:   NewCouponRepo(dbDao),
		BrandingRepo: NewBrandingRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// ExecTx 開始事務
func (u *UnifiedDBImpl) ExecTx(ctx context.Context, fn func(UnifiedDB) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnifiedDB(tx))
	})
}

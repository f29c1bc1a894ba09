package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Catalog struct {
	Categories []Category `yaml:"categories"`
	Coupons    []Coupon   `yaml:"coupons"`
}

type Category struct {
	Name     string    `yaml:"name"`
	Slug     string    `yaml:"slug"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Name     string    `yaml:"name"`
	Slug     string    `yaml:"slug"`
	Price    string    `yaml:"price"`
	OldPrice string    `yaml:"old_price"`
	Stock    int       `yaml:"stock"`
	Image    string    `yaml:"image"`
	Active   *bool     `yaml:"active"`
	Variants []Variant `yaml:"variants"`
}

type Variant struct {
	SKU   string `yaml:"sku"`
	Size  string `yaml:"size"`
	Color string `yaml:"color"`
	Price string `yaml:"price"`
	Stock int    `yaml:"stock"`
}

type Coupon struct {
	Code       string `yaml:"code"`
	PercentOff *int   `yaml:"percent_off"`
	AmountOff  string `yaml:"amount_off"`
	MaxUses    *int   `yaml:"max_uses"`
}

func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &c, nil
}

// Apply 冪等, 以 slug / sku / code 判斷是否已存在
func Apply(ctx context.Context, store db.UnifiedDB, c *Catalog, logger *zerolog.Logger) error {
	return store.ExecTx(ctx, func(tx db.UnifiedDB) error {
		for _, cat := range c.Categories {
			category, err := tx.GetCategoryBySlug(ctx, cat.Slug)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				category = &model.Category{Name: cat.Name, Slug: cat.Slug}
				err = tx.CreateCategory(ctx, category)
			}
			if err != nil {
				return fmt.Errorf("seed category %s: %w", cat.Slug, err)
			}
			for _, p := range cat.Products {
				created, err := seedProduct(ctx, tx, category.ID, p)
				if err != nil {
					return fmt.Errorf("seed product %s: %w", p.Slug, err)
				}
				if created {
					logger.Info().Str("slug", p.Slug).Msg("seeded product")
				}
			}
		}
		for _, cp := range c.Coupons {
			if err := seedCoupon(ctx, tx, cp); err != nil {
				return fmt.Errorf("seed coupon %s: %w", cp.Code, err)
			}
		}
		return nil
	})
}

func seedProduct(ctx context.Context, tx db.UnifiedDB, categoryID uint, p Product) (bool, error) {
	exists, err := tx.ProductSlugExists(ctx, p.Slug)
	if err != nil || exists {
		return false, err
	}

	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return false, err
	}
	product := &model.Product{
		CategoryID: categoryID,
		Name:       p.Name,
		Slug:       p.Slug,
		Price:      price,
		Stock:      p.Stock,
		Image:      p.Image,
		Active:     p.Active == nil || *p.Active,
	}
	if p.OldPrice != "" {
		old, err := decimal.NewFromString(p.OldPrice)
		if err != nil {
			return false, err
		}
		product.OldPrice = decimal.NewNullDecimal(old)
	}
	for _, v := range p.Variants {
		vp, err := decimal.NewFromString(v.Price)
		if err != nil {
			return false, err
		}
		product.Variants = append(product.Variants, model.ProductVariant{
			SKU: v.SKU, Size: v.Size, Color: v.Color, Price: vp, Stock: v.Stock,
		})
	}
	if err := tx.CreateProduct(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}

func seedCoupon(ctx context.Context, tx db.UnifiedDB, cp Coupon) error {
	if _, err := tx.GetCouponByCode(ctx, cp.Code); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	coupon := &model.Coupon{Code: cp.Code, PercentOff: cp.PercentOff, MaxUses: cp.MaxUses, Active: true}
	if cp.AmountOff != "" {
		amount, err := decimal.NewFromString(cp.AmountOff)
		if err != nil {
			return err
		}
		coupon.AmountOff = decimal.NewNullDecimal(amount)
	}
	return tx.CreateCoupon(ctx, coupon)
}

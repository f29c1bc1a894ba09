package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidLineID   = errors.New("invalid cart line id")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type Kind string

const (
	KindProduct Kind = "product"
	KindVariant Kind = "variant"
)

// Catalog 購物車只讀的商品來源, 找不到時回傳 ErrItemNotFound
type Catalog interface {
	ActiveProduct(ctx context.Context, id uint) (*model.Product, error)
	ActiveVariant(ctx context.Context, id uint) (*model.ProductVariant, error)
}

// Resolved 目前的名稱、價格、庫存
type Resolved struct {
	Name      string
	Price     decimal.Decimal
	Stock     int
	ProductID *uint
	VariantID *uint
}

// ItemRef 只有 ProductRef 與 VariantRef 兩種
type ItemRef interface {
	LineID() string
	Kind() Kind
	ItemID() uint
	resolve(ctx context.Context, catalog Catalog) (Resolved, error)
}

type ProductRef struct {
	ID uint
}

func (r ProductRef) LineID() string { return "p" + strconv.FormatUint(uint64(r.ID), 10) }
func (r ProductRef) Kind() Kind     { return KindProduct }
func (r ProductRef) ItemID() uint   { return r.ID }

func (r ProductRef) resolve(ctx context.Context, catalog Catalog) (Resolved, error) {
	p, err := catalog.ActiveProduct(ctx, r.ID)
	if err != nil {
		return Resolved{}, err
	}
	id := p.ID
	return Resolved{Name: p.Name, Price: p.Price, Stock: p.Stock, ProductID: &id}, nil
}

type VariantRef struct {
	ID uint
}

func (r VariantRef) LineID() string { return "v" + strconv.FormatUint(uint64(r.ID), 10) }
func (r VariantRef) Kind() Kind     { return KindVariant }
func (r VariantRef) ItemID() uint   { return r.ID }

func (r VariantRef) resolve(ctx context.Context, catalog Catalog) (Resolved, error) {
	v, err := catalog.ActiveVariant(ctx, r.ID)
	if err != nil {
		return Resolved{}, err
	}
	id := v.ID
	res := Resolved{Name: v.DisplayName(), Price: v.Price, Stock: v.Stock, VariantID: &id}
	if v.ProductID != 0 {
		pid := v.ProductID
		res.ProductID = &pid
	}
	return res, nil
}

func NewRef(kind Kind, id uint) (ItemRef, error) {
	switch kind {
	case KindProduct:
		return ProductRef{ID: id}, nil
	case KindVariant:
		return VariantRef{ID: id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidLineID, kind)
	}
}

// ParseLineID "p12" / "v3"
func ParseLineID(lineID string) (ItemRef, error) {
	if len(lineID) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLineID, lineID)
	}
	id, err := strconv.ParseUint(lineID[1:], 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLineID, lineID)
	}
	switch lineID[0] {
	case 'p':
		return ProductRef{ID: uint(id)}, nil
	case 'v':
		return VariantRef{ID: uint(id)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLineID, lineID)
	}
}

package seed

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
categories:
  - name: Shirts
    slug: shirts
    products:
      - name: Tee
        slug: tee
        price: "19.90"
        old_price: "24.90"
        stock: 10
        variants:
          - sku: TEE-M-RED
            size: M
            color: Red
            price: "21.00"
            stock: 3
      - name: Old Tee
        slug: old-tee
        price: "5.00"
        stock: 1
        active: false
coupons:
  - code: SPRING10
    percent_off: 10
  - code: FIVE
    amount_off: "5.00"
    max_uses: 100
`

func TestApplyIsIdempotent(t *testing.T) {
	store, err := db.NewMemoryDB(t.Name())
	require.NoError(t, err)
	ctx := context.Background()

	c, err := Parse([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, c.Categories, 1)

	require.NoError(t, Apply(ctx, store, c, logger.Nop()))
	require.NoError(t, Apply(ctx, store, c, logger.Nop()))

	products, err := store.ListActiveProducts(ctx, "shirts")
	require.NoError(t, err)
	require.Len(t, products, 1)
	tee := products[0]
	require.True(t, tee.Price.Equal(decimal.RequireFromString("19.90")))
	pct, ok := tee.DiscountPercent()
	require.True(t, ok)
	require.EqualValues(t, 20, pct)
	require.Len(t, tee.Variants, 1)
	require.Equal(t, "TEE-M-RED", tee.Variants[0].SKU)

	exists, err := store.ProductSlugExists(ctx, "old-tee")
	require.NoError(t, err)
	require.True(t, exists)

	coupons, err := store.ListCoupons(ctx)
	require.NoError(t, err)
	require.Len(t, coupons, 2)
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("categories: ["))
	require.Error(t, err)
}

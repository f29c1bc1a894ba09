package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, store db.UnifiedDB) (*model.Category, *model.Product) {
	t.Helper()
	ctx := context.Background()
	c := &model.Category{Name: "Shirts", Slug: "shirts"}
	require.NoError(t, store.CreateCategory(ctx, c))
	p := &model.Product{CategoryID: c.ID, Name: "Tee", Slug: "tee", Price: decimal.RequireFromString("0.10"), Stock: 3, Active: true}
	require.NoError(t, store.CreateProduct(ctx, p))
	return c, p
}

func TestCartServiceClampNotice(t *testing.T) {
	store := newTestStore(t)
	_, p := seedCatalog(t, store)
	sessions := session.NewMemoryStore(time.Hour)
	svc := NewCartService(NewCatalogService(store), sessions, nil, logger.Nop())
	ctx := context.Background()
	sess := session.New()

	res, err := svc.Add(ctx, sess, cart.ProductRef{ID: p.ID}, 5)
	require.NoError(t, err)
	require.Equal(t, 3, res.Added)
	require.NotEmpty(t, res.Notice)
	require.False(t, sess.IsNew())

	res, err = svc.Add(ctx, sess, cart.ProductRef{ID: p.ID}, 1)
	require.NoError(t, err)
	require.Zero(t, res.Added)
	require.Equal(t, "No more units available for this item.", res.Notice)

	up, err := svc.Update(ctx, sess, cart.ProductRef{ID: p.ID}, 2)
	require.NoError(t, err)
	require.Equal(t, 2, up.Qty)
	require.Empty(t, up.Notice)

	view, err := svc.View(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 2, view.Count)
	require.True(t, view.Total.Equal(decimal.RequireFromString("0.20")))

	_, err = svc.Add(ctx, sess, cart.ProductRef{ID: 404}, 1)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Add(ctx, sess, cart.ProductRef{ID: p.ID}, 0)
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Remove(ctx, sess, cart.ProductRef{ID: p.ID}))
	require.NoError(t, svc.Remove(ctx, sess, cart.ProductRef{ID: p.ID}))
	view, err = svc.View(ctx, sess)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCartServiceCorruptSession(t *testing.T) {
	store := newTestStore(t)
	svc := NewCartService(NewCatalogService(store), session.NewMemoryStore(time.Hour), nil, logger.Nop())
	sess := session.New()
	require.NoError(t, sess.Set("cart", "not a cart"))

	view, err := svc.View(context.Background(), sess)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCatalogService(t *testing.T) {
	store := newTestStore(t)
	c, p := seedCatalog(t, store)
	svc := NewCatalogService(store)
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	products, err := svc.ListProducts(ctx, "shirts")
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, err = svc.CreateProduct(ctx, ProductInput{CategoryID: c.ID, Name: "Dup", Slug: "tee", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, ProductInput{CategoryID: c.ID, Name: "Neg", Slug: "neg", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrValidation)

	inactive := false
	stock := 7
	updated, err := svc.UpdateProduct(ctx, p.ID, ProductUpdate{Active: &inactive, Stock: &stock})
	require.NoError(t, err)
	require.Equal(t, 7, updated.Stock)

	_, err = svc.ActiveProduct(ctx, p.ID)
	require.ErrorIs(t, err, cart.ErrItemNotFound)
	_, err = svc.ProductBySlug(ctx, "tee")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateVariant(ctx, 999, VariantInput{SKU: "X", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ActiveVariant(ctx, 999)
	require.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestCouponService(t *testing.T) {
	store := newTestStore(t)
	svc := NewCouponService(store)
	ctx := context.Background()
	now := time.Now()

	pct := 150
	_, err := svc.Create(ctx, CouponInput{Code: "BAD", PercentOff: &pct})
	require.ErrorIs(t, err, ErrValidation)

	pct = 10
	created, err := svc.Create(ctx, CouponInput{Code: " spring10 ", PercentOff: &pct, Active: true})
	require.NoError(t, err)
	require.Equal(t, "SPRING10", created.Code)

	got, err := svc.Resolve(ctx, "Spring10", now)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = svc.Resolve(ctx, "unknown", now)
	require.NoError(t, err)
	require.Nil(t, got)

	updated, err := svc.Update(ctx, "spring10", CouponInput{PercentOff: &pct, Active: false})
	require.NoError(t, err)
	require.Equal(t, "SPRING10", updated.Code)

	got, err = svc.Resolve(ctx, "SPRING10", now)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = svc.Update(ctx, "nope", CouponInput{Code: "X"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "spring10"))
	coupons, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, coupons)
	require.ErrorIs(t, svc.Delete(ctx, "spring10"), ErrNotFound)

	// 刪除後同一個 code 可以重新建立
	_, err = svc.Create(ctx, CouponInput{Code: "SPRING10", PercentOff: &pct, Active: true})
	require.NoError(t, err)
}

func TestOrderServiceSetStatus(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)
	ctx := context.Background()
	order := &model.Order{Email: "a@b.c", FullName: "A", Address: "X", Total: decimal.NewFromInt(1), Status: model.OrderStatusNew, PaymentMethod: "cod"}
	require.NoError(t, store.CreateOrder(ctx, order))

	_, err := svc.SetStatus(ctx, order.ID, "shipped")
	require.ErrorIs(t, err, ErrValidation)

	got, err := svc.SetStatus(ctx, order.ID, model.OrderStatusPaid)
	require.NoError(t, err)
	require.True(t, got.Paid)

	got, err = svc.SetStatus(ctx, order.ID, model.OrderStatusFulfilled)
	require.NoError(t, err)
	require.True(t, got.Paid)
	require.Equal(t, model.OrderStatusFulfilled, got.Status)

	_, err = svc.SetStatus(ctx, 999, model.OrderStatusCanceled)
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.List(ctx, db.OrderFilter{Status: "bogus"})
	require.ErrorIs(t, err, ErrValidation)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestBrandingService(t *testing.T) {
	store := newTestStore(t)
	st := storage.NewLocalStorage(t.TempDir(), "/media/")
	svc := NewBrandingService(store, st, logger.Nop())
	ctx := context.Background()

	b, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Site Logo", b.LogoAltText)

	_, err = svc.UploadLogo(ctx, "logo.png", pngOf(t, 600, 10))
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.UploadLogo(ctx, "logo.exe", []byte("x"))
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.UploadLogo(ctx, "logo.svg", make([]byte, 600*1024))
	require.ErrorIs(t, err, ErrValidation)

	b, err = svc.UploadLogo(ctx, "logo.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	require.NoError(t, err)
	require.Equal(t, "branding/logo.svg", b.Logo)

	b, err = svc.UploadFavicon(ctx, "icon.png", pngOf(t, 64, 64))
	require.NoError(t, err)
	require.Equal(t, "branding/favicon.ico", b.FaviconICO)
	require.Equal(t, "branding/apple-touch-icon.png", b.AppleTouchIcon)

	tags, err := svc.FaviconTags(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{
		`<link rel="icon" type="image/x-icon" href="/media/branding/favicon.ico">`,
		`<link rel="icon" type="image/png" sizes="32x32" href="/media/branding/favicon-32x32.png">`,
		`<link rel="icon" type="image/png" sizes="16x16" href="/media/branding/favicon-16x16.png">`,
		`<link rel="apple-touch-icon" href="/media/branding/apple-touch-icon.png">`,
	}, tags)

	b, err = svc.UploadFavicon(ctx, "icon.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	require.NoError(t, err)
	require.Empty(t, b.FaviconICO)
	tags, err = svc.FaviconTags(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{`<link rel="icon" type="image/svg+xml" href="/media/branding/favicon-source.svg">`}, tags)

	// 無法解碼時上傳仍成功, 只是沒有衍生檔
	b, err = svc.UploadFavicon(ctx, "icon.png", []byte("not really a png"))
	require.NoError(t, err)
	require.Equal(t, "branding/favicon-source.png", b.Favicon)
	require.Empty(t, b.Favicon32)

	width := 0
	_, err = svc.UpdateSettings(ctx, BrandingSettings{LogoMaxWidth: &width})
	require.ErrorIs(t, err, ErrValidation)
}

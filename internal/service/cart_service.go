package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ICartService interface {
	Load(ctx context.Context, sess *session.Session) *cart.Cart
	Save(ctx context.Context, sess *session.Session, c *cart.Cart) error
	View(ctx context.Context, sess *session.Session) (*CartView, error)
	Add(ctx context.Context, sess *session.Session, ref cart.ItemRef, qty int) (*AddResult, error)
	Update(ctx context.Context, sess *session.Session, ref cart.ItemRef, qty int) (*UpdateResult, error)
	Remove(ctx context.Context, sess *session.Session, ref cart.ItemRef) error
	Clear(ctx context.Context, sess *session.Session) error
}

type CartView struct {
	Items []cart.Item
	Total decimal.Decimal
	Count int
}

// AddResult Notice 不為空代表數量被庫存裁切
type AddResult struct {
	Added  int
	Qty    int
	Notice string
}

type UpdateResult struct {
	Qty    int
	Notice string
}

type CartService struct {
	catalog  cart.Catalog
	sessions session.Store
	metrics  *metrics.ServerMetrics
	logger   *zerolog.Logger
}

var _ ICartService = (*CartService)(nil)

func NewCartService(catalog cart.Catalog, sessions session.Store, m *metrics.ServerMetrics, logger *zerolog.Logger) *CartService {
	return &CartService{catalog: catalog, sessions: sessions, metrics: m, logger: logger}
}

// Load 損壞的購物車資料視為空購物車
func (s *CartService) Load(ctx context.Context, sess *session.Session) *cart.Cart {
	c, err := cart.Load(sess.Raw(constants.SessionCartKey), s.catalog)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("discarding unreadable cart")
	}
	return c
}

// Save 只有購物車有變動才寫回 session store
func (s *CartService) Save(ctx context.Context, sess *session.Session, c *cart.Cart) error {
	if !c.Modified() {
		return nil
	}
	if err := sess.Set(constants.SessionCartKey, c); err != nil {
		return err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *CartService) View(ctx context.Context, sess *session.Session) (*CartView, error) {
	c := s.Load(ctx, sess)
	view := &CartView{Items: []cart.Item{}, Total: decimal.Zero}
	for item, err := range c.Items(ctx) {
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.Subtotal)
		view.Count += item.Qty
	}
	return view, nil
}

func (s *CartService) Add(ctx context.Context, sess *session.Session, ref cart.ItemRef, qty int) (*AddResult, error) {
	c := s.Load(ctx, sess)
	added, err := c.Add(ctx, ref, qty)
	if err != nil {
		return nil, mapCartErr(err)
	}
	res := &AddResult{Added: added, Qty: c.Qty(ref)}
	if added < qty {
		s.metrics.Clamped()
		if added == 0 {
			res.Notice = "No more units available for this item."
		} else {
			res.Notice = fmt.Sprintf("Only %d more unit(s) could be added due to limited stock.", added)
		}
	}
	return res, s.Save(ctx, sess, c)
}

func (s *CartService) Update(ctx context.Context, sess *session.Session, ref cart.ItemRef, qty int) (*UpdateResult, error) {
	c := s.Load(ctx, sess)
	stored, err := c.SetQty(ctx, ref, qty)
	if err != nil {
		return nil, mapCartErr(err)
	}
	res := &UpdateResult{Qty: stored}
	if stored < qty {
		s.metrics.Clamped()
		res.Notice = fmt.Sprintf("Quantity reduced to %d due to limited stock.", stored)
	}
	return res, s.Save(ctx, sess, c)
}

func (s *CartService) Remove(ctx context.Context, sess *session.Session, ref cart.ItemRef) error {
	c := s.Load(ctx, sess)
	c.Remove(ref)
	return s.Save(ctx, sess, c)
}

func (s *CartService) Clear(ctx context.Context, sess *session.Session) error {
	c := s.Load(ctx, sess)
	c.Clear()
	return s.Save(ctx, sess, c)
}

func mapCartErr(err error) error {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidLineID):
		return NewValidationError("qty", err.Error())
	default:
		return err
	}
}

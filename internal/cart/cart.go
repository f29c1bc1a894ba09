package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"
)

// Line session 內儲存的結構: {"type": "product"|"variant", "item_id": 1, "qty": 2}
type Line struct {
	Type   Kind `json:"type"`
	ItemID uint `json:"item_id"`
	Qty    int  `json:"qty"`
}

func (l Line) Ref() (ItemRef, error) {
	return NewRef(l.Type, l.ItemID)
}

// Item 加上目前商品資訊的購物車行
type Item struct {
	LineID    string
	Kind      Kind
	ItemID    uint
	Name      string
	Price     decimal.Decimal
	Qty       int
	Stock     int
	Subtotal  decimal.Decimal
	ProductID *uint
	VariantID *uint
}

/*
Cart 單一 session 的購物車
數量永遠不超過目前庫存 (以裁切處理, 不回傳錯誤)
同一 session 並發請求時是 last write wins, 庫存裁切只是建議值
*/
type Cart struct {
	lines    map[string]*Line
	order    []string
	catalog  Catalog
	modified bool
}

func New(catalog Catalog) *Cart {
	return &Cart{
		lines:   make(map[string]*Line),
		catalog: catalog,
	}
}

// Load 從 session 的 raw json 還原, 空值視為空購物車
func Load(raw []byte, catalog Catalog) (*Cart, error) {
	c := New(catalog)
	if len(bytes.TrimSpace(raw)) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return New(catalog), err
	}
	return c, nil
}

func (c *Cart) Modified() bool {
	return c.modified
}

func (c *Cart) Len() int {
	return len(c.order)
}

// Count 所有行數量總和
func (c *Cart) Count() int {
	n := 0
	for _, id := range c.order {
		n += c.lines[id].Qty
	}
	return n
}

func (c *Cart) Qty(ref ItemRef) int {
	if l, ok := c.lines[ref.LineID()]; ok {
		return l.Qty
	}
	return 0
}

/*
Add 加入數量, 結果為 min(原數量 + qty, 庫存)
回傳實際變動量, 庫存已滿時為 0
錯誤:
  - ErrInvalidQuantity: qty < 1
  - ErrItemNotFound: 商品或規格不存在/未上架
*/
func (c *Cart) Add(ctx context.Context, ref ItemRef, qty int) (int, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	res, err := ref.resolve(ctx, c.catalog)
	if err != nil {
		return 0, err
	}

	// 不做 prev+qty, 避免極大的 qty 溢位
	prev := c.Qty(ref)
	stock := max(res.Stock, 0)
	allowed := stock
	if qty < stock-prev {
		allowed = prev + qty
	}
	c.store(ref, allowed)
	return allowed - prev, nil
}

/*
SetQty 數量裁切在 [0, 庫存], 0 代表刪除
回傳實際儲存的數量
*/
func (c *Cart) SetQty(ctx context.Context, ref ItemRef, qty int) (int, error) {
	if qty <= 0 {
		c.Remove(ref)
		return 0, nil
	}
	res, err := ref.resolve(ctx, c.catalog)
	if err != nil {
		return 0, err
	}

	stored := min(qty, max(res.Stock, 0))
	c.store(ref, stored)
	return stored, nil
}

// Remove 不存在時不做事
func (c *Cart) Remove(ref ItemRef) {
	id := ref.LineID()
	if _, ok := c.lines[id]; !ok {
		return
	}
	delete(c.lines, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.modified = true
}

func (c *Cart) Clear() {
	c.lines = make(map[string]*Line)
	c.order = nil
	c.modified = true
}

func (c *Cart) store(ref ItemRef, qty int) {
	if qty <= 0 {
		c.Remove(ref)
		return
	}
	id := ref.LineID()
	if l, ok := c.lines[id]; ok {
		if l.Qty != qty {
			l.Qty = qty
			c.modified = true
		}
		return
	}
	c.lines[id] = &Line{Type: ref.Kind(), ItemID: ref.ItemID(), Qty: qty}
	c.order = append(c.order, id)
	c.modified = true
}

/*
Items 依加入順序逐行查詢目前的商品資訊
找不到的商品 (已刪除或下架) 直接略過
其他錯誤會 yield 出來
*/
func (c *Cart) Items(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, id := range c.order {
			l := c.lines[id]
			ref, err := l.Ref()
			if err != nil {
				continue
			}
			res, err := ref.resolve(ctx, c.catalog)
			if errors.Is(err, ErrItemNotFound) {
				continue
			}
			if err != nil {
				if !yield(Item{}, fmt.Errorf("resolve cart line %s: %w", id, err)) {
					return
				}
				continue
			}
			item := Item{
				LineID:    id,
				Kind:      l.Type,
				ItemID:    l.ItemID,
				Name:      res.Name,
				Price:     res.Price,
				Qty:       l.Qty,
				Stock:     res.Stock,
				Subtotal:  res.Price.Mul(decimal.NewFromInt(int64(l.Qty))),
				ProductID: res.ProductID,
				VariantID: res.VariantID,
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Total 所有可解析行的小計總和
func (c *Cart) Total(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for item, err := range c.Items(ctx) {
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(item.Subtotal)
	}
	return total, nil
}

// MarshalJSON 依加入順序輸出 object
func (c *Cart) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.lines[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 保留 object key 的順序
func (c *Cart) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("cart: expected object, got %v", tok)
	}

	lines := make(map[string]*Line)
	order := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("cart: expected key, got %v", tok)
		}
		var l Line
		if err := dec.Decode(&l); err != nil {
			return fmt.Errorf("cart: line %s: %w", id, err)
		}
		ref, err := l.Ref()
		if err != nil || ref.LineID() != id || l.Qty <= 0 {
			continue
		}
		if _, dup := lines[id]; !dup {
			order = append(order, id)
		}
		lines[id] = &l
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	c.lines = lines
	c.order = order
	return nil
}

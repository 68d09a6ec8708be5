package pricing

import (
	"math"

	"marketplace/internal/domain"
)

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 10000

// Line is one (productId, quantity) pair held by the shopper.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// Cart maps product ids to quantities >= 1, keeping insertion order.
type Cart struct {
	order []string
	qty   map[string]int64
}

func NewCart(lines ...Line) *Cart {
	c := &Cart{qty: map[string]int64{}}
	for _, l := range lines {
		c.Add(l.ProductID, l.Quantity)
	}
	return c
}

// Add increments the line for productID. Non-positive quantities are ignored.
func (c *Cart) Add(productID string, q int64) {
	if q <= 0 || productID == "" {
		return
	}
	cur, ok := c.qty[productID]
	if !ok {
		c.order = append(c.order, productID)
	}
	if cur > math.MaxInt64-q {
		c.qty[productID] = math.MaxInt64
		return
	}
	c.qty[productID] = cur + q
}

// Set replaces the quantity; q <= 0 removes the line.
func (c *Cart) Set(productID string, q int64) {
	if q <= 0 {
		c.Remove(productID)
		return
	}
	if _, ok := c.qty[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.qty[productID] = q
}

func (c *Cart) Remove(productID string) {
	if _, ok := c.qty[productID]; !ok {
		return
	}
	delete(c.qty, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Quantity(productID string) int64 { return c.qty[productID] }

func (c *Cart) Len() int { return len(c.order) }

func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Line{ProductID: id, Quantity: c.qty[id]})
	}
	return out
}

type QuoteLine struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

// Quote is a priced cart. Missing lists ids that no longer resolve; they
// contribute nothing to Total.
type Quote struct {
	Lines   []QuoteLine `json:"lines"`
	Total   int64       `json:"total"`
	Missing []string    `json:"missing,omitempty"`
}

// Price joins the cart lines against catalog, keyed by product id. A line
// above MaxLineQuantity or a total that would not fit in int64 is Invalid.
func Price(lines []Line, catalog map[string]domain.Product) (Quote, error) {
	q := Quote{Lines: []QuoteLine{}}
	for _, l := range NewCart(lines...).Lines() {
		if l.Quantity > MaxLineQuantity {
			return Quote{}, domain.Invalidf("quantity for %s exceeds %d", l.ProductID, MaxLineQuantity)
		}
		p, ok := catalog[l.ProductID]
		if !ok {
			q.Missing = append(q.Missing, l.ProductID)
			continue
		}
		if p.Price > 0 && l.Quantity > math.MaxInt64/p.Price {
			return Quote{}, domain.Invalidf("cart total is too large")
		}
		lt := p.Price * l.Quantity
		if q.Total > math.MaxInt64-lt {
			return Quote{}, domain.Invalidf("cart total is too large")
		}
		q.Lines = append(q.Lines, QuoteLine{
			ProductID: p.ID, Title: p.Title, Quantity: l.Quantity, UnitPrice: p.Price, LineTotal: lt,
		})
		q.Total += lt
	}
	return q, nil
}

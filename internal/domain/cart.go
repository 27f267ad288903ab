package domain

import "time"

// Cart mirrors the gateway's authoritative cart. It is replaced wholesale on
// every successful mutation response, never merged field by field.
type Cart struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"createdAt"`
	TotalQuantity int        `json:"totalQuantity"`
	CustomerID    string     `json:"customerId,omitempty"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
}

type CartCost struct {
	Subtotal Money  `json:"subtotalAmount"`
	Total    Money  `json:"totalAmount"`
	Tax      *Money `json:"totalTaxAmount,omitempty"`
}

type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
	Cost        LineCost    `json:"cost"`
}

type LineCost struct {
	Subtotal Money `json:"subtotalAmount"`
	Total    Money `json:"totalAmount"`
}

// Merchandise is the product variant a cart line points at.
type Merchandise struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	QuantityAvailable *int   `json:"quantityAvailable,omitempty"`
	ProductTitle      string `json:"productTitle,omitempty"`
	ProductHandle     string `json:"productHandle,omitempty"`
	ImageURL          string `json:"imageUrl,omitempty"`
}

// LineInput is a merchandise reference plus quantity used to seed or extend a cart.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// LineUpdate changes the quantity of an existing cart line.
type LineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Line returns the line with the given ID.
func (c *Cart) Line(id string) (CartLine, bool) {
	if c == nil {
		return CartLine{}, false
	}
	for _, l := range c.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return CartLine{}, false
}

// Clone returns a deep copy so callers cannot mutate session state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	if c.Cost.Tax != nil {
		tax := *c.Cost.Tax
		out.Cost.Tax = &tax
	}
	if c.Lines != nil {
		out.Lines = make([]CartLine, len(c.Lines))
		for i, l := range c.Lines {
			if l.Merchandise.QuantityAvailable != nil {
				q := *l.Merchandise.QuantityAvailable
				l.Merchandise.QuantityAvailable = &q
			}
			out.Lines[i] = l
		}
	}
	return &out
}

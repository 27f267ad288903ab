package gateway

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type cartNode struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	TotalQuantity int       `json:"totalQuantity"`
	BuyerIdentity *struct {
		Customer *struct {
			ID string `json:"id"`
		} `json:"customer"`
	} `json:"buyerIdentity"`
	Cost struct {
		SubtotalAmount domain.Money  `json:"subtotalAmount"`
		TotalAmount    domain.Money  `json:"totalAmount"`
		TotalTaxAmount *domain.Money `json:"totalTaxAmount"`
	} `json:"cost"`
	Lines struct {
		Nodes []cartLineNode `json:"nodes"`
	} `json:"lines"`
}

type cartLineNode struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Cost     struct {
		SubtotalAmount domain.Money `json:"subtotalAmount"`
		TotalAmount    domain.Money `json:"totalAmount"`
	} `json:"cost"`
	Merchandise struct {
		ID                string `json:"id"`
		Title             string `json:"title"`
		QuantityAvailable *int   `json:"quantityAvailable"`
		Product           *struct {
			Title         string `json:"title"`
			Handle        string `json:"handle"`
			FeaturedImage *struct {
				URL string `json:"url"`
			} `json:"featuredImage"`
		} `json:"product"`
	} `json:"merchandise"`
}

func (n *cartNode) toDomain() *domain.Cart {
	if n == nil {
		return nil
	}
	out := &domain.Cart{
		ID:            n.ID,
		CreatedAt:     n.CreatedAt,
		TotalQuantity: n.TotalQuantity,
		Cost: domain.CartCost{
			Subtotal: n.Cost.SubtotalAmount,
			Total:    n.Cost.TotalAmount,
			Tax:      n.Cost.TotalTaxAmount,
		},
		Lines: make([]domain.CartLine, 0, len(n.Lines.Nodes)),
	}
	if n.BuyerIdentity != nil && n.BuyerIdentity.Customer != nil {
		out.CustomerID = n.BuyerIdentity.Customer.ID
	}
	for _, l := range n.Lines.Nodes {
		m := domain.Merchandise{
			ID:                l.Merchandise.ID,
			Title:             l.Merchandise.Title,
			QuantityAvailable: l.Merchandise.QuantityAvailable,
		}
		if p := l.Merchandise.Product; p != nil {
			m.ProductTitle = p.Title
			m.ProductHandle = p.Handle
			if p.FeaturedImage != nil {
				m.ImageURL = p.FeaturedImage.URL
			}
		}
		out.Lines = append(out.Lines, domain.CartLine{
			ID:          l.ID,
			Quantity:    l.Quantity,
			Merchandise: m,
			Cost: domain.LineCost{
				Subtotal: l.Cost.SubtotalAmount,
				Total:    l.Cost.TotalAmount,
			},
		})
	}
	return out
}

// CartPayload is the body of every cart mutation.
type CartPayload struct {
	Cart       *cartNode   `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

// CartMutationRes decodes cartCreate, cartLinesAdd, cartLinesRemove and cartLinesUpdate.
type CartMutationRes struct {
	Response
	Data *struct {
		Payload *CartPayload `json:"payload"`
	} `json:"data"`
}

func (r *CartMutationRes) payload() *CartPayload {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.Payload
}

// Cart returns the cart echoed by the mutation, or nil.
func (r *CartMutationRes) Cart() *domain.Cart {
	if p := r.payload(); p != nil {
		return p.Cart.toDomain()
	}
	return nil
}

func (r *CartMutationRes) UserErrors() []UserError {
	if p := r.payload(); p != nil {
		return p.UserErrors
	}
	return nil
}

// CartQueryRes decodes the cart(id:) query.
type CartQueryRes struct {
	Response
	Data *struct {
		Cart *cartNode `json:"cart"`
	} `json:"data"`
}

// Cart returns the fetched cart; nil means the gateway no longer knows the ID.
func (r *CartQueryRes) Cart() *domain.Cart {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.Cart.toDomain()
}

// CreateCartParams seeds a new cart. CustomerAccessToken binds the buyer when set.
type CreateCartParams struct {
	Lines               []domain.LineInput
	CustomerAccessToken string
}

func (c *Client) CreateCart(ctx context.Context, p CreateCartParams) Envelope[CartMutationRes] {
	input := map[string]any{"lines": p.Lines}
	if p.CustomerAccessToken != "" {
		input["buyerIdentity"] = map[string]any{"customerAccessToken": p.CustomerAccessToken}
	}
	return Do[CartMutationRes](ctx, c, Request{
		OperationName: "CartCreate",
		Query:         mutationCartCreate,
		Variables:     map[string]any{"input": input},
	})
}

func (c *Client) AddCartLines(ctx context.Context, cartID string, lines []domain.LineInput) Envelope[CartMutationRes] {
	return Do[CartMutationRes](ctx, c, Request{
		OperationName: "CartLinesAdd",
		Query:         mutationCartLinesAdd,
		Variables:     map[string]any{"cartId": cartID, "lines": lines},
	})
}

func (c *Client) RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) Envelope[CartMutationRes] {
	return Do[CartMutationRes](ctx, c, Request{
		OperationName: "CartLinesRemove",
		Query:         mutationCartLinesRemove,
		Variables:     map[string]any{"cartId": cartID, "lineIds": lineIDs},
	})
}

func (c *Client) UpdateCartLines(ctx context.Context, cartID string, lines []domain.LineUpdate) Envelope[CartMutationRes] {
	return Do[CartMutationRes](ctx, c, Request{
		OperationName: "CartLinesUpdate",
		Query:         mutationCartLinesUpdate,
		Variables:     map[string]any{"cartId": cartID, "lines": lines},
	})
}

func (c *Client) GetCart(ctx context.Context, cartID string) Envelope[CartQueryRes] {
	return Do[CartQueryRes](ctx, c, Request{
		OperationName: "Cart",
		Query:         queryCart,
		Variables:     map[string]any{"id": cartID},
	})
}

package gateway

import (
	"context"

	"storefront/internal/domain"
)

type checkoutNode struct {
	ID            string       `json:"id"`
	WebURL        string       `json:"webUrl"`
	Email         *string      `json:"email"`
	SubtotalPrice domain.Money `json:"subtotalPrice"`
	TotalPrice    domain.Money `json:"totalPrice"`
	TotalTax      domain.Money `json:"totalTax"`
	LineItems     struct {
		Nodes []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Quantity int    `json:"quantity"`
			Variant  *struct {
				ID string `json:"id"`
			} `json:"variant"`
		} `json:"nodes"`
	} `json:"lineItems"`
}

// CheckoutMutationRes decodes checkoutCreate.
type CheckoutMutationRes struct {
	Response
	Data *struct {
		Payload *struct {
			Checkout           *checkoutNode `json:"checkout"`
			CheckoutUserErrors []UserError   `json:"checkoutUserErrors"`
		} `json:"payload"`
	} `json:"data"`
}

func (r *CheckoutMutationRes) UserErrors() []UserError {
	if r == nil || r.Data == nil || r.Data.Payload == nil {
		return nil
	}
	return r.Data.Payload.CheckoutUserErrors
}

func (r *CheckoutMutationRes) Checkout() *domain.Checkout {
	if r == nil || r.Data == nil || r.Data.Payload == nil || r.Data.Payload.Checkout == nil {
		return nil
	}
	n := r.Data.Payload.Checkout
	out := &domain.Checkout{
		ID:            n.ID,
		WebURL:        n.WebURL,
		Email:         str(n.Email),
		SubtotalPrice: n.SubtotalPrice,
		TotalPrice:    n.TotalPrice,
		TotalTax:      n.TotalTax,
		LineItems:     make([]domain.CheckoutLine, 0, len(n.LineItems.Nodes)),
	}
	for _, li := range n.LineItems.Nodes {
		line := domain.CheckoutLine{ID: li.ID, Title: li.Title, Quantity: li.Quantity}
		if li.Variant != nil {
			line.VariantID = li.Variant.ID
		}
		out.LineItems = append(out.LineItems, line)
	}
	return out
}

// CheckoutLineItem is one variant/quantity pair sent to checkoutCreate.
type CheckoutLineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type CreateCheckoutParams struct {
	Email           string
	LineItems       []CheckoutLineItem
	ShippingAddress *domain.CheckoutAddress
}

func (c *Client) CreateCheckout(ctx context.Context, p CreateCheckoutParams) Envelope[CheckoutMutationRes] {
	input := map[string]any{"lineItems": p.LineItems}
	if p.Email != "" {
		input["email"] = p.Email
	}
	if p.ShippingAddress != nil {
		input["shippingAddress"] = p.ShippingAddress
	}
	return Do[CheckoutMutationRes](ctx, c, Request{
		OperationName: "CheckoutCreate",
		Query:         mutationCheckoutCreate,
		Variables:     map[string]any{"input": input},
	})
}

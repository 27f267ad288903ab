package gateway

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// CustomerPayload is the body of every customer mutation. Only the members
// selected by the concrete document are populated.
type CustomerPayload struct {
	Customer *struct {
		ID string `json:"id"`
	} `json:"customer"`
	CustomerAccessToken *domain.AccessToken `json:"customerAccessToken"`
	DeletedAccessToken  *string             `json:"deletedAccessToken"`
	CustomerUserErrors  []UserError         `json:"customerUserErrors"`
	UserErrors          []UserError         `json:"userErrors"`
}

// CustomerMutationRes decodes every customer* mutation.
type CustomerMutationRes struct {
	Response
	Data *struct {
		Payload *CustomerPayload `json:"payload"`
	} `json:"data"`
}

func (r *CustomerMutationRes) payload() *CustomerPayload {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.Payload
}

// UserErrors returns customerUserErrors followed by userErrors.
func (r *CustomerMutationRes) UserErrors() []UserError {
	p := r.payload()
	if p == nil {
		return nil
	}
	if len(p.UserErrors) == 0 {
		return p.CustomerUserErrors
	}
	out := make([]UserError, 0, len(p.CustomerUserErrors)+len(p.UserErrors))
	out = append(out, p.CustomerUserErrors...)
	return append(out, p.UserErrors...)
}

func (r *CustomerMutationRes) AccessToken() *domain.AccessToken {
	if p := r.payload(); p != nil && p.CustomerAccessToken != nil && p.CustomerAccessToken.Token != "" {
		tok := *p.CustomerAccessToken
		return &tok
	}
	return nil
}

func (r *CustomerMutationRes) CustomerID() string {
	if p := r.payload(); p != nil && p.Customer != nil {
		return p.Customer.ID
	}
	return ""
}

type customerNode struct {
	AcceptsMarketing *bool      `json:"acceptsMarketing"`
	CreatedAt        *time.Time `json:"createdAt"`
	DefaultAddress   *struct {
		ID string `json:"id"`
	} `json:"defaultAddress"`
	Email                  *string `json:"email"`
	FirstName              *string `json:"firstName"`
	LastName               *string `json:"lastName"`
	Phone                  *string `json:"phone"`
	LastIncompleteCheckout *struct {
		ID *string `json:"id"`
	} `json:"lastIncompleteCheckout"`
	Orders *struct {
		Nodes []orderNode `json:"nodes"`
	} `json:"orders"`
	Addresses *struct {
		Nodes []addressNode `json:"nodes"`
	} `json:"addresses"`
}

type orderNode struct {
	FulfillmentStatus *string    `json:"fulfillmentStatus"`
	CancelReason      *string    `json:"cancelReason"`
	CanceledAt        *time.Time `json:"canceledAt"`
	ShippingAddress   *struct {
		ID *string `json:"id"`
	} `json:"shippingAddress"`
	OrderNumber        *int          `json:"orderNumber"`
	TotalPrice         *domain.Money `json:"totalPrice"`
	TotalShippingPrice *domain.Money `json:"totalShippingPrice"`
	TotalTax           *domain.Money `json:"totalTax"`
	ProcessedAt        *time.Time    `json:"processedAt"`
}

type addressNode struct {
	ID           *string `json:"id"`
	Address1     *string `json:"address1"`
	Address2     *string `json:"address2"`
	City         *string `json:"city"`
	Company      *string `json:"company"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Phone        *string `json:"phone"`
	ProvinceCode *string `json:"provinceCode"`
	Country      *string `json:"country"`
	Zip          *string `json:"zip"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (n *customerNode) toDomain() *domain.Customer {
	if n == nil {
		return nil
	}
	out := &domain.Customer{
		Email:     str(n.Email),
		FirstName: str(n.FirstName),
		LastName:  str(n.LastName),
		Phone:     str(n.Phone),
		CreatedAt: n.CreatedAt,
		Orders:    []domain.Order{},
		Addresses: []domain.Address{},
	}
	if n.AcceptsMarketing != nil {
		out.AcceptsMarketing = *n.AcceptsMarketing
	}
	if n.DefaultAddress != nil {
		out.DefaultAddressID = n.DefaultAddress.ID
	}
	if n.LastIncompleteCheckout != nil {
		out.LastIncompleteCheckoutID = str(n.LastIncompleteCheckout.ID)
	}
	if n.Orders != nil {
		for _, o := range n.Orders.Nodes {
			order := domain.Order{
				FulfillmentStatus:  str(o.FulfillmentStatus),
				CancelReason:       str(o.CancelReason),
				CanceledAt:         o.CanceledAt,
				ProcessedAt:        o.ProcessedAt,
				TotalPrice:         o.TotalPrice,
				TotalShippingPrice: o.TotalShippingPrice,
				TotalTax:           o.TotalTax,
			}
			if o.OrderNumber != nil {
				order.OrderNumber = *o.OrderNumber
			}
			if o.ShippingAddress != nil {
				order.ShippingAddressID = str(o.ShippingAddress.ID)
			}
			out.Orders = append(out.Orders, order)
		}
	}
	if n.Addresses != nil {
		for _, a := range n.Addresses.Nodes {
			out.Addresses = append(out.Addresses, domain.Address{
				ID:           str(a.ID),
				FirstName:    str(a.FirstName),
				LastName:     str(a.LastName),
				Company:      str(a.Company),
				Address1:     str(a.Address1),
				Address2:     str(a.Address2),
				City:         str(a.City),
				ProvinceCode: str(a.ProvinceCode),
				Country:      str(a.Country),
				Zip:          str(a.Zip),
				Phone:        str(a.Phone),
			})
		}
	}
	return out
}

// CustomerQueryRes decodes both the profile and account details queries.
type CustomerQueryRes struct {
	Response
	Data *struct {
		Customer *customerNode `json:"customer"`
	} `json:"data"`
}

// Customer returns nil when the token does not resolve to a customer.
func (r *CustomerQueryRes) Customer() *domain.Customer {
	if r == nil || r.Data == nil {
		return nil
	}
	return r.Data.Customer.toDomain()
}

type CreateCustomerParams struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	AcceptsMarketing bool
}

func (c *Client) CreateCustomer(ctx context.Context, p CreateCustomerParams) Envelope[CustomerMutationRes] {
	return Do[CustomerMutationRes](ctx, c, Request{
		OperationName: "CustomerCreate",
		Query:         mutationCustomerCreate,
		Variables: map[string]any{"input": map[string]any{
			"email":            p.Email,
			"password":         p.Password,
			"firstName":        p.FirstName,
			"lastName":         p.LastName,
			"acceptsMarketing": p.AcceptsMarketing,
		}},
	})
}

func (c *Client) Login(ctx context.Context, email, password string) Envelope[CustomerMutationRes] {
	return Do[CustomerMutationRes](ctx, c, Request{
		OperationName: "CustomerAccessTokenCreate",
		Query:         mutationCustomerAccessTokenCreate,
		Variables: map[string]any{"input": map[string]any{
			"email":    email,
			"password": password,
		}},
	})
}

func (c *Client) Logout(ctx context.Context, token string) Envelope[CustomerMutationRes] {
	return Do[CustomerMutationRes](ctx, c, Request{
		OperationName: "CustomerAccessTokenDelete",
		Query:         mutationCustomerAccessTokenDelete,
		Variables:     map[string]any{"customerAccessToken": token},
	})
}

func (c *Client) GetProfile(ctx context.Context, token string) Envelope[CustomerQueryRes] {
	return Do[CustomerQueryRes](ctx, c, Request{
		OperationName: "Customer",
		Query:         queryCustomer,
		Variables:     map[string]any{"customerAccessToken": token},
	})
}

func (c *Client) GetAccountDetails(ctx context.Context, token string) Envelope[CustomerQueryRes] {
	return Do[CustomerQueryRes](ctx, c, Request{
		OperationName: "AccountDetails",
		Query:         queryAccountDetails,
		Variables:     map[string]any{"customerAccessToken": token},
	})
}

// CustomerUpdate holds the fields to change; nil members are left untouched.
type CustomerUpdate struct {
	FirstName        *string `json:"firstName,omitempty"`
	LastName         *string `json:"lastName,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Password         *string `json:"password,omitempty"`
	AcceptsMarketing *bool   `json:"acceptsMarketing,omitempty"`
}

func (c *Client) UpdateCustomer(ctx context.Context, token string, update CustomerUpdate) Envelope[CustomerMutationRes] {
	return Do[CustomerMutationRes](ctx, c, Request{
		OperationName: "CustomerUpdate",
		Query:         mutationCustomerUpdate,
		Variables:     map[string]any{"customerAccessToken": token, "customer": update},
	})
}

func (c *Client) RecoverAccount(ctx context.Context, email string) Envelope[CustomerMutationRes] {
	return Do[CustomerMutationRes](ctx, c, Request{
		OperationName: "CustomerRecover",
		Query:         mutationCustomerRecover,
		Variables:     map[string]any{"email": email},
	})
}

func (c *Client) ResetPassword(ctx context.Context, id, resetToken, password string) Envelope[CustomerMutationRes] {
	return Do[CustomerMutationRes](ctx, c, Request{
		OperationName: "CustomerReset",
		Query:         mutationCustomerReset,
		Variables: map[string]any{
			"id":    id,
			"input": map[string]any{"resetToken": resetToken, "password": password},
		},
	})
}

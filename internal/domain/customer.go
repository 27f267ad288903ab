package domain

import "time"

// AccessToken is a customer access token issued by the gateway.
type AccessToken struct {
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is unusable at now.
func (t AccessToken) Expired(now time.Time) bool {
	return t.Token == "" || !now.Before(t.ExpiresAt)
}

// Address stores address fields returned to clients.
type Address struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Company      string `json:"company,omitempty"`
	Address1     string `json:"address1,omitempty"`
	Address2     string `json:"address2,omitempty"`
	City         string `json:"city,omitempty"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	Country      string `json:"country,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type Order struct {
	OrderNumber        int        `json:"orderNumber"`
	FulfillmentStatus  string     `json:"fulfillmentStatus,omitempty"`
	CancelReason       string     `json:"cancelReason,omitempty"`
	CanceledAt         *time.Time `json:"canceledAt,omitempty"`
	ProcessedAt        *time.Time `json:"processedAt,omitempty"`
	ShippingAddressID  string     `json:"shippingAddressId,omitempty"`
	TotalPrice         *Money     `json:"totalPrice,omitempty"`
	TotalShippingPrice *Money     `json:"totalShippingPrice,omitempty"`
	TotalTax           *Money     `json:"totalTax,omitempty"`
}

// Customer is the cached customer profile.
type Customer struct {
	Email                    string     `json:"email,omitempty"`
	FirstName                string     `json:"firstName,omitempty"`
	LastName                 string     `json:"lastName,omitempty"`
	Phone                    string     `json:"phone,omitempty"`
	AcceptsMarketing         bool       `json:"acceptsMarketing"`
	CreatedAt                *time.Time `json:"createdAt,omitempty"`
	DefaultAddressID         string     `json:"defaultAddressId,omitempty"`
	LastIncompleteCheckoutID string     `json:"lastIncompleteCheckoutId,omitempty"`
	Orders                   []Order    `json:"orders"`
	Addresses                []Address  `json:"addresses"`
}

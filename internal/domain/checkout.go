package domain

type CheckoutLine struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variantId,omitempty"`
}

// Checkout is a checkout created on the gateway from cart contents.
type Checkout struct {
	ID            string         `json:"id"`
	WebURL        string         `json:"webUrl"`
	Email         string         `json:"email,omitempty"`
	SubtotalPrice Money          `json:"subtotalPrice"`
	TotalPrice    Money          `json:"totalPrice"`
	TotalTax      Money          `json:"totalTax"`
	LineItems     []CheckoutLine `json:"lineItems"`
}

// CheckoutAddress is the shipping address sent with checkout creation.
type CheckoutAddress struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

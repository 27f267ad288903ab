package httpserver

import (
	"storefront/internal/domain"
	"storefront/internal/format"
	"storefront/internal/service/auth"
	"storefront/internal/service/cart"
)

type productSummaryView struct {
	domain.ProductSummary
	DisplayPrice string `json:"displayPrice"`
}

type productView struct {
	ID             string                 `json:"id"`
	Handle         string                 `json:"handle"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description,omitempty"`
	TotalInventory *int                   `json:"totalInventory,omitempty"`
	Images         []string               `json:"images"`
	Options        []domain.ProductOption `json:"options"`
	Variants       []variantView          `json:"variants"`
}

type variantView struct {
	domain.ProductVariant
	DisplayPrice string `json:"displayPrice"`
}

type cartView struct {
	State         cart.State `json:"state"`
	Cart          *cartBody  `json:"cart"`
	IsUpdating    bool       `json:"isUpdating"`
	DeletingLines []string   `json:"deletingLines"`
}

type cartBody struct {
	ID              string          `json:"id"`
	TotalQuantity   int             `json:"totalQuantity"`
	CustomerID      string          `json:"customerId,omitempty"`
	Cost            domain.CartCost `json:"cost"`
	DisplaySubtotal string          `json:"displaySubtotal"`
	DisplayTotal    string          `json:"displayTotal"`
	DisplayTax      string          `json:"displayTax,omitempty"`
	Lines           []lineView      `json:"lines"`
}

type lineView struct {
	domain.CartLine
	DisplayTotal string `json:"displayTotal"`
}

type cartResponse struct {
	domain.Result
	cartView
}

type authResponse struct {
	domain.Result
	Session auth.Status `json:"session"`
}

type profileView struct {
	domain.Customer
	Orders    []orderView   `json:"orders"`
	Addresses []addressView `json:"addresses"`
}

type orderView struct {
	domain.Order
	DisplayTotal string `json:"displayTotal,omitempty"`
}

type addressView struct {
	domain.Address
	Display string `json:"display"`
}

type profileResponse struct {
	domain.Result
	Profile *profileView `json:"profile"`
	Loading bool         `json:"loading"`
}

type checkoutResponse struct {
	domain.Result
	Checkout     *domain.Checkout `json:"checkout"`
	DisplayTotal string           `json:"displayTotal,omitempty"`
	Creating     bool             `json:"creating"`
}

func toProductSummaryViews(in []domain.ProductSummary) []productSummaryView {
	out := make([]productSummaryView, 0, len(in))
	for _, p := range in {
		out = append(out, productSummaryView{
			ProductSummary: p,
			DisplayPrice:   format.DisplayPriceRange(p.MinPrice.Amount.String(), p.MaxPrice.Amount.String()),
		})
	}
	return out
}

// toProductView prices every variant for the selected quantity.
func toProductView(p domain.Product, quantity int) productView {
	variants := make([]variantView, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, variantView{
			ProductVariant: v,
			DisplayPrice:   format.DisplayPrice(v.Price.Amount.String(), quantity),
		})
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	options := p.Options
	if options == nil {
		options = []domain.ProductOption{}
	}
	return productView{
		ID:             p.ID,
		Handle:         p.Handle,
		Title:          p.Title,
		Description:    p.Description,
		TotalInventory: p.TotalInventory,
		Images:         images,
		Options:        options,
		Variants:       variants,
	}
}

func toCartView(v cart.View) cartView {
	deleting := v.DeletingLines
	if deleting == nil {
		deleting = []string{}
	}
	out := cartView{
		State:         v.State,
		IsUpdating:    v.Updating,
		DeletingLines: deleting,
	}
	if v.Cart == nil {
		return out
	}
	c := v.Cart
	body := &cartBody{
		ID:              c.ID,
		TotalQuantity:   c.TotalQuantity,
		CustomerID:      c.CustomerID,
		Cost:            c.Cost,
		DisplaySubtotal: format.Dollars(c.Cost.Subtotal.Amount),
		DisplayTotal:    format.Dollars(c.Cost.Total.Amount),
		Lines:           make([]lineView, 0, len(c.Lines)),
	}
	if c.Cost.Tax != nil {
		body.DisplayTax = format.Dollars(c.Cost.Tax.Amount)
	}
	for _, l := range c.Lines {
		body.Lines = append(body.Lines, lineView{
			CartLine:     l,
			DisplayTotal: format.Dollars(l.Cost.Total.Amount),
		})
	}
	out.Cart = body
	return out
}

func toProfileView(c *domain.Customer) *profileView {
	if c == nil {
		return nil
	}
	out := &profileView{
		Customer:  *c,
		Orders:    make([]orderView, 0, len(c.Orders)),
		Addresses: make([]addressView, 0, len(c.Addresses)),
	}
	for _, o := range c.Orders {
		ov := orderView{Order: o}
		if o.TotalPrice != nil {
			ov.DisplayTotal = format.Dollars(o.TotalPrice.Amount)
		}
		out.Orders = append(out.Orders, ov)
	}
	for _, a := range c.Addresses {
		city, province, zip := a.City, a.ProvinceCode, a.Zip
		out.Addresses = append(out.Addresses, addressView{
			Address: a,
			Display: format.DisplayAddress(&city, &province, &zip),
		})
	}
	return out
}

func toCheckoutResponse(res domain.Result, co *domain.Checkout, creating bool) checkoutResponse {
	out := checkoutResponse{Result: res, Checkout: co, Creating: creating}
	if co != nil {
		out.DisplayTotal = format.Dollars(co.TotalPrice.Amount)
	}
	return out
}

package domain

// ProductSummary is a product card on the front page.
type ProductSummary struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	MinPrice    Money  `json:"minPrice"`
	MaxPrice    Money  `json:"maxPrice"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type Product struct {
	ID              string           `json:"id"`
	Handle          string           `json:"handle"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	TotalInventory  *int             `json:"totalInventory,omitempty"`
	FeaturedImageID string           `json:"featuredImageId,omitempty"`
	Images          []string         `json:"images"`
	Options         []ProductOption  `json:"options"`
	Variants        []ProductVariant `json:"variants"`
}

type ProductOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductVariant struct {
	ID                string           `json:"id"`
	AvailableForSale  bool             `json:"availableForSale"`
	QuantityAvailable *int             `json:"quantityAvailable,omitempty"`
	Price             Money            `json:"price"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
}

package gateway

import (
	"context"

	"storefront/internal/domain"
)

type imageNodes struct {
	Nodes []struct {
		URL string `json:"url"`
	} `json:"nodes"`
}

func (i imageNodes) urls() []string {
	out := make([]string, 0, len(i.Nodes))
	for _, n := range i.Nodes {
		if n.URL != "" {
			out = append(out, n.URL)
		}
	}
	return out
}

type productSummaryNode struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	PriceRange  struct {
		MaxVariantPrice domain.Money `json:"maxVariantPrice"`
		MinVariantPrice domain.Money `json:"minVariantPrice"`
	} `json:"priceRange"`
	Images imageNodes `json:"images"`
}

// FrontPageRes decodes the front page collection query.
type FrontPageRes struct {
	Response
	Data *struct {
		Collection *struct {
			Products struct {
				Nodes []productSummaryNode `json:"nodes"`
			} `json:"products"`
		} `json:"collection"`
	} `json:"data"`
}

func (r *FrontPageRes) Products() []domain.ProductSummary {
	out := []domain.ProductSummary{}
	if r == nil || r.Data == nil || r.Data.Collection == nil {
		return out
	}
	for _, n := range r.Data.Collection.Products.Nodes {
		p := domain.ProductSummary{
			ID:          n.ID,
			Handle:      n.Handle,
			Title:       n.Title,
			Description: n.Description,
			MinPrice:    n.PriceRange.MinVariantPrice,
			MaxPrice:    n.PriceRange.MaxVariantPrice,
		}
		if urls := n.Images.urls(); len(urls) > 0 {
			p.ImageURL = urls[0]
		}
		out = append(out, p)
	}
	return out
}

type productNode struct {
	ID            string     `json:"id"`
	Handle        string     `json:"handle"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Images        imageNodes `json:"images"`
	FeaturedImage *struct {
		ID string `json:"id"`
	} `json:"featuredImage"`
	Options        []domain.ProductOption `json:"options"`
	TotalInventory *int                   `json:"totalInventory"`
	Variants       struct {
		Nodes []domain.ProductVariant `json:"nodes"`
	} `json:"variants"`
}

// ProductRes decodes the product(handle:) query.
type ProductRes struct {
	Response
	Data *struct {
		Product *productNode `json:"product"`
	} `json:"data"`
}

// Product returns nil when the handle is unknown.
func (r *ProductRes) Product() *domain.Product {
	if r == nil || r.Data == nil || r.Data.Product == nil {
		return nil
	}
	n := r.Data.Product
	out := &domain.Product{
		ID:             n.ID,
		Handle:         n.Handle,
		Title:          n.Title,
		Description:    n.Description,
		TotalInventory: n.TotalInventory,
		Images:         n.Images.urls(),
		Options:        n.Options,
		Variants:       n.Variants.Nodes,
	}
	if n.FeaturedImage != nil {
		out.FeaturedImageID = n.FeaturedImage.ID
	}
	if out.Options == nil {
		out.Options = []domain.ProductOption{}
	}
	if out.Variants == nil {
		out.Variants = []domain.ProductVariant{}
	}
	return out
}

// ProductHandlesRes decodes the handle listing used for static page generation.
type ProductHandlesRes struct {
	Response
	Data *struct {
		Collection *struct {
			Products struct {
				Nodes []struct {
					Handle string `json:"handle"`
				} `json:"nodes"`
			} `json:"products"`
		} `json:"collection"`
	} `json:"data"`
}

func (r *ProductHandlesRes) Handles() []string {
	out := []string{}
	if r == nil || r.Data == nil || r.Data.Collection == nil {
		return out
	}
	for _, n := range r.Data.Collection.Products.Nodes {
		out = append(out, n.Handle)
	}
	return out
}

func (c *Client) GetFrontPage(ctx context.Context, first int) Envelope[FrontPageRes] {
	if first <= 0 {
		first = 20
	}
	return Do[FrontPageRes](ctx, c, Request{
		OperationName: "FrontPage",
		Query:         queryFrontPage,
		Variables:     map[string]any{"first": first},
	})
}

func (c *Client) GetProduct(ctx context.Context, handle string, images int) Envelope[ProductRes] {
	if images <= 0 {
		images = 20
	}
	return Do[ProductRes](ctx, c, Request{
		OperationName: "Product",
		Query:         queryProduct,
		Variables:     map[string]any{"handle": handle, "images": images},
	})
}

func (c *Client) GetProductHandles(ctx context.Context) Envelope[ProductHandlesRes] {
	return Do[ProductHandlesRes](ctx, c, Request{
		OperationName: "ProductHandles",
		Query:         queryProductHandles,
	})
}

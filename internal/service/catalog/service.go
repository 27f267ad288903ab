package catalog

import (
	"context"

	"storefront/internal/gateway"
)

// DefaultFrontPageSize is used when no amount is requested.
const DefaultFrontPageSize = 20

type Gateway interface {
	GetFrontPage(ctx context.Context, first int) gateway.Envelope[gateway.FrontPageRes]
	GetProduct(ctx context.Context, handle string, images int) gateway.Envelope[gateway.ProductRes]
	GetProductHandles(ctx context.Context) gateway.Envelope[gateway.ProductHandlesRes]
}

// Service reads the product catalog. Envelopes are passed through unchanged.
type Service struct {
	gw     Gateway
	images int
}

func New(gw Gateway) *Service {
	return &Service{gw: gw, images: 20}
}

func (s *Service) FrontPage(ctx context.Context, amount int) gateway.Envelope[gateway.FrontPageRes] {
	if amount <= 0 {
		amount = DefaultFrontPageSize
	}
	return s.gw.GetFrontPage(ctx, amount)
}

func (s *Service) Product(ctx context.Context, handle string) gateway.Envelope[gateway.ProductRes] {
	return s.gw.GetProduct(ctx, handle, s.images)
}

func (s *Service) Handles(ctx context.Context) gateway.Envelope[gateway.ProductHandlesRes] {
	return s.gw.GetProductHandles(ctx)
}

package repository

import (
	"context"

	"listing-service/internal/domain"
)

// OfferSort orders search results.
type OfferSort string

const (
	SortNone      OfferSort = ""
	SortPriceAsc  OfferSort = "price-asc"
	SortPriceDesc OfferSort = "price-desc"
)

// OfferFilter narrows offers; zero values disable a criterion.
type OfferFilter struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
}

// OfferQuery is a filtered, sorted page of offers. Limit <= 0 means no limit.
type OfferQuery struct {
	Filter OfferFilter
	Sort   OfferSort
	Offset int
	Limit  int
}

// OfferRepository exposes persistence operations for Offer aggregates.
type OfferRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, offer *domain.Offer) error
	// Update rewrites every column of the offer, nested details and pictures included.
	Update(ctx context.Context, offer *domain.Offer) error
	Delete(ctx context.Context, id string) error
	// Get returns the offer with its owner expanded to username, phone and avatar.
	Get(ctx context.Context, id string) (*domain.Offer, error)
	// Find returns offers matching q with owners expanded to username and avatar.
	Find(ctx context.Context, q OfferQuery) ([]domain.Offer, error)
	Count(ctx context.Context, f OfferFilter) (int64, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"listing-service/internal/domain"
	"listing-service/internal/repository"
	"listing-service/internal/storage"
)

// SearchParams are the optional criteria of an offer search.
type SearchParams struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
	Sort     string
	Page     int
	Limit    int
}

// SearchResult holds one page of offers and the total number of matches.
type SearchResult struct {
	Count  int64
	Offers []domain.Offer
}

// PublishInput carries a new listing. Images are attached in order.
type PublishInput struct {
	Description string  `validate:"max=500"`
	Title       string  `validate:"required,max=50"`
	Price       float64 `validate:"gte=0,lte=100000"`
	Details     domain.OfferDetails
	Images      []storage.Image
}

// OfferPatch lists the fields to change; nil fields are left untouched.
type OfferPatch struct {
	Title       *string
	Description *string
	Price       *float64
	Details     domain.OfferDetails
	Image       *storage.Image
}

// PartialUploadError reports an image saga that stopped after Uploaded images.
// The offer and the Uploaded images persisted before the failure remain stored.
type PartialUploadError struct {
	OfferID  string
	Uploaded int
	Total    int
	Err      error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("offer %s: %d of %d images attached: %v", e.OfferID, e.Uploaded, e.Total, e.Err)
}

func (e *PartialUploadError) Unwrap() error {
	return e.Err
}

// OfferService coordinates listing operations backed by the store and object storage.
type OfferService interface {
	Search(ctx context.Context, p SearchParams) (*SearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.Offer, error)
	Publish(ctx context.Context, owner *domain.User, in PublishInput) (*domain.Offer, error)
	Update(ctx context.Context, caller *domain.User, id string, patch OfferPatch) (*domain.Offer, error)
	AttachPictures(ctx context.Context, caller *domain.User, id string, images []storage.Image) (*domain.Offer, error)
	Delete(ctx context.Context, caller *domain.User, id string) error
}

// OfferServiceConfig tunes an OfferService.
type OfferServiceConfig struct {
	// Namespace prefixes every storage folder, e.g. "vinted".
	Namespace string
	// DefaultLimit applies when a search has no usable limit; 0 means unlimited.
	DefaultLimit int
	// EnforceOwnership restricts update, attach and delete to the offer owner.
	EnforceOwnership bool
	Logger           *logrus.Logger
}

type offerService struct {
	offers   repository.OfferRepository
	uploader storage.Uploader
	cfg      OfferServiceConfig
}

func NewOfferService(offers repository.OfferRepository, uploader storage.Uploader, cfg OfferServiceConfig) OfferService {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &offerService{
		offers:   offers,
		uploader: uploader,
		cfg:      cfg,
	}
}

// ParsePage converts a raw page query value, clamping anything below 1
// (non-numeric input included) to 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseLimit converts a raw limit query value; absent or invalid values yield 0.
func ParseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (s *offerService) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	filter := repository.OfferFilter{
		Title:    strings.TrimSpace(p.Title),
		PriceMin: p.PriceMin,
		PriceMax: p.PriceMax,
	}

	page := max(p.Page, 1)
	limit := p.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	q := repository.OfferQuery{Filter: filter, Sort: parseSort(p.Sort)}
	if limit > 0 {
		q.Limit = limit
		q.Offset = (page - 1) * limit
	}

	count, err := s.offers.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	// an offset past MaxInt cannot address any row
	if limit > 0 && page-1 > math.MaxInt/limit {
		return &SearchResult{Count: count, Offers: []domain.Offer{}}, nil
	}

	offers, err := s.offers.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Count: count, Offers: offers}, nil
}

func parseSort(raw string) repository.OfferSort {
	switch repository.OfferSort(raw) {
	case repository.SortPriceAsc:
		return repository.SortPriceAsc
	case repository.SortPriceDesc:
		return repository.SortPriceDesc
	default:
		return repository.SortNone
	}
}

func (s *offerService) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	return s.offers.Get(ctx, id)
}

func (s *offerService) Publish(ctx context.Context, owner *domain.User, in PublishInput) (*domain.Offer, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	offer := &domain.Offer{
		ID:          uuid.NewString(),
		Name:        in.Title,
		Description: in.Description,
		Price:       in.Price,
		Details:     in.Details,
		OwnerID:     owner.ID,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	log := s.cfg.Logger.WithFields(logrus.Fields{"offer_id": offer.ID, "owner_id": owner.ID})
	if len(in.Images) == 0 {
		log.Info("offer published without images; listings with images sell better")
		return offer, nil
	}

	if err := s.attach(ctx, offer, in.Images); err != nil {
		return nil, err
	}
	log.WithField("images", len(offer.Pictures)).Info("offer published")
	return offer, nil
}

// attach uploads images one by one, persisting the offer after each upload.
func (s *offerService) attach(ctx context.Context, offer *domain.Offer, images []storage.Image) error {
	folder := storage.OfferFolder(s.cfg.Namespace, offer.ID)
	persisted := 0
	_, err := s.uploader.UploadMany(ctx, images, folder, func(ref domain.ImageRef) error {
		offer.AppendPicture(ref)
		if err := s.offers.Update(ctx, offer); err != nil {
			return err
		}
		persisted++
		return nil
	})
	if err != nil {
		s.cfg.Logger.WithFields(logrus.Fields{
			"offer_id": offer.ID,
			"uploaded": persisted,
			"total":    len(images),
		}).WithError(err).Warn("image upload stopped")
		return &PartialUploadError{OfferID: offer.ID, Uploaded: persisted, Total: len(images), Err: err}
	}
	return nil
}

func (s *offerService) Update(ctx context.Context, caller *domain.User, id string, patch OfferPatch) (*domain.Offer, error) {
	offer, err := s.loadForWrite(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil && *patch.Title != "" {
		offer.Name = *patch.Title
	}
	if patch.Description != nil && *patch.Description != "" {
		offer.Description = *patch.Description
	}
	if patch.Price != nil {
		offer.Price = *patch.Price
	}
	offer.Details.Merge(patch.Details)

	if patch.Image != nil {
		ref, err := s.uploader.UploadOne(ctx, *patch.Image, storage.OfferFolder(s.cfg.Namespace, offer.ID))
		if err != nil {
			return nil, err
		}
		offer.ReplacePrimaryImage(ref)
	}

	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *offerService) AttachPictures(ctx context.Context, caller *domain.User, id string, images []storage.Image) (*domain.Offer, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: missing picture", domain.ErrInvalidInput)
	}
	offer, err := s.loadForWrite(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, offer, images); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *offerService) Delete(ctx context.Context, caller *domain.User, id string) error {
	offer, err := s.loadForWrite(ctx, caller, id)
	if err != nil {
		return err
	}

	// storage first: a failed cleanup keeps the record pointing at its folder
	if err := s.uploader.DeleteFolder(ctx, storage.OfferFolder(s.cfg.Namespace, offer.ID)); err != nil {
		return fmt.Errorf("delete offer images: %w", err)
	}
	if err := s.offers.Delete(ctx, offer.ID); err != nil {
		return err
	}

	s.cfg.Logger.WithFields(logrus.Fields{"offer_id": offer.ID}).Info("offer deleted")
	return nil
}

func (s *offerService) loadForWrite(ctx context.Context, caller *domain.User, id string) (*domain.Offer, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	offer, err := s.offers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cfg.EnforceOwnership && offer.OwnerID != caller.ID {
		return nil, fmt.Errorf("%w: offer %s belongs to another user", domain.ErrForbidden, offer.ID)
	}
	return offer, nil
}

// IsPartialUpload reports whether err comes from an interrupted image saga.
func IsPartialUpload(err error) (*PartialUploadError, bool) {
	var perr *PartialUploadError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

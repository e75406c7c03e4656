package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"listing-service/internal/domain"
)

type imageRecord struct {
	SecureURL   string `json:"secure_url"`
	Key         string `json:"key"`
	Folder      string `json:"folder"`
	ContentType string `json:"content_type,omitempty"`
	Bytes       int64  `json:"bytes,omitempty"`
	ETag        string `json:"etag,omitempty"`
}

type detailsRecord struct {
	City  *string `json:"product_city,omitempty"`
	State *string `json:"product_state,omitempty"`
	Brand *string `json:"product_brand,omitempty"`
	Size  *string `json:"product_size,omitempty"`
	Color *string `json:"product_color,omitempty"`
}

func toImageRecord(ref domain.ImageRef) imageRecord {
	return imageRecord{
		SecureURL:   ref.SecureURL,
		Key:         ref.Key,
		Folder:      ref.Folder,
		ContentType: ref.ContentType,
		Bytes:       ref.Bytes,
		ETag:        ref.ETag,
	}
}

func (r imageRecord) toDomain() domain.ImageRef {
	return domain.ImageRef{
		SecureURL:   r.SecureURL,
		Key:         r.Key,
		Folder:      r.Folder,
		ContentType: r.ContentType,
		Bytes:       r.Bytes,
		ETag:        r.ETag,
	}
}

func encodeImage(ref *domain.ImageRef) (any, error) {
	if ref == nil {
		return nil, nil
	}
	b, err := json.Marshal(toImageRecord(*ref))
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return string(b), nil
}

func decodeImage(raw sql.NullString) (*domain.ImageRef, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var rec imageRecord
	if err := json.Unmarshal([]byte(raw.String), &rec); err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	ref := rec.toDomain()
	return &ref, nil
}

func encodePictures(refs []domain.ImageRef) (string, error) {
	recs := make([]imageRecord, len(refs))
	for i := range refs {
		recs[i] = toImageRecord(refs[i])
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encode pictures: %w", err)
	}
	return string(b), nil
}

func decodePictures(raw string) ([]domain.ImageRef, error) {
	if raw == "" {
		return nil, nil
	}
	var recs []imageRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("decode pictures: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	refs := make([]domain.ImageRef, len(recs))
	for i := range recs {
		refs[i] = recs[i].toDomain()
	}
	return refs, nil
}

func encodeDetails(d domain.OfferDetails) (string, error) {
	b, err := json.Marshal(detailsRecord{
		City:  d.City,
		State: d.State,
		Brand: d.Brand,
		Size:  d.Size,
		Color: d.Color,
	})
	if err != nil {
		return "", fmt.Errorf("encode details: %w", err)
	}
	return string(b), nil
}

func decodeDetails(raw string) (domain.OfferDetails, error) {
	if raw == "" {
		return domain.OfferDetails{}, nil
	}
	var rec detailsRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.OfferDetails{}, fmt.Errorf("decode details: %w", err)
	}
	return domain.OfferDetails{
		City:  rec.City,
		State: rec.State,
		Brand: rec.Brand,
		Size:  rec.Size,
		Color: rec.Color,
	}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

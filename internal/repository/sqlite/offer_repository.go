package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"listing-service/internal/domain"
	"listing-service/internal/repository"
)

const createOffersTable = `
CREATE TABLE IF NOT EXISTS offers (
	id TEXT PRIMARY KEY,
	product_name TEXT NOT NULL,
	product_description TEXT NOT NULL DEFAULT '',
	product_price REAL NOT NULL DEFAULT 0,
	product_details TEXT NOT NULL DEFAULT '{}',
	product_image TEXT NULL,
	product_pictures TEXT NOT NULL DEFAULT '[]',
	owner_id TEXT NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_offers_price ON offers(product_price);
CREATE INDEX IF NOT EXISTS idx_offers_owner ON offers(owner_id);
`

const selectOffer = `
SELECT o.id, o.product_name, o.product_description, o.product_price, o.product_details,
	o.product_image, o.product_pictures, o.owner_id, o.created_at, o.updated_at,
	u.username, u.phone, u.avatar
FROM offers o
JOIN users u ON u.id = o.owner_id
`

type OfferRepository struct {
	db *sql.DB
}

func NewOfferRepository(db *sql.DB) repository.OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createOffersTable); err != nil {
		return fmt.Errorf("create offers table: %w", err)
	}
	return nil
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.Offer) error {
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	details, image, pictures, err := encodeOfferColumns(offer)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO offers (id, product_name, product_description, product_price, product_details, product_image, product_pictures, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID,
		offer.Name,
		offer.Description,
		offer.Price,
		details,
		image,
		pictures,
		offer.OwnerID,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		return storeErr("insert offer", err)
	}
	return nil
}

func (r *OfferRepository) Update(ctx context.Context, offer *domain.Offer) error {
	offer.UpdatedAt = time.Now().UTC()

	details, image, pictures, err := encodeOfferColumns(offer)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE offers
SET product_name=?, product_description=?, product_price=?, product_details=?, product_image=?, product_pictures=?, updated_at=?
WHERE id=?`,
		offer.Name,
		offer.Description,
		offer.Price,
		details,
		image,
		pictures,
		offer.UpdatedAt,
		offer.ID,
	)
	if err != nil {
		return storeErr("update offer", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return storeErr("offer update rows affected", err)
	}
	if aff == 0 {
		return fmt.Errorf("offer %s: %w", offer.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id=?`, id)
	if err != nil {
		return storeErr("delete offer", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return storeErr("offer delete rows affected", err)
	}
	if aff == 0 {
		return fmt.Errorf("offer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *OfferRepository) Get(ctx context.Context, id string) (*domain.Offer, error) {
	offer, err := scanOffer(r.db.QueryRowContext(ctx, selectOffer+`WHERE o.id = ?`, id))
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *OfferRepository) Find(ctx context.Context, q repository.OfferQuery) ([]domain.Offer, error) {
	where, args := buildOfferFilter(q.Filter)

	var b strings.Builder
	b.WriteString(selectOffer)
	b.WriteString(where)
	switch q.Sort {
	case repository.SortPriceAsc:
		b.WriteString("ORDER BY o.product_price ASC, o.rowid ASC\n")
	case repository.SortPriceDesc:
		b.WriteString("ORDER BY o.product_price DESC, o.rowid ASC\n")
	default:
		b.WriteString("ORDER BY o.rowid ASC\n")
	}
	if q.Limit > 0 {
		b.WriteString("LIMIT ? OFFSET ?")
		args = append(args, q.Limit, max(q.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, storeErr("query offers", err)
	}
	defer rows.Close()

	offers := []domain.Offer{}
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		// search results expose the owner account without the phone number
		offer.Owner.Account.Phone = ""
		offers = append(offers, *offer)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate offers", err)
	}
	return offers, nil
}

func (r *OfferRepository) Count(ctx context.Context, f repository.OfferFilter) (int64, error) {
	where, args := buildOfferFilter(f)

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers o `+where, args...).Scan(&count); err != nil {
		return 0, storeErr("count offers", err)
	}
	return count, nil
}

func buildOfferFilter(f repository.OfferFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Title != "" {
		clauses = append(clauses, foldFunc+`(o.product_name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(foldText(f.Title))+"%")
	}
	if f.PriceMin != nil {
		clauses = append(clauses, "o.product_price >= ?")
		args = append(args, *f.PriceMin)
	}
	if f.PriceMax != nil {
		clauses = append(clauses, "o.product_price <= ?")
		args = append(args, *f.PriceMax)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND ") + "\n", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func encodeOfferColumns(offer *domain.Offer) (details string, image any, pictures string, err error) {
	if details, err = encodeDetails(offer.Details); err != nil {
		return "", nil, "", err
	}
	if image, err = encodeImage(offer.Image); err != nil {
		return "", nil, "", err
	}
	if pictures, err = encodePictures(offer.Pictures); err != nil {
		return "", nil, "", err
	}
	return details, image, pictures, nil
}

func scanOffer(scanner interface {
	Scan(dest ...any) error
}) (*domain.Offer, error) {
	var (
		offer    domain.Offer
		owner    domain.Owner
		details  string
		image    sql.NullString
		pictures string
		avatar   sql.NullString
	)
	if err := scanner.Scan(
		&offer.ID,
		&offer.Name,
		&offer.Description,
		&offer.Price,
		&details,
		&image,
		&pictures,
		&offer.OwnerID,
		&offer.CreatedAt,
		&offer.UpdatedAt,
		&owner.Account.Username,
		&owner.Account.Phone,
		&avatar,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offer: %w", domain.ErrNotFound)
		}
		return nil, storeErr("scan offer", err)
	}

	var err error
	if offer.Details, err = decodeDetails(details); err != nil {
		return nil, err
	}
	if offer.Image, err = decodeImage(image); err != nil {
		return nil, err
	}
	if offer.Pictures, err = decodePictures(pictures); err != nil {
		return nil, err
	}
	if owner.Account.Avatar, err = decodeImage(avatar); err != nil {
		return nil, err
	}
	owner.ID = offer.OwnerID
	offer.Owner = &owner
	return &offer, nil
}

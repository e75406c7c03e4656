package domain

import "time"

// Offer is a product listing published by a user.
type Offer struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Details     OfferDetails
	Image       *ImageRef
	Pictures    []ImageRef
	OwnerID     string
	// Owner is only filled by read queries that expand the owner reference.
	Owner     *Owner
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner is the expanded, public subset of the user owning an offer.
type Owner struct {
	ID      string
	Account Account
}

// OfferDetails holds the five optional product attributes. A nil field means
// the offer was published without that attribute.
type OfferDetails struct {
	City  *string
	State *string
	Brand *string
	Size  *string
	Color *string
}

// Merge writes every attribute of patch into d, but only for attributes d
// already holds. Attributes d lacks can never be added this way.
func (d *OfferDetails) Merge(patch OfferDetails) {
	d.City = mergeDetail(d.City, patch.City)
	d.State = mergeDetail(d.State, patch.State)
	d.Brand = mergeDetail(d.Brand, patch.Brand)
	d.Size = mergeDetail(d.Size, patch.Size)
	d.Color = mergeDetail(d.Color, patch.Color)
}

func mergeDetail(current, next *string) *string {
	if current == nil || next == nil || *next == "" {
		return current
	}
	v := *next
	return &v
}

// AppendPicture adds ref to the picture list. The first picture also becomes
// the primary image so Pictures[0] and Image stay equal.
func (o *Offer) AppendPicture(ref ImageRef) {
	if o.Image == nil || len(o.Pictures) == 0 {
		primary := ref
		o.Image = &primary
	}
	o.Pictures = append(o.Pictures, ref)
}

// ReplacePrimaryImage swaps the primary image and the first picture slot,
// leaving the other pictures untouched.
func (o *Offer) ReplacePrimaryImage(ref ImageRef) {
	primary := ref
	o.Image = &primary
	if len(o.Pictures) == 0 {
		o.Pictures = []ImageRef{ref}
		return
	}
	o.Pictures[0] = ref
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestOfferDetailsMerge_OnlyExistingAttributes(t *testing.T) {
	d := OfferDetails{Brand: strPtr("Zara"), City: strPtr("Paris")}

	d.Merge(OfferDetails{Brand: strPtr("X"), State: strPtr("Y")})

	require.Equal(t, "X", *d.Brand)
	require.Equal(t, "Paris", *d.City)
	require.Nil(t, d.State)
}

func TestOfferDetailsMerge_EmptyValueIgnored(t *testing.T) {
	d := OfferDetails{Color: strPtr("red")}

	d.Merge(OfferDetails{Color: strPtr("")})

	require.Equal(t, "red", *d.Color)
}

func TestOffer_AppendPictureKeepsPrimaryInFirstSlot(t *testing.T) {
	var o Offer
	for _, url := range []string{"a", "b", "c"} {
		o.AppendPicture(ImageRef{SecureURL: url})
	}

	require.Len(t, o.Pictures, 3)
	require.NotNil(t, o.Image)
	require.Equal(t, o.Pictures[0], *o.Image)
	require.Equal(t, "a", o.Image.SecureURL)
}

func TestOffer_ReplacePrimaryImage(t *testing.T) {
	o := Offer{}
	o.AppendPicture(ImageRef{SecureURL: "a"})
	o.AppendPicture(ImageRef{SecureURL: "b"})

	o.ReplacePrimaryImage(ImageRef{SecureURL: "z"})

	require.Equal(t, "z", o.Image.SecureURL)
	require.Equal(t, "z", o.Pictures[0].SecureURL)
	require.Equal(t, "b", o.Pictures[1].SecureURL)

	empty := Offer{}
	empty.ReplacePrimaryImage(ImageRef{SecureURL: "only"})
	require.Len(t, empty.Pictures, 1)
	require.Equal(t, empty.Pictures[0], *empty.Image)
}

func TestUser_PublicDropsCredentials(t *testing.T) {
	u := &User{ID: "1", Email: "a@x.com", Hash: "h", Salt: "s", Token: "t"}

	pub := u.Public()

	require.Empty(t, pub.Hash)
	require.Empty(t, pub.Salt)
	require.Equal(t, "t", pub.Token)
	require.Nil(t, (*User)(nil).Public())
}

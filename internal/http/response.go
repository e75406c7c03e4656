package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"listing-service/internal/domain"
	"listing-service/internal/service"
)

type ImageResponse struct {
	SecureURL string `json:"secure_url"`
	Folder    string `json:"folder,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
}

type AccountResponse struct {
	Username string         `json:"username"`
	Phone    string         `json:"phone,omitempty"`
	Avatar   *ImageResponse `json:"avatar,omitempty"`
}

type OwnerResponse struct {
	ID      string           `json:"_id"`
	Account *AccountResponse `json:"account,omitempty"`
}

type OfferResponse struct {
	ID                 string              `json:"_id"`
	ProductName        string              `json:"product_name"`
	ProductDescription string              `json:"product_description"`
	ProductPrice       float64             `json:"product_price"`
	ProductDetails     []map[string]string `json:"product_details"`
	ProductImage       *ImageResponse      `json:"product_image"`
	ProductPictures    []ImageResponse     `json:"product_pictures"`
	Owner              OwnerResponse       `json:"owner"`
}

type UserResponse struct {
	ID      string          `json:"_id"`
	Email   string          `json:"email,omitempty"`
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

type SearchResponse struct {
	Count  int64           `json:"count"`
	Offers []OfferResponse `json:"offers"`
}

func imageToResponse(ref *domain.ImageRef) *ImageResponse {
	if ref == nil {
		return nil
	}
	return &ImageResponse{
		SecureURL: ref.SecureURL,
		Folder:    ref.Folder,
		Bytes:     ref.Bytes,
	}
}

func accountToResponse(acc domain.Account) AccountResponse {
	return AccountResponse{
		Username: acc.Username,
		Phone:    acc.Phone,
		Avatar:   imageToResponse(acc.Avatar),
	}
}

// detailSlots renders details in the legacy wire shape: five single-key
// objects in fixed order, attributes the offer lacks as empty objects.
func detailSlots(d domain.OfferDetails) []map[string]string {
	slots := []struct {
		key   string
		value *string
	}{
		{"product_city", d.City},
		{"product_state", d.State},
		{"product_brand", d.Brand},
		{"product_size", d.Size},
		{"product_color", d.Color},
	}
	out := make([]map[string]string, len(slots))
	for i, s := range slots {
		out[i] = map[string]string{}
		if s.value != nil {
			out[i][s.key] = *s.value
		}
	}
	return out
}

func offerToResponse(offer domain.Offer) OfferResponse {
	resp := OfferResponse{
		ID:                 offer.ID,
		ProductName:        offer.Name,
		ProductDescription: offer.Description,
		ProductPrice:       offer.Price,
		ProductDetails:     detailSlots(offer.Details),
		ProductImage:       imageToResponse(offer.Image),
		ProductPictures:    make([]ImageResponse, len(offer.Pictures)),
		Owner:              OwnerResponse{ID: offer.OwnerID},
	}
	for i := range offer.Pictures {
		resp.ProductPictures[i] = *imageToResponse(&offer.Pictures[i])
	}
	if offer.Owner != nil {
		acc := accountToResponse(offer.Owner.Account)
		resp.Owner.Account = &acc
	}
	return resp
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Email:   user.Email,
		Token:   user.Token,
		Account: accountToResponse(user.Account),
	}
}

// writeError maps service errors onto status codes. Publish limit
// violations are answered with 200 and a message.
func writeError(c *gin.Context, err error) {
	var rejected *domain.ValidationRejected
	if errors.As(err, &rejected) {
		c.JSON(http.StatusOK, gin.H{"message": rejected.Message})
		return
	}
	if perr, ok := service.IsPartialUpload(err); ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":  err.Error(),
			"offer_id": perr.OfferID,
			"uploaded": perr.Uploaded,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "This email already has an account"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

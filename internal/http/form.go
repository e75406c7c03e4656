package http

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"listing-service/internal/domain"
	"listing-service/internal/storage"
)

const maxMultipartMemory = 32 << 20

// formImages opens every file posted under field. The returned closer must
// be called once the images have been consumed.
func formImages(c *gin.Context, field string) ([]storage.Image, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("%w: parse multipart form: %v", domain.ErrInvalidInput, err)
	}

	headers := form.File[field]
	images := make([]storage.Image, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, h.Filename, err)
		}
		files = append(files, f)
		images = append(images, storage.Image{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return images, closeAll, nil
}

// optionalForm returns a pointer to the trimmed form value, nil when absent or blank.
func optionalForm(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// parseFinite accepts decimal numbers only; NaN and infinities are rejected.
func parseFinite(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parsePrice(raw string) (float64, error) {
	price, ok := parseFinite(raw)
	if !ok {
		return 0, fmt.Errorf("%w: price must be a number", domain.ErrInvalidInput)
	}
	return price, nil
}

// optionalFloat parses a query value, ignoring blanks and garbage.
func optionalFloat(raw string) *float64 {
	v, ok := parseFinite(raw)
	if !ok {
		return nil
	}
	return &v
}

func formDetails(c *gin.Context) domain.OfferDetails {
	state := optionalForm(c, "condition")
	if state == nil {
		state = optionalForm(c, "state")
	}
	return domain.OfferDetails{
		City:  optionalForm(c, "city"),
		State: state,
		Brand: optionalForm(c, "brand"),
		Size:  optionalForm(c, "size"),
		Color: optionalForm(c, "color"),
	}
}

package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"listing-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	return v
}

// rejections maps a field and failed tag to the message returned for
// publish limits.
var rejections = map[string]string{
	"description.max": "description too long",
	"title.max":       "title too long",
	"price.lte":       "price too high",
	"price.gte":       "price must not be negative",
}

// checkStruct validates s. Missing required fields yield ErrInvalidInput;
// limit violations yield a *domain.ValidationRejected.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}

	fe := verrs[0]
	msg, ok := rejections[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return &domain.ValidationRejected{Field: fe.Field(), Message: msg}
}

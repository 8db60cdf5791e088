package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/parceltrack/internal/usecase"
)

const maxTrackNumberLen = 64

// RegisterValidators installs the custom binding tags used by request DTOs.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("tracknumber", validateTrackNumber); err != nil {
		return err
	}
	return v.RegisterValidation("phone", validatePhone)
}

func validateTrackNumber(fl validator.FieldLevel) bool {
	number := strings.TrimSpace(fl.Field().String())
	return number != "" && len(number) <= maxTrackNumberLen
}

func validatePhone(fl validator.FieldLevel) bool {
	return usecase.ValidatePhone(strings.TrimSpace(fl.Field().String()))
}

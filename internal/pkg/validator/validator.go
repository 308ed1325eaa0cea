package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hotspot-olap/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// olap_dimension: location | time | confidence | satelite
	_ = validate.RegisterValidation("olap_dimension", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseDimension(fl.Field().String())
		return ok
	})

	// time_level: tahun | semester | kuartal | bulan | hari
	_ = validate.RegisterValidation("time_level", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseTimeLevel(fl.Field().String())
		return ok
	})

	// year: пусто или четыре цифры
	_ = validate.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		v := strings.TrimSpace(fl.Field().String())
		return v == "" || domain.TimeYear.Legal(v)
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}

// FieldErrors flattens validation errors into field → failed tag, for AppError details.
func FieldErrors(err error) map[string]interface{} {
	details := make(map[string]interface{})
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["error"] = err.Error()
		return details
	}
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

package apperr

import (
	"errors"
	"reflect"
	"strings"

	"medwaste-backend/internal/tagcode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Alan hataları json adıyla raporlanır
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("period", validatePeriod)
	_ = v.RegisterValidation("tagcode", func(fl validator.FieldLevel) bool {
		return tagcode.Valid(fl.Field().String())
	})
	return v
}

// validatePeriod: "YYYY-MM"
func validatePeriod(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	month := (s[5]-'0')*10 + (s[6] - '0')
	return month >= 1 && month <= 12
}

// Validate struct etiketlerine göre doğrular; hata varsa alan detaylı Invalid döner.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalid("Geçersiz istek gövdesi")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return &Error{Kind: KindInvalid, Message: "Doğrulama hatası", Fields: fields}
}

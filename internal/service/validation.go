package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"filmorate-service/internal/domain"
)

// Validator проверяет поля фильмов и пользователей по тегам validate.
type Validator struct {
	v *validator.Validate
}

// NewValidator создает валидатор с доменными правилами:
// notblank, nowhitespace, past (дата в прошлом) и cinemaera (не раньше 1895-12-28).
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(domain.Date); ok {
			return d.Time
		}
		return nil
	}, domain.Date{})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Ошибки регистрации возможны только при пустом имени тега
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("nowhitespace", noWhitespace)
	_ = v.RegisterValidation("past", pastDate)
	_ = v.RegisterValidation("cinemaera", cinemaEra)

	return &Validator{v: v}
}

// Struct проверяет все поля значения.
func (val *Validator) Struct(ctx context.Context, s interface{}) error {
	return val.v.StructCtx(ctx, s)
}

// Fields проверяет только перечисленные поля (имена полей Go-структуры).
func (val *Validator) Fields(ctx context.Context, s interface{}, fields ...string) error {
	return val.v.StructPartialCtx(ctx, s, fields...)
}

func noWhitespace(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

func pastDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && !t.IsZero() && t.Before(domain.Today().Time)
}

func cinemaEra(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && !t.Before(domain.CinemaBirthday.Time)
}

// describe превращает ошибки валидатора в сообщение для клиента.
func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return field + " must be positive"
	case "email":
		return field + " must be a valid email address"
	case "nowhitespace":
		return field + " must not contain whitespace"
	case "past":
		return field + " must be in the past"
	case "cinemaera":
		return fmt.Sprintf("%s must not be earlier than %s", field, domain.CinemaBirthday)
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

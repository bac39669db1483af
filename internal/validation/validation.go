// Package validation checks the delivery and contact fields of an order.
//
// Each check is one full pass over one form: it returns a fresh error map that
// holds an entry for every invalid field of that form and nothing else.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/abgdnv/weblarek/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Field names used as error map keys.
const (
	FieldAddress = "address"
	FieldEmail   = "email"
	FieldPhone   = "phone"
)

// Localized messages shown next to an invalid field.
const (
	MsgAddress = "Введите адрес в допустимом формате: кириллица, пробелы, запятые, точки и тире"
	MsgEmail   = "Введите email в формате email@email.com"
	MsgPhone   = "Введите номер телефона в формате +7ХХХХХХХХХХ или 8ХХХХХХХХХХ"
)

var (
	// Cyrillic letters, digits, whitespace, comma, period, slash and hyphen.
	addressRegexp = regexp.MustCompile(`(?i)^[а-яё0-9,./\-\s]+$`)
	emailRegexp   = regexp.MustCompile(`^[a-zA-Z0-9._]+@[a-z]+\.[a-z]{2,5}$`)
	// "+7", "7" or "8" followed by 10 or 11 digits.
	phoneRegexp = regexp.MustCompile(`^(?:\+7|7|8)\d{10,11}$`)
)

var messages = map[string]string{
	FieldAddress: MsgAddress,
	FieldEmail:   MsgEmail,
	FieldPhone:   MsgPhone,
}

type deliveryForm struct {
	Address string `json:"address" validate:"required,address"`
}

type contactsForm struct {
	Email string `json:"email" validate:"required,email_local"`
	Phone string `json:"phone" validate:"required,phone"`
}

// Validator runs the order form checks.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the storefront rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "address", addressRegexp)
	mustRegister(v, "email_local", emailRegexp)
	mustRegister(v, "phone", phoneRegexp)
	return &Validator{validate: v}
}

// Delivery validates the delivery form (address).
func (v *Validator) Delivery(order domain.Order) domain.FormErrors {
	return v.collect(deliveryForm{Address: order.Address})
}

// Contacts validates the contacts form. Email and phone are checked
// independently, so both may be reported at once.
func (v *Validator) Contacts(order domain.Order) domain.FormErrors {
	return v.collect(contactsForm{Email: order.Email, Phone: order.Phone})
}

// Order runs both passes and merges them. Only the checkout gate uses this;
// the forms themselves never show each other's errors.
func (v *Validator) Order(order domain.Order) domain.FormErrors {
	errs := v.Delivery(order)
	for field, msg := range v.Contacts(order) {
		errs[field] = msg
	}
	return errs
}

func (v *Validator) collect(form any) domain.FormErrors {
	errs := domain.FormErrors{}
	err := v.validate.Struct(form)
	if err == nil {
		return errs
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// only reachable with a programming error in the form structs
		panic(err)
	}
	for _, fieldErr := range validationErrors {
		errs[fieldErr.Field()] = messages[fieldErr.Field()]
	}
	return errs
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

package presenter

import (
	"errors"
	"sort"
	"strings"

	"github.com/abgdnv/weblarek/internal/domain"
)

var (
	ErrEmptyBasket     = errors.New("basket is empty")
	ErrOrderInvalid    = errors.New("order is invalid")
	ErrProductNotFound = errors.New("product not found")
)

// InvalidOrderError lists the fields that block checkout.
type InvalidOrderError struct {
	Errors domain.FormErrors
}

func (e *InvalidOrderError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return ErrOrderInvalid.Error() + ": " + strings.Join(fields, ", ")
}

// Is allows errors.Is to match InvalidOrderError with ErrOrderInvalid.
func (e *InvalidOrderError) Is(target error) bool {
	return target == ErrOrderInvalid
}

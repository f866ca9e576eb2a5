package booking

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxNotesLength  = 1000
	MaxReasonLength = 500
	DefaultCurrency = "USD"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Money is the price snapshot taken from the provider service at booking time.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewValidationError(FieldError{Field: "price", Message: "must not be negative"})
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return Money{}, NewValidationError(FieldError{Field: "currency", Message: "must be a 3-letter ISO code"})
	}
	return Money{amount: amount.Round(2), currency: currency}, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

type Notes struct {
	value string
}

func NewNotes(value string) (Notes, error) {
	return newText("notes", value, MaxNotesLength)
}

func NewProviderNotes(value string) (Notes, error) {
	return newText("provider_notes", value, MaxNotesLength)
}

func newText(field, value string, maxLen int) (Notes, error) {
	if utf8.RuneCountInString(value) > maxLen {
		return Notes{}, NewValidationError(FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", maxLen),
		})
	}
	return Notes{value: value}, nil
}

func (n Notes) String() string {
	return n.value
}

func (n Notes) IsEmpty() bool {
	return n.value == ""
}

func normalizeReason(field string, reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxReasonLength {
		return nil, NewValidationError(FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", MaxReasonLength),
		})
	}
	return &trimmed, nil
}

// Location is where the service is delivered. It is stored as a JSON object.
type Location struct {
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	Country    string   `json:"country,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

func (l *Location) Validate() error {
	if l == nil {
		return nil
	}
	var fields []FieldError
	if l.Lat != nil && (*l.Lat < -90 || *l.Lat > 90) {
		fields = append(fields, FieldError{Field: "location.lat", Message: "must be between -90 and 90"})
	}
	if l.Lng != nil && (*l.Lng < -180 || *l.Lng > 180) {
		fields = append(fields, FieldError{Field: "location.lng", Message: "must be between -180 and 180"})
	}
	if (l.Lat == nil) != (l.Lng == nil) {
		fields = append(fields, FieldError{Field: "location", Message: "lat and lng must be given together"})
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

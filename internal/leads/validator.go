package leads

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	formatTag   = oneOfTag(ProductFormats)
	flavorTag   = oneOfTag(Flavors)
	quantityTag = "min=1,max=5"
)

// CartValidator checks cart submissions. The zero value is not usable; call
// NewCartValidator.
type CartValidator struct {
	v *validator.Validate
}

// NewCartValidator creates a validator backed by go-playground/validator.
func NewCartValidator() *CartValidator {
	return &CartValidator{v: validator.New()}
}

var defaultCartValidator = NewCartValidator()

// ValidateCart validates s with the package default validator.
func ValidateCart(s CartSubmission) (*CartOrder, error) {
	return defaultCartValidator.Validate(s)
}

// Validate runs the presence, format, flavour and quantity rules in that
// order. The first failing rule produces a *ValidationError.
func (cv *CartValidator) Validate(s CartSubmission) (*CartOrder, error) {
	qty, qtyPresent := decodeQuantity(s.Quantity)

	missing := map[string]string{}
	if cv.v.Var(s.Name, "required") != nil {
		missing["name"] = "Name is required"
	}
	if cv.v.Var(s.Email, "required") != nil {
		missing["email"] = "Email is required"
	}
	if cv.v.Var(s.ProductFormat, "required") != nil {
		missing["productFormat"] = "Product format is required"
	}
	if cv.v.Var(s.Flavor, "required") != nil {
		missing["flavor"] = "Flavor is required"
	}
	if !qtyPresent {
		missing["quantity"] = "Quantity is required"
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Kind: MissingFields, Message: "Missing required fields", Details: missing}
	}

	if cv.v.Var(s.ProductFormat, formatTag) != nil {
		return nil, &ValidationError{
			Kind:    InvalidFormat,
			Message: "Invalid product format",
			Details: map[string]string{"productFormat": "Must be one of: " + joinValues(ProductFormats)},
		}
	}

	if cv.v.Var(s.Flavor, flavorTag) != nil {
		return nil, &ValidationError{
			Kind:    InvalidFlavor,
			Message: "Invalid flavor",
			Details: map[string]string{"flavor": "Must be one of: " + joinValues(Flavors)},
		}
	}

	quantity, ok := cv.quantityInRange(qty)
	if !ok {
		return nil, &ValidationError{
			Kind:    InvalidQuantity,
			Message: "Invalid quantity",
			Details: map[string]string{"quantity": "Must be a number between 1 and 5"},
		}
	}

	return &CartOrder{
		Name:          s.Name,
		Email:         s.Email,
		ProductFormat: ProductFormat(s.ProductFormat),
		Flavor:        Flavor(s.Flavor),
		Quantity:      quantity,
	}, nil
}

func (cv *CartValidator) quantityInRange(qty any) (int, bool) {
	n, ok := qty.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	if cv.v.Var(f, quantityTag) != nil {
		return 0, false
	}
	return int(f), true
}

// decodeQuantity returns the decoded JSON value and whether it counts as
// supplied. null, 0, "" and false are treated as not supplied.
func decodeQuantity(raw json.RawMessage) (any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, false
	}
	switch v := value.(type) {
	case nil:
		return nil, false
	case json.Number:
		f, err := v.Float64()
		if err == nil && f == 0 {
			return nil, false
		}
		return v, true
	case string:
		return v, v != ""
	case bool:
		return v, v
	default:
		return v, true
	}
}

func oneOfTag[T ~string](values []T) string {
	return "oneof=" + joinWith(values, " ")
}

func joinValues[T ~string](values []T) string {
	return joinWith(values, ", ")
}

func joinWith[T ~string](values []T, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, sep)
}

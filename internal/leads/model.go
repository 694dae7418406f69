package leads

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProductFormat is the physical form of the product a lead is interested in.
type ProductFormat string

const (
	FormatFinePowder ProductFormat = "finepowder"
	FormatHusk       ProductFormat = "husk"
	FormatTablets    ProductFormat = "tablets"
)

// ProductFormats lists every accepted format in display order.
var ProductFormats = []ProductFormat{FormatFinePowder, FormatHusk, FormatTablets}

// Valid reports whether f is one of the known formats.
func (f ProductFormat) Valid() bool {
	switch f {
	case FormatFinePowder, FormatHusk, FormatTablets:
		return true
	default:
		return false
	}
}

// ParseProductFormat converts raw input into a ProductFormat.
func ParseProductFormat(raw string) (ProductFormat, error) {
	f := ProductFormat(raw)
	if !f.Valid() {
		return "", fmt.Errorf("leads: unknown product format %q", raw)
	}
	return f, nil
}

// Flavor is the flavour variant of the product.
type Flavor string

const (
	FlavorUnflavoured Flavor = "unflavoured"
	FlavorOrange      Flavor = "orange"
)

// Flavors lists every accepted flavour in display order.
var Flavors = []Flavor{FlavorUnflavoured, FlavorOrange}

// Valid reports whether f is one of the known flavours.
func (f Flavor) Valid() bool {
	switch f {
	case FlavorUnflavoured, FlavorOrange:
		return true
	default:
		return false
	}
}

// ParseFlavor converts raw input into a Flavor.
func ParseFlavor(raw string) (Flavor, error) {
	f := Flavor(raw)
	if !f.Valid() {
		return "", fmt.Errorf("leads: unknown flavor %q", raw)
	}
	return f, nil
}

// LeadType distinguishes the kind of submission that produced a lead.
type LeadType string

const (
	TypeContact LeadType = "contact"
	TypeCart    LeadType = "cart"
)

// Valid reports whether t is a known lead type.
func (t LeadType) Valid() bool {
	switch t {
	case TypeContact, TypeCart:
		return true
	default:
		return false
	}
}

const (
	// SourceGeneral is applied when a submission does not name its source.
	SourceGeneral = "general"
	// SourceWebsite is stamped on every cart lead.
	SourceWebsite = "website"

	// DefaultQuantity is used for leads that do not carry a quantity.
	DefaultQuantity = 1
	MinCartQuantity = 1
	MaxCartQuantity = 5
)

// Lead is a captured interest or cart record. Leads are write-once.
type Lead struct {
	ID            string        `json:"id"`
	Name          string        `json:"name,omitempty"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Source        string        `json:"source"`
	ProductFormat ProductFormat `json:"productFormat"`
	Flavor        Flavor        `json:"flavor"`
	Quantity      int           `json:"quantity"`
	Type          LeadType      `json:"type"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// applyDefaults fills the fields that carry schema defaults.
func (l *Lead) applyDefaults() {
	if strings.TrimSpace(l.Source) == "" {
		l.Source = SourceGeneral
	}
	if l.Type == "" {
		l.Type = TypeContact
	}
	if l.Quantity == 0 {
		l.Quantity = DefaultQuantity
	}
}

// CheckSchema is the persistence-level check every repository runs before a
// write. It returns an error wrapping ErrSchemaViolation.
func (l *Lead) CheckSchema() error {
	var problems []string
	if l.ProductFormat == "" {
		problems = append(problems, "productFormat: product format is required")
	} else if !l.ProductFormat.Valid() {
		problems = append(problems, fmt.Sprintf("productFormat: %q is not a valid product format", string(l.ProductFormat)))
	}
	if l.Flavor == "" {
		problems = append(problems, "flavor: flavor is required")
	} else if !l.Flavor.Valid() {
		problems = append(problems, fmt.Sprintf("flavor: %q is not a valid flavor", string(l.Flavor)))
	}
	if !l.Type.Valid() {
		problems = append(problems, fmt.Sprintf("type: %q is not a valid lead type", string(l.Type)))
	}
	if l.Quantity < 1 {
		problems = append(problems, "quantity: must be at least 1")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(problems, ", "))
}

// ContactSubmission is the body of a general interest submission.
// ProductInterest and Product are accepted from the public form but have no
// column on Lead.
type ContactSubmission struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Source          string `json:"source"`
	ProductInterest string `json:"productInterest"`
	Product         string `json:"product"`
	Flavor          string `json:"flavor"`
}

// CartSubmission is the body of an add-to-cart submission. Quantity is kept
// raw so that non-numeric values can be told apart from missing ones.
type CartSubmission struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	ProductFormat string          `json:"productFormat"`
	Flavor        string          `json:"flavor"`
	Quantity      json.RawMessage `json:"quantity"`
}

// CartOrder is a CartSubmission that passed validation.
type CartOrder struct {
	Name          string
	Email         string
	ProductFormat ProductFormat
	Flavor        Flavor
	Quantity      int
}

// Key returns the duplicate-detection key for the order.
func (o CartOrder) Key() CartKey {
	return CartKey{Email: o.Email, ProductFormat: o.ProductFormat, Flavor: o.Flavor}
}

// Lead builds the cart lead that will be persisted for the order.
func (o CartOrder) Lead() *Lead {
	return &Lead{
		Name:          o.Name,
		Email:         o.Email,
		ProductFormat: o.ProductFormat,
		Flavor:        o.Flavor,
		Quantity:      o.Quantity,
		Type:          TypeCart,
		Source:        SourceWebsite,
	}
}

// CartKey identifies a product/flavour combination for one email address.
type CartKey struct {
	Email         string
	ProductFormat ProductFormat
	Flavor        Flavor
}

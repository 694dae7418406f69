package leads

import (
	"context"
	"errors"
)

// DuplicateChecker looks for an existing cart lead with the same email,
// format and flavour. The check and the following insert are not atomic, so
// concurrent identical submissions can both pass.
type DuplicateChecker struct {
	repo Repository
}

// NewDuplicateChecker creates a checker over repo.
func NewDuplicateChecker(repo Repository) *DuplicateChecker {
	return &DuplicateChecker{repo: repo}
}

// Exists reports whether a cart lead for key is already stored.
func (c *DuplicateChecker) Exists(ctx context.Context, key CartKey) (bool, error) {
	_, err := c.repo.FindOne(ctx, Filter{
		Type:          TypeCart,
		Email:         key.Email,
		ProductFormat: key.ProductFormat,
		Flavor:        key.Flavor,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrLeadNotFound):
		return false, nil
	default:
		return false, persistenceError("find", err)
	}
}

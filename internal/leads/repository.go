package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter selects leads by exact match on every non-empty field.
type Filter struct {
	Type          LeadType
	Email         string
	ProductFormat ProductFormat
	Flavor        Flavor
}

func (f Filter) matches(l *Lead) bool {
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.Email != "" && l.Email != f.Email {
		return false
	}
	if f.ProductFormat != "" && l.ProductFormat != f.ProductFormat {
		return false
	}
	if f.Flavor != "" && l.Flavor != f.Flavor {
		return false
	}
	return true
}

// Repository defines the interface for lead storage
type Repository interface {
	// Create applies schema defaults, checks the schema, assigns ID and
	// CreatedAt and stores the lead.
	Create(ctx context.Context, lead *Lead) (*Lead, error)
	// FindOne returns any lead matching filter or ErrLeadNotFound.
	FindOne(ctx context.Context, filter Filter) (*Lead, error)
	// ListAll returns every lead, most recent first.
	ListAll(ctx context.Context) ([]*Lead, error)
	// DeleteAll removes every lead and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// InMemoryRepository keeps leads in process memory. Used for local
// development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: func() time.Time { return time.Now().UTC() }}
}

// prepareLead copies lead, fills defaults and stamps identity fields.
func prepareLead(lead *Lead, now time.Time) (*Lead, error) {
	stored := *lead
	stored.applyDefaults()
	if err := stored.CheckSchema(); err != nil {
		return nil, err
	}
	stored.ID = uuid.New().String()
	stored.CreatedAt = now
	return &stored, nil
}

// Create stores a copy of lead.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	stored, err := prepareLead(lead, r.now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.leads = append(r.leads, stored)
	r.mu.Unlock()

	out := *stored
	return &out, nil
}

// FindOne returns the first stored lead matching filter.
func (r *InMemoryRepository) FindOne(ctx context.Context, filter Filter) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.leads {
		if filter.matches(l) {
			out := *l
			return &out, nil
		}
	}
	return nil, ErrLeadNotFound
}

// ListAll returns copies of every lead ordered by CreatedAt descending.
func (r *InMemoryRepository) ListAll(ctx context.Context) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads))
	for _, l := range r.leads {
		cp := *l
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	// Stable so that leads sharing a timestamp keep newest-inserted first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteAll drops every stored lead.
func (r *InMemoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	n := int64(len(r.leads))
	r.leads = nil
	r.mu.Unlock()
	return n, nil
}

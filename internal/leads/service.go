package leads

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

var leadsTracer = otel.Tracer("leadcapture.internal.leads")

// Outcome labels reported to the Observer.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
	OutcomeOK        = "ok"
)

// Observer receives counters for submissions and admin operations.
type Observer interface {
	ObserveSubmission(kind LeadType, outcome string)
	ObserveAdmin(op, outcome string)
}

// Notifier is told about every lead that was stored.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// ServiceConfig wires the collaborators of Service. Only Repo is required.
type ServiceConfig struct {
	Repo      Repository
	Validator *CartValidator
	Observer  Observer
	Notifier  Notifier
	Logger    *logging.Logger
}

// Service orchestrates lead submissions and the admin operations.
type Service struct {
	repo      Repository
	checker   *DuplicateChecker
	validator *CartValidator
	observer  Observer
	notifier  Notifier
	logger    *logging.Logger
}

// NewService creates a lead service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Repo == nil {
		panic("leads: repository required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Validator == nil {
		cfg.Validator = defaultCartValidator
	}
	return &Service{
		repo:      cfg.Repo,
		checker:   NewDuplicateChecker(cfg.Repo),
		validator: cfg.Validator,
		observer:  cfg.Observer,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
	}
}

// SubmitContact stores a general interest lead. Only the persistence-level
// schema is enforced; productInterest and product are not mapped.
func (s *Service) SubmitContact(ctx context.Context, sub ContactSubmission) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.submit_contact")
	defer span.End()
	span.SetAttributes(attribute.String("lead.type", string(TypeContact)))

	if sub.ProductInterest != "" || sub.Product != "" {
		s.logger.Warn("contact submission carries unmapped product fields",
			"product_interest", sub.ProductInterest,
			"product", sub.Product,
		)
	}

	lead := &Lead{
		Name:   sub.Name,
		Email:  sub.Email,
		Phone:  sub.Phone,
		Source: sub.Source,
		Flavor: Flavor(sub.Flavor),
		Type:   TypeContact,
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		s.observe(TypeContact, OutcomeError)
		recordSpanError(span, err)
		s.logger.Error("failed to save lead", "error", err)
		return nil, persistenceError("create", err)
	}

	s.observe(TypeContact, OutcomeCreated)
	s.logger.Info("lead created", "id", created.ID, "type", created.Type)
	s.notify(ctx, created)
	return created, nil
}

// SubmitCart validates, deduplicates and stores a cart lead.
func (s *Service) SubmitCart(ctx context.Context, sub CartSubmission) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.submit_cart")
	defer span.End()
	span.SetAttributes(attribute.String("lead.type", string(TypeCart)))

	s.logger.Debug("received cart data",
		"email", sub.Email,
		"product_format", sub.ProductFormat,
		"flavor", sub.Flavor,
		"quantity", string(sub.Quantity),
	)

	order, err := s.validator.Validate(sub)
	if err != nil {
		s.observe(TypeCart, OutcomeInvalid)
		var ve *ValidationError
		if errors.As(err, &ve) {
			span.SetAttributes(attribute.String("lead.rejection", string(ve.Kind)))
		}
		return nil, err
	}

	exists, err := s.checker.Exists(ctx, order.Key())
	if err != nil {
		s.observe(TypeCart, OutcomeError)
		recordSpanError(span, err)
		s.logger.Error("duplicate check failed", "error", err)
		return nil, err
	}
	if exists {
		s.observe(TypeCart, OutcomeDuplicate)
		s.logger.Info("duplicate cart lead rejected",
			"email", order.Email,
			"product_format", order.ProductFormat,
			"flavor", order.Flavor,
		)
		return nil, newConflictError(order.Key())
	}

	created, err := s.repo.Create(ctx, order.Lead())
	if err != nil {
		s.observe(TypeCart, OutcomeError)
		recordSpanError(span, err)
		s.logger.Error("failed to save cart lead", "error", err)
		return nil, persistenceError("create", err)
	}

	s.observe(TypeCart, OutcomeCreated)
	s.logger.Info("cart lead created",
		"id", created.ID,
		"product_format", created.ProductFormat,
		"flavor", created.Flavor,
		"quantity", created.Quantity,
	)
	s.notify(ctx, created)
	return created, nil
}

// ListAll returns every lead, newest first. Callers must already be
// authorized.
func (s *Service) ListAll(ctx context.Context) ([]*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.list_all")
	defer span.End()

	out, err := s.repo.ListAll(ctx)
	if err != nil {
		s.observeAdmin("list", OutcomeError)
		recordSpanError(span, err)
		s.logger.Error("failed to list leads", "error", err)
		return nil, persistenceError("list", err)
	}
	s.observeAdmin("list", OutcomeOK)
	span.SetAttributes(attribute.Int("lead.count", len(out)))
	return out, nil
}

// ClearAll deletes every lead. There is no undo.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.clear_all")
	defer span.End()

	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		s.observeAdmin("clear", OutcomeError)
		recordSpanError(span, err)
		s.logger.Error("failed to clear leads", "error", err)
		return 0, persistenceError("delete", err)
	}
	s.observeAdmin("clear", OutcomeOK)
	s.logger.Warn("all leads cleared", "deleted", n)
	return n, nil
}

func (s *Service) notify(ctx context.Context, lead *Lead) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewLead(ctx, lead); err != nil {
		s.logger.Warn("new lead notification failed", "error", err, "id", lead.ID)
	}
}

func (s *Service) observe(kind LeadType, outcome string) {
	if s.observer != nil {
		s.observer.ObserveSubmission(kind, outcome)
	}
}

func (s *Service) observeAdmin(op, outcome string) {
	if s.observer != nil {
		s.observer.ObserveAdmin(op, outcome)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

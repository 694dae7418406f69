package leads

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func testLead(email string) *Lead {
	return &Lead{
		Name:          "Test User",
		Email:         email,
		ProductFormat: FormatHusk,
		Flavor:        FlavorOrange,
		Quantity:      2,
		Type:          TypeCart,
		Source:        SourceWebsite,
	}
}

func TestRepository_Create(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, testLead("jane@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.ID == "" {
		t.Error("expected lead ID to be set")
	}
	if lead.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if lead.Email != "jane@example.com" {
		t.Errorf("expected email jane@example.com, got %s", lead.Email)
	}
}

func TestRepository_CreateAppliesDefaults(t *testing.T) {
	repo := NewInMemoryRepository()

	lead, err := repo.Create(context.Background(), &Lead{
		ProductFormat: FormatTablets,
		Flavor:        FlavorUnflavoured,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Source != SourceGeneral {
		t.Errorf("expected source %q, got %q", SourceGeneral, lead.Source)
	}
	if lead.Type != TypeContact {
		t.Errorf("expected type %q, got %q", TypeContact, lead.Type)
	}
	if lead.Quantity != DefaultQuantity {
		t.Errorf("expected quantity %d, got %d", DefaultQuantity, lead.Quantity)
	}
}

func TestRepository_CreateRejectsSchemaViolation(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.Create(context.Background(), &Lead{Name: "No Product"}); err == nil {
		t.Fatal("expected schema violation")
	}
	all, _ := repo.ListAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(all))
	}
}

func TestRepository_CreateDoesNotAliasInput(t *testing.T) {
	repo := NewInMemoryRepository()
	in := testLead("alias@example.com")

	created, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created.Email = "changed@example.com"
	in.Email = "changed-too@example.com"

	found, err := repo.FindOne(context.Background(), Filter{Email: "alias@example.com"})
	if err != nil {
		t.Fatalf("expected stored lead to be unchanged: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("expected ID %s, got %s", created.ID, found.ID)
	}
}

func TestRepository_FindOne(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, testLead("test@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.FindOne(ctx, Filter{Type: TypeCart, Email: "test@example.com", ProductFormat: FormatHusk, Flavor: FlavorOrange})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Email != "test@example.com" {
		t.Errorf("unexpected lead: %+v", found)
	}

	if _, err := repo.FindOne(ctx, Filter{Type: TypeCart, Email: "test@example.com", Flavor: FlavorUnflavoured}); err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound for other flavor, got %v", err)
	}
	if _, err := repo.FindOne(ctx, Filter{Type: TypeContact, Email: "test@example.com"}); err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound for contact type, got %v", err)
	}
}

func TestRepository_FindOne_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.FindOne(context.Background(), Filter{Email: "nonexistent@example.com"})
	if err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestRepository_ListAllNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	emails := []string{"first@example.com", "second@example.com", "third@example.com"}
	for _, e := range emails {
		if _, err := repo.Create(ctx, testLead(e)); err != nil {
			t.Fatalf("create %s: %v", e, err)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(all))
	}
	if all[0].Email != "third@example.com" || all[2].Email != "first@example.com" {
		t.Fatalf("unexpected order: %s, %s, %s", all[0].Email, all[1].Email, all[2].Email)
	}
}

func TestRepository_ListAllSameTimestampNewestInsertFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	for _, e := range []string{"a@example.com", "b@example.com"} {
		if _, err := repo.Create(ctx, testLead(e)); err != nil {
			t.Fatalf("create %s: %v", e, err)
		}
	}
	all, _ := repo.ListAll(ctx)
	if all[0].Email != "b@example.com" {
		t.Fatalf("expected most recent insert first, got %s", all[0].Email)
	}
}

func TestRepository_DeleteAll(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, e := range []string{"a@example.com", "b@example.com"} {
		if _, err := repo.Create(ctx, testLead(e)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	n, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	all, _ := repo.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty list, got %d", len(all))
	}
}

func TestMongoFilter(t *testing.T) {
	got := mongoFilter(Filter{Type: TypeCart, Email: "a@x.com", ProductFormat: FormatHusk, Flavor: FlavorOrange})
	want := bson.D{
		{Key: "type", Value: "cart"},
		{Key: "email", Value: "a@x.com"},
		{Key: "productFormat", Value: "husk"},
		{Key: "flavor", Value: "orange"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if empty := mongoFilter(Filter{}); len(empty) != 0 {
		t.Errorf("expected empty filter, got %v", empty)
	}
}

func TestMongoLeadRoundTrip(t *testing.T) {
	in := testLead("round@example.com")
	in.ID = "4b7c0a1e-0000-4000-8000-000000000001"
	in.CreatedAt = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	out := toMongoLead(in).lead()
	if *out != *in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

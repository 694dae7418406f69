package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxDB is the subset of *pgxpool.Pool used by PostgresRepository.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const leadColumns = "id, name, email, phone, source, product_format, flavor, quantity, type, created_at"

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db pgxDB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	stored, err := prepareLead(lead, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO leads (id, name, email, phone, source, product_format, flavor, quantity, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		stored.ID,
		stored.Name,
		stored.Email,
		stored.Phone,
		stored.Source,
		string(stored.ProductFormat),
		string(stored.Flavor),
		stored.Quantity,
		string(stored.Type),
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	stored.CreatedAt = createdAt.UTC()
	return stored, nil
}

// FindOne returns one lead matching every non-empty filter field.
func (r *PostgresRepository) FindOne(ctx context.Context, filter Filter) (*Lead, error) {
	where, args := filterClause(filter)
	query := "SELECT " + leadColumns + " FROM leads" + where + " LIMIT 1"

	lead, err := scanLead(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// ListAll returns all leads, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads ORDER BY created_at DESC"
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

// DeleteAll removes every row from the leads table.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM leads")
	if err != nil {
		return 0, fmt.Errorf("leads: delete failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func filterClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("type", string(f.Type))
	add("email", f.Email)
	add("product_format", string(f.ProductFormat))
	add("flavor", string(f.Flavor))
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead                     Lead
		format, flavor, leadType string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Source,
		&format,
		&flavor,
		&lead.Quantity,
		&leadType,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	lead.ProductFormat = ProductFormat(format)
	lead.Flavor = Flavor(flavor)
	lead.Type = LeadType(leadType)
	lead.CreatedAt = lead.CreatedAt.UTC()
	return &lead, nil
}

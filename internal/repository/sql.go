package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"propertypal/common/database"
	"propertypal/internal/domain"
)

// SQLProperties stores each property as one JSON document per row,
// listed in created_at order.
type SQLProperties struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLProperties(db *sql.DB, dialect database.Dialect) *SQLProperties {
	return &SQLProperties{db: db, dialect: dialect}
}

var _ PropertiesRepository = (*SQLProperties)(nil)

// EnsureSchema creates the properties, members and payments tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_property ON members (property_id)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			member_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_member ON payments (member_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *SQLProperties) ListProperties(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM properties ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	out := []domain.Property{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		var p domain.Property
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("failed to decode property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLProperties) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	q := fmt.Sprintf(`SELECT payload FROM properties WHERE id = %s`, r.dialect.Placeholder(1))
	var payload string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	var p domain.Property
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to decode property: %w", err)
	}
	return &p, nil
}

func (r *SQLProperties) SaveProperty(ctx context.Context, p *domain.Property) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode property: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO properties (id, name, created_at, payload) VALUES (%s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, payload = excluded.payload`,
		r.dialect.Placeholder(1), r.dialect.Placeholder(2), r.dialect.Placeholder(3), r.dialect.Placeholder(4))
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.CreatedAt, string(payload)); err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

func (r *SQLProperties) DeleteProperty(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM properties WHERE id = %s`, r.dialect.Placeholder(1))
	return execDelete(ctx, r.db, q, id, "property")
}

// SQLMembers members as JSON documents, indexed by property.
type SQLMembers struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLMembers(db *sql.DB, dialect database.Dialect) *SQLMembers {
	return &SQLMembers{db: db, dialect: dialect}
}

var _ MembersRepository = (*SQLMembers)(nil)

func (r *SQLMembers) ListMembers(ctx context.Context, propertyID string) ([]domain.Member, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if propertyID == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT payload FROM members ORDER BY created_at, id`)
	} else {
		q := fmt.Sprintf(`SELECT payload FROM members WHERE property_id = %s ORDER BY created_at, id`, r.dialect.Placeholder(1))
		rows, err = r.db.QueryContext(ctx, q, propertyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	out := []domain.Member{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		var m domain.Member
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("failed to decode member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLMembers) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	q := fmt.Sprintf(`SELECT payload FROM members WHERE id = %s`, r.dialect.Placeholder(1))
	var payload string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	var m domain.Member
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("failed to decode member: %w", err)
	}
	return &m, nil
}

func (r *SQLMembers) SaveMember(ctx context.Context, m *domain.Member) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode member: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO members (id, property_id, created_at, payload) VALUES (%s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET property_id = excluded.property_id, payload = excluded.payload`,
		r.dialect.Placeholder(1), r.dialect.Placeholder(2), r.dialect.Placeholder(3), r.dialect.Placeholder(4))
	if _, err := r.db.ExecContext(ctx, q, m.ID, m.PropertyID, m.CreatedAt, string(payload)); err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

func (r *SQLMembers) DeleteMember(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM members WHERE id = %s`, r.dialect.Placeholder(1))
	return execDelete(ctx, r.db, q, id, "member")
}

// SQLPayments payments as JSON documents, indexed by member.
type SQLPayments struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLPayments(db *sql.DB, dialect database.Dialect) *SQLPayments {
	return &SQLPayments{db: db, dialect: dialect}
}

var _ PaymentsRepository = (*SQLPayments)(nil)

func (r *SQLPayments) ListPayments(ctx context.Context, memberID string) ([]domain.Payment, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if memberID == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT payload FROM payments ORDER BY created_at, id`)
	} else {
		q := fmt.Sprintf(`SELECT payload FROM payments WHERE member_id = %s ORDER BY created_at, id`, r.dialect.Placeholder(1))
		rows, err = r.db.QueryContext(ctx, q, memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	out := []domain.Payment{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		var p domain.Payment
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("failed to decode payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLPayments) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	q := fmt.Sprintf(`SELECT payload FROM payments WHERE id = %s`, r.dialect.Placeholder(1))
	var payload string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	var p domain.Payment
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to decode payment: %w", err)
	}
	return &p, nil
}

func (r *SQLPayments) SavePayment(ctx context.Context, p *domain.Payment) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payment: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO payments (id, member_id, created_at, payload) VALUES (%s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload`,
		r.dialect.Placeholder(1), r.dialect.Placeholder(2), r.dialect.Placeholder(3), r.dialect.Placeholder(4))
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.MemberID, p.CreatedAt, string(payload)); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (r *SQLPayments) DeletePayment(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM payments WHERE id = %s`, r.dialect.Placeholder(1))
	return execDelete(ctx, r.db, q, id, "payment")
}

func execDelete(ctx context.Context, db *sql.DB, q, id, kind string) error {
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

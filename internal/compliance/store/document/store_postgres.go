package document

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
)

// PostgresStore persists filed documents.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *compliance.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, org_id, category, name, expires_at, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		d.ID, uuid.UUID(d.OrgID), string(d.Category), d.Name, d.ExpiresAt, d.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*compliance.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, category, name, expires_at, uploaded_at
		FROM documents
		WHERE org_id = $1
		ORDER BY uploaded_at, id
	`, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*compliance.Document
	for rows.Next() {
		var (
			d         compliance.Document
			org       uuid.UUID
			category  string
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&d.ID, &org, &category, &d.Name, &expiresAt, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.OrgID = domain.OrgID(org)
		d.Category = compliance.DocumentCategory(category)
		if expiresAt.Valid {
			t := expiresAt.Time.UTC()
			d.ExpiresAt = &t
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

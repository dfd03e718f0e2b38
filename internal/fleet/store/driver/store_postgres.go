package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"convoy/internal/fleet/models"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// PostgresStore persists drivers in PostgreSQL. Pure I/O; scoring rules and
// credential banding belong in the services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (id, org_id, name, risk_score, license_expiry, medical_card_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(d.ID), uuid.UUID(d.OrgID), d.Name, d.RiskScore,
		d.LicenseExpiry, d.MedicalCardExpiry, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) (*models.Driver, error) {
	query := `
		SELECT id, org_id, name, risk_score, license_expiry, medical_card_expiry, created_at, updated_at
		FROM drivers
		WHERE org_id = $1 AND id = $2
	`
	d, err := scanDriver(s.db.QueryRowContext(ctx, query, uuid.UUID(orgID), uuid.UUID(driverID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find driver: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*models.Driver, error) {
	query := `
		SELECT id, org_id, name, risk_score, license_expiry, medical_card_expiry, created_at, updated_at
		FROM drivers
		WHERE org_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateRiskScore(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, score int, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE drivers SET risk_score = $3, updated_at = $4
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(orgID), uuid.UUID(driverID), score, now)
	if err != nil {
		return fmt.Errorf("update risk score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update risk score: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateCredentials(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, license, medical *time.Time, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE drivers SET license_expiry = $3, medical_card_expiry = $4, updated_at = $5
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(orgID), uuid.UUID(driverID), license, medical, now)
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*models.Driver, error) {
	var (
		d        models.Driver
		id, org  uuid.UUID
		license  sql.NullTime
		medical sql.NullTime
	)
	if err := row.Scan(&id, &org, &d.Name, &d.RiskScore, &license, &medical, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.ID = domain.DriverID(id)
	d.OrgID = domain.OrgID(org)
	if license.Valid {
		t := license.Time
		d.LicenseExpiry = &t
	}
	if medical.Valid {
		t := medical.Time
		d.MedicalCardExpiry = &t
	}
	return &d, nil
}

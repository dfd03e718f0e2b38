package inspection

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// PostgresStore persists inspections.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, i *compliance.Inspection) error {
	var driverID any
	if !i.DriverID.IsNil() {
		driverID = uuid.UUID(i.DriverID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inspections (id, org_id, driver_id, finding, remediation_status, remediation_due_date, inspected_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		i.ID, uuid.UUID(i.OrgID), driverID,
		i.Finding, string(i.RemediationStatus), i.RemediationDueDate,
		i.InspectedAt, i.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inspection: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*compliance.Inspection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, driver_id, finding, remediation_status, remediation_due_date, inspected_at, created_at
		FROM inspections
		WHERE org_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	var out []*compliance.Inspection
	for rows.Next() {
		var (
			i        compliance.Inspection
			org      uuid.UUID
			driverID uuid.NullUUID
			status   string
			dueDate  sql.NullTime
		)
		if err := rows.Scan(&i.ID, &org, &driverID, &i.Finding, &status, &dueDate, &i.InspectedAt, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		i.OrgID = domain.OrgID(org)
		if driverID.Valid {
			i.DriverID = domain.DriverID(driverID.UUID)
		}
		i.RemediationStatus = compliance.RemediationStatus(status)
		if dueDate.Valid {
			d := dueDate.Time.UTC()
			i.RemediationDueDate = &d
		}
		out = append(out, &i)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateRemediation(ctx context.Context, orgID domain.OrgID, inspectionID uuid.UUID, status compliance.RemediationStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inspections SET remediation_status = $3
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(orgID), inspectionID, string(status))
	if err != nil {
		return fmt.Errorf("update inspection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update inspection: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

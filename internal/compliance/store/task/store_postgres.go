package task

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"convoy/internal/compliance"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// PostgresStore persists compliance tasks.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *compliance.Task) error {
	var driverID any
	if !t.DriverID.IsNil() {
		driverID = uuid.UUID(t.DriverID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_tasks (id, org_id, driver_id, title, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(t.ID), uuid.UUID(t.OrgID), driverID,
		t.Title, string(t.Status), string(t.Priority), t.DueDate,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create compliance task: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*compliance.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, driver_id, title, status, priority, due_date, created_at, updated_at
		FROM compliance_tasks
		WHERE org_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list compliance tasks: %w", err)
	}
	defer rows.Close()

	var out []*compliance.Task
	for rows.Next() {
		var (
			t                compliance.Task
			id, org          uuid.UUID
			driverID         uuid.NullUUID
			status, priority string
			dueDate          sql.NullTime
		)
		if err := rows.Scan(&id, &org, &driverID, &t.Title, &status, &priority, &dueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan compliance task: %w", err)
		}
		t.ID = domain.TaskID(id)
		t.OrgID = domain.OrgID(org)
		if driverID.Valid {
			t.DriverID = domain.DriverID(driverID.UUID)
		}
		t.Status = compliance.TaskStatus(status)
		t.Priority = compliance.Priority(priority)
		if dueDate.Valid {
			d := dueDate.Time.UTC()
			t.DueDate = &d
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, orgID domain.OrgID, taskID domain.TaskID, status compliance.TaskStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE compliance_tasks SET status = $3, updated_at = now()
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(orgID), uuid.UUID(taskID), string(status))
	if err != nil {
		return fmt.Errorf("update compliance task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update compliance task: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"convoy/internal/coaching"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// PostgresStore persists coaching plans. Check-ins travel with the plan as
// a JSONB column; they are only ever read and written as a unit through
// the state machine, so a separate table buys nothing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *coaching.CoachingPlan) error {
	checkIns, err := json.Marshal(p.CheckIns)
	if err != nil {
		return fmt.Errorf("marshal check-ins: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO coaching_plans (id, org_id, driver_id, plan_type, status, start_date, duration_weeks, due_date, target_score, check_ins, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(p.ID), uuid.UUID(p.OrgID), uuid.UUID(p.DriverID),
		p.Type, string(p.Status), p.StartDate, p.DurationWeeks, p.DueDate,
		p.TargetScore, checkIns, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create coaching plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orgID domain.OrgID, planID domain.PlanID) (*coaching.CoachingPlan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, driver_id, plan_type, status, start_date, duration_weeks, due_date, target_score, check_ins, created_at, updated_at
		FROM coaching_plans
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(orgID), uuid.UUID(planID))

	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find coaching plan: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListByDriver(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) ([]*coaching.CoachingPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, driver_id, plan_type, status, start_date, duration_weeks, due_date, target_score, check_ins, created_at, updated_at
		FROM coaching_plans
		WHERE org_id = $1 AND driver_id = $2
		ORDER BY created_at, id
	`, uuid.UUID(orgID), uuid.UUID(driverID))
	if err != nil {
		return nil, fmt.Errorf("list coaching plans: %w", err)
	}
	defer rows.Close()

	var out []*coaching.CoachingPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coaching plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, p *coaching.CoachingPlan) error {
	checkIns, err := json.Marshal(p.CheckIns)
	if err != nil {
		return fmt.Errorf("marshal check-ins: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE coaching_plans
		SET status = $3, due_date = $4, target_score = $5, check_ins = $6, updated_at = $7
		WHERE org_id = $1 AND id = $2
	`,
		uuid.UUID(p.OrgID), uuid.UUID(p.ID),
		string(p.Status), p.DueDate, p.TargetScore, checkIns, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update coaching plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update coaching plan: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ActiveDriverIDs(ctx context.Context, orgID domain.OrgID) ([]domain.DriverID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT ON (driver_id) driver_id
		FROM coaching_plans
		WHERE org_id = $1 AND status = $2
		ORDER BY driver_id
	`, uuid.UUID(orgID), string(coaching.PlanActive))
	if err != nil {
		return nil, fmt.Errorf("list active coaching drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.DriverID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan driver id: %w", err)
		}
		out = append(out, domain.DriverID(id))
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*coaching.CoachingPlan, error) {
	var (
		p            coaching.CoachingPlan
		id, org, drv uuid.UUID
		status       string
		dueDate      sql.NullTime
		targetScore  sql.NullInt64
		checkIns     []byte
	)
	err := row.Scan(&id, &org, &drv, &p.Type, &status, &p.StartDate, &p.DurationWeeks,
		&dueDate, &targetScore, &checkIns, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = domain.PlanID(id)
	p.OrgID = domain.OrgID(org)
	p.DriverID = domain.DriverID(drv)
	p.Status = coaching.PlanStatus(status)
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		p.DueDate = &t
	}
	if targetScore.Valid {
		v := int(targetScore.Int64)
		p.TargetScore = &v
	}
	if len(checkIns) > 0 {
		if err := json.Unmarshal(checkIns, &p.CheckIns); err != nil {
			return nil, fmt.Errorf("unmarshal check-ins: %w", err)
		}
	}
	return &p, nil
}

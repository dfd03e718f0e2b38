package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"convoy/internal/workorder"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// PostgresStore persists work orders. Line items travel with the order as
// a JSONB column; cost roll-ups are stored denormalized for list queries.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, w *workorder.WorkOrder) error {
	lineItems, err := json.Marshal(w.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	var driverID any
	if !w.DriverID.IsNil() {
		driverID = uuid.UUID(w.DriverID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO work_orders (id, org_id, driver_id, equipment, summary, status, priority, approver, assignee, due_date, line_items, parts_cost_cents, labor_cost_cents, total_cost_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		uuid.UUID(w.ID), uuid.UUID(w.OrgID), driverID,
		w.Equipment, w.Summary, string(w.Status), string(w.Priority),
		w.Approver, w.Assignee, w.DueDate, lineItems,
		w.PartsCostCents, w.LaborCostCents, w.TotalCostCents,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orgID domain.OrgID, orderID domain.WorkOrderID) (*workorder.WorkOrder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, driver_id, equipment, summary, status, priority, approver, assignee, due_date, line_items, parts_cost_cents, labor_cost_cents, total_cost_cents, created_at, updated_at
		FROM work_orders
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(orgID), uuid.UUID(orderID))

	w, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find work order: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) ListByOrg(ctx context.Context, orgID domain.OrgID) ([]*workorder.WorkOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, driver_id, equipment, summary, status, priority, approver, assignee, due_date, line_items, parts_cost_cents, labor_cost_cents, total_cost_cents, created_at, updated_at
		FROM work_orders
		WHERE org_id = $1
		ORDER BY created_at, id
	`, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	var out []*workorder.WorkOrder
	for rows.Next() {
		w, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, w *workorder.WorkOrder) error {
	lineItems, err := json.Marshal(w.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE work_orders
		SET status = $3, priority = $4, approver = $5, assignee = $6, due_date = $7, line_items = $8, parts_cost_cents = $9, labor_cost_cents = $10, total_cost_cents = $11, updated_at = $12
		WHERE org_id = $1 AND id = $2
	`,
		uuid.UUID(w.OrgID), uuid.UUID(w.ID),
		string(w.Status), string(w.Priority), w.Approver, w.Assignee, w.DueDate,
		lineItems, w.PartsCostCents, w.LaborCostCents, w.TotalCostCents, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*workorder.WorkOrder, error) {
	var (
		w                workorder.WorkOrder
		id, org          uuid.UUID
		driverID         uuid.NullUUID
		status, priority string
		dueDate          sql.NullTime
		lineItems        []byte
	)
	err := row.Scan(&id, &org, &driverID, &w.Equipment, &w.Summary, &status, &priority,
		&w.Approver, &w.Assignee, &dueDate, &lineItems,
		&w.PartsCostCents, &w.LaborCostCents, &w.TotalCostCents,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.ID = domain.WorkOrderID(id)
	w.OrgID = domain.OrgID(org)
	if driverID.Valid {
		w.DriverID = domain.DriverID(driverID.UUID)
	}
	w.Status = workorder.Status(status)
	w.Priority = workorder.Priority(priority)
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		w.DueDate = &t
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &w.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	return &w, nil
}

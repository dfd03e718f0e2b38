package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"convoy/internal/scoring"
	"convoy/pkg/domain"
)

// PostgresStore persists risk events in PostgreSQL. The table is append-only;
// there are no update or delete paths.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e scoring.RiskEvent) error {
	var metadata []byte
	if e.Metadata != nil {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_events (id, org_id, driver_id, source, event_type, severity, delta_override, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(e.ID), uuid.UUID(e.OrgID), uuid.UUID(e.DriverID),
		e.Source, string(e.Type), e.Severity, e.DeltaOverride, e.OccurredAt, metadata,
	)
	if err != nil {
		return fmt.Errorf("append risk event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDriverSince(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID, since time.Time) ([]scoring.RiskEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, driver_id, source, event_type, severity, delta_override, occurred_at, metadata
		FROM risk_events
		WHERE org_id = $1 AND driver_id = $2 AND occurred_at >= $3
		ORDER BY occurred_at, id
	`, uuid.UUID(orgID), uuid.UUID(driverID), since)
	if err != nil {
		return nil, fmt.Errorf("list driver risk events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (s *PostgresStore) ListByOrgSince(ctx context.Context, orgID domain.OrgID, since time.Time) ([]scoring.RiskEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, driver_id, source, event_type, severity, delta_override, occurred_at, metadata
		FROM risk_events
		WHERE org_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at, id
	`, uuid.UUID(orgID), since)
	if err != nil {
		return nil, fmt.Errorf("list org risk events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]scoring.RiskEvent, error) {
	var out []scoring.RiskEvent
	for rows.Next() {
		var (
			e             scoring.RiskEvent
			id, org, drv  uuid.UUID
			eventType     string
			deltaOverride sql.NullInt64
			metadata      []byte
		)
		if err := rows.Scan(&id, &org, &drv, &e.Source, &eventType, &e.Severity, &deltaOverride, &e.OccurredAt, &metadata); err != nil {
			return nil, fmt.Errorf("scan risk event: %w", err)
		}
		e.ID = domain.EventID(id)
		e.OrgID = domain.OrgID(org)
		e.DriverID = domain.DriverID(drv)
		e.Type = scoring.EventType(eventType)
		if deltaOverride.Valid {
			v := int(deltaOverride.Int64)
			e.DeltaOverride = &v
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"convoy/internal/scoring"
	"convoy/pkg/domain"
	"convoy/pkg/platform/sentinel"
)

// PostgresStore persists score snapshots. AppendAndProject runs the snapshot
// insert and the driver projection update in one transaction, so the
// "current score" column can never drift ahead of or behind the history.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AppendAndProject(ctx context.Context, snap scoring.RiskScoreSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO risk_score_snapshots (id, org_id, driver_id, composite, motive_score, local_score, band, degraded, window_start, window_end, as_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		uuid.UUID(snap.ID), uuid.UUID(snap.OrgID), uuid.UUID(snap.DriverID),
		snap.Composite, snap.MotiveScore, snap.LocalScore, string(snap.Band),
		snap.Degraded, snap.WindowStart, snap.WindowEnd, snap.AsOf,
	)
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE drivers SET risk_score = $3, updated_at = $4
		WHERE org_id = $1 AND id = $2
	`, uuid.UUID(snap.OrgID), uuid.UUID(snap.DriverID), snap.Composite, snap.AsOf)
	if err != nil {
		return fmt.Errorf("project driver score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("project driver score: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) (*scoring.RiskScoreSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, driver_id, composite, motive_score, local_score, band, degraded, window_start, window_end, as_of
		FROM risk_score_snapshots
		WHERE org_id = $1 AND driver_id = $2
		ORDER BY as_of DESC, id DESC
		LIMIT 1
	`, uuid.UUID(orgID), uuid.UUID(driverID))

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

func (s *PostgresStore) History(ctx context.Context, orgID domain.OrgID, driverID domain.DriverID) ([]scoring.ScorePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT composite, as_of
		FROM risk_score_snapshots
		WHERE org_id = $1 AND driver_id = $2
		ORDER BY as_of, id
	`, uuid.UUID(orgID), uuid.UUID(driverID))
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	defer rows.Close()

	var out []scoring.ScorePoint
	for rows.Next() {
		var p scoring.ScorePoint
		if err := rows.Scan(&p.Score, &p.AsOf); err != nil {
			return nil, fmt.Errorf("scan score point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*scoring.RiskScoreSnapshot, error) {
	var (
		snap         scoring.RiskScoreSnapshot
		id, org, drv uuid.UUID
		band         string
	)
	err := row.Scan(&id, &org, &drv, &snap.Composite, &snap.MotiveScore, &snap.LocalScore,
		&band, &snap.Degraded, &snap.WindowStart, &snap.WindowEnd, &snap.AsOf)
	if err != nil {
		return nil, err
	}
	snap.ID = domain.SnapshotID(id)
	snap.OrgID = domain.OrgID(org)
	snap.DriverID = domain.DriverID(drv)
	snap.Band = scoring.Band(band)
	return &snap, nil
}

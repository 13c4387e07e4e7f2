package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

const circleColumns = `id, cooperative_id, name, amount, frequency, strategy,
	total_cycles, current_cycle, status, invite_deadline, cancel_reason,
	created_by, created_at, activated_at, completed_at, cancelled_at`

// CreateCircle persists a new circle and its initial participant rows in one
// transaction.
func (s *SQLiteStore) CreateCircle(ctx context.Context, circle *models.Circle, participants []*models.Participant) error {
	if circle.ID == "" {
		circle.ID = uuid.New().String()
	}
	if circle.CreatedAt == 0 {
		circle.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cancelReason interface{}
	if circle.CancelReason != "" {
		cancelReason = circle.CancelReason
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO circles (`+circleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		circle.ID, circle.CooperativeID, circle.Name, circle.Amount,
		circle.Frequency, circle.Strategy, circle.TotalCycles,
		circle.CurrentCycle, circle.Status, circle.InviteDeadline,
		cancelReason, circle.CreatedBy, circle.CreatedAt,
		circle.ActivatedAt, circle.CompletedAt, circle.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert circle: %w", err)
	}

	for _, p := range participants {
		p.CircleID = circle.ID
		if err := insertParticipant(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCircle retrieves a circle by ID.
func (s *SQLiteStore) GetCircle(ctx context.Context, circleID string) (*models.Circle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+circleColumns+` FROM circles WHERE id = ?`, circleID)

	circle, err := scanCircle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle: %w", err)
	}
	return circle, nil
}

// ListCircles retrieves every circle owned by a cooperative, newest first.
func (s *SQLiteStore) ListCircles(ctx context.Context, cooperativeID string) ([]*models.Circle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+circleColumns+` FROM circles
		 WHERE cooperative_id = ? ORDER BY created_at DESC`, cooperativeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles: %w", err)
	}
	defer rows.Close()

	var circles []*models.Circle
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		circles = append(circles, circle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate circles: %w", err)
	}
	return circles, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the per-entity scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCircle(row scanner) (*models.Circle, error) {
	circle := &models.Circle{}
	var cancelReason sql.NullString

	err := row.Scan(&circle.ID, &circle.CooperativeID, &circle.Name,
		&circle.Amount, &circle.Frequency, &circle.Strategy,
		&circle.TotalCycles, &circle.CurrentCycle, &circle.Status,
		&circle.InviteDeadline, &cancelReason, &circle.CreatedBy,
		&circle.CreatedAt, &circle.ActivatedAt, &circle.CompletedAt,
		&circle.CancelledAt)
	if err != nil {
		return nil, err
	}

	if cancelReason.Valid {
		circle.CancelReason = cancelReason.String
	}
	return circle, nil
}

func updateCircle(ctx context.Context, ex dbtx, circle *models.Circle) error {
	var cancelReason interface{}
	if circle.CancelReason != "" {
		cancelReason = circle.CancelReason
	}

	res, err := ex.ExecContext(ctx,
		`UPDATE circles SET total_cycles = ?, current_cycle = ?, status = ?,
		 invite_deadline = ?, cancel_reason = ?, activated_at = ?,
		 completed_at = ?, cancelled_at = ? WHERE id = ?`,
		circle.TotalCycles, circle.CurrentCycle, circle.Status,
		circle.InviteDeadline, cancelReason, circle.ActivatedAt,
		circle.CompletedAt, circle.CancelledAt, circle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update circle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update circle: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("circle %s: %w", circle.ID, storage.ErrNotFound)
	}
	return nil
}

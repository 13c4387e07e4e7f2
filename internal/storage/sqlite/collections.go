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

const collectionColumns = `id, circle_id, cycle, total_amount, commission,
	net_amount, method, reference, notes, collector_id, recorded_by, created_at`

// ListCollections retrieves every collection record of a circle in cycle
// order.
func (s *SQLiteStore) ListCollections(ctx context.Context, circleID string) ([]*models.CollectionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM collections
		 WHERE circle_id = ? ORDER BY cycle`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var records []*models.CollectionRecord
	for rows.Next() {
		rec, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	return records, nil
}

func getCollection(ctx context.Context, q dbtx, circleID string, cycle int) (*models.CollectionRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections
		 WHERE circle_id = ? AND cycle = ?`, circleID, cycle)

	rec, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection for cycle %d: %w", cycle, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return rec, nil
}

func scanCollection(row scanner) (*models.CollectionRecord, error) {
	rec := &models.CollectionRecord{}
	var reference, notes sql.NullString

	err := row.Scan(&rec.ID, &rec.CircleID, &rec.Cycle, &rec.TotalAmount,
		&rec.Commission, &rec.NetAmount, &rec.Method, &reference, &notes,
		&rec.CollectorID, &rec.RecordedBy, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if reference.Valid {
		rec.Reference = reference.String
	}
	if notes.Valid {
		rec.Notes = notes.String
	}
	return rec, nil
}

func insertCollection(ctx context.Context, q dbtx, rec *models.CollectionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}

	var reference, notes interface{}
	if rec.Reference != "" {
		reference = rec.Reference
	}
	if rec.Notes != "" {
		notes = rec.Notes
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO collections (`+collectionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CircleID, rec.Cycle, rec.TotalAmount, rec.Commission,
		rec.NetAmount, rec.Method, reference, notes, rec.CollectorID,
		rec.RecordedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	return nil
}

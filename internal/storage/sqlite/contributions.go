package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
)

const contributionColumns = `id, circle_id, member_id, cycle, amount, method,
	reference, notes, recorded_by, created_at`

func listContributions(ctx context.Context, q dbtx, circleID string, cycle int) ([]*models.ContributionRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		 WHERE circle_id = ? AND cycle = ? ORDER BY created_at, member_id`,
		circleID, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var records []*models.ContributionRecord
	for rows.Next() {
		rec, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return records, nil
}

func scanContribution(row scanner) (*models.ContributionRecord, error) {
	rec := &models.ContributionRecord{}
	var reference, notes sql.NullString

	err := row.Scan(&rec.ID, &rec.CircleID, &rec.MemberID, &rec.Cycle,
		&rec.Amount, &rec.Method, &reference, &notes, &rec.RecordedBy,
		&rec.CreatedAt)
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

func insertContribution(ctx context.Context, q dbtx, rec *models.ContributionRecord) error {
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
		`INSERT INTO contributions (`+contributionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CircleID, rec.MemberID, rec.Cycle, rec.Amount,
		rec.Method, reference, notes, rec.RecordedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
)

const participantColumns = `id, circle_id, member_id, status, collection_order,
	has_collected, collection_cycle, responded_at, created_at`

// ListParticipants retrieves every participant of a circle.
func (s *SQLiteStore) ListParticipants(ctx context.Context, circleID string) ([]*models.Participant, error) {
	return listParticipants(ctx, s.db, circleID)
}

func listParticipants(ctx context.Context, q dbtx, circleID string) ([]*models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE circle_id = ?
		 ORDER BY CASE WHEN collection_order > 0 THEN collection_order ELSE 1000000 END, member_id`,
		circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		var hasCollected int
		if err := rows.Scan(&p.ID, &p.CircleID, &p.MemberID, &p.Status,
			&p.CollectionOrder, &hasCollected, &p.CollectionCycle,
			&p.RespondedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.HasCollected = hasCollected != 0
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

func insertParticipant(ctx context.Context, q dbtx, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	hasCollected := 0
	if p.HasCollected {
		hasCollected = 1
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO participants (`+participantColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CircleID, p.MemberID, p.Status, p.CollectionOrder,
		hasCollected, p.CollectionCycle, p.RespondedAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func updateParticipant(ctx context.Context, q dbtx, p *models.Participant) error {
	hasCollected := 0
	if p.HasCollected {
		hasCollected = 1
	}

	_, err := q.ExecContext(ctx,
		`UPDATE participants SET status = ?, collection_order = ?,
		 has_collected = ?, collection_cycle = ?, responded_at = ?
		 WHERE id = ?`,
		p.Status, p.CollectionOrder, hasCollected, p.CollectionCycle,
		p.RespondedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

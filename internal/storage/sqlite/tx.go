package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// circleTx implements storage.CircleTx over an open write transaction pinned
// to one circle.
type circleTx struct {
	tx       *sql.Tx
	circleID string
}

var _ storage.CircleTx = (*circleTx)(nil)

func (t *circleTx) Circle(ctx context.Context) (*models.Circle, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+circleColumns+` FROM circles WHERE id = ?`, t.circleID)

	circle, err := scanCircle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("circle %s: %w", t.circleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle: %w", err)
	}
	return circle, nil
}

func (t *circleTx) UpdateCircle(ctx context.Context, circle *models.Circle) error {
	return updateCircle(ctx, t.tx, circle)
}

func (t *circleTx) Participants(ctx context.Context) ([]*models.Participant, error) {
	return listParticipants(ctx, t.tx, t.circleID)
}

func (t *circleTx) AddParticipants(ctx context.Context, participants []*models.Participant) error {
	for _, p := range participants {
		if err := insertParticipant(ctx, t.tx, p); err != nil {
			return err
		}
	}
	return nil
}

func (t *circleTx) UpdateParticipant(ctx context.Context, participant *models.Participant) error {
	return updateParticipant(ctx, t.tx, participant)
}

func (t *circleTx) Contributions(ctx context.Context, cycle int) ([]*models.ContributionRecord, error) {
	return listContributions(ctx, t.tx, t.circleID, cycle)
}

func (t *circleTx) AddContribution(ctx context.Context, record *models.ContributionRecord) error {
	return insertContribution(ctx, t.tx, record)
}

func (t *circleTx) Collection(ctx context.Context, cycle int) (*models.CollectionRecord, error) {
	return getCollection(ctx, t.tx, t.circleID, cycle)
}

func (t *circleTx) AddCollection(ctx context.Context, record *models.CollectionRecord) error {
	return insertCollection(ctx, t.tx, record)
}

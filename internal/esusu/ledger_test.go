package esusu

import (
	"context"
	"sync"
	"testing"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
)

// contribute records a cash contribution of the circle's nominal amount.
func contribute(t *testing.T, e *Engine, circleID, memberID string) *models.ContributionRecord {
	t.Helper()

	rec, err := e.RecordContribution(context.Background(), ContributionParams{
		CircleID:   circleID,
		MemberID:   memberID,
		Amount:     1000,
		Method:     models.MethodCash,
		RecordedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("RecordContribution(%s) failed: %v", memberID, err)
	}
	return rec
}

func TestRecordContribution(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("records a payment for the current cycle", func(t *testing.T) {
		circle := activeTestCircle(t, engine, "a", "b", "c")

		rec, err := engine.RecordContribution(ctx, ContributionParams{
			CircleID:   circle.ID,
			MemberID:   "a",
			Amount:     1000,
			Method:     models.MethodBankTransfer,
			Reference:  "TRF-1042",
			Notes:      "paid at branch",
			RecordedBy: "admin-1",
		})
		if err != nil {
			t.Fatalf("RecordContribution failed: %v", err)
		}
		if rec.ID == "" {
			t.Error("Expected record ID to be generated")
		}
		if rec.Cycle != 1 {
			t.Errorf("Expected cycle 1, got %d", rec.Cycle)
		}
		if rec.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("second payment in the same cycle fails", func(t *testing.T) {
		circle := activeTestCircle(t, engine, "a", "b", "c")
		contribute(t, engine, circle.ID, "a")

		_, err := engine.RecordContribution(ctx, ContributionParams{
			CircleID: circle.ID, MemberID: "a", Amount: 1000, Method: models.MethodCash,
		})
		expectKind(t, err, KindAlreadyProcessed)
	})

	t.Run("non-cash payment requires a reference", func(t *testing.T) {
		circle := activeTestCircle(t, engine, "a", "b", "c")

		for _, method := range []models.PaymentMethod{
			models.MethodBankTransfer, models.MethodMobileMoney, models.MethodCheque,
		} {
			_, err := engine.RecordContribution(ctx, ContributionParams{
				CircleID: circle.ID, MemberID: "a", Amount: 1000, Method: method,
			})
			expectKind(t, err, KindMissingReference)
		}

		// Cash never needs one.
		contribute(t, engine, circle.ID, "a")
	})

	t.Run("pending circle rejects contributions", func(t *testing.T) {
		circle := createTestCircle(t, engine, models.StrategyRandom, "a", "b", "c")
		_, err := engine.RecordContribution(ctx, ContributionParams{
			CircleID: circle.ID, MemberID: "a", Amount: 1000, Method: models.MethodCash,
		})
		expectKind(t, err, KindCircleNotActive)
	})

	t.Run("only accepted participants may contribute", func(t *testing.T) {
		circle := createTestCircle(t, engine, models.StrategyRandom, "a", "b", "c", "d")
		acceptAll(t, engine, circle, "a", "b", "c")
		if _, err := engine.Respond(ctx, RespondParams{
			CircleID: circle.ID, MemberID: "d", Decision: DecisionDecline,
		}); err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		if _, err := engine.AssignOrder(ctx, circle.ID, nil); err != nil {
			t.Fatalf("AssignOrder failed: %v", err)
		}

		_, err := engine.RecordContribution(ctx, ContributionParams{
			CircleID: circle.ID, MemberID: "d", Amount: 1000, Method: models.MethodCash,
		})
		expectKind(t, err, KindInvalidState)

		_, err = engine.RecordContribution(ctx, ContributionParams{
			CircleID: circle.ID, MemberID: "stranger", Amount: 1000, Method: models.MethodCash,
		})
		expectKind(t, err, KindInvalidState)
	})

	t.Run("amount is stored as submitted", func(t *testing.T) {
		circle := activeTestCircle(t, engine, "a", "b", "c")

		rec, err := engine.RecordContribution(ctx, ContributionParams{
			CircleID: circle.ID, MemberID: "a", Amount: 950, Method: models.MethodCash,
		})
		if err != nil {
			t.Fatalf("RecordContribution failed: %v", err)
		}
		if rec.Amount != 950 {
			t.Errorf("Expected recorded amount 950, got %v", rec.Amount)
		}
	})
}

func TestConcurrentContributions(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	// Racing duplicate payments for one member: at most one record per
	// (member, cycle), and the loser fails with the duplicate kind.
	circle := activeTestCircle(t, engine, "a", "b", "c")

	const racers = 4
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RecordContribution(ctx, ContributionParams{
				CircleID:   circle.ID,
				MemberID:   "a",
				Amount:     1000,
				Method:     models.MethodCash,
				RecordedBy: "admin-1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		expectKind(t, err, KindAlreadyProcessed)
	}
	if wins != 1 {
		t.Errorf("Expected exactly 1 recorded contribution, got %d", wins)
	}

	status, err := engine.GetCycleStatus(ctx, circle.ID)
	if err != nil {
		t.Fatalf("GetCycleStatus failed: %v", err)
	}
	if status.ContributedCount != 1 {
		t.Errorf("Expected 1 contribution after the race, got %d", status.ContributedCount)
	}
}

func TestGetCycleStatus(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	t.Run("tracks outstanding members and the collector", func(t *testing.T) {
		circle := activeTestCircle(t, engine, "a", "b", "c")
		contribute(t, engine, circle.ID, "a")

		status, err := engine.GetCycleStatus(ctx, circle.ID)
		if err != nil {
			t.Fatalf("GetCycleStatus failed: %v", err)
		}
		if status.Cycle != 1 {
			t.Errorf("Expected cycle 1, got %d", status.Cycle)
		}
		if status.ContributedCount != 1 || status.AcceptedCount != 3 {
			t.Errorf("Expected 1/3 contributed, got %d/%d", status.ContributedCount, status.AcceptedCount)
		}
		if len(status.Outstanding) != 2 {
			t.Errorf("Expected 2 outstanding, got %v", status.Outstanding)
		}
		if status.IsComplete {
			t.Error("Expected incomplete cycle")
		}
		if status.CollectorID == "" {
			t.Error("Expected a designated collector")
		}

		contribute(t, engine, circle.ID, "b")
		contribute(t, engine, circle.ID, "c")

		status, err = engine.GetCycleStatus(ctx, circle.ID)
		if err != nil {
			t.Fatalf("GetCycleStatus failed: %v", err)
		}
		if !status.IsComplete {
			t.Error("Expected complete cycle after all contributions")
		}
		if len(status.Outstanding) != 0 {
			t.Errorf("Expected no outstanding members, got %v", status.Outstanding)
		}
	})

	t.Run("requires an active circle", func(t *testing.T) {
		circle := createTestCircle(t, engine, models.StrategyRandom, "a", "b", "c")
		_, err := engine.GetCycleStatus(ctx, circle.ID)
		expectKind(t, err, KindCircleNotActive)
	})
}

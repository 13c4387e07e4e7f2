package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teedon/cooperative-manager-sub000/internal/esusu"
	"github.com/teedon/cooperative-manager-sub000/internal/httputil"
	"github.com/teedon/cooperative-manager-sub000/internal/metrics"
	"github.com/teedon/cooperative-manager-sub000/internal/middleware"
	"github.com/teedon/cooperative-manager-sub000/internal/models"
)

// CircleHandler serves the savings circle operations.
type CircleHandler struct {
	Engine *esusu.Engine
}

type createCircleRequest struct {
	CooperativeID  string   `json:"cooperative_id"`
	Name           string   `json:"name"`
	Amount         float64  `json:"amount"`
	Frequency      string   `json:"frequency,omitempty"`
	Strategy       string   `json:"strategy"`
	MemberIDs      []string `json:"member_ids"`
	InviteDeadline int64    `json:"invite_deadline,omitempty"`
}

type inviteRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type respondRequest struct {
	MemberID      string `json:"member_id"`
	Decision      string `json:"decision"`
	PreferredSlot int    `json:"preferred_slot,omitempty"`
}

type orderSlotRequest struct {
	MemberID string `json:"member_id"`
	Order    int    `json:"order"`
}

type assignOrderRequest struct {
	Order []orderSlotRequest `json:"order,omitempty"`
}

type contributionRequest struct {
	MemberID  string  `json:"member_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

type collectionRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Create creates a circle with its initial invitations.
func (h *CircleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCircleRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	circle, err := h.Engine.CreateCircle(r.Context(), esusu.CreateCircleParams{
		CooperativeID:  req.CooperativeID,
		Name:           req.Name,
		Amount:         req.Amount,
		Frequency:      models.Frequency(req.Frequency),
		Strategy:       models.OrderStrategy(req.Strategy),
		MemberIDs:      req.MemberIDs,
		InviteDeadline: req.InviteDeadline,
		CreatedBy:      middleware.GetUserID(r.Context()),
	})
	if done := h.finish(w, "create_circle", err); done {
		return
	}
	httputil.JSON(w, http.StatusCreated, circle)
}

// Get returns a circle with its participants.
func (h *CircleHandler) Get(w http.ResponseWriter, r *http.Request) {
	circle, participants, err := h.Engine.Circle(r.Context(), chi.URLParam(r, "circleID"))
	if done := h.finish(w, "get_circle", err); done {
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"circle":       circle,
		"participants": participants,
	})
}

// Invite adds invitations to a pending circle.
func (h *CircleHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Engine.Invite(r.Context(), chi.URLParam(r, "circleID"), req.MemberIDs)
	if done := h.finish(w, "invite", err); done {
		return
	}
	httputil.JSON(w, http.StatusCreated, map[string]int{"invited": len(req.MemberIDs)})
}

// Respond records a member's invitation answer.
func (h *CircleHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	participant, err := h.Engine.Respond(r.Context(), esusu.RespondParams{
		CircleID:      chi.URLParam(r, "circleID"),
		MemberID:      req.MemberID,
		Decision:      esusu.Decision(req.Decision),
		PreferredSlot: req.PreferredSlot,
	})
	if done := h.finish(w, "respond", err); done {
		return
	}
	httputil.JSON(w, http.StatusOK, participant)
}

// AssignOrder assigns the collection order and activates the circle.
func (h *CircleHandler) AssignOrder(w http.ResponseWriter, r *http.Request) {
	var req assignOrderRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	manual := make([]esusu.OrderSlot, len(req.Order))
	for i, slot := range req.Order {
		manual[i] = esusu.OrderSlot{MemberID: slot.MemberID, Order: slot.Order}
	}

	circle, err := h.Engine.AssignOrder(r.Context(), chi.URLParam(r, "circleID"), manual)
	if done := h.finish(w, "assign_order", err); done {
		return
	}
	httputil.JSON(w, http.StatusOK, circle)
}

// RecordContribution records a member's payment for the current cycle.
func (h *CircleHandler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Engine.RecordContribution(r.Context(), esusu.ContributionParams{
		CircleID:   chi.URLParam(r, "circleID"),
		MemberID:   req.MemberID,
		Amount:     req.Amount,
		Method:     models.PaymentMethod(req.Method),
		Reference:  req.Reference,
		Notes:      req.Notes,
		RecordedBy: middleware.GetUserID(r.Context()),
	})
	if done := h.finish(w, "record_contribution", err); done {
		return
	}
	httputil.JSON(w, http.StatusCreated, record)
}

// CycleStatus reports the current cycle's progress.
func (h *CircleHandler) CycleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Engine.GetCycleStatus(r.Context(), chi.URLParam(r, "circleID"))
	if done := h.finish(w, "cycle_status", err); done {
		return
	}
	httputil.JSON(w, http.StatusOK, status)
}

// ProcessCollection disburses the current cycle's pot.
func (h *CircleHandler) ProcessCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Engine.ProcessCollection(r.Context(), esusu.CollectionParams{
		CircleID:   chi.URLParam(r, "circleID"),
		Method:     models.PaymentMethod(req.Method),
		Reference:  req.Reference,
		Notes:      req.Notes,
		RecordedBy: middleware.GetUserID(r.Context()),
	})
	if done := h.finish(w, "process_collection", err); done {
		return
	}

	metrics.CollectionsProcessed.Inc()
	metrics.PotDisbursed.Add(record.NetAmount)
	httputil.JSON(w, http.StatusCreated, record)
}

// ListCollections returns the circle's disbursement history.
func (h *CircleHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	records, err := h.Engine.Collections(r.Context(), chi.URLParam(r, "circleID"))
	if done := h.finish(w, "list_collections", err); done {
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{"collections": records})
}

// Cancel puts the circle in the terminal cancelled state.
func (h *CircleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Engine.Cancel(r.Context(), chi.URLParam(r, "circleID"), req.Reason)
	if done := h.finish(w, "cancel", err); done {
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": string(models.CircleCancelled)})
}

// finish records the operation outcome and, on error, writes the mapped HTTP
// response. Returns true when the request is already answered.
func (h *CircleHandler) finish(w http.ResponseWriter, operation string, err error) bool {
	if err == nil {
		metrics.EngineOperations.WithLabelValues(operation, "ok").Inc()
		return false
	}

	kind := esusu.ErrKind(err)
	outcome := string(kind)
	if outcome == "" {
		outcome = "error"
	}
	metrics.EngineOperations.WithLabelValues(operation, outcome).Inc()

	status, ok := statusForKind(kind)
	if !ok {
		slog.Error("engine operation failed", "operation", operation, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "operation failed")
		return true
	}
	httputil.ErrorKind(w, status, string(kind), err.Error())
	return true
}

// statusForKind maps engine error kinds to HTTP statuses.
func statusForKind(kind esusu.Kind) (int, bool) {
	switch kind {
	case esusu.KindNotFound:
		return http.StatusNotFound, true
	case esusu.KindMissingReference, esusu.KindInvalidOrder:
		return http.StatusBadRequest, true
	case esusu.KindInvitationExpired:
		return http.StatusGone, true
	case esusu.KindInvalidState, esusu.KindAlreadyResponded, esusu.KindSlotTaken,
		esusu.KindIncompleteAssignment, esusu.KindOrderAlreadySet,
		esusu.KindCycleNotComplete, esusu.KindAlreadyProcessed,
		esusu.KindCircleNotActive, esusu.KindCircleCancelled:
		return http.StatusConflict, true
	}
	return 0, false
}

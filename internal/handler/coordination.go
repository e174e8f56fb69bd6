package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/roomsync/internal/auth"
	"github.com/dukerupert/roomsync/internal/chore"
	"github.com/dukerupert/roomsync/internal/compatibility"
	"github.com/dukerupert/roomsync/internal/model"
	"github.com/dukerupert/roomsync/internal/store"
)

// ScoreRecorder observes computed compatibility scores.
type ScoreRecorder interface {
	ScoreComputed(score int)
}

type nopScoreRecorder struct{}

func (nopScoreRecorder) ScoreComputed(int) {}

// CoordinationHandler serves the chore board and compatibility scoring.
type CoordinationHandler struct {
	chores   *chore.Service
	rooms    *store.RoomStore
	users    *store.UserStore
	profiles *store.ProfileStore
	scorer   *compatibility.Scorer
	scores   ScoreRecorder
	logger   *slog.Logger
}

func NewCoordinationHandler(
	chores *chore.Service,
	rooms *store.RoomStore,
	users *store.UserStore,
	profiles *store.ProfileStore,
	scorer *compatibility.Scorer,
	scores ScoreRecorder,
	logger *slog.Logger,
) *CoordinationHandler {
	if scores == nil {
		scores = nopScoreRecorder{}
	}
	return &CoordinationHandler{
		chores:   chores,
		rooms:    rooms,
		users:    users,
		profiles: profiles,
		scorer:   scorer,
		scores:   scores,
		logger:   logger,
	}
}

// callerRoom resolves the room of the authenticated caller. It writes the
// error response itself and returns ok=false when the request cannot proceed.
func (h *CoordinationHandler) callerRoom(w http.ResponseWriter, r *http.Request) (*model.RoomMember, bool) {
	membership, err := h.rooms.MembershipForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("resolve room", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to resolve room")
		return nil, false
	}
	if membership == nil {
		writeError(w, http.StatusNotFound, codeNotInRoom, "you are not a member of any room")
		return nil, false
	}
	return membership, true
}

// RoomForRequest reports the caller's room; it backs the websocket
// subscription.
func (h *CoordinationHandler) RoomForRequest(r *http.Request) (int64, bool) {
	membership, err := h.rooms.MembershipForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("resolve room", "error", err)
		return 0, false
	}
	if membership == nil {
		return 0, false
	}
	return membership.RoomID, true
}

// TodayChores returns the caller's room chore board, rotating and repairing
// it first when needed.
func (h *CoordinationHandler) TodayChores(w http.ResponseWriter, r *http.Request) {
	membership, ok := h.callerRoom(w, r)
	if !ok {
		return
	}

	members, err := h.rooms.ListMembers(membership.RoomID)
	if err != nil {
		h.logger.Error("list members", "room_id", membership.RoomID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list room members")
		return
	}

	view, err := h.chores.TodayView(membership.RoomID, members)
	if err != nil {
		h.logger.Error("build chore board", "room_id", membership.RoomID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load chores")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// MarkDone completes the duty named in the path for the caller.
func (h *CoordinationHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	duty := chore.ParseDuty(r.PathValue("duty"))
	if duty == "" {
		writeError(w, http.StatusBadRequest, codeInvalidDuty, "duty is required")
		return
	}

	membership, ok := h.callerRoom(w, r)
	if !ok {
		return
	}

	err := h.chores.MarkDone(membership.RoomID, membership.UserID, duty)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "done", "duty": string(duty)})
	case errors.Is(err, chore.ErrInvalidDuty):
		writeError(w, http.StatusBadRequest, codeInvalidDuty, "unknown duty "+string(duty))
	case errors.Is(err, chore.ErrNotYourDuty):
		writeError(w, http.StatusForbidden, codeNotYourDuty, "this duty is not assigned to you")
	case errors.Is(err, chore.ErrNotInitialized):
		writeError(w, http.StatusNotFound, codeNotInitialized, "chores have not been set up for this room yet")
	default:
		h.logger.Error("mark done", "room_id", membership.RoomID, "duty", duty, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to mark duty done")
	}
}

type scoreRequest struct {
	UserID *int64 `json:"user_id"`
	RoomID int64  `json:"room_id"`
}

type scoreResponse struct {
	UserID int64 `json:"user_id"`
	RoomID int64 `json:"room_id"`
	Score  int   `json:"score"`
}

type scoreDetailResponse struct {
	scoreResponse
	Matched int                        `json:"matched"`
	Total   int                        `json:"total"`
	Axes    []compatibility.AxisResult `json:"axes"`
}

// CompatibilityScore scores a user against a room. The user defaults to the
// caller. Missing profiles count as empty. The per-axis breakdown reveals
// profile details such as smoke sensitivity, so it is only returned to the
// user being scored.
func (h *CoordinationHandler) CompatibilityScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON")
		return
	}
	callerID := auth.UserID(r.Context())
	userID := callerID
	if req.UserID != nil {
		userID = *req.UserID
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}

	room, err := h.rooms.GetByID(req.RoomID)
	if err != nil {
		h.logger.Error("get room", "room_id", req.RoomID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load room")
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "room not found")
		return
	}

	userProfile, err := h.profiles.GetUserProfile(user.ID)
	if err != nil {
		h.logger.Error("get user profile", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load profile")
		return
	}
	if userProfile == nil {
		userProfile = &model.UserProfile{UserID: user.ID}
	}

	roomProfile, err := h.profiles.GetRoomProfile(room.ID)
	if err != nil {
		h.logger.Error("get room profile", "room_id", room.ID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load room preferences")
		return
	}
	if roomProfile == nil {
		roomProfile = &model.RoomProfile{RoomID: room.ID}
	}

	res := h.scorer.Evaluate(*userProfile, *roomProfile)
	h.scores.ScoreComputed(res.Score)

	resp := scoreResponse{UserID: user.ID, RoomID: room.ID, Score: res.Score}
	if user.ID != callerID {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	axes := res.Axes
	if axes == nil {
		axes = []compatibility.AxisResult{}
	}
	writeJSON(w, http.StatusOK, scoreDetailResponse{
		scoreResponse: resp,
		Matched:       res.Matched,
		Total:         res.Total,
		Axes:          axes,
	})
}

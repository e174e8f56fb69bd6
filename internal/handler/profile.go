package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/roomsync/internal/auth"
	"github.com/dukerupert/roomsync/internal/model"
	"github.com/dukerupert/roomsync/internal/store"
)

// ProfileHandler reads and replaces the caller's lifestyle profile and the
// preferences of the caller's room.
type ProfileHandler struct {
	profiles *store.ProfileStore
	rooms    *store.RoomStore
	logger   *slog.Logger
}

func NewProfileHandler(profiles *store.ProfileStore, rooms *store.RoomStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, rooms: rooms, logger: logger}
}

func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	p, err := h.profiles.GetUserProfile(userID)
	if err != nil {
		h.logger.Error("get user profile", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load profile")
		return
	}
	if p == nil {
		p = &model.UserProfile{UserID: userID}
	}
	writeJSON(w, http.StatusOK, p)
}

// PutMine replaces the caller's profile. Omitted attributes become unset.
func (h *ProfileHandler) PutMine(w http.ResponseWriter, r *http.Request) {
	var req model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON")
		return
	}
	req.UserID = auth.UserID(r.Context())

	p, err := h.profiles.UpsertUserProfile(req)
	if err != nil {
		h.logger.Error("upsert user profile", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetRoom returns the preferences of any room; prospective roommates need
// them before joining.
func (h *ProfileHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid room id")
		return
	}
	room, err := h.rooms.GetByID(roomID)
	if err != nil {
		h.logger.Error("get room", "room_id", roomID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load room")
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "room not found")
		return
	}

	p, err := h.profiles.GetRoomProfile(roomID)
	if err != nil {
		h.logger.Error("get room profile", "room_id", roomID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load room preferences")
		return
	}
	if p == nil {
		p = &model.RoomProfile{RoomID: roomID}
	}
	writeJSON(w, http.StatusOK, p)
}

// PutRoom replaces the preferences of a room. Only its members may do so.
func (h *ProfileHandler) PutRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid room id")
		return
	}

	membership, err := h.rooms.MembershipForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("resolve room", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to resolve room")
		return
	}
	if membership == nil || membership.RoomID != roomID {
		writeError(w, http.StatusForbidden, codeForbidden, "only members can change a room's preferences")
		return
	}

	var req model.RoomProfile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON")
		return
	}
	req.RoomID = roomID

	p, err := h.profiles.UpsertRoomProfile(req)
	if err != nil {
		h.logger.Error("upsert room profile", "room_id", roomID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to save room preferences")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

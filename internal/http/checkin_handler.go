package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/event-checkin/internal/application"
)

type checkinService interface {
	SignIn(ctx context.Context, token string) (application.Attendee, error)
	SignOut(ctx context.Context, token string) (application.Attendee, error)
	EventSignIn(ctx context.Context, token, event string) (application.Attendee, error)
	EventSignOut(ctx context.Context, token, event string) (application.Attendee, error)
	ListEvents(ctx context.Context) ([]application.Event, error)
	EventsForAttendee(ctx context.Context, token string) ([]application.Event, error)
}

// CheckinHandler exposes the venue and per-event sign-in endpoints.
type CheckinHandler struct {
	service   checkinService
	responder responder
	logger    *slog.Logger
}

// NewCheckinHandler wires the check-in endpoints.
func NewCheckinHandler(service checkinService, logger *slog.Logger) *CheckinHandler {
	return &CheckinHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

type checkinRequest struct {
	Token string `json:"token"`
}

type eventCheckinRequest struct {
	Token string `json:"token"`
	Event string `json:"event"`
}

func (h *CheckinHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "sign_in", func(ctx context.Context, token string) (application.Attendee, error) {
		return h.service.SignIn(ctx, token)
	})
}

func (h *CheckinHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "sign_out", func(ctx context.Context, token string) (application.Attendee, error) {
		return h.service.SignOut(ctx, token)
	})
}

func (h *CheckinHandler) transition(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, string) (application.Attendee, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidToken)
		return
	}

	attendee, err := apply(r.Context(), req.Token)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "checkin", operation).WarnContext(r.Context(), "state transition rejected", "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAttendeeDTO(attendee))
}

func (h *CheckinHandler) EventSignIn(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, "event_sign_in", func(ctx context.Context, token, event string) (application.Attendee, error) {
		return h.service.EventSignIn(ctx, token, event)
	})
}

func (h *CheckinHandler) EventSignOut(w http.ResponseWriter, r *http.Request) {
	h.eventTransition(w, r, "event_sign_out", func(ctx context.Context, token, event string) (application.Attendee, error) {
		return h.service.EventSignOut(ctx, token, event)
	})
}

func (h *CheckinHandler) eventTransition(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, string, string) (application.Attendee, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidToken)
		return
	}

	attendee, err := apply(r.Context(), req.Token, req.Event)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "checkin", operation, "event", req.Event).WarnContext(r.Context(), "state transition rejected", "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAttendeeDTO(attendee))
}

func (h *CheckinHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		events, err := h.service.EventsForAttendee(r.Context(), token)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
		return
	}

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
}

type eventDTO struct {
	Event string `json:"event"`
}

func toEventDTOs(events []application.Event) []eventDTO {
	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, eventDTO{Event: event.Name})
	}
	return dtos
}

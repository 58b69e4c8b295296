package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/event-checkin/internal/application"
)

type attendeeService interface {
	CreateAttendee(ctx context.Context, input application.CreateAttendeeInput) (application.Attendee, error)
	GetAttendee(ctx context.Context, id string) (application.Attendee, error)
	ListAttendees(ctx context.Context) ([]application.Attendee, error)
	UpdateAttendee(ctx context.Context, id string, patch application.AttendeePatch) (application.Attendee, error)
	AddScan(ctx context.Context, token string, input application.ScanInput) (application.Attendee, error)
}

// AttendeeHandler exposes attendee registration, lookup and update endpoints.
type AttendeeHandler struct {
	service   attendeeService
	responder responder
	logger    *slog.Logger
}

// NewAttendeeHandler wires the attendee endpoints.
func NewAttendeeHandler(service attendeeService, logger *slog.Logger) *AttendeeHandler {
	return &AttendeeHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func (h *AttendeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req attendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	attendee, err := h.service.CreateAttendee(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAttendeeDTO(attendee))
}

func (h *AttendeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AttendeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAttendeeID)
		return
	}

	attendee, err := h.service.GetAttendee(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAttendeeDTO(attendee))
}

func (h *AttendeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	attendees, err := h.service.ListAttendees(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]attendeeDTO, 0, len(attendees))
	for _, attendee := range attendees {
		dtos = append(dtos, toAttendeeDTO(attendee))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *AttendeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AttendeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAttendeeID)
		return
	}

	var req attendeePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	attendee, err := h.service.UpdateAttendee(r.Context(), id, req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAttendeeDTO(attendee))
}

func (h *AttendeeHandler) AddScan(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidToken)
		return
	}

	attendee, err := h.service.AddScan(r.Context(), req.Token, application.ScanInput{
		ActivityName:     req.ActivityName,
		ActivityCategory: req.ActivityCategory,
		ScannedAt:        req.ScannedAt,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAttendeeDTO(attendee))
}

type skillPayload struct {
	Skill  string `json:"skill"`
	Rating int    `json:"rating"`
}

type scanPayload struct {
	ActivityName     string    `json:"activity_name"`
	ActivityCategory string    `json:"activity_category"`
	ScannedAt        time.Time `json:"scanned_at"`
}

type attendeeRequest struct {
	Name      string         `json:"name"`
	Company   string         `json:"company"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	BadgeCode string         `json:"badge_code"`
	Skills    []skillPayload `json:"skills"`
	Scans     []scanPayload  `json:"scans"`
}

func (r attendeeRequest) toInput() application.CreateAttendeeInput {
	input := application.CreateAttendeeInput{
		Name:      r.Name,
		Company:   r.Company,
		Email:     r.Email,
		Phone:     r.Phone,
		BadgeCode: r.BadgeCode,
	}
	for _, skill := range r.Skills {
		input.Skills = append(input.Skills, application.SkillInput{Name: skill.Skill, Rating: skill.Rating})
	}
	for _, scan := range r.Scans {
		input.Scans = append(input.Scans, application.ScanInput{
			ActivityName:     scan.ActivityName,
			ActivityCategory: scan.ActivityCategory,
			ScannedAt:        scan.ScannedAt,
		})
	}
	return input
}

type attendeePatchRequest struct {
	Name    *string         `json:"name"`
	Company *string         `json:"company"`
	Email   *string         `json:"email"`
	Phone   *string         `json:"phone"`
	Skills  *[]skillPayload `json:"skills"`
	Scans   *[]scanPayload  `json:"scans"`
}

func (r attendeePatchRequest) toPatch() application.AttendeePatch {
	patch := application.AttendeePatch{
		Name:    r.Name,
		Company: r.Company,
		Email:   r.Email,
		Phone:   r.Phone,
	}
	if r.Skills != nil {
		skills := make([]application.SkillInput, 0, len(*r.Skills))
		for _, skill := range *r.Skills {
			skills = append(skills, application.SkillInput{Name: skill.Skill, Rating: skill.Rating})
		}
		patch.Skills = &skills
	}
	if r.Scans != nil {
		scans := make([]application.ScanInput, 0, len(*r.Scans))
		for _, scan := range *r.Scans {
			scans = append(scans, application.ScanInput{
				ActivityName:     scan.ActivityName,
				ActivityCategory: scan.ActivityCategory,
				ScannedAt:        scan.ScannedAt,
			})
		}
		patch.Scans = &scans
	}
	return patch
}

type scanRequest struct {
	Token            string    `json:"token"`
	ActivityName     string    `json:"activity_name"`
	ActivityCategory string    `json:"activity_category"`
	ScannedAt        time.Time `json:"scanned_at"`
}

type attendeeDTO struct {
	ID         string         `json:"id"`
	Token      string         `json:"token"`
	Name       string         `json:"name"`
	Company    string         `json:"company,omitempty"`
	Email      string         `json:"email,omitempty"`
	Phone      string         `json:"phone,omitempty"`
	BadgeCode  string         `json:"badge_code,omitempty"`
	SignedIn   bool           `json:"signed_in"`
	SignedInAt *time.Time     `json:"signed_in_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Skills     []skillPayload `json:"skills"`
	Scans      []scanPayload  `json:"scans"`
}

func toAttendeeDTO(attendee application.Attendee) attendeeDTO {
	dto := attendeeDTO{
		ID:         attendee.ID,
		Token:      attendee.Token,
		Name:       attendee.Name,
		Company:    attendee.Company,
		Email:      attendee.Email,
		Phone:      attendee.Phone,
		BadgeCode:  attendee.BadgeCode,
		SignedIn:   attendee.SignedIn,
		SignedInAt: attendee.SignedInAt,
		CreatedAt:  attendee.CreatedAt,
		UpdatedAt:  attendee.UpdatedAt,
		Skills:     make([]skillPayload, 0, len(attendee.Skills)),
		Scans:      make([]scanPayload, 0, len(attendee.Scans)),
	}
	for _, skill := range attendee.Skills {
		dto.Skills = append(dto.Skills, skillPayload{Skill: skill.Name, Rating: skill.Rating})
	}
	for _, scan := range attendee.Scans {
		dto.Scans = append(dto.Scans, scanPayload{
			ActivityName:     scan.ActivityName,
			ActivityCategory: scan.ActivityCategory,
			ScannedAt:        scan.ScannedAt,
		})
	}
	return dto
}

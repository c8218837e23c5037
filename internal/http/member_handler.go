package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/spacehub/internal/application"
)

type memberService interface {
	CreateMember(ctx context.Context, input application.MemberInput) (application.Member, error)
	UpdateMember(ctx context.Context, memberID string, input application.MemberInput) (application.Member, error)
	GetMember(ctx context.Context, memberID string) (application.Member, error)
	DeleteMember(ctx context.Context, memberID string) error
	ListMembers(ctx context.Context) ([]application.Member, error)
}

type MemberHandler struct {
	service   memberService
	responder responder
	logger    *slog.Logger
}

func NewMemberHandler(service memberService, logger *slog.Logger) *MemberHandler {
	base := defaultLogger(logger)
	return &MemberHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MemberHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MemberHandler", operation, attrs...)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode member request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "member request rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	member, err := h.service.CreateMember(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "member creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("member_id", member.ID).InfoContext(r.Context(), "member created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, memberResponse{Member: toMemberDTO(member)})
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	memberID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(memberID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing member id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "member_id", memberID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode member update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "member_id", memberID)

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "member update rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	member, err := h.service.UpdateMember(r.Context(), memberID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "member update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, memberResponse{Member: toMemberDTO(member)})
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	memberID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(memberID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing member id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	logger := h.log(r.Context(), "Get", "member_id", memberID)
	member, err := h.service.GetMember(r.Context(), memberID)
	if err != nil {
		logger.ErrorContext(r.Context(), "member lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, memberResponse{Member: toMemberDTO(member)})
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	memberID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(memberID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing member id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMemberID)
		return
	}

	logger := h.log(r.Context(), "Delete", "member_id", memberID)
	if err := h.service.DeleteMember(r.Context(), memberID); err != nil {
		logger.ErrorContext(r.Context(), "member delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "member list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(members)).InfoContext(r.Context(), "members listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMembersResponse{Members: toMemberDTOs(members)})
}

type memberRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Company   string   `json:"company"`
	Role      string   `json:"role"`
	Avatar    *string  `json:"avatar"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
	Active    *bool    `json:"active"`
	DayPass   bool     `json:"day_pass"`
}

func (r memberRequest) toInput() application.MemberInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return application.MemberInput{
		Name:      strings.TrimSpace(r.Name),
		Email:     strings.TrimSpace(r.Email),
		Company:   strings.TrimSpace(r.Company),
		Role:      strings.TrimSpace(r.Role),
		Avatar:    r.Avatar,
		Skills:    r.Skills,
		Interests: r.Interests,
		Active:    active,
		DayPass:   r.DayPass,
	}
}

type memberResponse struct {
	Member memberDTO `json:"member"`
}

type listMembersResponse struct {
	Members []memberDTO `json:"members"`
}

type memberDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Company   string   `json:"company,omitempty"`
	Role      string   `json:"role,omitempty"`
	Avatar    *string  `json:"avatar,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Active    bool     `json:"active"`
	DayPass   bool     `json:"day_pass"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toMemberDTO(member application.Member) memberDTO {
	return memberDTO{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Company:   member.Company,
		Role:      member.Role,
		Avatar:    member.Avatar,
		Skills:    member.Skills,
		Interests: member.Interests,
		Active:    member.Active,
		DayPass:   member.DayPass,
		CreatedAt: member.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: member.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toMemberDTOs(members []application.Member) []memberDTO {
	if len(members) == 0 {
		return nil
	}
	out := make([]memberDTO, 0, len(members))
	for _, member := range members {
		out = append(out, toMemberDTO(member))
	}
	return out
}

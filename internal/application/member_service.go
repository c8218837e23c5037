package application

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// MemberRepository captures the persistence operations needed by the member service.
type MemberRepository interface {
	CreateMember(ctx context.Context, member Member) (Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	UpdateMember(ctx context.Context, member Member) (Member, error)
	DeleteMember(ctx context.Context, id string) error
	ListMembers(ctx context.Context) ([]Member, error)
}

// MemberService orchestrates validation and persistence for members.
type MemberService struct {
	members     MemberRepository
	idGenerator func() string
	now         func() time.Time
}

// NewMemberService wires dependencies for the member service.
func NewMemberService(members MemberRepository, idGenerator func() string, now func() time.Time) *MemberService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MemberService{members: members, idGenerator: idGenerator, now: now}
}

// CreateMember validates input and persists a new member.
func (s *MemberService) CreateMember(ctx context.Context, input MemberInput) (Member, error) {
	if s == nil {
		return Member{}, fmt.Errorf("MemberService is nil")
	}

	normalized := normalizeMemberInput(input)
	vErr := validateMemberInput(normalized)
	if vErr.HasErrors() {
		return Member{}, vErr
	}

	member := Member{
		ID:        s.idGenerator(),
		Name:      normalized.Name,
		Email:     normalized.Email,
		Company:   normalized.Company,
		Role:      normalized.Role,
		Avatar:    normalized.Avatar,
		Skills:    normalized.Skills,
		Interests: normalized.Interests,
		Active:    normalized.Active,
		DayPass:   normalized.DayPass,
		CreatedAt: s.now(),
	}
	member.UpdatedAt = member.CreatedAt

	if s.members == nil {
		return member, nil
	}

	persisted, err := s.members.CreateMember(ctx, member)
	if err != nil {
		return Member{}, mapRepoError(err)
	}

	return persisted, nil
}

// UpdateMember validates input and updates an existing member.
func (s *MemberService) UpdateMember(ctx context.Context, memberID string, input MemberInput) (Member, error) {
	if s == nil {
		return Member{}, fmt.Errorf("MemberService is nil")
	}
	if s.members == nil {
		return Member{}, fmt.Errorf("member repository not configured")
	}

	existing, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return Member{}, mapRepoError(err)
	}

	normalized := normalizeMemberInput(input)
	vErr := validateMemberInput(normalized)
	if vErr.HasErrors() {
		return Member{}, vErr
	}

	updated := existing
	updated.Name = normalized.Name
	updated.Email = normalized.Email
	updated.Company = normalized.Company
	updated.Role = normalized.Role
	updated.Avatar = normalized.Avatar
	updated.Skills = normalized.Skills
	updated.Interests = normalized.Interests
	updated.Active = normalized.Active
	updated.DayPass = normalized.DayPass
	updated.UpdatedAt = s.now()

	persisted, err := s.members.UpdateMember(ctx, updated)
	if err != nil {
		return Member{}, mapRepoError(err)
	}

	return persisted, nil
}

// GetMember returns a single member by ID.
func (s *MemberService) GetMember(ctx context.Context, memberID string) (Member, error) {
	if s == nil {
		return Member{}, fmt.Errorf("MemberService is nil")
	}
	if s.members == nil {
		return Member{}, ErrNotFound
	}

	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return Member{}, mapRepoError(err)
	}
	return member, nil
}

// DeleteMember removes a member.
func (s *MemberService) DeleteMember(ctx context.Context, memberID string) error {
	if s == nil {
		return fmt.Errorf("MemberService is nil")
	}
	if s.members == nil {
		return fmt.Errorf("member repository not configured")
	}

	if err := s.members.DeleteMember(ctx, memberID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ListMembers returns all members sorted by name.
func (s *MemberService) ListMembers(ctx context.Context) ([]Member, error) {
	if s == nil {
		return nil, fmt.Errorf("MemberService is nil")
	}
	if s.members == nil {
		return nil, nil
	}

	raw, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	members := make([]Member, len(raw))
	copy(members, raw)

	sort.Slice(members, func(i, j int) bool {
		if strings.EqualFold(members[i].Name, members[j].Name) {
			return members[i].ID < members[j].ID
		}
		return strings.ToLower(members[i].Name) < strings.ToLower(members[j].Name)
	})

	return members, nil
}

func normalizeMemberInput(input MemberInput) MemberInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Company = strings.TrimSpace(input.Company)
	input.Role = strings.TrimSpace(input.Role)
	input.Avatar = normalizeOptionalString(input.Avatar)
	input.Skills = normalizeStringList(input.Skills)
	input.Interests = normalizeStringList(input.Interests)
	return input
}

func validateMemberInput(input MemberInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	return vErr
}

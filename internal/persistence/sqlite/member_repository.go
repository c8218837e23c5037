package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/spacehub/internal/persistence"
)

// MemberRepository implements persistence.MemberRepository using SQLite.
type MemberRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMemberRepository creates a new SQLite member repository.
func NewMemberRepository(pool *ConnectionPool) *MemberRepository {
	return &MemberRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateMember inserts a new member into the database.
func (r *MemberRepository) CreateMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" {
		return persistence.ErrConstraintViolation
	}

	skills, err := encodeStrings(member.Skills)
	if err != nil {
		return err
	}
	interests, err := encodeStrings(member.Interests)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	query := `
		INSERT INTO members (id, name, email, company, role, avatar, skills, interests, active, day_pass, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.helper.Exec(ctx, query,
		member.ID,
		member.Name,
		member.Email,
		member.Company,
		member.Role,
		nullableString(member.Avatar),
		skills,
		interests,
		boolToInt(member.Active),
		boolToInt(member.DayPass),
		encodeTime(member.CreatedAt),
		encodeTime(member.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateMember updates an existing member in the database.
func (r *MemberRepository) UpdateMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" {
		return persistence.ErrConstraintViolation
	}

	skills, err := encodeStrings(member.Skills)
	if err != nil {
		return err
	}
	interests, err := encodeStrings(member.Interests)
	if err != nil {
		return err
	}

	member.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE members
		SET name = ?, email = ?, company = ?, role = ?, avatar = ?, skills = ?, interests = ?, active = ?, day_pass = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		member.Name,
		member.Email,
		member.Company,
		member.Role,
		nullableString(member.Avatar),
		skills,
		interests,
		boolToInt(member.Active),
		boolToInt(member.DayPass),
		encodeTime(member.UpdatedAt),
		member.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetMember retrieves a member by ID from the database.
func (r *MemberRepository) GetMember(ctx context.Context, id string) (persistence.Member, error) {
	if id == "" {
		return persistence.Member{}, persistence.ErrNotFound
	}
	return r.getMemberBy(ctx, "id = ?", id)
}

// GetMemberByEmail retrieves a member by email address, case-insensitively.
func (r *MemberRepository) GetMemberByEmail(ctx context.Context, email string) (persistence.Member, error) {
	if email == "" {
		return persistence.Member{}, persistence.ErrNotFound
	}
	return r.getMemberBy(ctx, "email = ? COLLATE NOCASE", email)
}

func (r *MemberRepository) getMemberBy(ctx context.Context, where string, arg any) (persistence.Member, error) {
	query := `
		SELECT id, name, email, company, role, avatar, skills, interests, active, day_pass, created_at, updated_at
		FROM members
		WHERE ` + where

	member, err := scanMember(r.helper.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Member{}, persistence.ErrNotFound
		}
		return persistence.Member{}, r.mapper.MapError(err)
	}

	return member, nil
}

// ListMembers returns all members ordered by name then ID.
func (r *MemberRepository) ListMembers(ctx context.Context) ([]persistence.Member, error) {
	query := `
		SELECT id, name, email, company, role, avatar, skills, interests, active, day_pass, created_at, updated_at
		FROM members
		ORDER BY name ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var members []persistence.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return members, nil
}

// DeleteMember removes a member by ID. Members referenced by reservations or
// check-ins are protected by foreign keys.
func (r *MemberRepository) DeleteMember(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func scanMember(row rowScanner) (persistence.Member, error) {
	var (
		member                  persistence.Member
		avatar                  sql.NullString
		skills, interests       string
		active, dayPass         int
		createdAtStr, updatedAt string
	)

	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.Company,
		&member.Role,
		&avatar,
		&skills,
		&interests,
		&active,
		&dayPass,
		&createdAtStr,
		&updatedAt,
	)
	if err != nil {
		return persistence.Member{}, err
	}

	member.Avatar = stringPtr(avatar)
	if member.Skills, err = decodeStrings(skills); err != nil {
		return persistence.Member{}, err
	}
	if member.Interests, err = decodeStrings(interests); err != nil {
		return persistence.Member{}, err
	}
	member.Active = active != 0
	member.DayPass = dayPass != 0
	if member.CreatedAt, err = decodeTime(createdAtStr); err != nil {
		return persistence.Member{}, err
	}
	if member.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Member{}, err
	}

	return member, nil
}

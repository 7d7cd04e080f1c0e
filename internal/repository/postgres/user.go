package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// userRow carries the raw column values; Profession is stored as text.
type userRow struct {
	ID           uuid.UUID  `db:"id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	PasswordHash string     `db:"password_hash"`
	Profession   string     `db:"profession"`
	IsActive     bool       `db:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r userRow) toModel() *model.User {
	u := &model.User{
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Profession:   model.ProfessionFromString(r.Profession),
		IsActive:     r.IsActive,
		LastLoginAt:  r.LastLoginAt,
	}
	u.ID = r.ID
	u.CreatedAt = r.CreatedAt
	u.UpdatedAt = r.UpdatedAt
	return u
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, profession, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Profession.String(),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	for _, group := range user.Groups {
		if err := r.AddToGroup(ctx, user.ID, group); err != nil {
			return err
		}
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, name, password_hash, profession, is_active, last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := row.toModel()
	groups, err := r.groupsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	user.Groups = groups[id]
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, name, password_hash, profession, is_active, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := row.toModel()
	groups, err := r.groupsFor(ctx, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	user.Groups = groups[user.ID]
	return user, nil
}

// ListByIDs resolves a batch of users plus group memberships in two
// queries total, independent of batch size.
func (r *userRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, email, name, password_hash, profession, is_active, last_login_at, created_at, updated_at
		FROM users
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	groups, err := r.groupsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		user := row.toModel()
		user.Groups = groups[user.ID]
		users = append(users, user)
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, email, name, password_hash, profession, is_active, last_login_at, created_at, updated_at
		FROM users
		ORDER BY created_at
	`
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	groups, err := r.groupsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		user := row.toModel()
		user.Groups = groups[user.ID]
		users = append(users, user)
	}
	return users, nil
}

func (r *userRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET is_active = false, updated_at = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return requireRow(result, "user")
}

func (r *userRepository) SetProfession(ctx context.Context, id uuid.UUID, profession model.Profession) error {
	query := `
		UPDATE users
		SET profession = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, profession.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set profession: %w", err)
	}
	return requireRow(result, "user")
}

func (r *userRepository) AddToGroup(ctx context.Context, id uuid.UUID, group string) error {
	query := `
		INSERT INTO user_groups (user_id, group_name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, group_name) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, id, group, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to add user to group: %w", err)
	}
	return nil
}

func (r *userRepository) RemoveFromGroup(ctx context.Context, id uuid.UUID, group string) error {
	query := `
		DELETE FROM user_groups
		WHERE user_id = $1 AND group_name = $2
	`
	if _, err := r.db.ExecContext(ctx, query, id, group); err != nil {
		return fmt.Errorf("failed to remove user from group: %w", err)
	}
	return nil
}

func (r *userRepository) groupsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	memberships := make(map[uuid.UUID][]string, len(ids))
	if len(ids) == 0 {
		return memberships, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_id, group_name
		FROM user_groups
		WHERE user_id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []struct {
		UserID    uuid.UUID `db:"user_id"`
		GroupName string    `db:"group_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list group memberships: %w", err)
	}

	for _, row := range rows {
		memberships[row.UserID] = append(memberships[row.UserID], row.GroupName)
	}
	return memberships, nil
}

func requireRow(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found", resource)
	}
	return nil
}

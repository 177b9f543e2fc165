package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
		SELECT id::text, username, email, role, status, metadata, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var user domain.User
	var metadata []byte

	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.Status, &metadata, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}

	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &user.Metadata)
	}

	return &user, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, username, email, role, status, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET username = EXCLUDED.username,
		email = EXCLUDED.email,
		role = EXCLUDED.role,
		status = EXCLUDED.status,
		metadata = EXCLUDED.metadata,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	metadata := marshalMap(user.Metadata)
	var createdAt, updatedAt time.Time

	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		user.Status,
		metadata,
		nullTime(user.CreatedAt),
	).Scan(&createdAt, &updatedAt); err != nil {
		return translateError(err, domain.ErrUserNotFound)
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (r *userRepository) FindByUsernames(ctx context.Context, usernames []string) ([]domain.UserRef, error) {
	refs := []domain.UserRef{}
	if len(usernames) == 0 {
		return refs, nil
	}

	const query = `
		SELECT id::text, username, email
		FROM users
		WHERE username = ANY($1::text[])
		ORDER BY array_position($1::text[], username)
	`
	rows, err := r.pool.Query(ctx, query, usernames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username, &ref.Email); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

package bolt

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
	"github.com/fastygo/tasktracker/repository"
)

type userRepository struct {
	db *bolt.DB
}

// NewUserRepository instantiates a BoltDB-backed user repository.
func NewUserRepository(db *bolt.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltdb.BucketUsers).Get([]byte(id))
		if raw == nil {
			return domain.ErrUserNotFound
		}
		return json.Unmarshal(raw, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(boltdb.BucketUsers)
		names := tx.Bucket(boltdb.BucketUsernames)

		now := time.Now().UTC()
		if raw := users.Get([]byte(user.ID)); raw != nil {
			var existing domain.User
			if err := json.Unmarshal(raw, &existing); err != nil {
				return err
			}
			if user.CreatedAt.IsZero() {
				user.CreatedAt = existing.CreatedAt
			}
			if existing.Username != "" && existing.Username != user.Username {
				if err := names.Delete([]byte(existing.Username)); err != nil {
					return err
				}
			}
		}
		if user.Username != "" {
			if owner := names.Get([]byte(user.Username)); owner != nil && string(owner) != user.ID {
				return domain.NewError(domain.ErrCodeConflict, "username already taken")
			}
			if err := names.Put([]byte(user.Username), []byte(user.ID)); err != nil {
				return err
			}
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now

		payload, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return users.Put([]byte(user.ID), payload)
	})
}

func (r *userRepository) FindByUsernames(ctx context.Context, usernames []string) ([]domain.UserRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	refs := []domain.UserRef{}
	err := r.db.View(func(tx *bolt.Tx) error {
		names := tx.Bucket(boltdb.BucketUsernames)
		res := newResolver(tx)
		seen := map[string]struct{}{}
		for _, name := range usernames {
			id := names.Get([]byte(name))
			if id == nil {
				continue
			}
			if _, ok := seen[string(id)]; ok {
				continue
			}
			seen[string(id)] = struct{}{}
			refs = append(refs, res.ref(string(id)))
		}
		return nil
	})
	return refs, err
}

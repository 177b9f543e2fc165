package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type userRepository struct {
	users *mongodrv.Collection
}

// NewUserRepository instantiates a MongoDB-backed user repository.
func NewUserRepository(db *mongodrv.Database) repository.UserRepository {
	return &userRepository{users: db.Collection("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.user(), nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	update := bson.M{
		"$set": bson.M{
			"username":  user.Username,
			"email":     user.Email,
			"role":      user.Role,
			"status":    user.Status,
			"metadata":  user.Metadata,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": createdAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": user.ID}, update, opts).Decode(&doc); err != nil {
		if mongodrv.IsDuplicateKeyError(err) {
			return domain.WrapError(domain.ErrCodeConflict, "username already taken", err)
		}
		return err
	}

	user.CreatedAt = doc.CreatedAt
	user.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *userRepository) FindByUsernames(ctx context.Context, usernames []string) ([]domain.UserRef, error) {
	refs := []domain.UserRef{}
	if len(usernames) == 0 {
		return refs, nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"username": bson.M{"$in": usernames}})
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	byName := make(map[string]userDoc, len(docs))
	for _, d := range docs {
		byName[d.Username] = d
	}
	seen := map[string]struct{}{}
	for _, name := range usernames {
		d, ok := byName[name]
		if !ok {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		refs = append(refs, d.user().Ref())
	}
	return refs, nil
}

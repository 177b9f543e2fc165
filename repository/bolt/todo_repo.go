package bolt

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
	"github.com/fastygo/tasktracker/repository"
)

type todoRepository struct {
	db *bolt.DB
}

// NewTodoRepository returns a BoltDB-backed TodoRepository. Filtering and
// sorting run in process with the shared repository predicate.
func NewTodoRepository(db *bolt.DB) repository.TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var todo *domain.Todo
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltdb.BucketTodos).Get([]byte(id))
		if raw == nil {
			return domain.ErrTodoNotFound
		}
		rec, err := decodeTodo(raw)
		if err != nil {
			return err
		}
		t := newResolver(tx).todo(rec)
		todo = &t
		return nil
	})
	return todo, err
}

func (r *todoRepository) Find(ctx context.Context, query repository.TodoQuery) ([]domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort := query.Sort.Normalize()

	var todos []domain.Todo
	err := r.db.View(func(tx *bolt.Tx) error {
		res := newResolver(tx)
		bucket := tx.Bucket(boltdb.BucketTodos)

		var cursor *domain.Todo
		if query.After != "" {
			if raw := bucket.Get([]byte(query.After)); raw != nil {
				if rec, err := decodeTodo(raw); err == nil {
					t := res.todo(rec)
					cursor = &t
				}
			}
		}

		return bucket.ForEach(func(_, v []byte) error {
			rec, err := decodeTodo(v)
			if err != nil {
				return nil
			}
			t := res.todo(rec)
			if !query.Filter.Matches(&t) {
				return nil
			}
			switch {
			case cursor != nil && !sort.Follows(&t, cursor):
				return nil
			case cursor == nil && query.After != "" && !sort.FollowsID(t.ID, query.After):
				return nil
			}
			todos = append(todos, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(todos, func(a, b domain.Todo) int {
		return sort.Compare(&a, &b)
	})
	if query.Limit > 0 && len(todos) > query.Limit {
		todos = todos[:query.Limit]
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if todo.ID == "" {
		todo.ID = domain.NewID()
	}
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltdb.BucketTodos)
		if bucket.Get([]byte(todo.ID)) != nil {
			return domain.NewError(domain.ErrCodeConflict, "todo already exists")
		}
		return putTodo(tx, todo)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, todo.ID)
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltdb.BucketTodos).Get([]byte(todo.ID))
		if raw == nil {
			return domain.ErrTodoNotFound
		}
		existing, err := decodeTodo(raw)
		if err != nil {
			return err
		}
		// owner and creation time never change
		todo.Owner.ID = existing.OwnerID
		todo.CreatedAt = existing.CreatedAt
		todo.UpdatedAt = time.Now().UTC()
		return putTodo(tx, todo)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, todo.ID)
}

func (r *todoRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltdb.BucketTodos)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTodoNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func (r *todoRepository) CompleteMany(ctx context.Context, ids []string, ownerID string) (repository.BulkResult, error) {
	var result repository.BulkResult
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// a single read-write transaction is atomic and serialized against
	// every other writer
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltdb.BucketTodos)
		now := time.Now().UTC()
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			raw := bucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			rec, err := decodeTodo(raw)
			if err != nil {
				return err
			}
			if rec.OwnerID != ownerID {
				continue
			}
			result.Matched++
			if rec.Status == string(domain.StatusCompleted) {
				continue
			}
			rec.Status = string(domain.StatusCompleted)
			rec.UpdatedAt = now
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(id), payload); err != nil {
				return err
			}
			result.Modified++
		}
		return nil
	})
	if err != nil {
		return repository.BulkResult{}, err
	}
	return result, nil
}

func putTodo(tx *bolt.Tx, todo *domain.Todo) error {
	users := tx.Bucket(boltdb.BucketUsers)
	refs := append([]string{todo.Owner.ID}, todo.MentionIDs()...)
	for _, n := range todo.Notes {
		refs = append(refs, n.Editor.ID)
	}
	for _, id := range refs {
		if users.Get([]byte(id)) == nil {
			return domain.ErrUnknownUserRef
		}
	}
	for i := range todo.Notes {
		if todo.Notes[i].ID == "" {
			todo.Notes[i].ID = domain.NewID()
		}
	}

	payload, err := json.Marshal(newTodoRecord(todo))
	if err != nil {
		return err
	}
	return tx.Bucket(boltdb.BucketTodos).Put([]byte(todo.ID), payload)
}

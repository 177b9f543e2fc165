package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	query := "SELECT " + todoColumns + `
	FROM todos t
	JOIN users o ON o.id = t.user_id
	WHERE t.id = $1::uuid
	`
	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err, domain.ErrTodoNotFound)
	}
	todos := []domain.Todo{*todo}
	if err := r.loadRelations(ctx, todos); err != nil {
		return nil, err
	}
	return &todos[0], nil
}

func (r *todoRepository) Find(ctx context.Context, q repository.TodoQuery) ([]domain.Todo, error) {
	sort := q.Sort.Normalize()

	var b queryBuilder
	b.applyFilter(q.Filter)
	if q.After != "" {
		value, found, err := r.cursorValue(ctx, sort.Field, q.After)
		if err != nil {
			return nil, err
		}
		if found {
			b.applyKeyset(sort, q.After, value)
		} else {
			b.applyIDBound(sort, q.After)
		}
	}

	rows, err := r.pool.Query(ctx, b.sql(q.Limit, orderBy(sort)), b.args...)
	if err != nil {
		return nil, translateError(err, domain.ErrTodoNotFound)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// cursorValue reads the sort key of the cursor row so the next page resumes
// after (value, id) instead of after id alone.
func (r *todoRepository) cursorValue(ctx context.Context, field repository.SortField, id string) (interface{}, bool, error) {
	query := "SELECT " + sortExpr(field) + " FROM todos t WHERE t.id = $1::uuid"
	var value interface{}
	if err := r.pool.QueryRow(ctx, query, id).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if todo.ID == "" {
		todo.ID = domain.NewID()
	}

	const query = `
	INSERT INTO todos (id, user_id, title, description, status, priority, tags, due_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			todo.ID,
			todo.Owner.ID,
			todo.Title,
			todo.Description,
			string(todo.Status),
			string(todo.Priority),
			nonNilTags(todo.Tags),
			nullTimePtr(todo.DueDate),
		); err != nil {
			return err
		}
		return replaceRelations(ctx, tx, todo)
	})
	if err != nil {
		return nil, translateError(err, domain.ErrTodoNotFound)
	}
	return r.GetByID(ctx, todo.ID)
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE todos
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		tags = $6,
		due_date = $7,
		updated_at = NOW()
	WHERE id = $1
	`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			todo.ID,
			todo.Title,
			todo.Description,
			string(todo.Status),
			string(todo.Priority),
			nonNilTags(todo.Tags),
			nullTimePtr(todo.DueDate),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTodoNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM todo_mentions WHERE todo_id = $1`, todo.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM todo_notes WHERE todo_id = $1`, todo.ID); err != nil {
			return err
		}
		return replaceRelations(ctx, tx, todo)
	})
	if err != nil {
		return nil, translateError(err, domain.ErrTodoNotFound)
	}
	return r.GetByID(ctx, todo.ID)
}

func (r *todoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM todos WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return translateError(err, domain.ErrTodoNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) CompleteMany(ctx context.Context, ids []string, ownerID string) (repository.BulkResult, error) {
	// One statement: the row locks taken by the matched CTE serialize
	// concurrent calls over the same todos.
	const query = `
	WITH matched AS (
		SELECT id, status
		FROM todos
		WHERE id = ANY($1::uuid[]) AND user_id = $2
		FOR UPDATE
	), changed AS (
		UPDATE todos t
		SET status = 'completed', updated_at = NOW()
		FROM matched m
		WHERE t.id = m.id AND m.status <> 'completed'
		RETURNING t.id
	)
	SELECT (SELECT COUNT(*) FROM matched), (SELECT COUNT(*) FROM changed)
	`
	var result repository.BulkResult
	if err := r.pool.QueryRow(ctx, query, ids, ownerID).Scan(&result.Matched, &result.Modified); err != nil {
		return repository.BulkResult{}, translateError(err, domain.ErrNoMatchingTodos)
	}
	return result, nil
}

func replaceRelations(ctx context.Context, tx pgx.Tx, todo *domain.Todo) error {
	batch := &pgx.Batch{}
	for i, u := range todo.MentionedUsers {
		batch.Queue(`
		INSERT INTO todo_mentions (todo_id, user_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (todo_id, user_id) DO NOTHING
		`, todo.ID, u.ID, i)
	}
	for i := range todo.Notes {
		n := &todo.Notes[i]
		if n.ID == "" {
			n.ID = domain.NewID()
		}
		if n.Date.IsZero() {
			n.Date = time.Now().UTC()
		}
		batch.Queue(`
		INSERT INTO todo_notes (id, todo_id, position, content, editor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		`, n.ID, todo.ID, i, n.Content, n.Editor.ID, n.Date)
	}
	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}

// loadRelations resolves mentioned users and note editors for todos with two
// joined queries, regardless of page size.
func (r *todoRepository) loadRelations(ctx context.Context, todos []domain.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	ids := make([]string, len(todos))
	index := make(map[string]int, len(todos))
	for i := range todos {
		ids[i] = todos[i].ID
		index[todos[i].ID] = i
	}

	const mentionsQuery = `
	SELECT m.todo_id::text, u.id::text, u.username, u.email
	FROM todo_mentions m
	JOIN users u ON u.id = m.user_id
	WHERE m.todo_id = ANY($1::uuid[])
	ORDER BY m.todo_id, m.position
	`
	rows, err := r.pool.Query(ctx, mentionsQuery, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var todoID string
		var ref domain.UserRef
		if err := rows.Scan(&todoID, &ref.ID, &ref.Username, &ref.Email); err != nil {
			rows.Close()
			return err
		}
		t := &todos[index[todoID]]
		t.MentionedUsers = append(t.MentionedUsers, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const notesQuery = `
	SELECT n.todo_id::text, n.id::text, n.content, n.created_at, u.id::text, u.username, u.email
	FROM todo_notes n
	JOIN users u ON u.id = n.editor_id
	WHERE n.todo_id = ANY($1::uuid[])
	ORDER BY n.todo_id, n.position
	`
	rows, err = r.pool.Query(ctx, notesQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var todoID string
		var note domain.Note
		if err := rows.Scan(&todoID, &note.ID, &note.Content, &note.Date,
			&note.Editor.ID, &note.Editor.Username, &note.Editor.Email); err != nil {
			return err
		}
		t := &todos[index[todoID]]
		t.Notes = append(t.Notes, note)
	}
	return rows.Err()
}

func scanTodo(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Todo, error) {
	var (
		todo     domain.Todo
		status   string
		priority string
		due      *time.Time
	)

	if err := row.Scan(
		&todo.ID,
		&todo.Owner.ID,
		&todo.Owner.Username,
		&todo.Owner.Email,
		&todo.Title,
		&todo.Description,
		&status,
		&priority,
		&todo.Tags,
		&due,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		return nil, err
	}

	todo.Status = domain.Status(status)
	todo.Priority = domain.Priority(priority)
	todo.DueDate = due
	if todo.Tags == nil {
		todo.Tags = []string{}
	}
	todo.MentionedUsers = []domain.UserRef{}
	todo.Notes = []domain.Note{}
	return &todo, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

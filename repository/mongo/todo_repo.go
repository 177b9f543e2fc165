package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const sortKey = "_sortKey"

type todoRepository struct {
	todos *mongodrv.Collection
	users *mongodrv.Collection
}

// NewTodoRepository returns a MongoDB-backed TodoRepository.
func NewTodoRepository(db *mongodrv.Database) repository.TodoRepository {
	return &todoRepository{
		todos: db.Collection("todos"),
		users: db.Collection("users"),
	}
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	var doc todoDoc
	if err := r.todos.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}
	refs, err := resolveUsers(ctx, r.users, doc.referencedIDs())
	if err != nil {
		return nil, err
	}
	todo := doc.todo(refs)
	return &todo, nil
}

func (r *todoRepository) Find(ctx context.Context, q repository.TodoQuery) ([]domain.Todo, error) {
	sort := q.Sort.Normalize()
	dir := int(sort.Direction)

	pipeline := mongodrv.Pipeline{
		{{Key: "$match", Value: filterDoc(q.Filter)}},
		{{Key: "$addFields", Value: bson.D{{Key: sortKey, Value: sortExpr(sort.Field)}}}},
	}

	if q.After != "" {
		var cursorDoc todoDoc
		err := r.todos.FindOne(ctx, bson.M{"_id": q.After}).Decode(&cursorDoc)
		switch {
		case err == nil:
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: keysetDoc(sort, q.After, sortValue(sort.Field, cursorDoc))}})
		case errors.Is(err, mongodrv.ErrNoDocuments):
			op := "$lt"
			if sort.Direction == repository.SortAsc {
				op = "$gt"
			}
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"_id": bson.M{op: q.After}}}})
		default:
			return nil, err
		}
	}

	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: sortKey, Value: dir}, {Key: "_id", Value: dir}}}})
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.D{{Key: sortKey, Value: 0}}}})

	cursor, err := r.todos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []todoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.referencedIDs()...)
	}
	refs, err := resolveUsers(ctx, r.users, ids)
	if err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, d.todo(refs))
	}
	return todos, nil
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if todo.ID == "" {
		todo.ID = domain.NewID()
	}
	now := mongoNow()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	prepareNotes(todo, now)

	doc := newTodoDoc(todo)
	if err := r.checkRefs(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := r.todos.InsertOne(ctx, doc); err != nil {
		if mongodrv.IsDuplicateKeyError(err) {
			return nil, domain.WrapError(domain.ErrCodeConflict, "todo already exists", err)
		}
		return nil, err
	}
	return r.GetByID(ctx, todo.ID)
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	prepareNotes(todo, mongoNow())

	doc := newTodoDoc(todo)
	if err := r.checkRefs(ctx, doc); err != nil {
		return nil, err
	}
	res, err := r.todos.UpdateOne(ctx, bson.M{"_id": todo.ID}, bson.M{"$set": bson.M{
		"title":          doc.Title,
		"description":    doc.Description,
		"status":         doc.Status,
		"priority":       doc.Priority,
		"tags":           doc.Tags,
		"mentionedUsers": doc.MentionedUsers,
		"notes":          doc.Notes,
		"dueDate":        doc.DueDate,
		"updatedAt":      mongoNow(),
	}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTodoNotFound
	}
	return r.GetByID(ctx, todo.ID)
}

func (r *todoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.todos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) CompleteMany(ctx context.Context, ids []string, ownerID string) (repository.BulkResult, error) {
	// updatedAt only moves for documents whose status actually changes, so
	// ModifiedCount excludes todos that were already completed.
	update := mongodrv.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(domain.StatusCompleted)},
		{Key: "updatedAt", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.StatusCompleted)}}},
			"$updatedAt",
			"$$NOW",
		}}}},
	}}}}

	res, err := r.todos.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "user": ownerID}, update)
	if err != nil {
		return repository.BulkResult{}, err
	}
	return repository.BulkResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// checkRefs rejects documents pointing at users that do not exist.
func (r *todoRepository) checkRefs(ctx context.Context, doc todoDoc) error {
	seen := map[string]struct{}{}
	var unique []string
	for _, id := range doc.referencedIDs() {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	n, err := r.users.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": unique}})
	if err != nil {
		return err
	}
	if n != int64(len(unique)) {
		return domain.ErrUnknownUserRef
	}
	return nil
}

func filterDoc(f repository.TodoFilter) bson.D {
	and := bson.A{
		bson.M{"$or": bson.A{bson.M{"user": f.ViewerID}, bson.M{"mentionedUsers": f.ViewerID}}},
	}
	if f.Status != "" {
		and = append(and, bson.M{"status": string(f.Status)})
	}
	if f.Priority != "" {
		and = append(and, bson.M{"priority": string(f.Priority)})
	}
	if len(f.Tags) > 0 {
		and = append(and, bson.M{"tags": bson.M{"$in": f.Tags}})
	}
	if f.DueFrom != nil || f.DueTo != nil {
		due := bson.M{}
		if f.DueFrom != nil {
			due["$gte"] = *f.DueFrom
		}
		if f.DueTo != nil {
			due["$lte"] = *f.DueTo
		}
		and = append(and, bson.M{"dueDate": due})
	}
	if f.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}})
	}
	return bson.D{{Key: "$and", Value: and}}
}

func rankExpr(field string, order ...string) bson.D {
	branches := bson.A{}
	for i, v := range order {
		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$" + field, v}}}},
			{Key: "then", Value: i + 1},
		})
	}
	return bson.D{{Key: "$switch", Value: bson.D{{Key: "branches", Value: branches}, {Key: "default", Value: 0}}}}
}

// sortExpr mirrors repository.TodoSort.Compare.
func sortExpr(field repository.SortField) interface{} {
	switch field {
	case repository.SortByID:
		return "$_id"
	case repository.SortByUpdatedAt:
		return "$updatedAt"
	case repository.SortByDueDate:
		return "$dueDate"
	case repository.SortByPriority:
		return rankExpr("priority", "low", "medium", "high")
	case repository.SortByStatus:
		return rankExpr("status", "todo", "pending", "completed")
	case repository.SortByTitle:
		return "$title"
	default:
		return "$createdAt"
	}
}

func sortValue(field repository.SortField, d todoDoc) interface{} {
	switch field {
	case repository.SortByID:
		return d.ID
	case repository.SortByUpdatedAt:
		return d.UpdatedAt
	case repository.SortByDueDate:
		if d.DueDate == nil {
			return nil
		}
		return *d.DueDate
	case repository.SortByPriority:
		return domain.Priority(d.Priority).Rank()
	case repository.SortByStatus:
		return domain.Status(d.Status).Rank()
	case repository.SortByTitle:
		return d.Title
	default:
		return d.CreatedAt
	}
}

// keysetDoc matches rows strictly after (value, id); null sort keys come
// first ascending and last descending.
func keysetDoc(sort repository.TodoSort, id string, value interface{}) bson.M {
	asc := sort.Direction == repository.SortAsc
	if sort.Field == repository.SortByID {
		if asc {
			return bson.M{"_id": bson.M{"$gt": id}}
		}
		return bson.M{"_id": bson.M{"$lt": id}}
	}

	switch {
	case asc && value != nil:
		return bson.M{"$or": bson.A{
			bson.M{sortKey: bson.M{"$gt": value}},
			bson.M{sortKey: value, "_id": bson.M{"$gt": id}},
		}}
	case asc:
		return bson.M{"$or": bson.A{
			bson.M{sortKey: bson.M{"$ne": nil}},
			bson.M{"_id": bson.M{"$gt": id}},
		}}
	case value != nil:
		return bson.M{"$or": bson.A{
			bson.M{sortKey: bson.M{"$lt": value}},
			bson.M{sortKey: value, "_id": bson.M{"$lt": id}},
			bson.M{sortKey: nil},
		}}
	default:
		return bson.M{sortKey: nil, "_id": bson.M{"$lt": id}}
	}
}

func prepareNotes(todo *domain.Todo, now time.Time) {
	for i := range todo.Notes {
		if todo.Notes[i].ID == "" {
			todo.Notes[i].ID = domain.NewID()
		}
		if todo.Notes[i].Date.IsZero() {
			todo.Notes[i].Date = now
		}
	}
}

// mongoNow matches the millisecond precision BSON dates are stored with.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

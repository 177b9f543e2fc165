package postgres

import (
	"fmt"
	"strings"

	"github.com/fastygo/tasktracker/repository"
)

const todoColumns = `
	t.id::text, t.user_id::text, o.username, o.email,
	t.title, t.description, t.status, t.priority, t.tags, t.due_date,
	t.created_at, t.updated_at`

const priorityRank = `CASE t.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END`

const statusRank = `CASE t.status WHEN 'todo' THEN 1 WHEN 'pending' THEN 2 WHEN 'completed' THEN 3 ELSE 0 END`

// sortExpr returns the SQL expression for a sort field. The expressions
// reproduce repository.TodoSort.Compare.
func sortExpr(field repository.SortField) string {
	switch field {
	case repository.SortByID:
		return "t.id"
	case repository.SortByUpdatedAt:
		return "t.updated_at"
	case repository.SortByDueDate:
		return "t.due_date"
	case repository.SortByPriority:
		return priorityRank
	case repository.SortByStatus:
		return statusRank
	case repository.SortByTitle:
		return `t.title COLLATE "C"`
	default:
		return "t.created_at"
	}
}

// queryBuilder accumulates WHERE conditions with positional arguments.
type queryBuilder struct {
	conds []string
	args  []interface{}
}

func (b *queryBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *queryBuilder) applyFilter(f repository.TodoFilter) {
	viewer := b.arg(f.ViewerID)
	b.where(fmt.Sprintf(
		"(t.user_id = %[1]s OR EXISTS (SELECT 1 FROM todo_mentions m WHERE m.todo_id = t.id AND m.user_id = %[1]s))",
		viewer,
	))
	if f.Status != "" {
		b.where("t.status = " + b.arg(string(f.Status)))
	}
	if f.Priority != "" {
		b.where("t.priority = " + b.arg(string(f.Priority)))
	}
	if len(f.Tags) > 0 {
		b.where("t.tags && " + b.arg(f.Tags) + "::text[]")
	}
	if f.DueFrom != nil {
		b.where("t.due_date >= " + b.arg(*f.DueFrom))
	}
	if f.DueTo != nil {
		b.where("t.due_date <= " + b.arg(*f.DueTo))
	}
	if f.Search != "" {
		p := b.arg(containsPattern(f.Search))
		b.where(fmt.Sprintf(`(t.title ILIKE %[1]s ESCAPE '\' OR t.description ILIKE %[1]s ESCAPE '\')`, p))
	}
}

// applyKeyset restricts rows to those strictly after the cursor row. Missing
// values sort lowest: first when ascending, last when descending.
func (b *queryBuilder) applyKeyset(sort repository.TodoSort, cursorID string, cursorValue interface{}) {
	expr := sortExpr(sort.Field)
	id := b.arg(cursorID) + "::uuid"
	asc := sort.Direction == repository.SortAsc

	if sort.Field == repository.SortByID {
		if asc {
			b.where("t.id > " + id)
		} else {
			b.where("t.id < " + id)
		}
		return
	}

	switch {
	case asc && cursorValue != nil:
		v := b.arg(cursorValue)
		b.where(fmt.Sprintf("(%[1]s > %[2]s OR (%[1]s = %[2]s AND t.id > %[3]s))", expr, v, id))
	case asc:
		b.where(fmt.Sprintf("(%s IS NOT NULL OR t.id > %s)", expr, id))
	case cursorValue != nil:
		v := b.arg(cursorValue)
		b.where(fmt.Sprintf("(%[1]s < %[2]s OR (%[1]s = %[2]s AND t.id < %[3]s) OR %[1]s IS NULL)", expr, v, id))
	default:
		b.where(fmt.Sprintf("(%s IS NULL AND t.id < %s)", expr, id))
	}
}

// applyIDBound is the identifier-only cursor used when the cursor row is gone.
func (b *queryBuilder) applyIDBound(sort repository.TodoSort, cursorID string) {
	if sort.Direction == repository.SortAsc {
		b.where("t.id > " + b.arg(cursorID) + "::uuid")
		return
	}
	b.where("t.id < " + b.arg(cursorID) + "::uuid")
}

func orderBy(sort repository.TodoSort) string {
	dir, nulls := "DESC", "NULLS LAST"
	if sort.Direction == repository.SortAsc {
		dir, nulls = "ASC", "NULLS FIRST"
	}
	if sort.Field == repository.SortByID {
		return "t.id " + dir
	}
	return fmt.Sprintf("%s %s %s, t.id %s", sortExpr(sort.Field), dir, nulls, dir)
}

func (b *queryBuilder) sql(limit int, order string) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(todoColumns)
	sb.WriteString("\nFROM todos t\nJOIN users o ON o.id = t.user_id")
	if len(b.conds) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(b.conds, "\n  AND "))
	}
	sb.WriteString("\nORDER BY ")
	sb.WriteString(order)
	if limit > 0 {
		sb.WriteString("\nLIMIT ")
		sb.WriteString(b.arg(limit))
	}
	return sb.String()
}

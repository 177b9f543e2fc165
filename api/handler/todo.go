package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	todoUC "github.com/fastygo/tasktracker/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos the caller owns or is mentioned on
// @Tags todos
// @Router /api/v1/todos [get]
func (h *TodoHandler) GetTodos(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	params := todoUC.FetchParams{
		Criteria: criteriaFromQuery(args),
		Limit:    parseInt(string(args.Peek("limit")), 0),
		Cursor:   string(args.Peek("cursor")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Fetch(stdCtx, userID, params)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Get todo
// @Tags todos
// @Router /api/v1/todos/{id} [get]
func (h *TodoHandler) GetTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.Get(stdCtx, userID, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todo)
}

// @Summary Create todo
// @Tags todos
// @Router /api/v1/todos [post]
func (h *TodoHandler) CreateTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TodoCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, userID, todoUC.CreateInput{
		Title:                 req.Title,
		Description:           req.Description,
		Note:                  req.Notes,
		DueDate:               req.DueDate,
		Priority:              req.Priority,
		Tags:                  req.Tags,
		MentionedUsernamesCsv: req.MentionedUsernamesCsv,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update todo
// @Tags todos
// @Router /api/v1/todos/{id} [put]
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TodoUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	in := todoUC.UpdateInput{
		Title:                 req.Title,
		Description:           req.Description,
		Priority:              req.Priority,
		Status:                req.Status,
		MentionedUsernamesCsv: req.MentionedUsernamesCsv,
		DueDate:               req.DueDate,
	}
	if req.Tags != nil {
		tags := []string(*req.Tags)
		in.Tags = &tags
	}
	if req.Notes != nil {
		notes := make([]todoUC.NoteInput, 0, len(*req.Notes))
		for _, n := range *req.Notes {
			notes = append(notes, todoUC.NoteInput{ID: n.ID, Content: n.Content, EditorID: n.Editor, Date: n.Date})
		}
		in.Notes = &notes
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, userID, pathID(ctx), in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete todo
// @Tags todos
// @Router /api/v1/todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, pathID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondMessage(ctx, "Todo removed successfully")
}

// @Summary Mark todos complete
// @Tags todos
// @Router /api/v1/todos/mark-complete [put]
func (h *TodoHandler) MarkComplete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.BulkCompleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid todo ids provided")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.CompleteMany(stdCtx, userID, req.TodoIDs)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Info("todos marked complete",
		zap.Int64("matched", result.Matched), zap.Int64("modified", result.Modified))
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Export todos as CSV or JSON
// @Tags todos
// @Router /api/v1/todos/export/{type} [get]
func (h *TodoHandler) Export(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	format, _ := ctx.UserValue("type").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	file, err := h.uc.Export(stdCtx, userID, format, criteriaFromQuery(ctx.QueryArgs()))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	ctx.Response.Header.SetContentType(file.ContentType)
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(file.Body)
}

func criteriaFromQuery(args *fasthttp.Args) todoUC.Criteria {
	return todoUC.Criteria{
		Status:    string(args.Peek("status")),
		Priority:  string(args.Peek("priority")),
		Tags:      string(args.Peek("tags")),
		DateFrom:  string(args.Peek("dateFrom")),
		DateTo:    string(args.Peek("dateTo")),
		Search:    string(args.Peek("search")),
		SortBy:    string(args.Peek("sortBy")),
		SortOrder: string(args.Peek("sortOrder")),
	}
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

package router

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	boltrepo "github.com/fastygo/tasktracker/repository/bolt"
	todoUC "github.com/fastygo/tasktracker/usecase/todo"
)

// tokenAuth accepts the token "valid" for a fixed user.
type tokenAuth struct {
	userID string
}

func (a tokenAuth) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	if token != "valid" {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{ID: "session", UserID: a.userID}, nil
}

func newTestRouter(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := boltrepo.NewUserRepository(db)
	user := &domain.User{ID: domain.NewID(), Username: "ada", Status: domain.UserStatusActive}
	require.NoError(t, users.Upsert(context.Background(), user))

	adapter := httpcontext.NewAdapter(time.Second)
	todos := todoUC.New(boltrepo.NewTodoRepository(db), users, todoUC.Config{}, nil)
	mon := monitor.New(time.Minute, nil, monitor.BoltProbe(db))
	mon.Refresh()

	r := New(Handlers{
		Auth:    apiHandler.NewAuthHandler(nil, adapter, nil, time.Hour),
		Profile: apiHandler.NewProfileHandler(nil, adapter, nil),
		Todo:    apiHandler.NewTodoHandler(todos, adapter, nil),
		Health:  apiHandler.NewHealthHandler(mon, adapter, nil),
	}, middleware.JWTAuth(tokenAuth{userID: user.ID}, time.Second, nil))
	return r.Handler
}

func serve(h fasthttp.RequestHandler, method, uri, token, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	h(ctx)
	return ctx
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		uri      string
		token    string
		body     string
		status   int
		wantBody string
	}{
		{"health", fasthttp.MethodGet, "/health", "", "", http.StatusOK, `"bolt":true`},
		{"todos need a token", fasthttp.MethodGet, "/api/v1/todos", "", "", http.StatusUnauthorized, "missing bearer token"},
		{"todos reject bad token", fasthttp.MethodGet, "/api/v1/todos", "forged", "", http.StatusUnauthorized, "invalid or expired token"},
		{"list", fasthttp.MethodGet, "/api/v1/todos", "valid", "", http.StatusOK, `"allSortedTodos":[]`},
		{"mark-complete is not an id", fasthttp.MethodPut, "/api/v1/todos/mark-complete", "valid", `{"todoIds":[]}`, http.StatusBadRequest, "invalid todo ids provided"},
		{"export is not an id", fasthttp.MethodGet, "/api/v1/todos/export/csv", "valid", "", http.StatusNotFound, "no todos found for export"},
		{"bad id", fasthttp.MethodGet, "/api/v1/todos/123", "valid", "", http.StatusBadRequest, "invalid todo id"},
		{"logout needs a token", fasthttp.MethodPost, "/api/v1/auth/logout", "", "", http.StatusUnauthorized, ""},
		{"unknown route", fasthttp.MethodGet, "/api/v2/todos", "valid", "", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := serve(h, tt.method, tt.uri, tt.token, tt.body)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
			if tt.wantBody != "" {
				assert.Contains(t, string(ctx.Response.Body()), tt.wantBody)
			}
		})
	}
}

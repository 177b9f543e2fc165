package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// fasthttp user values holding the authenticated caller.
const (
	userValueKey    = "auth.user_id"
	sessionValueKey = "auth.session_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if userID := UserID(ctx); userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// SetIdentity records the authenticated caller and their session on the request.
func SetIdentity(ctx *fasthttp.RequestCtx, userID, sessionID string) {
	ctx.SetUserValue(userValueKey, userID)
	ctx.SetUserValue(sessionValueKey, sessionID)
}

// UserID returns the caller recorded by SetIdentity, or "".
func UserID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.UserValue(userValueKey).(string)
	return id
}

func SessionID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.UserValue(sessionValueKey).(string)
	return id
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}

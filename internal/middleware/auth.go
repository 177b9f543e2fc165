package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// JWTAuth rejects requests without a valid token for a live session and
// records the caller identity for downstream handlers.
func JWTAuth(auth Authenticator, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			session, err := auth.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("authentication failed", zap.Error(err))
					respond(ctx, http.StatusInternalServerError, transport.NewError(string(domain.ErrCodeInternal), "internal server error"))
					return
				}
				unauthorized(ctx, "invalid or expired token")
				return
			}

			httpcontext.SetIdentity(ctx, session.UserID, session.ID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	respond(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), message))
}

func respond(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(payload.String())
}

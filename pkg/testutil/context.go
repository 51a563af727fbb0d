package testutil

import (
	"net/http"
	"time"

	"assettrack/pkg/requestcontext"
)

// WithIdentity adds an authenticated identity to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithIdentity(req *http.Request, userID, name, role string) *http.Request {
	ctx := req.Context()
	ctx = requestcontext.WithUserID(ctx, userID)
	ctx = requestcontext.WithUserName(ctx, name)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithClock pins the request-scoped clock, the way the RequestTime middleware
// does in production.
func WithClock(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

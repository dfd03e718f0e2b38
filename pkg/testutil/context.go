package testutil

import (
	"net/http"
	"time"

	"convoy/pkg/domain"
	"convoy/pkg/requestcontext"
)

// WithOrgContext stamps organization scope on a test request the way the
// token middleware would, so handlers can be tested without a router.
func WithOrgContext(req *http.Request, orgID domain.OrgID, actor string, role domain.Role) *http.Request {
	ctx := requestcontext.WithOrgID(req.Context(), orgID)
	ctx = requestcontext.WithActorID(ctx, actor)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request clock, matching the request time
// middleware.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID sets the request id on a test request.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}

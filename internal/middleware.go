package internal

import (
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/jvarghese/gigwish/internal/ctxhelper"
	"golang.org/x/net/context"
)

// EnsureAdminSession is a middleware that checks if there is a valid admin session for the current call
func EnsureAdminSession(next endpoint.Endpoint) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		sess := ctxhelper.Session(ctx)
		if sess == nil {
			// The admin view is locked
			return nil, MakeError(
				http.StatusForbidden,
				ErrCodeNotLoggedIn,
				"This function needs an unlocked admin session",
			)
		}
		return next(ctx, request)
	}
}

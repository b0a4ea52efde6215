package middleware

import (
	stderrors "errors"
	"net/http"

	"balades-api/logging"
	"balades-api/utils/errors"

	"github.com/goccy/go-json"
)

// ErrorMiddleware turns panics into a JSON 500 response.
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logging.Ctx(r.Context()).Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("panic recovered")
					WriteError(w, r, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as {"error": message} with its status code.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", errors.ErrInternal.Message, errors.ErrInternal.Status)
	}
	l := logging.Ctx(r.Context())
	if apiErr.Status >= 500 {
		l.Error().Str("code", apiErr.Code).Str("details", apiErr.Details).Msg(apiErr.Message)
	} else {
		l.Debug().Str("code", apiErr.Code).Str("details", apiErr.Details).Int("status", apiErr.Status).Msg(apiErr.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

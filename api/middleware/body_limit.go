package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
)

// LimitBody caps how much of the request body any later reader may consume.
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err == nil {
		return body, nil
	}
	var sizeErr *http.MaxBytesError
	if errors.As(err, &sizeErr) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
			WithDetails(map[string]string{"body": fmt.Sprintf("request body exceeds %d bytes", sizeErr.Limit)})
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request")
}

package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"balades-api/middleware"
	"balades-api/utils/errors"

	"github.com/goccy/go-json"
)

const codeEncode = "ENCODE_ERROR"

// writeJSON encodes v before writing the header. Encode failures become a
// JSON 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		middleware.WriteError(w, r, errors.Wrap(err, codeEncode, errors.ErrInternal.Message, http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst zeroed.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}
	return errors.Validation(errors.ErrInvalidInput.Message, err.Error())
}

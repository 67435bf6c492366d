package server

import (
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"

	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
)

// response is the GraphQL-over-HTTP body. Errors use gqlparser's JSON form:
// message, locations, path and extensions.
type response struct {
	Data   any           `json:"data"`
	Errors gqlerror.List `json:"errors,omitempty"`
}

func errorResponse(err *language.Error) response {
	return response{Errors: gqlerror.List{err}}
}

func fromResult(res *executor.ExecutionResult) response {
	out := response{Data: res.Data}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, &language.Error{
			Message:    e.Message,
			Locations:  e.Locations,
			Path:       language.ToPath(e.Path),
			Extensions: e.Extensions,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

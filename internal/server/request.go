package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"

	apq "github.com/hanpama/polygraph/internal/apq"
	language "github.com/hanpama/polygraph/internal/language"
)

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// hasQuery reports whether the request names a query directly or through
// the persistedQuery extension.
func (r GraphQLRequest) hasQuery() bool {
	if r.Query != "" {
		return true
	}
	_, ok := r.Extensions[apq.ExtensionKey]
	return ok
}

// requestError rejects the whole HTTP request before any operation runs.
type requestError struct {
	status int
	err    *language.Error
}

func badRequest(message string) *requestError {
	return &requestError{status: http.StatusBadRequest, err: &language.Error{Message: message}}
}

// decodeRequests reads the operations of r. batched is set for a JSON
// array body, which is answered with an array.
func decodeRequests(r *http.Request, maxBody int64) (reqs []GraphQLRequest, batched bool, rerr *requestError) {
	if r.Method == http.MethodGet {
		req, rerr := decodeQueryParams(r.URL.Query())
		if rerr != nil {
			return nil, false, rerr
		}
		return []GraphQLRequest{req}, false, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err != nil || mediaType != "application/json" {
			return nil, false, badRequest("unsupported Content-Type")
		}
	}
	defer r.Body.Close()
	body, rerr := readBody(r.Body, maxBody)
	if rerr != nil {
		return nil, false, rerr
	}

	if trimmed := bytes.TrimLeft(body, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(body, &reqs); err != nil {
			return nil, false, badRequest("invalid JSON")
		}
		if len(reqs) == 0 {
			return nil, false, badRequest("empty batch")
		}
		return reqs, true, nil
	}
	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, false, badRequest("invalid JSON")
	}
	if !req.hasQuery() {
		return nil, false, badRequest("missing 'query'")
	}
	return []GraphQLRequest{req}, false, nil
}

func decodeQueryParams(params url.Values) (GraphQLRequest, *requestError) {
	req := GraphQLRequest{Query: params.Get("query"), OperationName: params.Get("operationName")}
	for name, dst := range map[string]*map[string]any{"variables": &req.Variables, "extensions": &req.Extensions} {
		if v := params.Get(name); v != "" {
			if err := json.Unmarshal([]byte(v), dst); err != nil {
				return GraphQLRequest{}, badRequest("invalid '" + name + "' JSON")
			}
		}
	}
	if !req.hasQuery() {
		return GraphQLRequest{}, badRequest("missing 'query'")
	}
	return req, nil
}

func readBody(body io.Reader, limit int64) ([]byte, *requestError) {
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, badRequest("failed to read body")
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, &requestError{status: http.StatusRequestEntityTooLarge, err: &language.Error{Message: "body too large"}}
	}
	return b, nil
}

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/metadata"

	eventbus "github.com/hanpama/polygraph/internal/eventbus"
	events "github.com/hanpama/polygraph/internal/events"
	executor "github.com/hanpama/polygraph/internal/executor"
	language "github.com/hanpama/polygraph/internal/language"
	reqid "github.com/hanpama/polygraph/internal/reqid"
	schema "github.com/hanpama/polygraph/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDKey is the metadata key carrying the request ID.
const RequestIDKey = "graphql-request-id"

// Handler serves GraphQL over HTTP: POST with a JSON body or a batch
// array, GET with query parameters, and GraphiQL for browsers.
type Handler struct {
	exec *executor.Executor
	opt  Options
}

// New creates a new GraphQL HTTP handler using the given runtime and schema.
func New(runtime executor.Runtime, schema *schema.Schema, opts ...Option) (*Handler, error) {
	if runtime == nil || schema == nil {
		return nil, errors.New("server: runtime and schema are required")
	}
	exec := executor.NewExecutor(runtime, schema)
	op := defaultOptions()
	for _, f := range opts {
		f(&op)
	}
	return &Handler{exec: exec, opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.NewContext(ctx)
	status := http.StatusOK
	operations := 0
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Operations: operations, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse(&language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	if r.Method == http.MethodGet && h.opt.GraphiQL && acceptsHTML(r.Header.Get("Accept")) && len(r.URL.Query()) == 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
		return
	}

	ctx = metadata.NewOutgoingContext(ctx, h.forwardedMetadata(r, rid))

	reqs, batched, rerr := decodeRequests(r, h.opt.MaxBodyBytes)
	if rerr != nil {
		status = rerr.status
		writeJSON(w, status, errorResponse(rerr.err), h.opt.Pretty)
		return
	}
	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	operations = len(reqs)
	out := make([]response, len(reqs))
	for i, req := range reqs {
		out[i] = h.executeOne(ctx, req)
	}
	if batched {
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}
	writeJSON(w, status, out[0], h.opt.Pretty)
}

func (h *Handler) forwardedMetadata(r *http.Request, rid int64) metadata.MD {
	md := metadata.MD{}
	if len(h.opt.MetadataHeaders) > 0 {
		allowed := make(map[string]struct{}, len(h.opt.MetadataHeaders))
		for _, hdr := range h.opt.MetadataHeaders {
			allowed[strings.ToLower(hdr)] = struct{}{}
		}
		for k, v := range r.Header {
			if _, ok := allowed[strings.ToLower(k)]; ok {
				md[strings.ToLower(k)] = v
			}
		}
	}
	md[RequestIDKey] = []string{strconv.FormatInt(rid, 10)}
	return md
}

func (h *Handler) executeOne(ctx context.Context, req GraphQLRequest) response {
	query := req.Query
	persisted := false
	if h.opt.PersistedQueries != nil {
		q, err := h.opt.PersistedQueries.Process(ctx, req.Query, req.Extensions)
		if err != nil {
			return errorResponse(asGQLError(err))
		}
		persisted = req.Query == "" && q != ""
		query = q
	}
	if query == "" {
		return errorResponse(&language.Error{Message: "missing 'query'"})
	}

	doc, err := language.ParseQuery(query)
	if err != nil {
		return errorResponse(asGQLError(err))
	}

	opDef := doc.Operations.ForName(req.OperationName)
	if opDef == nil && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	opType := ""
	if opDef != nil {
		opType = string(opDef.Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: query, OperationName: req.OperationName, OperationType: opType, Persisted: persisted})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, h.opt.RootValue)
	errs := make([]error, len(result.Errors))
	for i := range result.Errors {
		errs[i] = result.Errors[i]
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         query,
		OperationName: req.OperationName,
		OperationType: opType,
		Persisted:     persisted,
		Errors:        errs,
		Duration:      time.Since(start),
	})
	return fromResult(result)
}

func asGQLError(err error) *language.Error {
	var ge *language.Error
	if errors.As(err, &ge) {
		return ge
	}
	return &language.Error{Message: err.Error()}
}

package graph

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"gqlgateway/internal/catalog"
	"gqlgateway/internal/httpx"

	"github.com/graphql-go/graphql"
)

// Sources are the per-request data source adapters.
type Sources struct {
	Satellites SatelliteSource
	Astronomy  AstronomySource
}

// SourceFactory builds fresh adapters for one request.
type SourceFactory func(r *http.Request) Sources

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

type requestError struct {
	Message string `json:"message"`
}

type requestErrorResponse struct {
	Errors []requestError `json:"errors"`
}

type HTTPHandler struct {
	schema  graphql.Schema
	catalog *catalog.Catalog
	sources SourceFactory
}

func NewHTTPHandler(schema graphql.Schema, c *catalog.Catalog, sources SourceFactory) *HTTPHandler {
	return &HTTPHandler{schema: schema, catalog: c, sources: sources}
}

// ServeHTTP handles GET /graphql?query=... and POST /graphql with a JSON or
// application/graphql body.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		req Request
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = parseGET(r)
	case http.MethodPost:
		req, err = parsePOST(r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeRequestError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeRequestError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeRequestError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeRequestError(w, http.StatusBadRequest, "must provide query string")
		return
	}

	deps := Deps{Catalog: h.catalog}
	if h.sources != nil {
		s := h.sources(r)
		deps.Satellites = s.Satellites
		deps.Astronomy = s.Astronomy
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        WithDeps(r.Context(), deps),
	})

	requestID := httpx.RequestIDFrom(r)
	for _, e := range result.Errors {
		log.Printf("graphql error request_id=%s message=%q path=%v", requestID, e.Message, e.Path)
	}

	writeJSON(w, http.StatusOK, result)
}

func parseGET(r *http.Request) (Request, error) {
	q := r.URL.Query()
	req := Request{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if v := q.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
			return Request{}, errors.New("variables must be a JSON object")
		}
	}
	return req, nil
}

func parsePOST(r *http.Request) (Request, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return Request{}, errors.New("invalid Content-Type")
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/graphql":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return Request{}, err
		}
		return Request{Query: string(body)}, nil
	case "application/json":
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return Request{}, err
			}
			return Request{}, errors.New("request body must be a JSON object")
		}
		return req, nil
	default:
		return Request{}, errors.New("unsupported Content-Type " + mediaType)
	}
}

func writeRequestError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, requestErrorResponse{Errors: []requestError{{Message: message}}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

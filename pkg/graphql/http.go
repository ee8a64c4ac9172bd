package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema   graphql.Schema
	maxDepth int
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, maxDepth: DefaultMaxDepth}
}

func writeResponse(w http.ResponseWriter, status int, response GraphQLResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// ServeHTTP executes one POSTed query. Query errors are reported in the
// errors array with status 200; malformed requests get 400.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeResponse(w, http.StatusMethodNotAllowed, GraphQLResponse{
			Errors: []GraphQLError{{Message: "method not allowed"}},
		})
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeResponse(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []GraphQLError{{Message: "invalid request body"}},
		})
		return
	}

	if err := ValidateQueryDepth(req.Query, h.maxDepth); err != nil {
		writeResponse(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []GraphQLError{{Message: err.Error()}},
		})
		return
	}

	result := ExecuteQuery(r.Context(), h.schema, req.Query, req.Variables, req.OperationName)

	response := GraphQLResponse{Data: result.Data}
	for _, err := range result.Errors {
		response.Errors = append(response.Errors, GraphQLError{Message: err.Message})
	}
	writeResponse(w, http.StatusOK, response)
}

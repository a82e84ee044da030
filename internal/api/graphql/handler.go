package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"

	gql "github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
)

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler serves POST and GET /graphql.
type Handler struct {
	schema gql.Schema
}

func NewHandler(schema gql.Schema) *Handler {
	return &Handler{schema: schema}
}

// Serve executes a single GraphQL operation. Resolver failures are reported
// in the errors array with status 200; only an unreadable request is a 400.
//
// @Summary      GraphQL endpoint
// @Tags         graphql
// @Accept       json
// @Produce      json
// @Param        body  body      request  false  "GraphQL request"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /graphql [post]
func (h *Handler) Serve(c echo.Context) error {
	req, err := readRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	result := gql.Do(gql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request().Context(),
	})
	return c.JSON(http.StatusOK, result)
}

func readRequest(c echo.Context) (request, error) {
	var req request
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if vars := c.QueryParam("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, fmt.Errorf("variables: %w", err)
			}
		}
		return req, nil
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

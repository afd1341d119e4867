package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hos-market/storefront-api/pkg/config"
	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
	"github.com/hos-market/storefront-api/pkg/logger"
)

var (
	errAPIURLRequired = errors.New("commerce api url is required")
	errLoggerRequired = errors.New("commerce logger is required")
)

// Client talks GraphQL-over-HTTP to the commerce backend with centralized
// auth, logging, and error mapping.
type Client struct {
	httpClient *http.Client
	apiURL     string
	channel    string
	authToken  string
	maxBody    int64
	logger     *logger.Logger
}

// NewClient initializes the commerce wrapper and validates its configuration.
func NewClient(ctx context.Context, cfg config.CommerceConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		return nil, errAPIURLRequired
	}

	maxBody := int64(cfg.MaxBodyKB) * 1024
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiURL:     apiURL,
		channel:    strings.TrimSpace(cfg.Channel),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		maxBody:    maxBody,
		logger:     logg,
	}

	logg.Info(ctx, "commerce client initialized")
	return c, nil
}

// Channel reports the sales channel new checkouts are created against.
func (c *Client) Channel() string {
	if c == nil {
		return ""
	}
	return c.channel
}

// Ping verifies the backend answers GraphQL requests.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "Ping", "query Ping { __typename }", nil, nil)
}

type graphqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// do executes one GraphQL operation and decodes the data payload into dest.
// Transport failures, non-2xx statuses, and top-level GraphQL errors all map
// to dependency errors; mutation-level error lists are handled per operation.
func (c *Client) do(ctx context.Context, operationName, query string, variables map[string]any, dest any) error {
	payload, err := json.Marshal(graphqlRequest{
		Query:         query,
		Variables:     variables,
		OperationName: operationName,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("calling backend %s", operationName))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("backend returned status %d", resp.StatusCode)).
			WithDetails(map[string]any{"operation": operationName, "status": resp.StatusCode})
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			messages = append(messages, gqlErr.Message)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, "backend query failed").
			WithDetails(map[string]any{"operation": operationName, "errors": messages})
	}

	if dest == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend data")
	}
	return nil
}

// backendError converts a mutation's error list into a typed backend error.
func backendError(operation string, details []APIErrorDetail) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeBackend, joinErrorMessages(details)).
		WithDetails(map[string]any{"operation": operation, "errors": details})
}

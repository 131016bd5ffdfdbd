package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/pkg/utils"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// messageKeys are tried in order when extracting a message from an error body.
var messageKeys = []string{"message", "error", "errorMessage", "error_message", "msg", "detail", "title", "errors"}

// defaultMessages is used when the error body carries no readable message.
var defaultMessages = map[int]string{
	http.StatusBadRequest:          "The request was invalid. Please check the entered data.",
	http.StatusUnauthorized:        apperr.MsgSessionExpired,
	http.StatusForbidden:           "You do not have permission to perform this action.",
	http.StatusNotFound:            "The requested data was not found.",
	http.StatusConflict:            "The data was changed by someone else. Please reload and try again.",
	http.StatusInternalServerError: "The server encountered an error. Please try again later.",
	http.StatusBadGateway:          apperr.MsgCannotReachServer,
	http.StatusServiceUnavailable:  apperr.MsgCannotReachServer,
}

const genericFailureMessage = "The request could not be completed. Please try again."

type tokenContextKey struct{}

// ContextWithToken attaches the principal's remote bearer token to ctx.
// Every call made with the returned context is authenticated with it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

type callOptions struct {
	pendingWhenMissing bool
}

// CallOption tunes a single remote call.
type CallOption func(*callOptions)

// PendingWhenMissing marks an endpoint that may not exist server-side yet.
// A 404 from it is reported as KindNotImplemented instead of KindNotFound.
func PendingWhenMissing() CallOption {
	return func(o *callOptions) { o.pendingWhenMissing = true }
}

// APIClient is the single gateway to the remote REST service. Every failure it
// returns is an *apperr.Error.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client rooted at baseURL.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return NewAPIClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewAPIClientWithHTTP lets callers supply the transport, used by tests.
func NewAPIClientWithHTTP(baseURL string, httpClient *http.Client) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Do performs one JSON request. body is marshalled when non-nil; the response
// is decoded into out when out is non-nil and the body is not empty.
func (c *APIClient) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}, opts ...CallOption) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "Could not prepare the request.", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "Could not prepare the request.", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.LogDebug("Remote call failed", map[string]interface{}{"method": method, "path": path, "error": err.Error()})
		return apperr.Wrap(apperr.KindNetwork, apperr.MsgCannotReachServer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyResponse(resp.StatusCode, raw, o.pendingWhenMissing)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.KindNetwork, apperr.MsgCannotReachServer, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if rm, ok := out.(*json.RawMessage); ok {
		// Mutations sometimes answer with plain text; callers treat that as no body.
		if json.Valid(raw) {
			*rm = append((*rm)[:0], raw...)
		} else {
			*rm = nil
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Wrap(apperr.KindInternal, "The server returned an unexpected response.", err)
	}
	return nil
}

// classifyResponse converts a non-2xx response into the error taxonomy.
func classifyResponse(status int, body []byte, pendingWhenMissing bool) *apperr.Error {
	msg := extractMessage(body)
	if msg == "" {
		msg = defaultMessage(status)
	}

	var kind apperr.Kind
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = apperr.KindValidation
	case status == http.StatusUnauthorized:
		kind = apperr.KindAuthentication
	case status == http.StatusForbidden:
		kind = apperr.KindAuthorization
	case status == http.StatusNotFound && pendingWhenMissing:
		kind = apperr.KindNotImplemented
		msg = apperr.MsgFeaturePending
	case status == http.StatusNotFound:
		kind = apperr.KindNotFound
	case status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented:
		kind = apperr.KindNotImplemented
		msg = apperr.MsgFeaturePending
	case status == http.StatusConflict:
		kind = apperr.KindConflict
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		kind = apperr.KindNetwork
		msg = apperr.MsgCannotReachServer
	default:
		kind = apperr.KindInternal
	}

	return &apperr.Error{
		Kind:    kind,
		Message: msg,
		Status:  status,
		Err:     fmt.Errorf("remote status %d", status),
	}
}

func defaultMessage(status int) string {
	if msg, ok := defaultMessages[status]; ok {
		return msg
	}
	return genericFailureMessage
}

// extractMessage reads the first usable message from a JSON error body.
// Non-JSON bodies yield "" so raw server text never reaches the user.
func extractMessage(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	for _, key := range messageKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if msg := messageFromValue(raw); msg != "" {
			return msg
		}
	}
	return ""
}

// messageFromValue accepts a string, an object with a message, or a list of either.
func messageFromValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, key := range []string{"message", "msg", "defaultMessage", "detail"} {
			if v, ok := nested[key]; ok {
				if msg := messageFromValue(v); msg != "" {
					return msg
				}
			}
		}
		return ""
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if msg := messageFromValue(item); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Kind == apperr.KindNotFound
}

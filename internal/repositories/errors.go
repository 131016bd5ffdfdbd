package repositories

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"kitchen_control/internal/apperr"
)

var (
	// ErrNotFound is returned when a lookup succeeds but yields no record.
	ErrNotFound = apperr.New(apperr.KindNotFound, "The requested data was not found.")

	// ErrEmptyResponse is returned when a create/update answered with no body
	// where one was required.
	ErrEmptyResponse = apperr.New(apperr.KindInternal, "The server returned an empty response.")
)

// fetchList GETs path and maps every element of the (possibly wrapped) list.
func fetchList[T any](ctx context.Context, api *APIClient, path string, query url.Values, mapFn func(wireObject) T, opts ...CallOption) ([]T, error) {
	var raw json.RawMessage
	if err := api.Do(ctx, http.MethodGet, path, query, nil, &raw, opts...); err != nil {
		return nil, err
	}
	objs, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(objs))
	for _, o := range objs {
		out = append(out, mapFn(o))
	}
	return out, nil
}

// fetchOne performs a request whose response is a single object.
func fetchOne[T any](ctx context.Context, api *APIClient, method, path string, query url.Values, body interface{}, mapFn func(wireObject) T, opts ...CallOption) (*T, error) {
	var raw json.RawMessage
	if err := api.Do(ctx, method, path, query, body, &raw, opts...); err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, ErrEmptyResponse
	}
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	v := mapFn(obj)
	return &v, nil
}

// sendOptional performs a mutation whose response body may be empty. When a
// body is present it is mapped and returned, otherwise nil.
func sendOptional[T any](ctx context.Context, api *APIClient, method, path string, query url.Values, body interface{}, mapFn func(wireObject) T, opts ...CallOption) (*T, error) {
	var raw json.RawMessage
	if err := api.Do(ctx, method, path, query, body, &raw, opts...); err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}
	obj, err := decodeObject(raw)
	if err != nil {
		// Some mutations answer with plain text or a bare id; that is still a success.
		return nil, nil
	}
	v := mapFn(obj)
	return &v, nil
}

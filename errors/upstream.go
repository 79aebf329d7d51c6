package errors

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

const defaultUpstreamMessage = "request failed, please try again later"

// upstreamBody covers the error shapes the upstream API produces.
type upstreamBody struct {
	Message string              `json:"message"`
	Detail  string              `json:"detail"`
	Errors  map[string][]string `json:"errors"`
}

// FromResponse classifies a non-2xx upstream response.
//
//   - 401, 403, 404 map to fixed messages
//   - 422 with an "errors" object becomes "validation failed" with one metadata key per field
//   - anything else uses the body's "message" or "detail", then a generic message
func FromResponse(status int, body []byte) *Error {
	var payload upstreamBody
	_ = json.Unmarshal(body, &payload)

	switch status {
	case http.StatusUnauthorized:
		return Unauthorized("authorization required")
	case http.StatusForbidden:
		return Forbidden("access denied")
	case http.StatusNotFound:
		return NotFound("resource not found")
	case http.StatusUnprocessableEntity:
		if len(payload.Errors) > 0 {
			return UnprocessableEntity("validation failed").WithMetadata(flattenFieldErrors(payload.Errors))
		}
	}

	switch {
	case payload.Message != "":
		return New(status, "%s", payload.Message)
	case payload.Detail != "":
		return New(status, "%s", payload.Detail)
	default:
		return New(status, defaultUpstreamMessage)
	}
}

func flattenFieldErrors(fields map[string][]string) map[string]string {
	out := make(map[string]string, len(fields))
	for field, msgs := range fields {
		sorted := append([]string(nil), msgs...)
		sort.Strings(sorted)
		out[field] = strings.Join(sorted, "; ")
	}
	return out
}

package px6

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

const (
	statusSuccess = "yes"
	statusFailure = "no"
)

var (
	errNotObject     = errors.New("body is not a JSON object")
	errNoStatus      = errors.New("status field is missing or not a string")
	errUnknownStatus = errors.New("unrecognized status")
	errNoErrorCode   = errors.New("error_id is missing or not an integer")
)

// classify maps one transport outcome to a typed result or one of the
// package's error kinds. It is shared by the blocking and the suspending
// client, and runs once per call.
func classify[T any](method Method, resp *Response, transportErr error) (*T, error) {
	if transportErr != nil {
		return nil, &TransportError{Method: method, Err: transportErr}
	}
	if resp == nil {
		return nil, &TransportError{Method: method, Err: errors.New("no response")}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitedError{Body: string(resp.Body)}
	}

	unexpected := func(err error) error {
		return &UnexpectedResponseError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &fields); err != nil || fields == nil {
		return nil, unexpected(errNotObject)
	}

	var status string
	if err := json.Unmarshal(fields["status"], &status); err != nil {
		return nil, unexpected(errNoStatus)
	}

	switch {
	case status == statusFailure:
		code, ok := errorCode(fields["error_id"])
		if !ok {
			return nil, unexpected(errNoErrorCode)
		}
		return nil, &DocumentedError{Code: code, Message: errorMessage(fields["error"])}

	case status == statusSuccess && resp.StatusCode >= 200 && resp.StatusCode < 300:
		for _, name := range requiredFields[method] {
			raw, ok := fields[name]
			if !ok || isNull(raw) {
				return nil, unexpected(fmt.Errorf("%s response is missing %q", method, name))
			}
		}
		var result T
		if err := json.Unmarshal(resp.Body, &result); err != nil {
			return nil, unexpected(fmt.Errorf("decode %s response: %w", method, err))
		}
		return &result, nil

	default:
		return nil, unexpected(fmt.Errorf("%w %q with HTTP status %d", errUnknownStatus, status, resp.StatusCode))
	}
}

// errorCode reads error_id, which the API sends either as a number or as a
// numeric string.
func errorCode(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || isNull(raw) {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

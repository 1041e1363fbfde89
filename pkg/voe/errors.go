package voe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorCode is the stable classification attached to every failure the client
// surfaces.
type ErrorCode string

const (
	// ErrCodeMissingAPIKey is returned by NewClient when no key is supplied.
	ErrCodeMissingAPIKey ErrorCode = "MISSING_API_KEY"
	// ErrCodeAPI means the upstream service answered with an error status.
	ErrCodeAPI ErrorCode = "API_ERROR"
	// ErrCodeNetwork means the request went out but no response came back.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeRequest means the request could not be constructed or issued.
	ErrCodeRequest ErrorCode = "REQUEST_ERROR"
)

const (
	missingAPIKeyMessage = "api key is required"
	apiFailureMessage    = "api request failed"
	noResponseMessage    = "no response received from server"
	badRequestMessage    = "request could not be issued"
)

// ErrorResponse carries the upstream reply attached to API_ERROR failures.
type ErrorResponse struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Error is the single failure shape every client operation returns.
// Response is non-nil only for API_ERROR.
type Error struct {
	Code     ErrorCode
	Message  string
	Response *ErrorResponse

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Response != nil {
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Response.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether err is a client failure with the given classification.
func IsCode(err error, code ErrorCode) bool {
	var clientErr *Error
	return errors.As(err, &clientErr) && clientErr.Code == code
}

// classify collapses the failure modes of the underlying HTTP layer into one
// typed error. Both network paths (the shared JSON client and the bare upload
// transport) route through it, in this order:
//
//  1. upstream answered with an error status -> API_ERROR, message taken from
//     the body's "message" field when present, upstream reply attached;
//  2. request was sent but nothing came back -> NETWORK_ERROR, fixed message;
//  3. request never made it onto the wire -> REQUEST_ERROR, message from the
//     underlying fault.
func classify(resp *ErrorResponse, err error) *Error {
	if resp != nil {
		msg := upstreamMessage(resp.Body)
		if msg == "" {
			msg = apiFailureMessage
		}
		return &Error{Code: ErrCodeAPI, Message: msg, Response: resp, cause: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// A parse failure never left the client; everything else did.
		if urlErr.Op == "parse" {
			return &Error{Code: ErrCodeRequest, Message: err.Error(), cause: err}
		}
		return &Error{Code: ErrCodeNetwork, Message: noResponseMessage, cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: ErrCodeNetwork, Message: noResponseMessage, cause: err}
	}

	msg := badRequestMessage
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: ErrCodeRequest, Message: msg, cause: err}
}

// upstreamMessage extracts the "message" field from an error body, if any.
func upstreamMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

package api

import (
	"errors"
	"fmt"
)

// Error codes sent by the RPC server in error.data.code
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

var (
	// ErrUnauthorized matches any RPC error reporting a missing or rejected session
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches any RPC error reporting a missing resource
	ErrNotFound = errors.New("not found")
)

// RPCErrorData carries the machine readable part of an RPC error
type RPCErrorData struct {
	Code       string `json:"code"`
	HTTPStatus int    `json:"httpStatus"`
	Path       string `json:"path,omitempty"`
}

// RPCError represents an error returned by a procedure call
type RPCError struct {
	Message string       `json:"message"`
	Code    int          `json:"code"`
	Data    RPCErrorData `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data.Path != "" {
		return fmt.Sprintf("API error (%s): %s", e.Data.Path, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

// Is enables errors.Is matching against ErrUnauthorized and ErrNotFound
func (e *RPCError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Message == "Unauthorized" || e.Data.Code == CodeUnauthorized
	case ErrNotFound:
		return e.Data.Code == CodeNotFound
	}
	return false
}

// UploadError reports a non-success response from the upload endpoint
type UploadError struct {
	StatusCode int
	StatusText string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %s", e.StatusText)
}

// DecodeError reports a response whose shape does not match a recipe
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode recipe field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

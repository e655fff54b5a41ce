package oauth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/socialauth/internal/httpclient"
)

// Status is the kind of a flow response.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusFailure        Status = "failure"
	StatusError          Status = "error"
	StatusUnauthorized   Status = "unauthorized"
	StatusNotImplemented Status = "not_implemented"
	StatusTimeout        Status = "timeout"
)

// Code returns the numeric code associated with the status kind.
func (s Status) Code() int {
	switch s {
	case StatusSuccess:
		return http.StatusOK
	case StatusFailure:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusTimeout:
		return http.StatusRequestTimeout
	case StatusNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Response is the tagged result returned by every caller-facing operation.
// Data is only set when Status is StatusSuccess.
type Response[T any] struct {
	Code    int    `json:"code"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type (
	TokenResponse  = Response[*Token]
	UserResponse   = Response[*User]
	RevokeResponse = Response[bool]
)

// OK reports whether the response is a success.
func (r Response[T]) OK() bool { return r.Status == StatusSuccess }

func newResponse[T any](s Status, msg string) Response[T] {
	return Response[T]{Code: s.Code(), Status: s, Message: msg}
}

func Success[T any](data T) Response[T] {
	return Response[T]{Code: StatusSuccess.Code(), Status: StatusSuccess, Message: "success", Data: data}
}

func Failure[T any](msg string) Response[T]        { return newResponse[T](StatusFailure, msg) }
func Error[T any](msg string) Response[T]          { return newResponse[T](StatusError, msg) }
func Unauthorized[T any](msg string) Response[T]   { return newResponse[T](StatusUnauthorized, msg) }
func NotImplemented[T any](msg string) Response[T] { return newResponse[T](StatusNotImplemented, msg) }
func Timeout[T any](msg string) Response[T]        { return newResponse[T](StatusTimeout, msg) }

// Convert carries the status and message of r into a response of another
// payload type. The payload is always dropped.
func Convert[U, T any](r Response[T]) Response[U] {
	if r.Status == StatusSuccess {
		return Error[U]("oauth: cannot convert a successful response")
	}
	return Response[U]{Code: r.Code, Status: r.Status, Message: r.Message}
}

// FromError classifies err at the adapter boundary: transport timeouts become
// timeout responses, HTTP 401 becomes unauthorized and anything else is an
// error response carrying err's message.
func FromError[T any](err error) Response[T] {
	if err == nil {
		return Error[T]("unknown error")
	}
	if httpclient.IsTimeout(err) {
		return Timeout[T](err.Error())
	}
	var se *httpclient.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
		return Unauthorized[T](err.Error())
	}
	return Error[T](err.Error())
}

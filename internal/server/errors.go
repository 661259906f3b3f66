package server

import (
	"errors"
	"net/http"
)

type errorKind int

const (
	kindBadRequest errorKind = iota + 1
	kindUnauthorized
	kindNotFound
	kindStorage
	kindIO
	kindInternal
)

var kindStatus = map[errorKind]int{
	kindBadRequest:   http.StatusBadRequest,
	kindUnauthorized: http.StatusUnauthorized,
	kindNotFound:     http.StatusNotFound,
	kindStorage:      http.StatusInternalServerError,
	kindIO:           http.StatusInternalServerError,
	kindInternal:     http.StatusInternalServerError,
}

func (k errorKind) String() string {
	switch k {
	case kindBadRequest:
		return "bad_request"
	case kindUnauthorized:
		return "unauthorized"
	case kindNotFound:
		return "not_found"
	case kindStorage:
		return "storage"
	case kindIO:
		return "io"
	default:
		return "internal"
	}
}

type apiError struct {
	kind errorKind
	err  error
}

func (e apiError) Error() string {
	if e.err == nil {
		return e.kind.String()
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(kind errorKind, err error) error {
	if err == nil {
		err = errors.New(kind.String())
	}

	var existing apiError
	if errors.As(err, &existing) && existing.kind != 0 {
		return existing
	}

	return apiError{kind: kind, err: err}
}

func badRequest(err error) error {
	return makeAPIError(kindBadRequest, err)
}

func unauthorized(err error) error {
	return makeAPIError(kindUnauthorized, err)
}

func notFound(err error) error {
	return makeAPIError(kindNotFound, err)
}

func storeFailure(err error) error {
	return makeAPIError(kindStorage, err)
}

func ioFailure(err error) error {
	return makeAPIError(kindIO, err)
}

func internalError(err error) error {
	return makeAPIError(kindInternal, err)
}

func errorKindOf(err error) errorKind {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.kind != 0 {
		return apiErr.kind
	}
	return kindInternal
}

func httpStatusFromError(err error) int {
	if status, ok := kindStatus[errorKindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func shouldWarnClientError(status int) bool {
	return status == http.StatusUnauthorized
}

// writeErrorReq logs err and responds with its mapped status and an empty body.
func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromError(err)
	fields := []any{"status", status, "kind", errorKindOf(err).String(), "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	}

	switch {
	case status >= 500:
		s.log().Error("request error", fields...)
	case shouldWarnClientError(status):
		s.log().Warn("request rejected", fields...)
	default:
		s.log().Debug("request rejected", fields...)
	}

	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

// Package apperrors holds the API's JSON envelopes and the error classes
// that decide how a failed use case is answered.
package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error classes. Domain errors wrap exactly one of these.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrConflict      = errors.New("conflict")
)

type classInfo struct {
	class  error
	status int
	code   string
}

// classes is checked in order; the first match wins.
var classes = []classInfo{
	{ErrValidation, http.StatusBadRequest, "bad_request"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrForbidden, http.StatusForbidden, "forbidden"},
	{ErrLimitExceeded, http.StatusConflict, "limit_exceeded"},
	{ErrConflict, http.StatusConflict, "conflict"},
}

// Classify returns a sentinel error that carries message and matches class
// with errors.Is.
func Classify(class error, message string) error {
	return &classifiedError{class: class, message: message}
}

type classifiedError struct {
	class   error
	message string
}

func (e *classifiedError) Error() string { return e.message }

func (e *classifiedError) Unwrap() error { return e.class }

func lookup(err error) (classInfo, bool) {
	if err == nil {
		return classInfo{}, false
	}
	for _, c := range classes {
		if errors.Is(err, c.class) {
			return c, true
		}
	}
	return classInfo{}, false
}

// ClassOf returns the class err belongs to, or nil when it is unclassified.
func ClassOf(err error) error {
	c, ok := lookup(err)
	if !ok {
		return nil
	}
	return c.class
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type dataEnvelope struct {
	RequestID string `json:"request_id"`
	Data      any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError answers {"error": {code, message, request_id}}.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{Error: errorBody{
		Code:      code,
		Message:   message,
		RequestID: GetRequestID(r.Context()),
	}})
}

// WriteSuccess answers {"request_id", "data"}.
func WriteSuccess(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	writeJSON(w, statusCode, dataEnvelope{
		RequestID: GetRequestID(r.Context()),
		Data:      data,
	})
}

// WriteClassified answers with the status and code of err's class. The
// message of a classified error is shown to the caller; anything else is an
// internal error carrying fallback.
func WriteClassified(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	c, ok := lookup(err)
	if !ok {
		WriteInternalError(w, r, fallback)
		return
	}
	WriteError(w, r, c.status, c.code, err.Error())
}

func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusUnauthorized, "unauthorized", message)
}

func WriteTooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusTooManyRequests, "too_many_requests", message)
}

func WriteInternalError(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusInternalServerError, "internal_error", message)
}

func WriteServiceUnavailable(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusServiceUnavailable, "service_unavailable", message)
}

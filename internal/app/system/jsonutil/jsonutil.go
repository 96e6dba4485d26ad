// Package jsonutil writes the JSON API's responses and decodes its request
// bodies. Every error body has the shape {"error": message}.
package jsonutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
)

// MaxBody caps the size of a decoded request body.
const MaxBody = 1 << 20

// JSON writes data as the response body with the given status. A nil data
// writes headers only.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) { JSON(w, http.StatusOK, data) }

// Created writes a 201 response.
func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, data) }

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// ValidationError writes a 400 naming the offending fields:
//
//	{"error": "validation failed", "fields": {"name": "Name is required."}}
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// FromError writes the status and user-facing message for a storage error.
// Unclassified errors become a bare 500 so details stay in the logs.
func FromError(w http.ResponseWriter, err error) {
	status := fserr.HTTPStatus(err)
	if status == http.StatusInternalServerError && fserr.Kind(err) == nil {
		Error(w, status, "internal error")
		return
	}
	Error(w, status, fserr.Message(err))
}

var errTrailing = errors.New("request body must hold a single JSON value")

// Decode reads one JSON value from the request body into v. Bodies over
// MaxBody or with data after the value are rejected.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailing
	}
	return nil
}

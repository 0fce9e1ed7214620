// Tribe Engine - Liebefeld Community Event Personalization
// Copyright 2026 Liebefeld Tribe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/liebefeld/tribe-engine

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/liebefeld/tribe-engine/internal/logging"
)

var validate = validator.New()

// respondJSON sends a success envelope with proper headers.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	respond(w, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(r),
		},
	}, status)
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Err(err).Str("code", code).Msg("api error")
	}
	respond(w, &APIResponse{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(r),
		},
		Error: &APIError{Code: code, Message: message},
	}, status)
}

func respond(w http.ResponseWriter, response *APIResponse, status int) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write response")
	}
}

// generateETag creates a weak ETag from the payload using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// decodeAndValidate parses the JSON body into v and runs struct validation.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", err)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var msg string
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			msg = fmt.Sprintf("field %s failed validation (%s)", errs[0].Field(), errs[0].Tag())
		} else {
			msg = "request validation failed"
		}
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", msg, nil)
		return false
	}
	return true
}

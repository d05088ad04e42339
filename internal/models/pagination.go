package models

import "encoding/json"

// Pagination is the upstream list envelope's pagination block.
type Pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

// ListEnvelope is the upstream response shape for collection endpoints:
// { status, message, data: [...], pagination: {...} }.
// Data stays raw so a malformed payload can be coerced instead of failing
// the whole decode.
type ListEnvelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// ItemEnvelope is the upstream response shape for single-resource and
// mutation endpoints: { status, message, data: {...} }.
type ItemEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ErrorEnvelope is the upstream error body: a message and optionally a
// list of field-level errors.
type ErrorEnvelope struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// Page is one fetched page of records plus the server-reported totals.
// Item order is kept exactly as returned.
type Page struct {
	Items      []Record
	Total      int
	TotalPages int
	Page       int
	Limit      int
}

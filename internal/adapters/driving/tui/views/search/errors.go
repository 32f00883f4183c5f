package search

import "errors"

// Error definitions for the query view.
var (
	// ErrNoRetrievalService indicates that no retrieval service was provided.
	ErrNoRetrievalService = errors.New("retrieval service is required")

	// ErrNoAnswerService indicates that ask mode has no answer service.
	ErrNoAnswerService = errors.New("answer service is required")

	// ErrNoAnswer indicates the answer service returned nothing.
	ErrNoAnswer = errors.New("no answer returned")
)

package domain

import "errors"

var (
	// ErrCatalogUnavailable is returned when the ingredient catalog cannot be
	// read at all. Matching is meaningless without a catalog, so this is the
	// one collaborator failure allowed to propagate as a fatal condition.
	ErrCatalogUnavailable = errors.New("ingredient catalog unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrSynonymServiceFailure is returned when a chemical-registry request
	// fails. Callers treat it as "no synonyms available", never as a request
	// failure.
	ErrSynonymServiceFailure = errors.New("synonym service request failed")

	// ErrSubstanceNotFound is returned when the chemical registry has no entry
	// for a name. This is a normal outcome, not an error condition.
	ErrSubstanceNotFound = errors.New("substance not found in chemical registry")
)

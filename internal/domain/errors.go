package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamBadPayload  = errors.New("upstream returned an undecodable payload")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrUnauthenticated     = errors.New("user not authenticated")
	ErrSessionExpired      = errors.New("session expired or revoked")
)

// ValidationError maps offending field names to the rule they broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

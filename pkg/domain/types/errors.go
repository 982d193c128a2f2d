package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error taxonomy shared across the repository, vector index, services and
// use cases. Callers match with errors.Is; goerr tags carry the class
// through wrapping for the HTTP layer.
var (
	// ErrNotFound indicates a missing instance, profile or vector document
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied indicates a cross-owner access attempt
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation indicates invalid input such as a duplicate profile name
	// or a verify action missing its required field
	ErrValidation = errors.New("validation error")
	// ErrUpstreamUnavailable indicates the vector index or an embedding fetch
	// failed; suggestion paths degrade, write paths propagate
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDataInconsistency indicates detected drift between the relational
	// store and the vector index, to be repaired by reconciliation
	ErrDataInconsistency = errors.New("data inconsistency")
)

// Tags for classifying errors across wrap boundaries
var (
	TagNotFound         = goerr.NewTag("not_found")
	TagPermissionDenied = goerr.NewTag("permission_denied")
	TagValidation       = goerr.NewTag("validation")
	TagUpstream         = goerr.NewTag("upstream_unavailable")
	TagInconsistency    = goerr.NewTag("data_inconsistency")
)

// Context keys for goerr values
const (
	InstanceIDKey  = "instance_id"
	ProfileIDKey   = "profile_id"
	OwnerIDKey     = "owner_id"
	RecordingIDKey = "recording_id"
)

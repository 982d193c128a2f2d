package types

import "github.com/google/uuid"

// OwnerID identifies the account that owns instances, profiles and vectors.
// Every query against either store is scoped by OwnerID.
type OwnerID string

// String returns the string representation of the owner ID
func (o OwnerID) String() string {
	return string(o)
}

// InstanceID is a UUID-based identifier for a SpeakerInstance
type InstanceID string

// NewInstanceID generates a new UUID v4 InstanceID
func NewInstanceID() InstanceID {
	return InstanceID(uuid.New().String())
}

// String returns the string representation of the instance ID
func (i InstanceID) String() string {
	return string(i)
}

// ProfileID is a UUID-based identifier for a SpeakerProfile
type ProfileID string

// NewProfileID generates a new UUID v4 ProfileID
func NewProfileID() ProfileID {
	return ProfileID(uuid.New().String())
}

// String returns the string representation of the profile ID
func (p ProfileID) String() string {
	return string(p)
}

// RecordingID identifies a recording that instances and segments belong to.
// Recordings themselves are managed outside this service.
type RecordingID string

// String returns the string representation of the recording ID
func (r RecordingID) String() string {
	return string(r)
}

// SegmentID is a UUID-based identifier for a TranscriptSegment
type SegmentID string

// NewSegmentID generates a new UUID v4 SegmentID
func NewSegmentID() SegmentID {
	return SegmentID(uuid.New().String())
}

// String returns the string representation of the segment ID
func (s SegmentID) String() string {
	return string(s)
}

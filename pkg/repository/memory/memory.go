package memory

import (
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
)

// Memory is an in-memory Repository implementation for tests and local
// development.
type Memory struct {
	instance *instanceRepository
	profile  *profileRepository
	segment  *segmentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		instance: newInstanceRepository(),
		profile:  newProfileRepository(),
		segment:  newSegmentRepository(),
	}
}

func (m *Memory) Instance() interfaces.InstanceRepository {
	return m.instance
}

func (m *Memory) Profile() interfaces.ProfileRepository {
	return m.profile
}

func (m *Memory) Segment() interfaces.SegmentRepository {
	return m.segment
}

func (m *Memory) Close() error {
	return nil
}

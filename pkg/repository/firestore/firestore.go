package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
)

const (
	collectionInstances = "speaker_instances"
	collectionProfiles  = "speaker_profiles"
	collectionSegments  = "transcript_segments"
)

// Firestore implements interfaces.Repository on Cloud Firestore. Documents
// carry an OwnerID field and every query filters on it; access with the
// wrong owner is rejected explicitly rather than returning not-found.
type Firestore struct {
	client   *firestore.Client
	instance *instanceRepository
	profile  *profileRepository
	segment  *segmentRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, for shared projects
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.instance.collectionPrefix = prefix
		f.profile.collectionPrefix = prefix
		f.segment.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:   client,
		instance: newInstanceRepository(client),
		profile:  newProfileRepository(client),
		segment:  newSegmentRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Instance() interfaces.InstanceRepository {
	return f.instance
}

func (f *Firestore) Profile() interfaces.ProfileRepository {
	return f.profile
}

func (f *Firestore) Segment() interfaces.SegmentRepository {
	return f.segment
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

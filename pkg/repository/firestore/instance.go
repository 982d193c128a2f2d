package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// instanceDoc is the Firestore document representation of
// model.SpeakerInstance. The embedding itself lives in the vector index,
// not here.
type instanceDoc struct {
	ID                  types.InstanceID     `firestore:"ID"`
	OwnerID             types.OwnerID        `firestore:"OwnerID"`
	RecordingID         types.RecordingID    `firestore:"RecordingID"`
	RawLabel            string               `firestore:"RawLabel"`
	DisplayName         string               `firestore:"DisplayName"`
	SuggestedName       string               `firestore:"SuggestedName"`
	SuggestedConfidence *float64             `firestore:"SuggestedConfidence"`
	Provenance          types.HintProvenance `firestore:"Provenance"`
	Verified            bool                 `firestore:"Verified"`
	ProfileID           types.ProfileID      `firestore:"ProfileID"`
	CreatedAt           time.Time            `firestore:"CreatedAt"`
	UpdatedAt           time.Time            `firestore:"UpdatedAt"`
}

func toInstanceDoc(s *model.SpeakerInstance) *instanceDoc {
	return &instanceDoc{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		RecordingID:         s.RecordingID,
		RawLabel:            s.RawLabel,
		DisplayName:         s.DisplayName,
		SuggestedName:       s.SuggestedName,
		SuggestedConfidence: s.SuggestedConfidence,
		Provenance:          s.Provenance,
		Verified:            s.Verified,
		ProfileID:           s.ProfileID,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func fromInstanceDoc(d *instanceDoc) *model.SpeakerInstance {
	return &model.SpeakerInstance{
		ID:                  d.ID,
		OwnerID:             d.OwnerID,
		RecordingID:         d.RecordingID,
		RawLabel:            d.RawLabel,
		DisplayName:         d.DisplayName,
		SuggestedName:       d.SuggestedName,
		SuggestedConfidence: d.SuggestedConfidence,
		Provenance:          d.Provenance,
		Verified:            d.Verified,
		ProfileID:           d.ProfileID,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func docToInstance(doc *firestore.DocumentSnapshot) (*model.SpeakerInstance, error) {
	var d instanceDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromInstanceDoc(&d), nil
}

type instanceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newInstanceRepository(client *firestore.Client) *instanceRepository {
	return &instanceRepository{client: client}
}

func (r *instanceRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + collectionInstances)
}

func (r *instanceRepository) Create(ctx context.Context, instance *model.SpeakerInstance) (*model.SpeakerInstance, error) {
	now := time.Now().UTC()
	created := *instance
	if created.ID == "" {
		created.ID = types.NewInstanceID()
	}
	if created.Provenance == "" {
		created.Provenance = types.HintProvenanceNone
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toInstanceDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create instance", goerr.V(types.InstanceIDKey, created.ID))
	}

	return &created, nil
}

func (r *instanceRepository) get(ctx context.Context, id types.InstanceID) (*model.SpeakerInstance, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "instance not found",
				goerr.V(types.InstanceIDKey, id), goerr.T(types.TagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get instance", goerr.V(types.InstanceIDKey, id))
	}

	instance, err := docToInstance(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal instance", goerr.V(types.InstanceIDKey, id))
	}
	return instance, nil
}

func (r *instanceRepository) Get(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) (*model.SpeakerInstance, error) {
	instance, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if instance.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrPermissionDenied, "instance belongs to another owner",
			goerr.V(types.InstanceIDKey, id), goerr.T(types.TagPermissionDenied))
	}
	return instance, nil
}

func (r *instanceRepository) Update(ctx context.Context, instance *model.SpeakerInstance) (*model.SpeakerInstance, error) {
	existing, err := r.Get(ctx, instance.OwnerID, instance.ID)
	if err != nil {
		return nil, err
	}

	updated := *instance
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	docRef := r.collection().Doc(string(updated.ID))
	if _, err := docRef.Set(ctx, toInstanceDoc(&updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update instance", goerr.V(types.InstanceIDKey, updated.ID))
	}

	return &updated, nil
}

func (r *instanceRepository) Delete(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) error {
	if _, err := r.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete instance", goerr.V(types.InstanceIDKey, id))
	}
	return nil
}

func (r *instanceRepository) list(ctx context.Context, iter *firestore.DocumentIterator) ([]*model.SpeakerInstance, error) {
	defer iter.Stop()

	instances := make([]*model.SpeakerInstance, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate instances")
		}

		instance, err := docToInstance(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal instance")
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

func (r *instanceRepository) ListByProfile(ctx context.Context, ownerID types.OwnerID, profileID types.ProfileID) ([]*model.SpeakerInstance, error) {
	iter := r.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("ProfileID", "==", string(profileID)).
		Documents(ctx)
	return r.list(ctx, iter)
}

func (r *instanceRepository) ListByRecording(ctx context.Context, ownerID types.OwnerID, recordingID types.RecordingID) ([]*model.SpeakerInstance, error) {
	iter := r.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("RecordingID", "==", string(recordingID)).
		Documents(ctx)
	return r.list(ctx, iter)
}

func (r *instanceRepository) ListRecordingIDs(ctx context.Context, ownerID types.OwnerID) ([]types.RecordingID, error) {
	iter := r.collection().
		Where("OwnerID", "==", string(ownerID)).
		Select("RecordingID").
		Documents(ctx)
	defer iter.Stop()

	seen := make(map[types.RecordingID]bool)
	result := make([]types.RecordingID, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate recording IDs", goerr.V(types.OwnerIDKey, ownerID))
		}

		var d struct {
			RecordingID types.RecordingID `firestore:"RecordingID"`
		}
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal recording ID")
		}
		if !seen[d.RecordingID] {
			seen[d.RecordingID] = true
			result = append(result, d.RecordingID)
		}
	}
	return result, nil
}

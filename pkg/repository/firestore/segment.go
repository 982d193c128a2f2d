package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type segmentDoc struct {
	ID          types.SegmentID   `firestore:"ID"`
	OwnerID     types.OwnerID     `firestore:"OwnerID"`
	RecordingID types.RecordingID `firestore:"RecordingID"`
	InstanceID  types.InstanceID  `firestore:"InstanceID"`
	StartMS     int64             `firestore:"StartMS"`
	EndMS       int64             `firestore:"EndMS"`
	Text        string            `firestore:"Text"`
	CreatedAt   time.Time         `firestore:"CreatedAt"`
}

func toSegmentDoc(s *model.TranscriptSegment) *segmentDoc {
	return &segmentDoc{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		RecordingID: s.RecordingID,
		InstanceID:  s.InstanceID,
		StartMS:     s.StartMS,
		EndMS:       s.EndMS,
		Text:        s.Text,
		CreatedAt:   s.CreatedAt,
	}
}

func fromSegmentDoc(d *segmentDoc) *model.TranscriptSegment {
	return &model.TranscriptSegment{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		RecordingID: d.RecordingID,
		InstanceID:  d.InstanceID,
		StartMS:     d.StartMS,
		EndMS:       d.EndMS,
		Text:        d.Text,
		CreatedAt:   d.CreatedAt,
	}
}

type segmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSegmentRepository(client *firestore.Client) *segmentRepository {
	return &segmentRepository{client: client}
}

func (r *segmentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + collectionSegments)
}

func (r *segmentRepository) CreateBatch(ctx context.Context, segments []*model.TranscriptSegment) error {
	bw := r.client.BulkWriter(ctx)
	now := time.Now().UTC()

	for _, seg := range segments {
		created := *seg
		if created.ID == "" {
			created.ID = types.NewSegmentID()
		}
		created.CreatedAt = now

		docRef := r.collection().Doc(string(created.ID))
		if _, err := bw.Set(docRef, toSegmentDoc(&created)); err != nil {
			return goerr.Wrap(err, "failed to enqueue segment write", goerr.V("segment_id", created.ID))
		}
	}

	bw.End()
	return nil
}

func (r *segmentRepository) instanceQuery(ownerID types.OwnerID, instanceID types.InstanceID) firestore.Query {
	return r.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("InstanceID", "==", string(instanceID))
}

func (r *segmentRepository) ListByInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) ([]*model.TranscriptSegment, error) {
	iter := r.instanceQuery(ownerID, instanceID).
		OrderBy("StartMS", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	segments := make([]*model.TranscriptSegment, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate segments", goerr.V(types.InstanceIDKey, instanceID))
		}

		var d segmentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal segment")
		}
		segments = append(segments, fromSegmentDoc(&d))
	}
	return segments, nil
}

func (r *segmentRepository) CountByInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) (int, error) {
	docs, err := r.instanceQuery(ownerID, instanceID).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count segments", goerr.V(types.InstanceIDKey, instanceID))
	}
	return len(docs), nil
}

func (r *segmentRepository) ReassignInstance(ctx context.Context, ownerID types.OwnerID, from, to types.InstanceID) (int, error) {
	iter := r.instanceQuery(ownerID, from).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	moved := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate segments for reassignment", goerr.V(types.InstanceIDKey, from))
		}

		if _, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: "InstanceID", Value: string(to)},
		}); err != nil {
			return 0, goerr.Wrap(err, "failed to enqueue segment reassignment", goerr.V("segment_ref", doc.Ref.ID))
		}
		moved++
	}

	bw.End()
	return moved, nil
}

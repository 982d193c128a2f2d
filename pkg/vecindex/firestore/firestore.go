package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionVectors = "speaker_vectors"

	// DocType discriminates the two document shapes sharing the collection
	docTypeInstance = "instance"
	docTypeProfile  = "profile"

	// distanceField receives the cosine distance from FindNearest
	distanceField = "vector_distance"
)

// Index implements interfaces.VectorIndex on Cloud Firestore using
// Vector32 fields and FindNearest. Instance and profile documents share
// one collection, discriminated by DocType and separated in key space by
// the profile ID prefix.
type Index struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.VectorIndex = &Index{}

type Option func(*Index)

// WithCollectionPrefix namespaces the vector collection, for shared projects
func WithCollectionPrefix(prefix string) Option {
	return func(i *Index) {
		i.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Index, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client for vector index", goerr.V("projectID", projectID))
	}

	idx := &Index{client: client}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// vectorDoc is the shared document shape. RecordingID is set on instance
// docs, InstanceCount on profile docs.
type vectorDoc struct {
	DocType       string             `firestore:"DocType"`
	OwnerID       types.OwnerID      `firestore:"OwnerID"`
	RecordingID   types.RecordingID  `firestore:"RecordingID,omitempty"`
	InstanceCount int                `firestore:"InstanceCount,omitempty"`
	Embedding     firestore.Vector32 `firestore:"Embedding"`
}

func (i *Index) collection() *firestore.CollectionRef {
	return i.client.Collection(i.collectionPrefix + collectionVectors)
}

func (i *Index) UpsertInstance(ctx context.Context, vec *model.InstanceVector) error {
	if len(vec.Embedding) == 0 {
		return goerr.New("instance vector must carry an embedding", goerr.V(types.InstanceIDKey, vec.InstanceID))
	}

	doc := &vectorDoc{
		DocType:     docTypeInstance,
		OwnerID:     vec.OwnerID,
		RecordingID: vec.RecordingID,
		Embedding:   firestore.Vector32(vec.Embedding),
	}
	if _, err := i.collection().Doc(string(vec.InstanceID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert instance vector",
			goerr.V(types.InstanceIDKey, vec.InstanceID), goerr.T(types.TagUpstream))
	}
	return nil
}

func (i *Index) GetInstance(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) (*model.InstanceVector, error) {
	doc, err := i.getDoc(ctx, string(id), docTypeInstance, ownerID)
	if err != nil {
		return nil, err
	}
	return &model.InstanceVector{
		InstanceID:  id,
		OwnerID:     doc.OwnerID,
		RecordingID: doc.RecordingID,
		Embedding:   []float32(doc.Embedding),
	}, nil
}

func (i *Index) DeleteInstance(ctx context.Context, ownerID types.OwnerID, id types.InstanceID) error {
	return i.deleteDoc(ctx, string(id), docTypeInstance, ownerID)
}

func (i *Index) UpsertProfile(ctx context.Context, vec *model.ProfileVector) error {
	if len(vec.Embedding) == 0 {
		return goerr.New("profile vector must carry an embedding", goerr.V(types.ProfileIDKey, vec.ProfileID))
	}

	doc := &vectorDoc{
		DocType:       docTypeProfile,
		OwnerID:       vec.OwnerID,
		InstanceCount: vec.InstanceCount,
		Embedding:     firestore.Vector32(vec.Embedding),
	}
	if _, err := i.collection().Doc(model.ProfileVectorDocID(vec.ProfileID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert profile vector",
			goerr.V(types.ProfileIDKey, vec.ProfileID), goerr.T(types.TagUpstream))
	}
	return nil
}

func (i *Index) GetProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.ProfileVector, error) {
	doc, err := i.getDoc(ctx, model.ProfileVectorDocID(id), docTypeProfile, ownerID)
	if err != nil {
		return nil, err
	}
	return &model.ProfileVector{
		ProfileID:     id,
		OwnerID:       doc.OwnerID,
		InstanceCount: doc.InstanceCount,
		Embedding:     []float32(doc.Embedding),
	}, nil
}

func (i *Index) DeleteProfile(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error {
	return i.deleteDoc(ctx, model.ProfileVectorDocID(id), docTypeProfile, ownerID)
}

func (i *Index) getDoc(ctx context.Context, docID, docType string, ownerID types.OwnerID) (*vectorDoc, error) {
	snap, err := i.collection().Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "vector document not found",
				goerr.V("doc_id", docID), goerr.T(types.TagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get vector document",
			goerr.V("doc_id", docID), goerr.T(types.TagUpstream))
	}

	var doc vectorDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal vector document", goerr.V("doc_id", docID))
	}
	if doc.DocType != docType || doc.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrNotFound, "vector document not found",
			goerr.V("doc_id", docID), goerr.T(types.TagNotFound))
	}
	return &doc, nil
}

func (i *Index) deleteDoc(ctx context.Context, docID, docType string, ownerID types.OwnerID) error {
	// verify ownership before deleting; a missing doc is not an error
	if _, err := i.getDoc(ctx, docID, docType, ownerID); err != nil {
		if goerr.HasTag(err, types.TagNotFound) {
			return nil
		}
		return err
	}

	if _, err := i.collection().Doc(docID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete vector document",
			goerr.V("doc_id", docID), goerr.T(types.TagUpstream))
	}
	return nil
}

func (i *Index) search(ctx context.Context, ownerID types.OwnerID, docType string, query []float32, limit int) ([]*model.VectorMatch, error) {
	vq := i.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("DocType", "==", docType).
		FindNearest("Embedding", firestore.Vector32(query), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.VectorMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results",
				goerr.V(types.OwnerIDKey, ownerID), goerr.T(types.TagUpstream))
		}

		data := doc.Data()
		distance, ok := data[distanceField].(float64)
		if !ok {
			return nil, goerr.New("vector search result missing distance field",
				goerr.V("doc_id", doc.Ref.ID))
		}

		match := &model.VectorMatch{
			ID:    doc.Ref.ID,
			Score: scoreFromCosineDistance(distance),
		}
		if rec, ok := data["RecordingID"].(string); ok {
			match.RecordingID = types.RecordingID(rec)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (i *Index) SearchInstances(ctx context.Context, ownerID types.OwnerID, query []float32, limit int) ([]*model.VectorMatch, error) {
	return i.search(ctx, ownerID, docTypeInstance, query, limit)
}

func (i *Index) SearchProfiles(ctx context.Context, ownerID types.OwnerID, query []float32, limit int) ([]*model.VectorMatch, error) {
	return i.search(ctx, ownerID, docTypeProfile, query, limit)
}

func (i *Index) hasAny(ctx context.Context, ownerID types.OwnerID, docType string) (bool, error) {
	iter := i.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("DocType", "==", docType).
		Limit(1).
		Select().
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to check vector existence",
			goerr.V(types.OwnerIDKey, ownerID), goerr.T(types.TagUpstream))
	}
	return true, nil
}

func (i *Index) HasInstances(ctx context.Context, ownerID types.OwnerID) (bool, error) {
	return i.hasAny(ctx, ownerID, docTypeInstance)
}

func (i *Index) HasProfiles(ctx context.Context, ownerID types.OwnerID) (bool, error) {
	return i.hasAny(ctx, ownerID, docTypeProfile)
}

func (i *Index) ListInstanceRecordings(ctx context.Context, ownerID types.OwnerID) (map[types.RecordingID][]types.InstanceID, error) {
	iter := i.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("DocType", "==", docTypeInstance).
		Select("RecordingID").
		Documents(ctx)
	defer iter.Stop()

	result := make(map[types.RecordingID][]types.InstanceID)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate instance vectors",
				goerr.V(types.OwnerIDKey, ownerID), goerr.T(types.TagUpstream))
		}

		var d struct {
			RecordingID types.RecordingID `firestore:"RecordingID"`
		}
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal instance vector")
		}
		result[d.RecordingID] = append(result[d.RecordingID], types.InstanceID(doc.Ref.ID))
	}
	return result, nil
}

func (i *Index) Close() error {
	return i.client.Close()
}

// scoreFromCosineDistance maps Firestore's cosine distance in [0, 2] onto
// a normalized similarity in [0, 1].
func scoreFromCosineDistance(d float64) float64 {
	score := 1 - d/2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

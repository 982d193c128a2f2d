package usecase_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	repomem "github.com/voxlab-io/speakerid/pkg/repository/memory"
	"github.com/voxlab-io/speakerid/pkg/usecase"
	vecmem "github.com/voxlab-io/speakerid/pkg/vecindex/memory"
)

const testOwner = types.OwnerID("owner-a")

type fixture struct {
	repo  *repomem.Memory
	index *vecmem.Memory
	uc    *usecase.UseCases
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	repo := repomem.New()
	index := vecmem.New()
	return &fixture{
		repo:  repo,
		index: index,
		uc:    usecase.New(repo, index, opts...),
	}
}

type instanceSpec struct {
	id          types.InstanceID
	owner       types.OwnerID
	recording   types.RecordingID
	displayName string
	embedding   []float32
}

func (f *fixture) createInstance(t *testing.T, spec instanceSpec) *model.SpeakerInstance {
	t.Helper()
	ctx := context.Background()
	owner := spec.owner
	if owner == "" {
		owner = testOwner
	}
	created, err := f.repo.Instance().Create(ctx, &model.SpeakerInstance{
		ID:          spec.id,
		OwnerID:     owner,
		RecordingID: spec.recording,
		RawLabel:    "SPEAKER_00",
		DisplayName: spec.displayName,
	})
	gt.NoError(t, err).Required()
	if spec.embedding != nil {
		gt.NoError(t, f.index.UpsertInstance(ctx, &model.InstanceVector{
			InstanceID:  created.ID,
			OwnerID:     owner,
			RecordingID: spec.recording,
			Embedding:   spec.embedding,
		})).Required()
	}
	return created
}

func (f *fixture) createProfile(t *testing.T, id types.ProfileID, name string, embedding []float32, count int) {
	t.Helper()
	ctx := context.Background()
	_, err := f.repo.Profile().Create(ctx, &model.SpeakerProfile{
		ID: id, OwnerID: testOwner, Name: name, InstanceCount: count,
	})
	gt.NoError(t, err).Required()
	if embedding != nil {
		gt.NoError(t, f.index.UpsertProfile(ctx, &model.ProfileVector{
			ProfileID: id, OwnerID: testOwner, InstanceCount: count, Embedding: embedding,
		})).Required()
	}
}

func (f *fixture) createSegments(t *testing.T, instanceID types.InstanceID, recordingID types.RecordingID, n int) {
	t.Helper()
	segments := make([]*model.TranscriptSegment, 0, n)
	for i := 0; i < n; i++ {
		segments = append(segments, &model.TranscriptSegment{
			ID:          types.NewSegmentID(),
			OwnerID:     testOwner,
			RecordingID: recordingID,
			InstanceID:  instanceID,
			StartMS:     int64(i) * 1000,
			EndMS:       int64(i)*1000 + 900,
			Text:        "segment text",
		})
	}
	gt.NoError(t, f.repo.Segment().CreateBatch(context.Background(), segments)).Required()
}

func (f *fixture) setHint(t *testing.T, instanceID types.InstanceID, name string, conf float64, prov types.HintProvenance) {
	t.Helper()
	ctx := context.Background()
	instance, err := f.repo.Instance().Get(ctx, testOwner, instanceID)
	gt.NoError(t, err).Required()
	instance.SuggestedName = name
	instance.SuggestedConfidence = &conf
	instance.Provenance = prov
	_, err = f.repo.Instance().Update(ctx, instance)
	gt.NoError(t, err).Required()
}

func newForeignProfile(name string) *model.SpeakerProfile {
	return &model.SpeakerProfile{
		ID: types.NewProfileID(), OwnerID: "owner-b", Name: name,
	}
}

// confidenceNear checks a similarity score within floating tolerance
func confidenceNear(t *testing.T, got, want float64) {
	t.Helper()
	gt.Bool(t, math.Abs(got-want) < 0.01).True()
}

func approxVec(t *testing.T, got, want []float32) {
	t.Helper()
	gt.Number(t, len(got)).Equal(len(want))
	for i := range want {
		gt.Bool(t, math.Abs(float64(got[i]-want[i])) < 1e-5).True()
	}
}

// unit2 returns a 2D unit vector whose cosine similarity with (1, 0) is
// cos, i.e. a normalized score of (cos+1)/2 in the in-memory index.
func unit2(cos float64) []float32 {
	sin := math.Sqrt(1 - cos*cos)
	return []float32{float32(cos), float32(sin)}
}

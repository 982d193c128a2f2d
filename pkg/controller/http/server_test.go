package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/voxlab-io/speakerid/pkg/controller/http"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	repomem "github.com/voxlab-io/speakerid/pkg/repository/memory"
	"github.com/voxlab-io/speakerid/pkg/usecase"
	vecmem "github.com/voxlab-io/speakerid/pkg/vecindex/memory"
)

const testOwner = "owner-a"

type fixture struct {
	repo   *repomem.Memory
	index  *vecmem.Memory
	server *http.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repomem.New()
	index := vecmem.New()
	uc := usecase.New(repo, index)
	return &fixture{
		repo:   repo,
		index:  index,
		server: http.New(uc),
	}
}

func (f *fixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Owner-ID", testOwner)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createInstance(t *testing.T, id types.InstanceID, rec types.RecordingID) {
	t.Helper()
	_, err := f.repo.Instance().Create(context.Background(), &model.SpeakerInstance{
		ID: id, OwnerID: testOwner, RecordingID: rec, RawLabel: "SPEAKER_00",
	})
	gt.NoError(t, err).Required()
}

func TestServer(t *testing.T) {
	t.Run("health check", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(200)
	})

	t.Run("api requires owner header", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest("GET", "/api/profiles/", nil)
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(400)
	})

	t.Run("suggestions for hinted instance", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, "i1", "rec-1")

		ctx := context.Background()
		instance, err := f.repo.Instance().Get(ctx, testOwner, "i1")
		gt.NoError(t, err).Required()
		conf := 0.9
		instance.SuggestedName = "Alice"
		instance.SuggestedConfidence = &conf
		instance.Provenance = types.HintProvenanceContentAnalysis
		_, err = f.repo.Instance().Update(ctx, instance)
		gt.NoError(t, err).Required()

		rec := f.request(t, "POST", "/api/instances/i1/suggestions", nil)
		gt.Number(t, rec.Code).Equal(200)

		var resp struct {
			Suggestions []struct {
				Name       string  `json:"name"`
				Confidence float64 `json:"confidence"`
				Source     string  `json:"source"`
				AutoAccept bool    `json:"auto_accept"`
			} `json:"suggestions"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Array(t, resp.Suggestions).Length(1).Required()
		gt.Value(t, resp.Suggestions[0].Name).Equal("Alice")
		gt.Value(t, resp.Suggestions[0].Source).Equal("content-analysis")
		gt.Bool(t, resp.Suggestions[0].AutoAccept).True()
	})

	t.Run("suggestions for missing instance is 404", func(t *testing.T) {
		f := newFixture(t)
		rec := f.request(t, "POST", "/api/instances/missing/suggestions", nil)
		gt.Number(t, rec.Code).Equal(404)
	})

	t.Run("verify create_profile round trip", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, "i1", "rec-1")

		rec := f.request(t, "POST", "/api/instances/i1/verify", map[string]string{
			"action": "create_profile", "profile_name": "Alice",
		})
		gt.Number(t, rec.Code).Equal(200)

		var resp struct {
			DisplayName string `json:"display_name"`
			Verified    bool   `json:"verified"`
			ProfileID   string `json:"profile_id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.DisplayName).Equal("Alice")
		gt.Bool(t, resp.Verified).True()
		gt.Value(t, resp.ProfileID).NotEqual("")
	})

	t.Run("verify with invalid action is 400", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, "i1", "rec-1")

		rec := f.request(t, "POST", "/api/instances/i1/verify", map[string]string{
			"action": "promote",
		})
		gt.Number(t, rec.Code).Equal(400)
	})

	t.Run("verify accept without profile is 400", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, "i1", "rec-1")

		rec := f.request(t, "POST", "/api/instances/i1/verify", map[string]string{
			"action": "accept",
		})
		gt.Number(t, rec.Code).Equal(400)
	})

	t.Run("merge reassigns and deletes source", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, "s1", "rec-1")
		f.createInstance(t, "s2", "rec-2")

		rec := f.request(t, "POST", "/api/instances/s1/merge", map[string]string{
			"target_id": "s2",
		})
		gt.Number(t, rec.Code).Equal(200)

		_, err := f.repo.Instance().Get(context.Background(), testOwner, "s1")
		gt.Error(t, err)
	})

	t.Run("merge into itself is 400", func(t *testing.T) {
		f := newFixture(t)
		f.createInstance(t, "s1", "rec-1")

		rec := f.request(t, "POST", "/api/instances/s1/merge", map[string]string{
			"target_id": "s1",
		})
		gt.Number(t, rec.Code).Equal(400)
	})

	t.Run("profile create list delete", func(t *testing.T) {
		f := newFixture(t)

		rec := f.request(t, "POST", "/api/profiles/", map[string]string{"name": "Alice"})
		gt.Number(t, rec.Code).Equal(201)

		var created struct {
			ID string `json:"id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()

		rec = f.request(t, "GET", "/api/profiles/", nil)
		gt.Number(t, rec.Code).Equal(200)

		rec = f.request(t, "DELETE", "/api/profiles/"+created.ID, nil)
		gt.Number(t, rec.Code).Equal(204)

		rec = f.request(t, "DELETE", "/api/profiles/"+created.ID, nil)
		gt.Number(t, rec.Code).Equal(404)
	})

	t.Run("duplicate profile name is 400", func(t *testing.T) {
		f := newFixture(t)

		rec := f.request(t, "POST", "/api/profiles/", map[string]string{"name": "Alice"})
		gt.Number(t, rec.Code).Equal(201)
		rec = f.request(t, "POST", "/api/profiles/", map[string]string{"name": "alice"})
		gt.Number(t, rec.Code).Equal(400)
	})

	t.Run("reconcile reports deleted count", func(t *testing.T) {
		f := newFixture(t)
		gt.NoError(t, f.index.UpsertInstance(context.Background(), &model.InstanceVector{
			InstanceID: "ghost", OwnerID: testOwner, RecordingID: "rec-dead", Embedding: []float32{1, 0},
		})).Required()

		rec := f.request(t, "POST", "/api/reconcile", nil)
		gt.Number(t, rec.Code).Equal(200)

		var resp struct {
			Deleted int `json:"deleted"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Number(t, resp.Deleted).Equal(1)
	})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/usecase"
	"github.com/voxlab-io/speakerid/pkg/utils/errutil"
)

type suggestionResponse struct {
	Name       string          `json:"name"`
	Confidence float64         `json:"confidence"`
	Source     string          `json:"source"`
	ProfileID  string          `json:"profile_id,omitempty"`
	AutoAccept bool            `json:"auto_accept"`
	Reason     string          `json:"reason"`
	Evidence   []evidenceEntry `json:"evidence,omitempty"`
}

type evidenceEntry struct {
	InstanceID  string  `json:"instance_id"`
	RecordingID string  `json:"recording_id"`
	Score       float64 `json:"score"`
}

type instanceResponse struct {
	ID          string `json:"id"`
	RecordingID string `json:"recording_id"`
	RawLabel    string `json:"raw_label"`
	DisplayName string `json:"display_name,omitempty"`
	Verified    bool   `json:"verified"`
	ProfileID   string `json:"profile_id,omitempty"`
}

type profileResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	InstanceCount       int       `json:"instance_count"`
	LastEmbeddingUpdate time.Time `json:"last_embedding_update"`
}

func toInstanceResponse(instance *model.SpeakerInstance) instanceResponse {
	return instanceResponse{
		ID:          string(instance.ID),
		RecordingID: string(instance.RecordingID),
		RawLabel:    instance.RawLabel,
		DisplayName: instance.DisplayName,
		Verified:    instance.Verified,
		ProfileID:   string(instance.ProfileID),
	}
}

func toProfileResponse(prof *model.SpeakerProfile) profileResponse {
	return profileResponse{
		ID:                  string(prof.ID),
		Name:                prof.Name,
		Description:         prof.Description,
		InstanceCount:       prof.InstanceCount,
		LastEmbeddingUpdate: prof.LastEmbeddingUpdate,
	}
}

func suggestionsHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Suggestions []suggestionResponse `json:"suggestions"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())
		instanceID := types.InstanceID(chi.URLParam(r, "instanceID"))

		suggestions, err := uc.Suggest.GetSuggestions(r.Context(), owner, instanceID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}

		resp := response{Suggestions: make([]suggestionResponse, 0, len(suggestions))}
		for _, s := range suggestions {
			entry := suggestionResponse{
				Name:       s.Name,
				Confidence: s.Confidence,
				Source:     s.Source.String(),
				ProfileID:  string(s.ProfileID),
				AutoAccept: s.AutoAccept,
				Reason:     s.Reason,
			}
			for _, ev := range s.Evidence {
				entry.Evidence = append(entry.Evidence, evidenceEntry{
					InstanceID:  string(ev.InstanceID),
					RecordingID: string(ev.RecordingID),
					Score:       ev.Score,
				})
			}
			resp.Suggestions = append(resp.Suggestions, entry)
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func verifyHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Action      string `json:"action"`
		ProfileID   string `json:"profile_id,omitempty"`
		ProfileName string `json:"profile_name,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())
		instanceID := types.InstanceID(chi.URLParam(r, "instanceID"))

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid verify request body"), http.StatusBadRequest)
			return
		}

		action, err := types.ParseVerifyAction(req.Action)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		updated, err := uc.Verify.Verify(r.Context(), owner, usecase.VerifyInput{
			InstanceID:  instanceID,
			Action:      action,
			ProfileID:   types.ProfileID(req.ProfileID),
			ProfileName: req.ProfileName,
		})
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}
		writeJSON(w, r, http.StatusOK, toInstanceResponse(updated))
	}
}

func mergeHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		TargetID string `json:"target_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())
		sourceID := types.InstanceID(chi.URLParam(r, "instanceID"))

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid merge request body"), http.StatusBadRequest)
			return
		}
		if req.TargetID == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("target_id is required"), http.StatusBadRequest)
			return
		}

		target, err := uc.Merge.Merge(r.Context(), owner, sourceID, types.InstanceID(req.TargetID))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}
		writeJSON(w, r, http.StatusOK, toInstanceResponse(target))
	}
}

func analyzeHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())
		instanceID := types.InstanceID(chi.URLParam(r, "instanceID"))

		updated, err := uc.Hint.AnalyzeInstance(r.Context(), owner, instanceID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}
		writeJSON(w, r, http.StatusOK, toInstanceResponse(updated))
	}
}

func listProfilesHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Profiles []profileResponse `json:"profiles"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())

		profiles, err := uc.Profile.ListProfiles(r.Context(), owner)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}

		resp := response{Profiles: make([]profileResponse, 0, len(profiles))}
		for _, prof := range profiles {
			resp.Profiles = append(resp.Profiles, toProfileResponse(prof))
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func createProfileHandler(uc *usecase.UseCases) http.HandlerFunc {
	type request struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid profile request body"), http.StatusBadRequest)
			return
		}

		created, err := uc.Profile.CreateProfile(r.Context(), owner, req.Name, req.Description)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}
		writeJSON(w, r, http.StatusCreated, toProfileResponse(created))
	}
}

func deleteProfileHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())
		profileID := types.ProfileID(chi.URLParam(r, "profileID"))

		if err := uc.Profile.DeleteProfile(r.Context(), owner, profileID); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reconcileHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Deleted int `json:"deleted"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFromContext(r.Context())

		deleted, err := uc.Reconcile.Reconcile(r.Context(), owner)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
			return
		}
		writeJSON(w, r, http.StatusOK, response{Deleted: deleted})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// statusFromError maps the domain error taxonomy onto HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound) || goerr.HasTag(err, types.TagNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrPermissionDenied) || goerr.HasTag(err, types.TagPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, types.ErrValidation) || goerr.HasTag(err, types.TagValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUpstreamUnavailable) || goerr.HasTag(err, types.TagUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

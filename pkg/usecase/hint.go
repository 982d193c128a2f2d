package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/namehint"
	"github.com/voxlab-io/speakerid/pkg/utils/logging"
)

// HintUseCase runs transcript content analysis for one instance and
// persists the proposed name as a content-analysis hint.
type HintUseCase struct {
	repo    interfaces.Repository
	service namehint.Service
}

// AnalyzeInstance proposes a name from the instance's transcript segments
// and stores it with content-analysis provenance. When nothing can be
// inferred the instance is returned unchanged.
func (uc *HintUseCase) AnalyzeInstance(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) (*model.SpeakerInstance, error) {
	instance, err := uc.repo.Instance().Get(ctx, ownerID, instanceID)
	if err != nil {
		return nil, err
	}

	segments, err := uc.repo.Segment().ListByInstance(ctx, ownerID, instanceID)
	if err != nil {
		return nil, err
	}

	profiles, err := uc.repo.Profile().List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	contextNames := make([]string, 0, len(profiles))
	for _, prof := range profiles {
		contextNames = append(contextNames, prof.Name)
	}

	result, err := uc.service.Analyze(ctx, namehint.Input{
		Instance:     instance,
		Segments:     segments,
		ContextNames: contextNames,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "content analysis failed",
			goerr.V(types.InstanceIDKey, instanceID), goerr.T(types.TagUpstream))
	}
	if result == nil {
		logging.From(ctx).Debug("content analysis produced no hint", "instance_id", instanceID)
		return instance, nil
	}

	conf := result.Confidence
	instance.SuggestedName = result.Name
	instance.SuggestedConfidence = &conf
	instance.Provenance = types.HintProvenanceContentAnalysis

	updated, err := uc.repo.Instance().Update(ctx, instance)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("content-analysis hint stored",
		"instance_id", instanceID, "name", result.Name, "confidence", conf)
	return updated, nil
}

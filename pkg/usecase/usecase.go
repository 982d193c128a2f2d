package usecase

import (
	"context"

	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/matching"
	"github.com/voxlab-io/speakerid/pkg/service/namehint"
	"github.com/voxlab-io/speakerid/pkg/service/profile"
	"github.com/voxlab-io/speakerid/pkg/utils/lock"
)

// InvalidationHook is invoked after a successful merge so downstream caches
// and analytics can drop stale data. It is dispatched asynchronously and
// never awaited.
type InvalidationHook func(ctx context.Context, ownerID types.OwnerID, sourceID, targetID types.InstanceID) error

type UseCases struct {
	repo    interfaces.Repository
	index   interfaces.VectorIndex
	cfg     *config.Engine
	hintSvc namehint.Service
	hook    InvalidationHook

	Suggest   *SuggestUseCase
	Verify    *VerifyUseCase
	Merge     *MergeUseCase
	Profile   *ProfileUseCase
	Reconcile *ReconcileUseCase
	Hint      *HintUseCase
}

type Option func(*UseCases)

// WithEngineConfig overrides the default engine tuning parameters
func WithEngineConfig(cfg *config.Engine) Option {
	return func(uc *UseCases) {
		uc.cfg = cfg
	}
}

// WithNameHint enables the in-process content-analysis hint producer. The
// suggestion consolidator works without it; hints may also be written by an
// external pipeline.
func WithNameHint(svc namehint.Service) Option {
	return func(uc *UseCases) {
		uc.hintSvc = svc
	}
}

// WithInvalidationHook registers a post-merge side-effect hook
func WithInvalidationHook(hook InvalidationHook) Option {
	return func(uc *UseCases) {
		uc.hook = hook
	}
}

func New(repo interfaces.Repository, index interfaces.VectorIndex, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		index: index,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.cfg == nil {
		uc.cfg = config.DefaultEngine()
	}

	matcher := matching.New(index, uc.cfg)
	profiles := profile.New(repo, index, uc.cfg)
	locks := lock.NewKeyed()

	uc.Suggest = &SuggestUseCase{repo: repo, index: index, matcher: matcher, cfg: uc.cfg}
	uc.Verify = &VerifyUseCase{repo: repo, profiles: profiles}
	uc.Merge = &MergeUseCase{repo: repo, index: index, profiles: profiles, locks: locks, hook: uc.hook}
	uc.Profile = &ProfileUseCase{repo: repo, profiles: profiles}
	uc.Reconcile = &ReconcileUseCase{repo: repo, index: index}
	if uc.hintSvc != nil {
		uc.Hint = &HintUseCase{repo: repo, service: uc.hintSvc}
	}

	return uc
}

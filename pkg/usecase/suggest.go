package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/voxlab-io/speakerid/pkg/domain/interfaces"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/model/config"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"github.com/voxlab-io/speakerid/pkg/service/matching"
	"github.com/voxlab-io/speakerid/pkg/utils/errutil"
	"golang.org/x/sync/errgroup"
)

// SuggestUseCase consolidates profile matches, voice matches and stored
// content-analysis hints into one ranked suggestion list.
type SuggestUseCase struct {
	repo    interfaces.Repository
	index   interfaces.VectorIndex
	matcher *matching.Engine
	cfg     *config.Engine
}

// GetSuggestions computes the ranked, deduplicated suggestion list for one
// speaker instance. Matching failures degrade to partial results; only a
// missing or foreign instance fails the call.
func (uc *SuggestUseCase) GetSuggestions(ctx context.Context, ownerID types.OwnerID, instanceID types.InstanceID) ([]*model.ConsolidatedSuggestion, error) {
	instance, err := uc.repo.Instance().Get(ctx, ownerID, instanceID)
	if err != nil {
		return nil, err
	}

	var suggestions []*model.ConsolidatedSuggestion
	if instance.HasHint() {
		conf := *instance.SuggestedConfidence
		reason, auto := band(conf, 0, types.SuggestionSourceContentAnalysis)
		suggestions = append(suggestions, &model.ConsolidatedSuggestion{
			Name:       instance.SuggestedName,
			Confidence: conf,
			Source:     types.SuggestionSourceContentAnalysis,
			AutoAccept: auto,
			Reason:     reason,
		})
	}

	vec, err := uc.index.GetInstance(ctx, ownerID, instanceID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			errutil.Handle(ctx, err, "instance embedding fetch failed, degrading to hint-only suggestions")
		}
		return uc.consolidate(suggestions), nil
	}

	var profileMatches []matching.ProfileMatch
	var voiceMatches []matching.VoiceMatch

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profileMatches = uc.matcher.FindProfileMatches(gctx, vec.Embedding, ownerID, uc.cfg.MatchThreshold, uc.cfg.ProfileMatchLimit)
		return nil
	})
	g.Go(func() error {
		voiceMatches = uc.matcher.FindVoiceMatches(gctx, instanceID, vec.Embedding, ownerID, instance.RecordingID, uc.cfg.MatchThreshold, uc.cfg.VoiceMatchLimit)
		return nil
	})
	_ = g.Wait() // matchers degrade internally and never return errors

	suggestions = append(suggestions, uc.profileSuggestions(ctx, ownerID, profileMatches)...)
	suggestions = append(suggestions, uc.voiceSuggestions(ctx, ownerID, voiceMatches)...)

	return uc.consolidate(suggestions), nil
}

func (uc *SuggestUseCase) profileSuggestions(ctx context.Context, ownerID types.OwnerID, matches []matching.ProfileMatch) []*model.ConsolidatedSuggestion {
	suggestions := make([]*model.ConsolidatedSuggestion, 0, len(matches))
	for _, m := range matches {
		prof, err := uc.repo.Profile().Get(ctx, ownerID, m.ProfileID)
		if err != nil {
			// the index may briefly hold a vector for a deleted profile
			errutil.Handle(ctx, err, "skipping profile match without relational row")
			continue
		}

		reason, auto := band(m.Score, prof.InstanceCount, types.SuggestionSourceProfile)
		suggestions = append(suggestions, &model.ConsolidatedSuggestion{
			Name:       prof.Name,
			Confidence: m.Score,
			Source:     types.SuggestionSourceProfile,
			ProfileID:  prof.ID,
			AutoAccept: auto,
			Reason:     reason,
		})
	}
	return suggestions
}

// voiceGroup accumulates occurrences of one case-insensitive display name
type voiceGroup struct {
	name     string
	best     float64
	evidence []model.VoiceEvidence
}

func (uc *SuggestUseCase) voiceSuggestions(ctx context.Context, ownerID types.OwnerID, matches []matching.VoiceMatch) []*model.ConsolidatedSuggestion {
	groups := make(map[string]*voiceGroup)
	var order []string

	for _, m := range matches {
		candidate, err := uc.repo.Instance().Get(ctx, ownerID, m.InstanceID)
		if err != nil {
			errutil.Handle(ctx, err, "skipping voice match without relational row")
			continue
		}
		// unlabeled instances cannot represent a voice-match group
		if candidate.IsUnlabeled() {
			continue
		}

		name := candidate.EffectiveName()
		key := strings.ToLower(name)
		ev := model.VoiceEvidence{
			InstanceID:  m.InstanceID,
			RecordingID: m.RecordingID,
			Score:       m.Score,
		}

		group, ok := groups[key]
		if !ok {
			groups[key] = &voiceGroup{name: name, best: m.Score, evidence: []model.VoiceEvidence{ev}}
			order = append(order, key)
			continue
		}
		group.evidence = append(group.evidence, ev)
		if m.Score > group.best {
			group.best = m.Score
			group.name = name
		}
	}

	suggestions := make([]*model.ConsolidatedSuggestion, 0, len(order))
	for _, key := range order {
		group := groups[key]
		reason, auto := band(group.best, 1, types.SuggestionSourceVoice)
		suggestions = append(suggestions, &model.ConsolidatedSuggestion{
			Name:       group.name,
			Confidence: group.best,
			Source:     types.SuggestionSourceVoice,
			AutoAccept: auto,
			Reason:     reason,
			Evidence:   group.evidence,
		})
	}
	return suggestions
}

// consolidate dedups by case-insensitive name, ranks, truncates, and drops
// suggestions that still carry a placeholder name.
func (uc *SuggestUseCase) consolidate(suggestions []*model.ConsolidatedSuggestion) []*model.ConsolidatedSuggestion {
	byName := make(map[string]*model.ConsolidatedSuggestion)
	var order []string

	for _, s := range suggestions {
		key := strings.ToLower(s.Name)
		existing, ok := byName[key]
		if !ok {
			byName[key] = s
			order = append(order, key)
			continue
		}
		if betterSuggestion(s, existing) {
			byName[key] = s
		}
	}

	result := make([]*model.ConsolidatedSuggestion, 0, len(order))
	for _, key := range order {
		result = append(result, byName[key])
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Source.Priority() != result[j].Source.Priority() {
			return result[i].Source.Priority() < result[j].Source.Priority()
		}
		return result[i].Confidence > result[j].Confidence
	})

	if len(result) > uc.cfg.MaxSuggestions {
		result = result[:uc.cfg.MaxSuggestions]
	}

	filtered := result[:0]
	for _, s := range result {
		if model.IsPlaceholderName(s.Name) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

// betterSuggestion reports whether a should replace b on a name collision:
// higher confidence wins, ties go to the stronger source type.
func betterSuggestion(a, b *model.ConsolidatedSuggestion) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.Source.Priority() < b.Source.Priority()
}

// band maps a confidence to its band label and auto-accept flag, and builds
// the per-source reason text. contributingCount only matters for
// profile-sourced suggestions.
func band(confidence float64, contributingCount int, source types.SuggestionSource) (string, bool) {
	var label string
	auto := true
	switch {
	case confidence >= 0.95:
		label = "excellent"
	case confidence >= 0.85:
		label = "very strong"
	case confidence >= 0.75:
		label = "strong"
	default:
		label = "moderate"
		auto = false
	}

	pct := confidence * 100
	switch source {
	case types.SuggestionSourceProfile:
		return fmt.Sprintf("%s match (%.0f%%) against a profile built from %d recording(s)", label, pct, contributingCount), auto
	case types.SuggestionSourceVoice:
		return fmt.Sprintf("%s voice match (%.0f%%) with a speaker in another recording", label, pct), auto
	default:
		return fmt.Sprintf("%s hint (%.0f%%) from transcript content", label, pct), auto
	}
}

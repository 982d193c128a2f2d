package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/voxlab-io/speakerid/pkg/domain/model"
	"github.com/voxlab-io/speakerid/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// profileDoc is the Firestore document representation of
// model.SpeakerProfile. NameLower backs the case-insensitive uniqueness
// query; Firestore has no case-insensitive comparison.
type profileDoc struct {
	ID                  types.ProfileID `firestore:"ID"`
	OwnerID             types.OwnerID   `firestore:"OwnerID"`
	Name                string          `firestore:"Name"`
	NameLower           string          `firestore:"NameLower"`
	Description         string          `firestore:"Description"`
	InstanceCount       int             `firestore:"InstanceCount"`
	LastEmbeddingUpdate time.Time       `firestore:"LastEmbeddingUpdate"`
	CreatedAt           time.Time       `firestore:"CreatedAt"`
	UpdatedAt           time.Time       `firestore:"UpdatedAt"`
}

func toProfileDoc(p *model.SpeakerProfile) *profileDoc {
	return &profileDoc{
		ID:                  p.ID,
		OwnerID:             p.OwnerID,
		Name:                p.Name,
		NameLower:           strings.ToLower(p.Name),
		Description:         p.Description,
		InstanceCount:       p.InstanceCount,
		LastEmbeddingUpdate: p.LastEmbeddingUpdate,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func fromProfileDoc(d *profileDoc) *model.SpeakerProfile {
	return &model.SpeakerProfile{
		ID:                  d.ID,
		OwnerID:             d.OwnerID,
		Name:                d.Name,
		Description:         d.Description,
		InstanceCount:       d.InstanceCount,
		LastEmbeddingUpdate: d.LastEmbeddingUpdate,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func docToProfile(doc *firestore.DocumentSnapshot) (*model.SpeakerProfile, error) {
	var d profileDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromProfileDoc(&d), nil
}

type profileRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProfileRepository(client *firestore.Client) *profileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + collectionProfiles)
}

func (r *profileRepository) Create(ctx context.Context, profile *model.SpeakerProfile) (*model.SpeakerProfile, error) {
	if _, err := r.GetByName(ctx, profile.OwnerID, profile.Name); err == nil {
		return nil, goerr.Wrap(types.ErrValidation, "profile name already exists",
			goerr.V("name", profile.Name), goerr.T(types.TagValidation))
	}

	now := time.Now().UTC()
	created := *profile
	if created.ID == "" {
		created.ID = types.NewProfileID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toProfileDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create profile", goerr.V(types.ProfileIDKey, created.ID))
	}

	return &created, nil
}

func (r *profileRepository) Get(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) (*model.SpeakerProfile, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "profile not found",
				goerr.V(types.ProfileIDKey, id), goerr.T(types.TagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V(types.ProfileIDKey, id))
	}

	profile, err := docToProfile(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile", goerr.V(types.ProfileIDKey, id))
	}
	if profile.OwnerID != ownerID {
		return nil, goerr.Wrap(types.ErrPermissionDenied, "profile belongs to another owner",
			goerr.V(types.ProfileIDKey, id), goerr.T(types.TagPermissionDenied))
	}
	return profile, nil
}

func (r *profileRepository) GetByName(ctx context.Context, ownerID types.OwnerID, name string) (*model.SpeakerProfile, error) {
	iter := r.collection().
		Where("OwnerID", "==", string(ownerID)).
		Where("NameLower", "==", strings.ToLower(name)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(types.ErrNotFound, "profile not found",
			goerr.V("name", name), goerr.T(types.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query profile by name", goerr.V("name", name))
	}

	return docToProfile(doc)
}

func (r *profileRepository) Update(ctx context.Context, profile *model.SpeakerProfile) (*model.SpeakerProfile, error) {
	existing, err := r.Get(ctx, profile.OwnerID, profile.ID)
	if err != nil {
		return nil, err
	}

	updated := *profile
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	docRef := r.collection().Doc(string(updated.ID))
	if _, err := docRef.Set(ctx, toProfileDoc(&updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update profile", goerr.V(types.ProfileIDKey, updated.ID))
	}

	return &updated, nil
}

func (r *profileRepository) Delete(ctx context.Context, ownerID types.OwnerID, id types.ProfileID) error {
	if _, err := r.Get(ctx, ownerID, id); err != nil {
		return err
	}

	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete profile", goerr.V(types.ProfileIDKey, id))
	}
	return nil
}

func (r *profileRepository) List(ctx context.Context, ownerID types.OwnerID) ([]*model.SpeakerProfile, error) {
	iter := r.collection().
		Where("OwnerID", "==", string(ownerID)).
		Documents(ctx)
	defer iter.Stop()

	profiles := make([]*model.SpeakerProfile, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate profiles", goerr.V(types.OwnerIDKey, ownerID))
		}

		profile, err := docToProfile(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal profile")
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

package http

import (
	"context"
	"net/http"

	"github.com/voxlab-io/speakerid/pkg/domain/types"
)

// ownerHeader carries the caller's owner scope. Authentication is handled
// upstream; by the time a request reaches this service the owner has been
// resolved and every query is scoped to it.
const ownerHeader = "X-Owner-ID"

type ctxOwnerKey struct{}

// requireOwner rejects requests without an owner scope and stores the
// owner ID in the request context
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(ownerHeader)
		if owner == "" {
			http.Error(w, "missing owner header", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), ctxOwnerKey{}, types.OwnerID(owner))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromContext(ctx context.Context) types.OwnerID {
	owner, _ := ctx.Value(ctxOwnerKey{}).(types.OwnerID)
	return owner
}

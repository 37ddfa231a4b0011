// Package authtokens declares the repository contract for one-time
// authentication tokens and provides its SQL implementation.
package authtokens

import (
	"context"

	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

// Repository issues and revokes authentication tokens.
type Repository interface {
	// Create stores token, generating its id and token value when empty.
	Create(ctx context.Context, token *models.AuthenticationToken) error

	// DeactivateForUser revokes every active token of userID and returns how
	// many were revoked.
	DeactivateForUser(ctx context.Context, userID string) (int64, error)
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/infrastructure/database"
)

// =====================================================
// USER REPOSITORY INTERFACE
// =====================================================
type UserRepository interface {
	database.Repository[model.User]

	// Authentication
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByResetToken only matches tokens that expire after now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	// SetPassword also clears any pending reset token.
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error

	// Lifecycle
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	// Embedding in other documents
	FindSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Summary, error)
}

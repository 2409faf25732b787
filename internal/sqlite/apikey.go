package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/harmonie-studio/tunesync/internal/repository"
	"github.com/harmonie-studio/tunesync/internal/transport"
)

// APIKeyRepository resolves bearer tokens to caller identities and stores
// new keys. Tokens are stored as SHA-256 hashes.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// ResolveIdentity implements transport.IdentityResolver.
func (r *APIKeyRepository) ResolveIdentity(ctx context.Context, token string) (transport.Identity, error) {
	query := `SELECT user_id, is_admin, is_teacher FROM api_keys WHERE key_hash = ?`

	var identity transport.Identity
	err := r.db.QueryRowContext(ctx, query, HashToken(token)).Scan(
		&identity.UserID,
		&identity.Admin,
		&identity.Teacher,
	)
	if err == sql.ErrNoRows {
		return transport.Identity{}, repository.ErrNotFound
	}
	if err != nil {
		return transport.Identity{}, fmt.Errorf("failed to resolve api key: %w", err)
	}
	return identity, nil
}

// CreateKey stores the hash of a token for a user.
func (r *APIKeyRepository) CreateKey(ctx context.Context, token, userID string, admin, teacher bool, description string) error {
	query := `
		INSERT INTO api_keys (key_hash, user_id, is_admin, is_teacher, description)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, HashToken(token), userID, admin, teacher, description)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// HashToken returns the hex SHA-256 digest of a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken records jti as logged out until expiresAt, kept as unix
// seconds. Revoking the same
// jti again keeps the first expiry. Expired revocations are pruned on the
// way.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)
		 ON CONFLICT(jti) DO NOTHING`,
		jti, expiresAt.Unix(),
	); err != nil {
		return fmt.Errorf("revoking token %s: %w", jti, err)
	}

	if _, err := PruneRevokedTokens(ctx, db, time.Now()); err != nil {
		return err
	}
	return nil
}

// IsTokenRevoked reports whether jti was logged out.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}

// PruneRevokedTokens drops revocations whose token expired before now and
// returns how many were removed. A token past its expiry fails validation
// on its own.
func PruneRevokedTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning revoked tokens: %w", err)
	}
	return n, nil
}

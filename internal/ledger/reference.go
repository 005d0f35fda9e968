package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Reference numbers are best-effort unique: account id plus a
// time-derived component plus a random suffix, with an existence check
// before insert. The unique index on the column is the real backstop.
//
// Format: TXN + account id (3 digits) + last 8 digits of the unix-milli
// timestamp + 3 random digits.
func formatReference(accountID uint, at time.Time, random int) string {
	return fmt.Sprintf("TXN%03d%08d%03d", accountID, at.UnixMilli()%1e8, random)
}

// referenceFor generates a reference number for a new entry, extending
// the suffix once if the first candidate is already taken.
func (e *Engine) referenceFor(ctx context.Context, tx Store, accountID uint) (string, error) {
	ref := formatReference(accountID, e.now(), rand.Intn(1000))

	exists, err := tx.ReferenceExists(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("checking reference uniqueness: %w", err)
	}
	if exists {
		ref += fmt.Sprintf("%02d", rand.Intn(100))
	}
	return ref, nil
}

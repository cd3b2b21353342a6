package account

import (
	"context"
	"time"
)

// Repository reads and mutates existing accounts. Accounts are created only
// by provisioning transactions.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id int64) (Account, error)
	// MarkVerified stamps the verification time once; later calls keep the
	// first stamp.
	MarkVerified(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, digest string) error
	TouchLastVisit(ctx context.Context, id int64, at time.Time) error
}

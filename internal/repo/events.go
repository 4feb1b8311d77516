package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/pkg/outbox"
)

func (r *GormRepo) Append(ctx context.Context, e *outbox.Event) error {
	return outbox.Append(ctx, r.DB, e)
}

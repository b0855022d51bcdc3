package notify

import (
	"context"
	"fmt"
	"time"

	platformredis "hadir/internal/platform/redis"
	id "hadir/pkg/domain"
)

// Throttle suppresses repeated notifications of the same type to the same
// user within a window. Backed by redis SET NX with TTL so the window
// survives restarts and is shared across instances. A nil receiver allows
// everything, so deployments without redis just skip throttling.
type Throttle struct {
	client *platformredis.Client
	window time.Duration
}

func NewThrottle(client *platformredis.Client, window time.Duration) *Throttle {
	if client == nil {
		return nil
	}
	return &Throttle{client: client, window: window}
}

// Allow reports whether a notification of this type may be sent to the user
// now, and if so claims the window.
func (t *Throttle) Allow(ctx context.Context, userID id.UserID, typ Type) bool {
	if t == nil {
		return true
	}
	key := fmt.Sprintf("notify:throttle:%s:%s", userID, typ)
	ok, err := t.client.SetNX(ctx, key, 1, t.window).Result()
	if err != nil {
		// Fail open: a redis outage must not silence notifications.
		return true
	}
	return ok
}

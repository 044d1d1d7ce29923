package redis

import (
	"context"
	"strings"
	"time"

	redis9 "github.com/redis/go-redis/v9"

	"github.com/kodekulture/tokenlink/repository"
)

var _ repository.Cooldown = new(CooldownRepository)

// CooldownRepository rate limits token issuance per player across server instances.
type CooldownRepository struct {
	cl *redis9.Client
}

func NewCooldownRepository(cl *redis9.Client) *CooldownRepository {
	return &CooldownRepository{cl: cl}
}

// Acquire implements repository.Cooldown.
func (r CooldownRepository) Acquire(ctx context.Context, playerUUID string, ttl time.Duration) (bool, error) {
	return r.cl.SetNX(ctx, cd(playerUUID), time.Now().Unix(), ttl).Result()
}

// Release implements repository.Cooldown.
func (r CooldownRepository) Release(ctx context.Context, playerUUID string) error {
	return r.cl.Del(ctx, cd(playerUUID)).Err()
}

func keyed(s ...string) string {
	return strings.Join(s, ":")
}

// cd returns cooldown:<player>
func cd(playerUUID string) string {
	return keyed("cooldown", playerUUID)
}

package infrastructure

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"ticketing/internal/service/inventory/domain"
)

const (
	redisActivityPrefix = "inventory:activity:"
	redisNamePrefix     = "inventory:activity-name:"
	redisIndexKey       = "inventory:activities"
)

// ErrTooManyConflicts 表示乐观写在重试上限内始终冲突
var ErrTooManyConflicts = stderrors.New("too many concurrent modifications")

// RedisActivityRepository 把每条记录存为一个 JSON 字符串，
// Mutate 使用 WATCH/MULTI 做乐观 CAS，冲突时在上限内重新读取并重算。
type RedisActivityRepository struct {
	client     *redis.Client
	maxRetries int
}

func NewRedisActivityRepository(client *redis.Client, maxRetries int) *RedisActivityRepository {
	if maxRetries <= 0 {
		maxRetries = 16
	}
	return &RedisActivityRepository{client: client, maxRetries: maxRetries}
}

type redisActivity struct {
	ID          int64     `json:"id"`
	Key         string    `json:"activity_key"`
	Name        string    `json:"display_name"`
	Description string    `json:"description,omitempty"`
	Timing      string    `json:"timing,omitempty"`
	UnitPrice   int       `json:"unit_price"`
	Capacity    int       `json:"capacity"`
	Reserved    int       `json:"reserved_count"`
	IsActive    bool      `json:"is_active"`
	IsSoldOut   bool      `json:"is_sold_out"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func encodeActivity(a *domain.Activity) ([]byte, error) {
	return json.Marshal(redisActivity{
		ID: a.ID, Key: a.Key, Name: a.Name, Description: a.Description, Timing: a.Timing,
		UnitPrice: a.UnitPrice, Capacity: a.Capacity, Reserved: a.Reserved,
		IsActive: a.IsActive, IsSoldOut: a.IsSoldOut, Version: a.Version,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	})
}

func decodeActivity(raw []byte) (*domain.Activity, error) {
	var r redisActivity
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, errors.Wrap(err, "decode activity")
	}
	return &domain.Activity{
		ID: r.ID, Key: r.Key, Name: r.Name, Description: r.Description, Timing: r.Timing,
		UnitPrice: r.UnitPrice, Capacity: r.Capacity, Reserved: r.Reserved,
		IsActive: r.IsActive, IsSoldOut: r.IsSoldOut, Version: r.Version,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

func (r *RedisActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	recKey := redisActivityPrefix + a.Key
	nameKey := redisNamePrefix + a.Name

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, recKey, nameKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrActivityExists
		}
		id, err := tx.Incr(ctx, redisIndexKey+":seq").Result()
		if err != nil {
			return err
		}
		a.ID = id
		raw, err := encodeActivity(a)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recKey, raw, 0)
			pipe.Set(ctx, nameKey, a.Key, 0)
			pipe.SAdd(ctx, redisIndexKey, a.Key)
			return nil
		})
		return err
	}, recKey, nameKey)

	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, domain.ErrActivityExists):
		return err
	case stderrors.Is(err, redis.TxFailedErr):
		// 有并发写入同名记录
		return domain.ErrActivityExists
	default:
		return errors.Wrap(err, "redis create activity")
	}
}

func (r *RedisActivityRepository) FindByKey(ctx context.Context, key string) (*domain.Activity, error) {
	raw, err := r.client.Get(ctx, redisActivityPrefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, domain.ErrActivityNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get activity")
	}
	return decodeActivity(raw)
}

func (r *RedisActivityRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Activity, error) {
	keys, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis list activity keys")
	}
	if len(keys) == 0 {
		return []*domain.Activity{}, nil
	}
	sort.Strings(keys)

	recKeys := make([]string, len(keys))
	for i, k := range keys {
		recKeys[i] = redisActivityPrefix + k
	}
	vals, err := r.client.MGet(ctx, recKeys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis mget activities")
	}

	out := make([]*domain.Activity, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		a, err := decodeActivity([]byte(s))
		if err != nil {
			return nil, err
		}
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *RedisActivityRepository) Mutate(ctx context.Context, key string, fn domain.MutateFunc) (*domain.Activity, error) {
	recKey := redisActivityPrefix + key

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		var (
			result   *domain.Activity
			rejected error
		)
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, recKey).Bytes()
			if stderrors.Is(err, redis.Nil) {
				return domain.ErrActivityNotFound
			}
			if err != nil {
				return err
			}
			current, err := decodeActivity(raw)
			if err != nil {
				return err
			}

			next := current.Clone()
			if err := fn(next); err != nil {
				result, rejected = current, err
				return nil
			}
			next.Version = current.Version + 1
			next.UpdatedAt = time.Now()

			renamed := next.Name != current.Name
			newNameKey := redisNamePrefix + next.Name
			if renamed {
				if err := tx.Watch(ctx, newNameKey).Err(); err != nil {
					return err
				}
				n, err := tx.Exists(ctx, newNameKey).Result()
				if err != nil {
					return err
				}
				if n > 0 {
					result, rejected = current, domain.ErrActivityExists
					return nil
				}
			}

			encoded, err := encodeActivity(next)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, recKey, encoded, 0)
				if renamed {
					pipe.Del(ctx, redisNamePrefix+current.Name)
					pipe.Set(ctx, newNameKey, next.Key, 0)
				}
				return nil
			})
			if err != nil {
				return err
			}
			result = next
			return nil
		}, recKey)

		switch {
		case stderrors.Is(err, redis.TxFailedErr):
			continue
		case stderrors.Is(err, domain.ErrActivityNotFound):
			return nil, err
		case err != nil:
			return nil, errors.Wrap(err, "redis mutate activity")
		case rejected != nil:
			return result, rejected
		default:
			return result, nil
		}
	}
	return nil, errors.Wrapf(ErrTooManyConflicts, "activity %s", key)
}

package location

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/wasteline/fleet_backendl/internal/models"
)

// ErrPositionNotFound means the driver has never reported a position.
var ErrPositionNotFound = errors.New("position not found")

// PositionStore is the live position record store: upsert-by-key plus
// fetch-one and fetch-all. Writes are whole-record overwrites, so concurrent
// reports for the same driver resolve last-write-wins.
type PositionStore interface {
	SavePosition(ctx context.Context, pos *models.DriverPosition) error
	GetPosition(ctx context.Context, driverID string) (*models.DriverPosition, error)
	GetAllPositions(ctx context.Context) ([]*models.DriverPosition, error)
}

const positionKeyPrefix = "driver:location:"

// RedisStore keeps one JSON record per driver with no TTL: the last known
// position survives the driver turning sharing off.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) SavePosition(ctx context.Context, pos *models.DriverPosition) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, positionKeyPrefix+pos.DriverID, data, 0).Err()
}

func (r *RedisStore) GetPosition(ctx context.Context, driverID string) (*models.DriverPosition, error) {
	data, err := r.client.Get(ctx, positionKeyPrefix+driverID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}

	var pos models.DriverPosition
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

// GetAllPositions walks the keyspace with SCAN; viewers poll this every
// 1-2 seconds, so a blocking KEYS sweep is not an option.
func (r *RedisStore) GetAllPositions(ctx context.Context) ([]*models.DriverPosition, error) {
	var positions []*models.DriverPosition
	iter := r.client.Scan(ctx, 0, positionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			// Key vanished between SCAN and GET.
			continue
		}
		var pos models.DriverPosition
		if err := json.Unmarshal(data, &pos); err != nil {
			continue
		}
		positions = append(positions, &pos)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}

package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const notificationChannel = "notifications:"

// NewRedis creates a new Redis client
func NewRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	log.Printf("[Redis] client created (addr: %s)\n", addr)
	return rdb
}

// RedisBridge fans notifications out across API instances. Notify publishes
// to notifications:<userId>; Run delivers every published message to the
// local Hub, which drops it unless the user is connected here.
type RedisBridge struct {
	RDB *redis.Client
	Hub *Hub

	onSubscribed func()
}

func NewRedisBridge(rdb *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{RDB: rdb, Hub: hub}
}

func (b *RedisBridge) Notify(ctx context.Context, userID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.RDB.Publish(ctx, notificationChannel+userID.String(), data).Err()
}

// Run blocks until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.RDB.PSubscribe(ctx, notificationChannel+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	log.Println("[Redis] subscribed to", notificationChannel+"*")
	if b.onSubscribed != nil {
		b.onSubscribed()
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(msg.Channel, msg.Payload)
		}
	}
}

func (b *RedisBridge) dispatch(channel, payload string) bool {
	uid, err := uuid.Parse(strings.TrimPrefix(channel, notificationChannel))
	if err != nil {
		log.Printf("[Redis] ignoring message on %q: %v", channel, err)
		return false
	}
	return b.Hub.Deliver(uid, []byte(payload))
}

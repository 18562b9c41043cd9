package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/messages"
)

const (
	patchKey = "basslink:patch"
	peerKey  = "basslink:peer"
	peerTTL  = 24 * time.Hour
)

// Store persists the engine patch and the identity of the connected peer.
type Store interface {
	// LoadPatch returns the saved patch; ok is false if nothing was saved yet.
	LoadPatch(ctx context.Context) (p messages.Patch, ok bool, err error)
	SavePatch(ctx context.Context, p messages.Patch) error
	RecordPeer(ctx context.Context, id, addr string) error
	ClearPeer(ctx context.Context) error
	Close() error
}

// NewStore connects to redis at addr. When redis is unreachable it logs and falls back
// to an in-memory store, so the engine still runs without persistence.
func NewStore(addr, password string, log *logrus.Entry) Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warnf("Redis at %s unavailable, keeping patch in memory", addr)
		client.Close()
		return NewMemoryStore()
	}
	log.Infof("✅ Persisting patch to redis at %s", addr)
	return &RedisStore{client: client}
}

// RedisStore keeps the patch in its wire encoding under a single key.
type RedisStore struct {
	client *redis.Client
}

func (s *RedisStore) LoadPatch(ctx context.Context) (messages.Patch, bool, error) {
	raw, err := s.client.Get(ctx, patchKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return messages.Patch{}, false, nil
	}
	if err != nil {
		return messages.Patch{}, false, fmt.Errorf("failed to load patch: %w", err)
	}
	p, ok := messages.DecodePatch(raw)
	if !ok {
		return messages.Patch{}, false, fmt.Errorf("stored patch has %d bytes, want %d", len(raw), messages.PatchSize)
	}
	return p, true, nil
}

func (s *RedisStore) SavePatch(ctx context.Context, p messages.Patch) error {
	raw, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, patchKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save patch: %w", err)
	}
	return nil
}

func (s *RedisStore) RecordPeer(ctx context.Context, id, addr string) error {
	if err := s.client.HSet(ctx, peerKey, map[string]interface{}{
		"id":           id,
		"addr":         addr,
		"connected_at": time.Now().Unix(),
	}).Err(); err != nil {
		return fmt.Errorf("failed to record peer: %w", err)
	}
	s.client.Expire(ctx, peerKey, peerTTL)
	return nil
}

func (s *RedisStore) ClearPeer(ctx context.Context) error {
	return s.client.Del(ctx, peerKey).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore is the non-persistent fallback.
type MemoryStore struct {
	mu    sync.RWMutex
	patch *messages.Patch
	peer  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadPatch(context.Context) (messages.Patch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.patch == nil {
		return messages.Patch{}, false, nil
	}
	return *s.patch, true, nil
}

func (s *MemoryStore) SavePatch(_ context.Context, p messages.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patch = &p
	return nil
}

func (s *MemoryStore) RecordPeer(_ context.Context, id, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peer = map[string]string{"id": id, "addr": addr}
	return nil
}

func (s *MemoryStore) ClearPeer(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peer = nil
	return nil
}

// Peer returns the recorded peer id, if any.
func (s *MemoryStore) Peer() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.peer["id"]
	return id, ok
}

func (s *MemoryStore) Close() error { return nil }

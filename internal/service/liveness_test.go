package service

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/bigkaa/prodplan/internal/apiclient"
)

// memStore — in-memory CredentialStore.
type memStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	revoked map[string]bool
}

func newMemStore(tokens map[string]string) *memStore {
	return &memStore{tokens: tokens, revoked: make(map[string]bool)}
}

func (s *memStore) Credentials() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.tokens)
}

func (s *memStore) Revoke(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[sessionID] = true
	delete(s.tokens, sessionID)
}

func (s *memStore) isRevoked(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[sessionID]
}

// tokenPinger принимает только токены из списка valid.
type tokenPinger struct {
	valid map[string]bool
	calls chan string
}

func (p *tokenPinger) Ping(ctx context.Context, token string) error {
	if p.calls != nil {
		select {
		case p.calls <- token:
		default:
		}
	}
	if p.valid[token] {
		return nil
	}
	return &apiclient.StatusError{Operation: "ping", StatusCode: 401}
}

func TestLivenessService_CheckAllRevokesFailed(t *testing.T) {
	store := newMemStore(map[string]string{"s1": "good", "s2": "bad", "s3": "good"})
	pinger := &tokenPinger{valid: map[string]bool{"good": true}}
	svc := NewLivenessService(store, pinger, time.Hour, testLogger())

	revoked := svc.CheckAll(context.Background())
	if revoked != 1 {
		t.Errorf("ожидалась 1 отозванная сессия, получено %d", revoked)
	}
	if !store.isRevoked("s2") {
		t.Error("сессия s2 должна быть отозвана")
	}
	if store.isRevoked("s1") || store.isRevoked("s3") {
		t.Error("действительные сессии не должны отзываться")
	}
}

// cancelPinger возвращает ошибку отмены контекста.
type cancelPinger struct{}

func (cancelPinger) Ping(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestLivenessService_CanceledContextDoesNotRevoke(t *testing.T) {
	store := newMemStore(map[string]string{"s1": "t1"})
	svc := NewLivenessService(store, cancelPinger{}, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if revoked := svc.CheckAll(ctx); revoked != 0 {
		t.Errorf("при отмене контекста сессии не должны отзываться, отозвано %d", revoked)
	}
	if store.isRevoked("s1") {
		t.Error("сессия s1 не должна быть отозвана")
	}
}

func TestLivenessService_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newMemStore(map[string]string{"s1": "bad"})
	pinger := &tokenPinger{valid: map[string]bool{}, calls: make(chan string, 1)}
	svc := NewLivenessService(store, pinger, 10*time.Millisecond, testLogger())

	svc.Start(context.Background())

	select {
	case <-pinger.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("проверка токенов не запустилась")
	}
	svc.Stop()
}

func TestLivenessService_StopWithoutStart(t *testing.T) {
	svc := NewLivenessService(newMemStore(nil), &tokenPinger{}, time.Hour, testLogger())
	svc.Stop()
}

func TestBatchError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &BatchError{Total: 2, Failed: map[int64]error{7: cause}}
	if !errors.Is(err, ErrPartialBatch) || !errors.Is(err, cause) {
		t.Errorf("BatchError должна раскрываться в ErrPartialBatch и причину: %v", err)
	}
}

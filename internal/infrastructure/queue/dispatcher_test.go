package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

type memoryAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
}

func (r *memoryAuditRepo) InsertEvent(_ context.Context, e *domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func TestDispatcher_PersistsInOrderPerEmail(t *testing.T) {
	repo := &memoryAuditRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())

	kinds := []domain.AuthEventKind{domain.EventRegistered, domain.EventLoginFailed, domain.EventLoginSucceeded}
	for _, k := range kinds {
		d.Record(domain.AuthEvent{Kind: k, Email: "a@example.com"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	if len(repo.events) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(repo.events))
	}
	for i, k := range kinds {
		if repo.events[i].Kind != k {
			t.Fatalf("event %d: expected %s, got %s", i, k, repo.events[i].Kind)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &memoryAuditRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.AuthEvent{Kind: domain.EventLoginFailed, Email: "a@example.com"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	if len(repo.events) != channelBuffer {
		t.Fatalf("expected %d persisted events, got %d", channelBuffer, len(repo.events))
	}
}

func TestDispatcher_RepositoryErrorIsNotFatal(t *testing.T) {
	repo := &memoryAuditRepo{err: errors.New("mongo down")}
	d := NewDispatcher(0, repo, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}

	d.Record(domain.AuthEvent{Kind: domain.EventRegistered, Email: "a@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()
}

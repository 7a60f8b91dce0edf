// Package audit records who changed what, asynchronously so the request
// path never waits on the trail.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// Event describes one auditable action. Actor fields are nil for
// unauthenticated portal decisions.
type Event struct {
	BranchID   *uuid.UUID
	ActorID    *uuid.UUID
	ActorEmail string
	Action     domain.AuditAction
	EntityType string
	EntityID   uuid.UUID
	Metadata   map[string]any
}

// Dispatcher writes audit events on a background goroutine. Record never
// blocks; when the queue is full the event is dropped with a warning.
type Dispatcher struct {
	repo   port.AuditRepository
	logger *zap.Logger
	queue  chan Event
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func NewDispatcher(repo port.AuditRepository, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		repo:   repo,
		logger: logger,
		queue:  make(chan Event, 100),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.write(ev)
	}
}

func (d *Dispatcher) write(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var meta json.RawMessage
	if ev.Metadata != nil {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			d.logger.Warn("audit metadata not serializable", zap.Error(err))
		} else {
			meta = raw
		}
	}

	entry := &domain.AuditEntry{
		BranchID:   ev.BranchID,
		ActorID:    ev.ActorID,
		ActorEmail: ev.ActorEmail,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Metadata:   meta,
	}
	if err := d.repo.Insert(ctx, entry); err != nil {
		d.logger.Error("audit write failed",
			zap.String("action", string(ev.Action)),
			zap.String("entity_type", ev.EntityType),
			zap.Error(err))
	}
}

// Record enqueues an event without blocking the caller.
func (d *Dispatcher) Record(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("audit queue full, dropping event",
			zap.String("action", string(ev.Action)),
			zap.String("entity_type", ev.EntityType))
	}
}

// Close drains the queue and waits for in-flight writes.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

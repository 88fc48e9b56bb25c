// Package persist turns session mutations into background store writes.
//
// Every job of a Dispatcher runs on one shard key, the user ID, so writes
// reach the store in submission order: a delete never overtakes the save
// that preceded it. Entities are snapshotted at submit time; later in-memory
// edits do not leak into a queued write.
package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/media"
	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/shardqueue"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

// Config tunes the dispatcher's executor.
type Config struct {
	Shards      int
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	// OnError, when set, also receives every final job failure.
	OnError func(op string, err error)
}

// Dispatcher implements the session's Persister and MediaPort.
type Dispatcher struct {
	st     store.Store
	media  *media.Service
	exec   *shardqueue.ShardExecutor
	key    string
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	hook   func(op string, err error)
}

// jobError tags a job failure with its operation.
type jobError struct {
	op  string
	id  string
	err error
}

func (e *jobError) Error() string { return fmt.Sprintf("%s %s: %v", e.op, e.id, e.err) }
func (e *jobError) Unwrap() error { return e.err }

// NewDispatcher returns a Dispatcher writing userID's graph to st. mediaSvc
// may be nil when notes carry no media.
func NewDispatcher(st store.Store, mediaSvc *media.Service, userID string, cfg Config, log zerolog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		st:     st,
		media:  mediaSvc,
		key:    userID,
		log:    log.With().Str("component", "persist").Str("user", userID).Logger(),
		ctx:    ctx,
		cancel: cancel,
		hook:   cfg.OnError,
	}
	d.exec = shardqueue.NewShardExecutor(shardqueue.Config{
		Shards:       cfg.Shards,
		QueueSize:    cfg.QueueSize,
		MaxAttempts:  cfg.MaxAttempts,
		BaseBackoff:  cfg.BaseBackoff,
		ErrorHandler: d.handleError,
	}, log)
	return d
}

func (d *Dispatcher) handleError(err error) {
	op := "unknown"
	var je *jobError
	if errors.As(err, &je) {
		op = je.op
	}
	failuresTotal.WithLabelValues(op).Inc()
	d.log.Error().Stack().Err(err).Str("op", op).Msg("persistence failed")
	if d.hook != nil {
		d.hook(op, err)
	}
}

// submit queues fn under op. Store validation and not-found errors are not
// retried.
func (d *Dispatcher) submit(op, id string, fn func(ctx context.Context) error) {
	job := shardqueue.JobFunc(func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			jobsTotal.WithLabelValues(op).Inc()
			return nil
		}
		err = &jobError{op: op, id: id, err: err}
		if model.IsValidationError(err) || model.IsNotFoundError(err) {
			return shardqueue.Permanent(err)
		}
		return err
	})
	if err := d.exec.Submit(d.ctx, d.key, job); err != nil {
		d.handleError(&jobError{op: op, id: id, err: fmt.Errorf("submit: %w", err)})
	}
}

func (d *Dispatcher) SaveUser(u *model.User) {
	snap := *u
	snap.Ambitos = nil
	d.submit("save_user", u.ID, func(ctx context.Context) error {
		return d.st.Users().Save(ctx, &snap)
	})
}

func (d *Dispatcher) SaveAmbito(a *model.Ambito) {
	snap := model.NewAmbito(a.Name, a.Color)
	snap.ID, snap.UserID, snap.Position = a.ID, a.UserID, a.Position
	d.submit("save_ambito", a.ID, func(ctx context.Context) error {
		return d.st.Ambitos().Save(ctx, snap)
	})
}

func (d *Dispatcher) SaveNote(n *model.Note) {
	snap := snapshotNote(n)
	d.submit("save_note", n.ID, func(ctx context.Context) error {
		return d.st.Notes().Save(ctx, snap)
	})
}

func (d *Dispatcher) DeleteAmbito(userID, ambitoID string) {
	d.submit("delete_ambito", ambitoID, func(ctx context.Context) error {
		return d.st.Ambitos().Delete(ctx, userID, ambitoID)
	})
}

func (d *Dispatcher) DeleteNote(noteID string) {
	d.submit("delete_note", noteID, func(ctx context.Context) error {
		return d.st.Notes().Delete(ctx, noteID)
	})
}

func (d *Dispatcher) DeleteFolder(ambitoID, name string) {
	d.submit("delete_folder", ambitoID+"/"+name, func(ctx context.Context) error {
		return d.st.Notes().DeleteFolder(ctx, ambitoID, name)
	})
}

// Copy duplicates a media collection synchronously.
func (d *Dispatcher) Copy(ctx context.Context, kind model.MediaKind, collectionID string) (string, error) {
	if d.media == nil {
		return "", fmt.Errorf("copy %s: media service not configured", kind)
	}
	return d.media.Copy(ctx, kind, collectionID)
}

// Fetch prefetches a media collection into the cache in the background.
func (d *Dispatcher) Fetch(kind model.MediaKind, collectionID string) {
	if d.media == nil {
		return
	}
	d.submit("fetch_media", collectionID, func(ctx context.Context) error {
		return d.media.Fetch(ctx, kind, collectionID)
	})
}

// Delete removes a media collection in the background.
func (d *Dispatcher) Delete(kind model.MediaKind, collectionID string) {
	if d.media == nil {
		return
	}
	d.submit("delete_media", collectionID, func(ctx context.Context) error {
		return d.media.Delete(ctx, kind, collectionID)
	})
}

// Drain waits until every job submitted so far has finished.
func (d *Dispatcher) Drain(ctx context.Context) error {
	return d.exec.Barrier(ctx, d.key)
}

// Close drains the queue and stops the workers.
func (d *Dispatcher) Close() error {
	d.exec.Stop()
	d.cancel()
	return nil
}

func snapshotNote(n *model.Note) *model.Note {
	cp := *n
	cp.FolderTag = model.StrPtr(n.Tag())
	cp.ImagesID = clonePtr(n.ImagesID)
	cp.DocumentsID = clonePtr(n.DocumentsID)
	cp.AudiosID = clonePtr(n.AudiosID)
	return &cp
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// ErrBuilderStarted is returned when Start is called more than once.
var ErrBuilderStarted = errors.New("builder already started")

// Builder rebuilds the logged-in user's graph in three stages:
//
//	FetchUser -> FetchAmbitos(user) -> FetchNotes(ambito) for every ambito
//
// The last stage fans out; results may arrive in any order and interleave.
// Each ambito contributes exactly once to the completion counter and the
// user is published into the Session when the counter reaches the number of
// ambitos. A batch that does not match the build is discarded and logged;
// the build then never completes. There is no internal timeout: callers
// bound their wait through the context given to Wait.
//
// A Builder serves one login and is never reused.
type Builder struct {
	target *Session
	loader Loader
	log    zerolog.Logger

	mu       sync.Mutex
	ctx      context.Context
	started  bool
	user     *model.User
	attached bool
	loaded   map[string]bool
	counter  int
	result   *model.User
	done     chan struct{}
}

// NewBuilder returns a Builder that publishes into target.
func NewBuilder(target *Session, loader Loader, log zerolog.Logger) *Builder {
	return &Builder{
		target: target,
		loader: loader,
		log:    log.With().Str("component", "builder").Logger(),
		ctx:    context.Background(),
		loaded: make(map[string]bool),
		done:   make(chan struct{}),
	}
}

// Start issues the first fetch and returns immediately.
func (b *Builder) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return ErrBuilderStarted
	}
	b.started = true
	b.ctx = ctx
	b.mu.Unlock()

	b.log.Info().Msg("beginning user build")
	go func() {
		u, err := b.loader.FetchUser(ctx)
		if err != nil {
			b.log.Error().Stack().Err(err).Msg("stage 1 failed: fetch user")
			return
		}
		_ = b.UserResult(u)
	}()
	return nil
}

// Done is closed once the user is fully hydrated and published.
func (b *Builder) Done() <-chan struct{} { return b.done }

// Wait blocks until hydration completes or ctx ends. On ctx expiry the
// build keeps its state; a later result can still complete it.
func (b *Builder) Wait(ctx context.Context) (*model.User, error) {
	select {
	case <-b.done:
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("hydration incomplete: %w", ctx.Err())
	}
}

// Pending reports how many ambitos still wait for their notes; -1 before
// the ambito collection is attached.
func (b *Builder) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return -1
	}
	return len(b.user.Ambitos) - b.counter
}

// UserResult is stage 1: record the user and request its ambitos. A nil user
// or a second user is discarded.
func (b *Builder) UserResult(u *model.User) error {
	if u == nil {
		return b.inconsistent(model.NewInconsistencyError("user", "loader returned no user"))
	}
	b.mu.Lock()
	if b.user != nil {
		b.mu.Unlock()
		return b.inconsistent(model.NewInconsistencyError("user", "user "+u.ID+" arrived after "+b.user.ID))
	}
	b.user = u
	ctx := b.ctx
	b.mu.Unlock()

	b.log.Info().Str("user", u.ID).Msg("stage 1 success: user loaded")
	go func() {
		ambitos, err := b.loader.FetchAmbitos(ctx, u.ID)
		if err != nil {
			b.log.Error().Stack().Err(err).Str("user", u.ID).Msg("stage 2 failed: fetch ambitos")
			return
		}
		_ = b.AmbitoCollectionResult(u.ID, ambitos)
	}()
	return nil
}

// AmbitoCollectionResult is stage 2: attach the ambitos to the user being
// built and request the notes of each one.
func (b *Builder) AmbitoCollectionResult(userID string, ambitos []*model.Ambito) error {
	b.mu.Lock()
	if b.user == nil || b.user.ID != userID {
		b.mu.Unlock()
		return b.inconsistent(model.NewInconsistencyError("ambitos", "batch for user "+userID+" does not match the build"))
	}
	if b.attached {
		b.mu.Unlock()
		return b.inconsistent(model.NewInconsistencyError("ambitos", "collection already attached"))
	}
	seen := make(map[string]bool, len(ambitos))
	for _, a := range ambitos {
		if a == nil || seen[a.ID] {
			b.mu.Unlock()
			return b.inconsistent(model.NewInconsistencyError("ambitos", "duplicate or empty ambito in batch"))
		}
		seen[a.ID] = true
	}
	b.attached = true
	b.user.Ambitos = nil
	for _, a := range ambitos {
		b.user.AddAmbito(a)
	}

	if len(ambitos) == 0 {
		a := model.NewAmbito(model.DefaultAmbitoName, model.DefaultAmbitoColor)
		a.SetID(uuid.NewString())
		b.user.AddAmbito(a)
		b.target.persist.SaveAmbito(a)
		b.log.Info().Str("user", userID).Msg("stage 2: no ambitos stored, created default")
		b.loaded[a.ID] = true
		b.counter++
		u := b.finish()
		b.mu.Unlock()
		b.publish(u)
		return nil
	}

	ids := make([]string, len(ambitos))
	for i, a := range ambitos {
		ids[i] = a.ID
	}
	ctx := b.ctx
	b.mu.Unlock()

	b.log.Info().Str("user", userID).Int("ambitos", len(ids)).Msg("stage 2 success: ambitos loaded")
	for _, id := range ids {
		go func(id string) {
			notes, err := b.loader.FetchNotes(ctx, id)
			if err != nil {
				b.log.Error().Stack().Err(err).Str("ambito", id).Msg("stage 3 failed: fetch notes")
				return
			}
			_ = b.NoteCollectionResult(id, notes)
		}(id)
	}
	return nil
}

// NoteCollectionResult is stage 3: prefetch media, file each note into its
// ambito and count the ambito as loaded.
func (b *Builder) NoteCollectionResult(ambitoID string, notes []*model.Note) error {
	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return b.inconsistent(model.NewInconsistencyError("notes", "ambitos of the user are not loaded"))
	}
	_, a := b.user.AmbitoByID(ambitoID)
	if a == nil {
		b.mu.Unlock()
		return b.inconsistent(model.NewInconsistencyError("notes", "unknown ambito "+ambitoID))
	}
	if b.loaded[ambitoID] {
		b.mu.Unlock()
		return b.inconsistent(model.NewInconsistencyError("notes", "ambito "+ambitoID+" already loaded"))
	}

	media := b.target.media
	for _, n := range notes {
		if media != nil {
			for _, att := range n.Attachments() {
				if att.CollectionID != "" {
					media.Fetch(att.Kind, att.CollectionID)
				}
			}
		}
		a.AddNote(n)
	}
	b.loaded[ambitoID] = true
	b.counter++

	var u *model.User
	if b.counter == len(b.user.Ambitos) {
		u = b.finish()
	}
	b.mu.Unlock()

	b.log.Debug().Str("ambito", ambitoID).Int("notes", len(notes)).Msg("stage 3: notes loaded")
	if u != nil {
		b.publish(u)
	}
	return nil
}

// finish marks the build complete; callers hold b.mu.
func (b *Builder) finish() *model.User {
	b.result = b.user
	return b.result
}

func (b *Builder) publish(u *model.User) {
	b.log.Info().Str("user", u.ID).Msg("stage 3 success: all notes loaded")
	b.target.hydrated(u)
	close(b.done)
}

func (b *Builder) inconsistent(err error) error {
	b.log.Warn().Err(err).Msg("discarding batch")
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PIS-2020-2021/PIS/internal/config"
	"github.com/PIS-2020-2021/PIS/internal/events"
	"github.com/PIS-2020-2021/PIS/internal/factory"
	"github.com/PIS-2020-2021/PIS/internal/logger"
	"github.com/PIS-2020-2021/PIS/internal/media"
	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/persist"
	"github.com/PIS-2020-2021/PIS/internal/session"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

// app wires one CLI invocation: config, storage, dispatcher and session.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	storage *factory.Storage
	media   *media.Service
	disp    *persist.Dispatcher
	bus     *events.Bus
	sess    *session.Session
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if userFlag != "" {
		cfg.UserID = userFlag
	}
	log := logger.New("lize", cfg.LogLevel)

	storage, err := factory.NewStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	svc := media.NewService(storage.Media, log)
	disp := persist.NewDispatcher(storage.Store, svc, cfg.UserID, persist.Config{
		Shards:      cfg.Shards,
		QueueSize:   cfg.QueueSize,
		MaxAttempts: cfg.MaxAttempts,
	}, log)
	bus := events.NewBus(0)

	return &app{
		cfg:     cfg,
		log:     log,
		storage: storage,
		media:   svc,
		disp:    disp,
		bus:     bus,
		sess:    session.New(bus, disp, disp, log),
	}, nil
}

// hydrate loads the configured user into the session, bounded by
// HydrateTimeout.
func (a *app) hydrate(ctx context.Context) error {
	if _, err := a.storage.Store.Users().Get(ctx, a.cfg.UserID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("user %s does not exist; run `lize init` first", a.cfg.UserID)
		}
		return err
	}

	b := session.NewBuilder(a.sess, store.NewLoader(a.storage.Store, a.cfg.UserID), a.log)
	if err := b.Start(ctx); err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, a.cfg.HydrateTimeout)
	defer cancel()
	if _, err := b.Wait(wctx); err != nil {
		return fmt.Errorf("load user %s: %w", a.cfg.UserID, err)
	}
	return nil
}

// close waits for queued writes, then releases everything.
func (a *app) close(ctx context.Context) error {
	dctx, cancel := context.WithTimeout(ctx, a.cfg.DrainTimeout)
	defer cancel()
	err := a.disp.Drain(dctx)
	_ = a.disp.Close()
	a.bus.Close()
	if cerr := a.storage.Close(); err == nil {
		err = cerr
	}
	return err
}

// withSession runs fn against a hydrated session and prints its last notice.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	if err := a.hydrate(ctx); err != nil {
		_ = a.close(ctx)
		return err
	}
	runErr := fn(ctx, a)
	closeErr := a.close(ctx)
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("flush pending writes: %w", closeErr)
	}
	return nil
}

func printStatus(cmd *cobra.Command, a *app) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), a.sess.Status())
}

// selectAmbito selects name, or keeps the default selection when empty.
func selectAmbito(a *app, name string) error {
	if name == "" {
		return nil
	}
	return a.sess.SelectAmbito(name)
}

// selectNoteAmbito selects the Ambito holding noteID.
func selectNoteAmbito(a *app, noteID string) error {
	for _, amb := range a.sess.CurrentUser().Ambitos {
		if amb.NoteByID(noteID) != nil {
			return a.sess.SelectAmbito(amb.Name)
		}
	}
	return model.NewNotFoundError("note", noteID)
}

func ambitoByName(a *app, name string) (*model.Ambito, error) {
	amb := a.sess.CurrentUser().AmbitoByName(name)
	if amb == nil {
		return nil, model.NewNotFoundError("ambito", name)
	}
	return amb, nil
}

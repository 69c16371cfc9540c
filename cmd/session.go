package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	config "work-tracker.com/work-tracker/internal/configs"
	"work-tracker.com/work-tracker/internal/syncclient"
	"work-tracker.com/work-tracker/internal/worktime"
)

// session is one command's view of the user's state: fetched from the
// server, mutated locally, and pushed back on close.
type session struct {
	cfg     config.Config
	logger  *logrus.Logger
	client  *syncclient.Client
	machine *worktime.Machine
}

func openSession(ctx context.Context) (*session, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.SyncUser == "" {
		return nil, errors.New("username required: pass --user or set SYNC_USER")
	}

	client := syncclient.New(
		syncclient.NewHTTPTransport(cfg.SyncURL, cfg.SyncTimeout),
		cfg.SyncUser,
		syncclient.Options{
			Debounce:  cfg.SyncDebounce,
			Heartbeat: cfg.SyncHeartbeat,
			Timeout:   cfg.SyncTimeout,
			Logger:    logger,
		},
	)

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.SyncTimeout)
	defer cancel()

	state, err := client.Fetch(fetchCtx)
	if err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("load state for %s: %w", cfg.SyncUser, err)
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		machine: worktime.NewMachine(state, worktime.WithObserver(client.Schedule)),
	}, nil
}

// close pushes the final state. A failed push is reported but not fatal;
// the next command resends the whole snapshot it loads.
func (s *session) close(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(ctx, s.cfg.SyncTimeout)
	defer cancel()

	if err := s.client.Close(flushCtx); err != nil {
		s.logger.WithError(err).Warn("sync failed; change kept locally only")
	}
}

// resolveTask accepts a full task id, a unique id prefix or suffix (the short
// id printed by add and status), or an exact name.
func resolveTask(state *worktime.WorkState, ref string) (string, error) {
	if state.FindTask(ref) >= 0 {
		return ref, nil
	}

	var matches []string
	for _, t := range state.Tasks {
		if strings.HasPrefix(t.ID, ref) || strings.HasSuffix(t.ID, ref) || t.Name == ref {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d tasks", ref, len(matches))
	}
}

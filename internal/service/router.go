package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vbonduro/kitchzone/internal/availability"
	"github.com/vbonduro/kitchzone/internal/metrics"
	"github.com/vbonduro/kitchzone/internal/storage"
)

// detector is the subset of availability.Detector the router requires.
type detector interface {
	Ensure(ctx context.Context, userID string) (availability.Verdict, error)
	Retry(ctx context.Context, userID string) (availability.Verdict, error)
	Reset(userID string)
}

// Router picks the storage backend for a user from the availability verdict.
type Router struct {
	detector detector
	remote   storage.Storage
	local    storage.Storage
	logger   *slog.Logger
}

func NewRouter(d detector, remote, local storage.Storage, logger *slog.Logger) *Router {
	return &Router{detector: d, remote: remote, local: local, logger: logger}
}

// Storage blocks until the user's session has a verdict and returns the
// backend to use.
func (r *Router) Storage(ctx context.Context, userID string) (storage.Storage, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	v, err := r.detector.Ensure(ctx, userID)
	if err != nil {
		if errors.Is(err, availability.ErrNoUser) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	backend := r.local
	if v.Available() {
		backend = r.remote
	}
	metrics.BackendSelected.WithLabelValues(backend.Name()).Inc()
	return backend, nil
}

// Availability returns the user's verdict, probing if there is none yet.
func (r *Router) Availability(ctx context.Context, userID string) (availability.Verdict, error) {
	if userID == "" {
		return availability.Verdict{}, ErrUnauthenticated
	}
	return r.detector.Ensure(ctx, userID)
}

// Retry re-probes the remote backend for the user.
func (r *Router) Retry(ctx context.Context, userID string) (availability.Verdict, error) {
	if userID == "" {
		return availability.Verdict{}, ErrUnauthenticated
	}
	v, err := r.detector.Retry(ctx, userID)
	if err == nil {
		r.logger.Info("availability re-probed", "user_id", userID, "state", v.State.String())
	}
	return v, err
}

// EndSession forgets the user's verdict on sign-out. The next operation
// probes again.
func (r *Router) EndSession(userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	r.detector.Reset(userID)
	r.logger.Info("session ended", "user_id", userID)
	return nil
}

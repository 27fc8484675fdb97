// Package availability decides, once per signed-in session, whether the
// remote backend can hold the user's records.
//
// A session moves Uninitialized -> Probing -> Available | Unavailable. The
// verdict is kept until Retry or Reset; nothing re-probes on a timer.
package availability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/metrics"
	"github.com/vbonduro/kitchzone/internal/remote"
)

// ErrNoUser is returned when a probe is requested without a signed-in user.
var ErrNoUser = errors.New("no authenticated user")

type State int

const (
	Uninitialized State = iota
	Probing
	Available
	Unavailable
)

func (s State) String() string {
	switch s {
	case Probing:
		return "probing"
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "uninitialized"
	}
}

// Verdict is the outcome of the most recent probe for a session.
type Verdict struct {
	State     State
	Kind      remote.ErrorKind
	Err       error
	CheckedAt time.Time
}

func (v Verdict) Available() bool { return v.State == Available }

// Unavailable reports whether a failure of the given kind means the backend
// is missing, unprovisioned or unreachable. Any other failure is taken as a
// transient problem with a backend that does exist.
func Unavailable(kind remote.ErrorKind) bool {
	switch kind {
	case remote.KindNotFound,
		remote.KindRelationMissing,
		remote.KindNetwork,
		remote.KindSQLExecution,
		remote.KindBadRequest,
		remote.KindMissingResource:
		return true
	case remote.KindUnauthenticated, remote.KindOther:
		return false
	}
	return false
}

const defaultProbeTimeout = 5 * time.Second

type Detector struct {
	images  remote.Records[domain.Image]
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]Verdict
}

// New returns a detector that probes images. A zero timeout uses five
// seconds.
func New(images remote.Records[domain.Image], timeout time.Duration, logger *slog.Logger) *Detector {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Detector{
		images:   images,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
		sessions: make(map[string]Verdict),
	}
}

// Current returns the session's verdict without probing.
func (d *Detector) Current(userID string) Verdict {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[userID]
}

// Ensure returns the cached verdict, probing first when the session has none.
// Callers that arrive while a probe is running wait for it. ctx only bounds
// the wait: the probe itself finishes even if every waiter gives up.
func (d *Detector) Ensure(ctx context.Context, userID string) (Verdict, error) {
	if userID == "" {
		return Verdict{}, ErrNoUser
	}
	if v := d.Current(userID); v.State == Available || v.State == Unavailable {
		return v, nil
	}
	return d.probe(ctx, userID)
}

// Retry probes again after an Unavailable verdict. An Available session is
// left alone.
func (d *Detector) Retry(ctx context.Context, userID string) (Verdict, error) {
	if userID == "" {
		return Verdict{}, ErrNoUser
	}
	if v := d.Current(userID); v.State == Available {
		return v, nil
	}
	return d.probe(ctx, userID)
}

// Reset forgets the session, e.g. on sign-out.
func (d *Detector) Reset(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, userID)
}

func (d *Detector) probe(ctx context.Context, userID string) (Verdict, error) {
	probeCtx := context.WithoutCancel(ctx)
	ch := d.group.DoChan(userID, func() (any, error) {
		d.set(userID, Verdict{State: Probing})
		v := d.run(probeCtx, userID)
		d.set(userID, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return Verdict{State: Probing}, ctx.Err()
	case res := <-ch:
		return res.Val.(Verdict), nil
	}
}

func (d *Detector) run(ctx context.Context, userID string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.images.List(ctx, remote.Query{
		Filter: map[string]string{remote.FieldUserID: userID},
		Limit:  1,
	})
	v := Verdict{State: Available, CheckedAt: d.now()}
	if err != nil {
		v.Kind = remote.KindOf(err)
		v.Err = err
		if Unavailable(v.Kind) {
			v.State = Unavailable
		}
	}

	metrics.AvailabilityProbes.WithLabelValues(v.State.String()).Inc()
	switch {
	case v.State == Unavailable:
		d.logger.Warn("remote backend unavailable, using local store",
			"user_id", userID, "kind", v.Kind.String(), "error", err)
	case err != nil:
		d.logger.Warn("availability probe failed, assuming remote backend exists",
			"user_id", userID, "kind", v.Kind.String(), "error", err)
	default:
		d.logger.Info("remote backend available", "user_id", userID)
	}
	return v
}

func (d *Detector) set(userID string, v Verdict) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[userID] = v
}

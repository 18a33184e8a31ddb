// Package syncer reconciles the device-resident snapshot with the remote
// one. Local is always authoritative for reads; pushes replace the remote
// wholesale, and a non-empty local is never discarded for an empty remote.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/localstore"
)

const (
	defaultPushDelay = 750 * time.Millisecond
	defaultAuthTTL   = 30 * time.Second
)

// authCache remembers the last auth probe so a burst of mutations does not
// cost one network round trip each.
type authCache struct {
	value     bool
	fetchedAt time.Time
}

type Reconciler struct {
	store  *localstore.Store
	client Client
	logger internal.Logger

	pushDelay time.Duration
	authTTL   time.Duration

	kick      chan struct{}
	shutdown  chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	auth authCache
}

func New(store *localstore.Store, client Client, logger internal.Logger) *Reconciler {
	return NewWithTimings(store, client, logger, defaultPushDelay, defaultAuthTTL)
}

// NewWithTimings exists so tests can shrink the debounce window and the
// auth cache TTL.
func NewWithTimings(store *localstore.Store, client Client, logger internal.Logger, pushDelay, authTTL time.Duration) *Reconciler {
	if logger == nil {
		logger = internal.NopLogger{}
	}
	r := &Reconciler{
		store:     store,
		client:    client,
		logger:    logger,
		pushDelay: pushDelay,
		authTTL:   authTTL,
		kick:      make(chan struct{}, 1),
		shutdown:  make(chan struct{}),
	}
	store.SetMutationHook(r.NotifyMutation)
	go r.pushWorker()
	return r
}

// pushWorker coalesces mutation bursts into a single push. A new kick
// resets the pending timer, so at most one push is outstanding and the
// latest one wins.
func (r *Reconciler) pushWorker() {
	timer := time.NewTimer(r.pushDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-r.kick:
			timer.Reset(r.pushDelay)
		case <-timer.C:
			r.pushIfAuthenticated(context.Background())
		case <-r.shutdown:
			return
		}
	}
}

// NotifyMutation schedules a debounced push. It is installed as the local
// store's mutation hook and is safe to call from any goroutine.
func (r *Reconciler) NotifyMutation() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Reconciler) pushIfAuthenticated(ctx context.Context) {
	if !r.isAuthenticated(ctx) {
		r.logger.Debugf("syncer: skipping push, no active session")
		return
	}
	payload := r.store.Payload()
	if err := r.client.Push(ctx, &payload); err != nil {
		// Background pushes are best-effort; the next mutation retries.
		r.logger.Warnf("syncer: background push failed: %v", err)
	}
}

func (r *Reconciler) isAuthenticated(ctx context.Context) bool {
	r.mu.Lock()
	if !r.auth.fetchedAt.IsZero() && time.Since(r.auth.fetchedAt) < r.authTTL {
		v := r.auth.value
		r.mu.Unlock()
		return v
	}
	r.mu.Unlock()

	email, err := r.client.CurrentUser(ctx)
	authed := err == nil && email != ""

	r.mu.Lock()
	r.auth = authCache{value: authed, fetchedAt: time.Now()}
	r.mu.Unlock()
	return authed
}

// ResetAuthCache forces the next auth check onto the network, e.g. after a
// logout.
func (r *Reconciler) ResetAuthCache() {
	r.mu.Lock()
	r.auth = authCache{}
	r.mu.Unlock()
}

// HydrateOnStart pulls the remote snapshot and adopts it when the remote
// has anything to offer or the local store has nothing to lose. Failures
// are ignored; the app keeps running on local data.
func (r *Reconciler) HydrateOnStart(ctx context.Context) {
	payload, err := r.client.Pull(ctx)
	if err != nil {
		r.logger.Debugf("syncer: hydration pull failed: %v", err)
		return
	}
	remoteHasData := len(payload.Habits) > 0 || len(payload.Entries) > 0
	if remoteHasData || r.store.Empty() {
		r.store.Adopt(*payload)
	}
}

// SyncAfterAuth runs after an explicit login or registration: seed an empty
// remote from a non-empty local, then adopt the remote as the single source
// of truth.
func (r *Reconciler) SyncAfterAuth(ctx context.Context) error {
	remote, err := r.client.Pull(ctx)
	if err != nil {
		return err
	}

	remoteEmpty := len(remote.Habits) == 0 && len(remote.Entries) == 0
	if remoteEmpty && !r.store.Empty() {
		payload := r.store.Payload()
		if err := r.client.Push(ctx, &payload); err != nil {
			return err
		}
	}

	remote, err = r.client.Pull(ctx)
	if err != nil {
		return err
	}
	r.store.Adopt(*remote)

	r.mu.Lock()
	r.auth = authCache{value: true, fetchedAt: time.Now()}
	r.mu.Unlock()
	return nil
}

// ManualPull adopts the remote snapshot on user request. Errors keep their
// category so the UI can distinguish 401 from network trouble.
func (r *Reconciler) ManualPull(ctx context.Context) error {
	payload, err := r.client.Pull(ctx)
	if err != nil {
		return err
	}
	r.store.Adopt(*payload)
	return nil
}

// ManualPush replaces the remote snapshot with the local one on user
// request.
func (r *Reconciler) ManualPush(ctx context.Context) error {
	payload := r.store.Payload()
	return r.client.Push(ctx, &payload)
}

func (r *Reconciler) Close() {
	r.closeOnce.Do(func() { close(r.shutdown) })
}

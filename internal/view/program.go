package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"userdir/internal/core/domain"
)

// API is the remote user service as seen by the view.
type API interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Timer interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, f func()) Timer

type Option func(*Program)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Program) { p.logger = logger }
}

// WithAfterFunc replaces time.AfterFunc for notification timers.
func WithAfterFunc(afterFunc AfterFunc) Option {
	return func(p *Program) { p.afterFunc = afterFunc }
}

type envelope struct {
	msg     Msg
	applied chan struct{}
}

// Program owns a State and feeds it through Update on a single goroutine.
// Network effects run concurrently and report back with a message, so a slow
// request never blocks other actions.
type Program struct {
	api       API
	logger    *zap.Logger
	afterFunc AfterFunc

	inbox  chan envelope
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup

	started atomic.Bool

	mu       sync.RWMutex
	snapshot State

	timers map[int]Timer
}

func NewProgram(api API, opts ...Option) *Program {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Program{
		api:    api,
		logger: zap.NewNop(),
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		inbox:    make(chan envelope, 64),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		snapshot: NewState(),
		timers:   map[int]Timer{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start runs the loop until ctx is cancelled or Stop is called. It returns
// once the initial load has been issued, so State already reports Loading.
// Messages sent before Start are queued and applied in order.
func (p *Program) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	go p.loop()

	go func() {
		select {
		case <-ctx.Done():
			p.cancel()
		case <-p.done:
		}
	}()

	p.Dispatch(ctx, Init{})
}

// Stop ends the loop, cancels timers and waits for in-flight effects.
func (p *Program) Stop() {
	p.cancel()

	if p.started.Load() {
		<-p.done
	}

	p.wg.Wait()
}

// Send queues msg without waiting for it to be applied.
func (p *Program) Send(msg Msg) {
	select {
	case p.inbox <- envelope{msg: msg}:
	case <-p.ctx.Done():
	}
}

// Dispatch queues msg and returns once Update has applied it. Effects it
// started may still be running.
func (p *Program) Dispatch(ctx context.Context, msg Msg) error {
	env := envelope{msg: msg, applied: make(chan struct{})}

	select {
	case p.inbox <- env:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}

	select {
	case <-env.applied:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// State returns a copy of the current state.
func (p *Program) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.snapshot.clone()
}

func (p *Program) loop() {
	defer close(p.done)

	state := NewState()

	for {
		select {
		case <-p.ctx.Done():
			for id, t := range p.timers {
				t.Stop()
				delete(p.timers, id)
			}
			return

		case env := <-p.inbox:
			if m, ok := env.msg.(DismissNotification); ok {
				delete(p.timers, m.ID)
			}

			var effects []Effect
			state, effects = Update(state, env.msg)

			p.mu.Lock()
			p.snapshot = state
			p.mu.Unlock()

			for _, effect := range effects {
				p.run(effect)
			}

			if env.applied != nil {
				close(env.applied)
			}
		}
	}
}

func (p *Program) run(effect Effect) {
	switch e := effect.(type) {
	case FetchUsers:
		p.async(func(ctx context.Context) Msg {
			users, err := p.api.ListUsers(ctx)
			if err != nil {
				return UsersLoadFailed{Err: err}
			}
			return UsersLoaded{Users: users}
		})

	case CreateUser:
		p.async(func(ctx context.Context) Msg {
			user, err := p.api.CreateUser(ctx, e.User)
			if err != nil {
				return SaveFailed{Err: err}
			}
			return UserSaved{User: user}
		})

	case UpdateUser:
		p.async(func(ctx context.Context) Msg {
			user, err := p.api.UpdateUser(ctx, e.User)
			if err != nil {
				return SaveFailed{Err: err}
			}
			return UserSaved{User: user, Updated: true}
		})

	case DeleteUser:
		p.async(func(ctx context.Context) Msg {
			if err := p.api.DeleteUser(ctx, e.ID); err != nil {
				return DeleteFailed{Err: err}
			}
			return UserDeleted{ID: e.ID}
		})

	case ScheduleDismiss:
		id := e.ID
		p.timers[id] = p.afterFunc(e.After, func() {
			p.Send(DismissNotification{ID: id})
		})

	case CancelDismiss:
		if t, ok := p.timers[e.ID]; ok {
			t.Stop()
			delete(p.timers, e.ID)
		}

	case LogError:
		p.logger.Error(e.Message, zap.Error(e.Err))
	}
}

func (p *Program) async(call func(ctx context.Context) Msg) {
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		p.Send(call(p.ctx))
	}()
}

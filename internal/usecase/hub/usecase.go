package hub

import (
	"context"
	"sync"

	"github.com/kiryu-dev/tic-tac-toe-machine/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-machine/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultEventQueueSize       = 16
	defaultSubscriberBufferSize = 4
)

var errAlreadyRunning = errors.New("hub is already running")

type useCase struct {
	machine     domain.GameMachine
	events      chan domain.Event
	done        chan struct{}
	current     domain.StateUpdate
	subscribers map[uint64]chan domain.StateUpdate
	subBufSize  int
	seq         *atomic.Uint64
	subID       *atomic.Uint64
	clients     *atomic.Int64
	running     *atomic.Bool
	mu          *sync.RWMutex
	logger      *zap.Logger
}

type Option func(u *useCase)

func WithEventQueueSize(size int) Option {
	return func(u *useCase) {
		if size > 0 {
			u.events = make(chan domain.Event, size)
		}
	}
}

func WithSubscriberBufferSize(size int) Option {
	return func(u *useCase) {
		if size > 0 {
			u.subBufSize = size
		}
	}
}

func New(machine domain.GameMachine, logger *zap.Logger, opts ...Option) *useCase {
	u := &useCase{
		machine: machine,
		events:  make(chan domain.Event, defaultEventQueueSize),
		done:    make(chan struct{}),
		current: domain.StateUpdate{
			State: machine.Initial(),
		},
		subscribers: make(map[uint64]chan domain.StateUpdate),
		subBufSize:  defaultSubscriberBufferSize,
		seq:         atomic.NewUint64(0),
		subID:       atomic.NewUint64(0),
		clients:     atomic.NewInt64(0),
		running:     atomic.NewBool(false),
		mu:          &sync.RWMutex{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run consumes events one at a time until ctx is done. Every event is fully
// applied and published before the next one is taken.
func (u *useCase) Run(ctx context.Context) error {
	if !u.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}
	defer close(u.done)
	u.logger.Info("hub started")
	for {
		select {
		case <-ctx.Done():
			u.logger.Info("hub stopped")
			return nil
		case event := <-u.events:
			u.apply(event)
		}
	}
}

func (u *useCase) Send(ctx context.Context, event domain.Event) error {
	select {
	case <-u.done:
		return domain.ErrHubStopped
	default:
	}
	select {
	case u.events <- event:
		return nil
	case <-u.done:
		return domain.ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *useCase) apply(event domain.Event) {
	u.mu.Lock()
	defer u.mu.Unlock()
	next, err := u.machine.Apply(u.current.State, event)
	if err != nil {
		u.logger.Debug("event ignored", zap.Error(err))
		return
	}
	u.current = domain.StateUpdate{
		Seq:   u.seq.Inc(),
		State: next,
	}
	u.logger.Info("state changed",
		zap.Uint64("seq", u.current.Seq),
		zap.String("state", string(next.Value)),
		zap.Uint8("moves", next.Context.Moves))
	for _, ch := range u.subscribers {
		offer(ch, u.current)
	}
}

// offer never blocks: when the buffer is full the oldest pending update is
// dropped, so a subscriber always ends up holding the latest state.
func offer(ch chan domain.StateUpdate, update domain.StateUpdate) {
	for {
		select {
		case ch <- update:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe returns a channel primed with the current state. The returned
// function unsubscribes and closes the channel; it is safe to call twice.
func (u *useCase) Subscribe() (<-chan domain.StateUpdate, func()) {
	ch := make(chan domain.StateUpdate, u.subBufSize)
	id := u.subID.Inc()
	u.mu.Lock()
	u.subscribers[id] = ch
	offer(ch, u.current)
	u.mu.Unlock()
	once := &sync.Once{}
	return ch, func() {
		once.Do(func() {
			u.mu.Lock()
			delete(u.subscribers, id)
			close(ch)
			u.mu.Unlock()
		})
	}
}

func (u *useCase) State() domain.StateUpdate {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.current
}

func (u *useCase) Clients() int64 {
	return u.clients.Load()
}

// Handle serves one presentation connection until it goes away.
func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	u.clients.Inc()
	defer u.clients.Dec()
	logger := u.logger.With(zap.String("client", client.Uuid()))
	logger.Info("client joined")
	updates, unsubscribe := u.Subscribe()
	defer unsubscribe()
	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.Go(func() error {
		defer func() {
			_ = client.Close()
		}()
		return writeUpdates(ctx, client, updates)
	})
	errGroup.Go(func() error {
		return u.readEvents(ctx, client, logger)
	})
	err := errGroup.Wait()
	switch {
	case errors.Is(err, domain.ErrConnectionClosed), errors.Is(err, context.Canceled):
		logger.Info("client left")
		return nil
	case err != nil:
		return errors.WithMessagef(err, "client '%s'", client.Uuid())
	}
	return nil
}

func writeUpdates(ctx context.Context, client domain.Client, updates <-chan domain.StateUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-updates:
			if !ok {
				return domain.ErrConnectionClosed
			}
			err := client.WriteMessage(domain.Message{
				Type:    domain.StateMessage,
				Payload: v,
			})
			if err != nil {
				return errors.WithMessage(err, "send state to client")
			}
		}
	}
}

func (u *useCase) readEvents(ctx context.Context, client domain.Client, logger *zap.Logger) error {
	for {
		msg, err := client.ReadMessage()
		switch {
		case errors.Is(err, domain.ErrMalformedMessage), errors.Is(err, domain.ErrEmptyMessage):
			logger.Warn("skip message", zap.Error(err))
			continue
		case err != nil:
			return errors.WithMessage(err, "read message from client")
		}
		event, err := toEvent(msg)
		if err != nil {
			logger.Warn("skip message", zap.Error(err))
			continue
		}
		if err := u.Send(ctx, event); err != nil {
			return errors.WithMessage(err, "send event to hub")
		}
	}
}

func toEvent(msg domain.Message) (domain.Event, error) {
	switch msg.Type {
	case domain.PlayMessage:
		v, err := utils.UnmarshalJson[domain.PlayPayload](msg.Payload)
		if err != nil {
			return nil, errors.WithMessagef(domain.ErrMalformedMessage, "unmarshal json to 'PlayPayload' type: %v", err)
		}
		if v.Cell == nil {
			return nil, errors.WithMessage(domain.ErrMalformedMessage, "missing cell")
		}
		return domain.PlayEvent{Cell: *v.Cell, Player: v.Player}, nil
	case domain.ResetMessage:
		return domain.ResetEvent{}, nil
	default:
		return nil, errors.WithMessagef(domain.ErrUnexpectedMessage, "type %d", msg.Type)
	}
}

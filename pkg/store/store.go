package store

import (
	"context"
	"sync"
	"time"

	"ftxwidget/pkg/logger"
	"ftxwidget/pkg/widget"

	"github.com/sirupsen/logrus"
)

const actionBuffer = 64

// Effector runs the asynchronous side of an action.
type Effector interface {
	HasEffect(action widget.Action) bool
	Handle(ctx context.Context, action widget.Action, state *widget.State, dispatch widget.Dispatch)
}

// Recorder observes every applied action, e.g. to journal it.
type Recorder interface {
	Record(ctx context.Context, action widget.Action, state *widget.State) error
}

// Store owns the widget state. Actions are reduced one at a time on a
// single goroutine; effects run concurrently and feed results back
// through Dispatch.
type Store struct {
	reducer   widget.Reducer
	effects   Effector
	log       *logrus.Entry
	recorders []Recorder

	state       *widget.State
	subscribers []Subscriber
	mu          sync.RWMutex

	actions  chan widget.Action
	inFlight sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a store holding the initial widget state. effects may be nil.
func New(reducer widget.Reducer, effects Effector, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logger.Discard())
	}
	return &Store{
		reducer: reducer,
		effects: effects,
		log:     log,
		state:   widget.NewState(),
		actions: make(chan widget.Action, actionBuffer),
		done:    make(chan struct{}),
	}
}

// AddRecorder registers r. It must be called before Start.
func (s *Store) AddRecorder(r Recorder) {
	s.recorders = append(s.recorders, r)
}

// Start begins processing dispatched actions.
func (s *Store) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	go s.loop()
}

// Stop halts the action loop and waits for in-flight effects to return.
// Effects still running see a cancelled context and their results are
// dropped.
func (s *Store) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.inFlight.Wait()
}

// Dispatch queues an action. It is safe to call from any goroutine and
// never blocks once the store has stopped.
func (s *Store) Dispatch(action widget.Action) {
	if action == nil {
		return
	}
	select {
	case s.actions <- action:
	case <-s.done:
		s.log.WithField("action", action.Type()).Debug("store stopped, dropping action")
	}
}

// State returns the current snapshot. Callers must not modify it.
func (s *Store) State() *widget.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (s *Store) Subscribe() Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(Subscriber, 100)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (s *Store) Unsubscribe(ch Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (s *Store) notify(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscribers {
		select {
		case sub <- event:
		default:
			s.log.WithField("event", event.Type).Debug("subscriber is slow, dropping event")
		}
	}
}

func (s *Store) loop() {
	defer close(s.done)
	for {
		select {
		case action := <-s.actions:
			s.apply(action)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Store) apply(action widget.Action) {
	prev := s.State()
	next := s.reducer.Reduce(prev, action)

	event := Event{Type: EventActionIgnored, Action: action.Type(), State: next}
	if next != prev {
		s.mu.Lock()
		s.state = next
		s.mu.Unlock()
		event.Type = EventStateChanged
	}
	s.log.WithFields(logrus.Fields{
		"action":  action.Type(),
		"changed": next != prev,
		"view":    next.CurrentView.String(),
	}).Debug("action applied")

	for _, r := range s.recorders {
		if err := r.Record(s.ctx, action, next); err != nil {
			s.log.WithError(err).WithField("action", action.Type()).Warn("failed to record action")
		}
	}
	s.notify(event)

	if s.effects == nil || !s.effects.HasEffect(action) {
		return
	}
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		s.effects.Handle(s.ctx, action, next, s.Dispatch)
	}()
}

// RunCountdown drives the quote countdown once per interval until ctx is
// done or the store stops. Expiry cancels the conversion it was counting.
func (s *Store) RunCountdown(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.runCountdown(ctx, ticker.C)
}

func (s *Store) runCountdown(ctx context.Context, ticks <-chan time.Time) {
	var countdown widget.Countdown
	for {
		select {
		case <-ticks:
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}

		state := s.State()
		var expired bool
		countdown, expired = countdown.Tick(state)
		if !countdown.Armed() && !expired {
			continue
		}
		s.notify(Event{Type: EventCountdown, State: state, Remaining: countdown.Remaining()})
		if expired {
			s.log.WithField("epoch", state.ConversionInProgress.Epoch).Info("quote expired")
			s.Dispatch(widget.CancelConversion{Epoch: state.ConversionInProgress.Epoch, Expired: true})
		}
	}
}

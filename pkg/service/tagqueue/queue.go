package tagqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/service/tagger"
	"github.com/memvault/memvault/pkg/utils/logging"
)

const (
	defaultMaxRetries = 3
	defaultPause      = 2 * time.Second
)

// TagsReady is published when the generator produced suggestions for a
// queued meme. Suggestions are raw; subscribers are expected to run
// them through normalization before persisting.
type TagsReady struct {
	MemeID types.MemeID
	Tags   []*model.TagSuggestion
}

type Subscriber func(ctx context.Context, event TagsReady)

// Queue runs tag generation in the background, one meme at a time.
//
// Tasks are processed strictly one at a time with a pause between
// cycles so the vision API never sees concurrent requests from this
// process. A failed task is pushed back to the tail with its retry
// count incremented and dropped after maxRetries attempts.
type Queue struct {
	repo      interfaces.Repository
	generator interfaces.TagGenerator

	maxRetries int
	pause      time.Duration

	mu          sync.Mutex
	pending     deque
	inFlightID  types.MemeID
	subscribers []Subscriber
	listeners   []func()

	wakeCh chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

type Option func(*Queue)

func WithMaxRetries(n int) Option {
	return func(q *Queue) {
		q.maxRetries = n
	}
}

// WithPause overrides the delay between processing cycles.
func WithPause(d time.Duration) Option {
	return func(q *Queue) {
		q.pause = d
	}
}

func New(repo interfaces.Repository, generator interfaces.TagGenerator, opts ...Option) *Queue {
	q := &Queue{
		repo:       repo,
		generator:  generator,
		maxRetries: defaultMaxRetries,
		pause:      defaultPause,
		wakeCh:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Subscribe registers a handler for TagsReady events. Must be called
// before Start.
func (q *Queue) Subscribe(fn Subscriber) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subscribers = append(q.subscribers, fn)
}

// AddUpdateListener registers a callback fired once after each
// successful generation, after all subscribers ran.
func (q *Queue) AddUpdateListener(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// Enqueue adds a meme to the queue. A meme that is already pending or
// currently being processed is not added again.
func (q *Queue) Enqueue(ctx context.Context, id types.MemeID) {
	q.mu.Lock()
	if q.pending.Contains(id) || q.inFlightID == id {
		q.mu.Unlock()
		return
	}
	q.pending.PushTail(&task{memeID: id})
	q.mu.Unlock()

	logging.From(ctx).Debug("meme enqueued for tagging", "meme_id", id)
	q.wake()
}

// Len returns the number of tasks not yet completed, including the one
// currently in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.pending.Len()
	if q.inFlightID != "" {
		n++
	}
	return n
}

// Start begins the background processing loop. It does not block.
func (q *Queue) Start(ctx context.Context) error {
	logging.From(ctx).Info("tag queue starting",
		"max_retries", q.maxRetries,
		"pause", q.pause.String(),
	)
	go q.run(ctx)
	return nil
}

// Stop signals the loop to stop and waits for the in-flight task to
// finish.
func (q *Queue) Stop() {
	close(q.stopCh)
	<-q.doneCh
	logging.Default().Info("tag queue stopped")
}

func (q *Queue) wake() {
	select {
	case q.wakeCh <- struct{}{}:
	default:
	}
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.doneCh)

	for {
		t := q.takeHead()
		if t == nil {
			select {
			case <-q.wakeCh:
				continue
			case <-q.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}

		q.process(ctx, t)
		q.clearInFlight()

		select {
		case <-time.After(q.pause):
		case <-q.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// takeHead pops the next task and marks it in flight under one lock,
// so Enqueue never sees a meme as neither pending nor processing.
func (q *Queue) takeHead() *task {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.pending.PopHead()
	if t != nil {
		q.inFlightID = t.memeID
	}
	return t
}

func (q *Queue) clearInFlight() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlightID = ""
}

func (q *Queue) process(ctx context.Context, t *task) {
	logger := logging.From(ctx)

	meme, err := q.repo.Meme().Get(ctx, t.memeID)
	if err != nil {
		// Record deleted while queued. Nothing to retry.
		logger.Debug("skipping tag task for missing meme", "meme_id", t.memeID)
		return
	}

	suggestions, err := q.generator.Generate(ctx, meme.Location)
	if err != nil {
		if errors.Is(err, tagger.ErrDisabled) || errors.Is(err, tagger.ErrNoCredential) {
			logger.Debug("tag generation unavailable, dropping task",
				"meme_id", t.memeID, "reason", err)
			return
		}
		q.retry(ctx, t, err)
		return
	}

	q.publish(ctx, TagsReady{MemeID: t.memeID, Tags: suggestions})
}

func (q *Queue) retry(ctx context.Context, t *task, cause error) {
	logger := logging.From(ctx)
	if t.retryCount+1 >= q.maxRetries {
		logger.Warn("tag generation failed, giving up",
			"meme_id", t.memeID,
			"attempts", t.retryCount+1,
			"error", cause,
		)
		return
	}

	q.mu.Lock()
	q.pending.PushTail(&task{memeID: t.memeID, retryCount: t.retryCount + 1})
	q.mu.Unlock()

	logger.Warn("tag generation failed, requeued",
		"meme_id", t.memeID,
		"retry_count", t.retryCount+1,
		"error", cause,
	)
	q.wake()
}

func (q *Queue) publish(ctx context.Context, event TagsReady) {
	q.mu.Lock()
	subscribers := make([]Subscriber, len(q.subscribers))
	copy(subscribers, q.subscribers)
	listeners := make([]func(), len(q.listeners))
	copy(listeners, q.listeners)
	q.mu.Unlock()

	for _, fn := range subscribers {
		fn(ctx, event)
	}
	for _, fn := range listeners {
		fn()
	}
}

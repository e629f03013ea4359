package tagqueue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/memvault/memvault/pkg/domain/model"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/repository/memory"
	"github.com/memvault/memvault/pkg/service/tagger"
	"github.com/memvault/memvault/pkg/service/tagqueue"
)

// scriptedGenerator returns the scripted results in order and repeats
// the last one once the script is exhausted.
type scriptedGenerator struct {
	mu      sync.Mutex
	script  []error
	calls   int
	tags    []*model.TagSuggestion
	calledC chan struct{}
}

func newScriptedGenerator(script ...error) *scriptedGenerator {
	return &scriptedGenerator{
		script: script,
		tags: []*model.TagSuggestion{
			{Tag: "无语", Confidence: 0.9, Type: types.SuggestionTypeEmotion},
		},
		calledC: make(chan struct{}, 16),
	}
}

func (x *scriptedGenerator) Generate(ctx context.Context, location string) ([]*model.TagSuggestion, error) {
	x.mu.Lock()
	idx := x.calls
	x.calls++
	x.mu.Unlock()
	x.calledC <- struct{}{}

	if idx >= len(x.script) {
		idx = len(x.script) - 1
	}
	if err := x.script[idx]; err != nil {
		return nil, err
	}
	return x.tags, nil
}

func (x *scriptedGenerator) Calls() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.calls
}

func putMeme(t *testing.T, repo *memory.Client) *model.Meme {
	t.Helper()
	meme := model.NewMeme("memes/sample.jpg", 128)
	gt.NoError(t, repo.Meme().Put(context.Background(), meme)).Required()
	return meme
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestQueueSuccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	meme := putMeme(t, repo)
	gen := newScriptedGenerator(nil)

	q := tagqueue.New(repo, gen, tagqueue.WithPause(time.Millisecond))

	var mu sync.Mutex
	var events []tagqueue.TagsReady
	var updates int
	q.Subscribe(func(ctx context.Context, ev tagqueue.TagsReady) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	q.AddUpdateListener(func() {
		mu.Lock()
		defer mu.Unlock()
		updates++
	})

	gt.NoError(t, q.Start(ctx))
	defer q.Stop()

	q.Enqueue(ctx, meme.ID)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1 && updates == 1
	})

	mu.Lock()
	defer mu.Unlock()
	gt.Value(t, events[0].MemeID).Equal(meme.ID)
	gt.A(t, events[0].Tags).Length(1)
	gt.Number(t, gen.Calls()).Equal(1)
	gt.Number(t, q.Len()).Equal(0)
}

func TestQueueRetryThenSuccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	meme := putMeme(t, repo)
	boom := errors.New("vision API unavailable")
	gen := newScriptedGenerator(boom, boom, nil)

	q := tagqueue.New(repo, gen,
		tagqueue.WithPause(time.Millisecond),
		tagqueue.WithMaxRetries(3),
	)

	var mu sync.Mutex
	var events int
	q.Subscribe(func(ctx context.Context, ev tagqueue.TagsReady) {
		mu.Lock()
		defer mu.Unlock()
		events++
	})

	gt.NoError(t, q.Start(ctx))
	defer q.Stop()

	q.Enqueue(ctx, meme.ID)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return events == 1
	})
	gt.Number(t, gen.Calls()).Equal(3)
}

func TestQueueDropsAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	meme := putMeme(t, repo)
	boom := errors.New("vision API unavailable")
	gen := newScriptedGenerator(boom)

	q := tagqueue.New(repo, gen,
		tagqueue.WithPause(time.Millisecond),
		tagqueue.WithMaxRetries(3),
	)

	var mu sync.Mutex
	var events int
	q.Subscribe(func(ctx context.Context, ev tagqueue.TagsReady) {
		mu.Lock()
		defer mu.Unlock()
		events++
	})

	gt.NoError(t, q.Start(ctx))
	defer q.Stop()

	q.Enqueue(ctx, meme.ID)

	waitFor(t, func() bool {
		return gen.Calls() == 3 && q.Len() == 0
	})

	// Give the loop a few more cycles to prove the task never
	// reappears.
	time.Sleep(50 * time.Millisecond)
	gt.Number(t, gen.Calls()).Equal(3)
	mu.Lock()
	defer mu.Unlock()
	gt.Number(t, events).Equal(0)
}

func TestQueueEnqueueIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	meme := putMeme(t, repo)
	gen := newScriptedGenerator(nil)

	q := tagqueue.New(repo, gen, tagqueue.WithPause(time.Millisecond))

	q.Enqueue(ctx, meme.ID)
	q.Enqueue(ctx, meme.ID)
	q.Enqueue(ctx, meme.ID)
	gt.Number(t, q.Len()).Equal(1)
}

func TestQueueSkipsMissingMeme(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gen := newScriptedGenerator(nil)

	q := tagqueue.New(repo, gen, tagqueue.WithPause(time.Millisecond))

	gt.NoError(t, q.Start(ctx))
	defer q.Stop()

	q.Enqueue(ctx, types.NewMemeID())

	waitFor(t, func() bool {
		return q.Len() == 0
	})
	gt.Number(t, gen.Calls()).Equal(0)
}

func TestQueueDropsWhenTaggingDisabled(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	meme := putMeme(t, repo)
	gen := newScriptedGenerator(tagger.ErrDisabled)

	q := tagqueue.New(repo, gen, tagqueue.WithPause(time.Millisecond))

	gt.NoError(t, q.Start(ctx))
	defer q.Stop()

	q.Enqueue(ctx, meme.ID)

	<-gen.calledC
	waitFor(t, func() bool {
		return q.Len() == 0
	})
	gt.Number(t, gen.Calls()).Equal(1)
}

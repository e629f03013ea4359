package tagger_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memvault/memvault/pkg/domain/interfaces"
	"github.com/memvault/memvault/pkg/domain/types"
	"github.com/memvault/memvault/pkg/service/tagger"
)

type memStore struct {
	objects map[string][]byte
}

func (x *memStore) Read(ctx context.Context, location string) ([]byte, error) {
	data, ok := x.objects[location]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (x *memStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	x.objects[name] = data
	return name, nil
}

func (x *memStore) Remove(ctx context.Context, location string) error {
	delete(x.objects, location)
	return nil
}

var _ interfaces.ObjectStore = (*memStore)(nil)

func newStore() *memStore {
	return &memStore{objects: map[string][]byte{
		"meme.jpg": []byte("fake-image-bytes"),
	}}
}

func chatReply(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestGenerate(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(chatReply(`[
			{"tag": "无语", "confidence": 0.95, "type": "emotion"},
			{"tag": "熊猫头", "confidence": 0.9, "type": "subject"}
		]`)))
	}))
	defer srv.Close()

	client := tagger.New(newStore(), tagger.Config{
		Enabled: true,
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, tagger.WithMinInterval(0))

	suggestions, err := client.Generate(context.Background(), "meme.jpg")
	gt.NoError(t, err).Required()
	gt.A(t, suggestions).Length(2)
	gt.Value(t, suggestions[0].Tag).Equal("无语")
	gt.Value(t, suggestions[0].Type).Equal(types.SuggestionTypeEmotion)
	gt.Value(t, suggestions[1].Tag).Equal("熊猫头")
	gt.Value(t, gotAuth).Equal("Bearer test-key")
	gt.S(t, string(gotBody)).Contains("image_url")
	gt.S(t, string(gotBody)).Contains("data:image/jpeg;base64,")
}

func TestGenerateDisabled(t *testing.T) {
	client := tagger.New(newStore(), tagger.Config{Enabled: false, APIKey: "k"})
	_, err := client.Generate(context.Background(), "meme.jpg")
	gt.B(t, errors.Is(err, tagger.ErrDisabled)).True()
}

func TestGenerateNoCredential(t *testing.T) {
	client := tagger.New(newStore(), tagger.Config{Enabled: true})
	_, err := client.Generate(context.Background(), "meme.jpg")
	gt.B(t, errors.Is(err, tagger.ErrNoCredential)).True()
}

func TestGenerateFiltersInvalidSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Mixes prose, an over-long tag, a bad type and a bad
		// confidence around one valid suggestion.
		w.Write([]byte(chatReply("Here are the tags:\n" + `[
			{"tag": "这个标签实在太长了", "confidence": 0.9, "type": "emotion"},
			{"tag": "狗头", "confidence": 1.5, "type": "subject"},
			{"tag": "猫咪", "confidence": 0.8, "type": "animal"},
			{"tag": "开心", "confidence": 0.85, "type": "emotion"}
		]`)))
	}))
	defer srv.Close()

	client := tagger.New(newStore(), tagger.Config{
		Enabled: true,
		APIKey:  "k",
		BaseURL: srv.URL,
	}, tagger.WithMinInterval(0))

	suggestions, err := client.Generate(context.Background(), "meme.jpg")
	gt.NoError(t, err).Required()
	gt.A(t, suggestions).Length(1)
	gt.Value(t, suggestions[0].Tag).Equal("开心")
}

func TestGenerateCapsSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`[
			{"tag": "一", "confidence": 0.9, "type": "emotion"},
			{"tag": "二", "confidence": 0.9, "type": "emotion"},
			{"tag": "三", "confidence": 0.9, "type": "emotion"}
		]`)))
	}))
	defer srv.Close()

	client := tagger.New(newStore(), tagger.Config{
		Enabled: true,
		APIKey:  "k",
		BaseURL: srv.URL,
		MaxTags: 2,
	}, tagger.WithMinInterval(0))

	suggestions, err := client.Generate(context.Background(), "meme.jpg")
	gt.NoError(t, err).Required()
	gt.A(t, suggestions).Length(2)
}

func TestGenerateRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatReply(`[{"tag": "无语", "confidence": 0.9, "type": "emotion"}]`)))
	}))
	defer srv.Close()

	client := tagger.New(newStore(), tagger.Config{
		Enabled:    true,
		APIKey:     "k",
		BaseURL:    srv.URL,
		MaxRetries: 2,
	}, tagger.WithMinInterval(0))

	suggestions, err := client.Generate(context.Background(), "meme.jpg")
	gt.NoError(t, err).Required()
	gt.A(t, suggestions).Length(1)
	gt.Number(t, calls.Load()).Equal(3)
}

func TestGenerateNoValidTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("I could not identify any tags in this image.")))
	}))
	defer srv.Close()

	client := tagger.New(newStore(), tagger.Config{
		Enabled:    true,
		APIKey:     "k",
		BaseURL:    srv.URL,
		MaxRetries: 0,
	}, tagger.WithMinInterval(0))

	_, err := client.Generate(context.Background(), "meme.jpg")
	gt.B(t, errors.Is(err, tagger.ErrNoValidTags)).True()
}

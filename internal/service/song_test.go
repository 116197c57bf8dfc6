package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"peerform/internal/model"
)

// =============================================================================
// SONG TESTS
// =============================================================================

func TestSongService_Search(t *testing.T) {
	t.Run("empty query skips the catalogue", func(t *testing.T) {
		searcher := &mockSearcher{}
		svc := NewSongService(&mockSongRepository{}, searcher, &mockURLResolver{})

		_, err := svc.Search(context.Background(), "  ")
		if !errors.Is(err, model.ErrEmptySearchQuery) {
			t.Errorf("Search() error = %v, want ErrEmptySearchQuery", err)
		}
		if searcher.calls != 0 {
			t.Errorf("searcher called %d times", searcher.calls)
		}
	})

	t.Run("upstream failure is wrapped", func(t *testing.T) {
		searcher := &mockSearcher{err: errors.New("503")}
		svc := NewSongService(&mockSongRepository{}, searcher, &mockURLResolver{})

		_, err := svc.Search(context.Background(), "eye of the tiger")
		if !errors.Is(err, model.ErrMusicSearchFailed) {
			t.Errorf("Search() error = %v, want ErrMusicSearchFailed", err)
		}
	})
}

func TestSongService_Add_Validation(t *testing.T) {
	svc := NewSongService(&mockSongRepository{}, &mockSearcher{}, &mockURLResolver{})

	if _, err := svc.Add(context.Background(), uuid.New(), model.AddSongRequest{Artist: "Survivor"}); !errors.Is(err, model.ErrSongTitleRequired) {
		t.Errorf("missing title: error = %v", err)
	}
	if _, err := svc.Add(context.Background(), uuid.New(), model.AddSongRequest{Title: "Eye of the Tiger", Artist: " "}); !errors.Is(err, model.ErrSongArtistRequired) {
		t.Errorf("blank artist: error = %v", err)
	}
}

func TestSongService_Feed_ClampsLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, model.DefaultSongFeedLimit},
		{10, 10},
		{model.DefaultSongFeedLimit + 1, model.DefaultSongFeedLimit},
	}

	for _, tt := range tests {
		repo := &mockSongRepository{}
		svc := NewSongService(repo, &mockSearcher{}, &mockURLResolver{})

		if _, err := svc.Feed(context.Background(), tt.in); err != nil {
			t.Fatalf("Feed(%d) error = %v", tt.in, err)
		}
		if repo.listLimit != tt.want {
			t.Errorf("Feed(%d) limit = %d, want %d", tt.in, repo.listLimit, tt.want)
		}
	}
}

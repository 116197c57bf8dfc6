package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"peerform/internal/model"
	"peerform/internal/music"
	"peerform/internal/repository"
	"peerform/internal/storage"
)

type SongService struct {
	songRepo repository.SongRepository
	searcher music.Searcher
	urls     storage.URLResolver
}

func NewSongService(songRepo repository.SongRepository, searcher music.Searcher, urls storage.URLResolver) *SongService {
	return &SongService{songRepo: songRepo, searcher: searcher, urls: urls}
}

// Search looks tracks up in the music catalogue.
func (s *SongService) Search(ctx context.Context, query string) ([]model.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptySearchQuery
	}

	tracks, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMusicSearchFailed, err)
	}
	return tracks, nil
}

// Add shares a track to the song feed.
func (s *SongService) Add(ctx context.Context, userID uuid.UUID, req model.AddSongRequest) (*model.Song, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Title == "" {
		return nil, model.ErrSongTitleRequired
	}
	if req.Artist == "" {
		return nil, model.ErrSongArtistRequired
	}

	song, err := s.songRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	log.Printf("[SongService] User %s shared song %d: %q by %q", userID, song.ID, song.Title, song.Artist)
	return song, nil
}

// Feed returns the most recently shared songs.
func (s *SongService) Feed(ctx context.Context, limit int) ([]model.Song, error) {
	if limit <= 0 || limit > model.DefaultSongFeedLimit {
		limit = model.DefaultSongFeedLimit
	}

	songs, err := s.songRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range songs {
		songs[i].Author.AvatarURL = resolveAvatar(ctx, s.urls, songs[i].Author.AvatarPath)
	}
	return songs, nil
}

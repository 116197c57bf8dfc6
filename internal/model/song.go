package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Track is a search hit from the music catalogue.
type Track struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	AlbumArtURL string `json:"album_art_url"`
}

// Song is a track a user shared to the song feed.
type Song struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Artist    string    `db:"artist" json:"artist"`
	CoverURL  string    `db:"cover_url" json:"cover_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author ProfileSummary `db:"author" json:"author"`
}

type AddSongRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"cover_url"`
}

const (
	DefaultSongFeedLimit = 50
)

var (
	ErrSongTitleRequired  = errors.New("song title is required")
	ErrSongArtistRequired = errors.New("song artist is required")
	ErrMusicSearchFailed  = errors.New("music search failed")
)

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Content is a piece of study material the user brought in: pasted notes, an
// uploaded file, or a YouTube link. Its extracted text feeds generation and
// the topic keywords logged on events.
type Content struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          string          `json:"type"`   // "notes" | "file" | "youtube"
	Status        string          `json:"status"` // "pending" | "ready" | "failed"
	Title         string          `json:"title"`
	SourceURL     *string         `json:"source_url,omitempty"`
	FilePath      *string         `json:"file_path,omitempty"`
	ExtractedText *string         `json:"extracted_text,omitempty"`
	MetadataJSON  json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
}

type AddNotesRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type AddYouTubeRequest struct {
	URL string `json:"url"`
}

type YouTubeMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelName  string `json:"channel_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	DurationSec  int    `json:"duration_sec"`
}

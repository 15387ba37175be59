// package services defines interface TitleSource for reading playlist titles from the YouTube Data API
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

const (
	DefaultBaseURL   = "https://www.googleapis.com/youtube/v3"
	DefaultPageSize  = 50
	DefaultPageDelay = 200 * time.Millisecond

	ClientREST   = "rest"
	ClientGoogle = "google"
)

// TitleSource yields the complete, ordered title list of a playlist.
type TitleSource interface {
	// FetchAll reads every page of the playlist collectionID and returns the titles in page order.
	//
	// Fails with [shared.ErrUpstreamAnomaly] on a duplicate page boundary, [shared.ErrTransport] on request or
	// status failures, and [shared.ErrParse] when a page cannot be decoded.
	FetchAll(ctx context.Context, collectionID, credentials string) (models.TitleSequence, error)
}

// SourceOpts configures [NewTitleSource].
type SourceOpts struct {
	Client      string // "rest" (default) or "google"
	BaseURL     string
	PageSize    int
	PageDelay   time.Duration
	AccessToken string // optional OAuth2 bearer token
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// NewTitleSource returns the [TitleSource] selected by opts.Client.
func NewTitleSource(opts SourceOpts) (TitleSource, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Client)) {
	case "", ClientREST:
		return NewPlaylistItemsService(opts), nil
	case ClientGoogle:
		return NewDataAPIService(opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown youtube client %q (expected %q or %q)",
			shared.ErrInvalidConfig, opts.Client, ClientREST, ClientGoogle)
	}
}

// checkPageBoundary rejects a page whose first title repeats the last title already collected.
func checkPageBoundary(collected models.TitleSequence, page []string) error {
	if len(collected) == 0 || len(page) == 0 {
		return nil
	}
	last := len(collected) - 1
	if collected[last] == page[0] {
		return fmt.Errorf("%w: title at index %d repeated at the start of the next page: %q",
			shared.ErrUpstreamAnomaly, last, page[0])
	}
	return nil
}

func validateRequest(collectionID, credentials, accessToken string) error {
	if strings.TrimSpace(collectionID) == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidConfig)
	}
	if strings.TrimSpace(credentials) == "" && accessToken == "" {
		return fmt.Errorf("%w: youtube API key is required", shared.ErrInvalidConfig)
	}
	return nil
}

func loggerOrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

func pageSizeOrDefault(n int) int {
	if n <= 0 || n > DefaultPageSize {
		return DefaultPageSize
	}
	return n
}

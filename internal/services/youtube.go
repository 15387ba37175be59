// YouTube Data API playlistItems [TitleSource] over plain HTTP
//
// Pages are requested with part=snippet and decoded into the item titles and the next page token.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// playlistItemsPage is the part of a playlistItems list response the backup reads.
type playlistItemsPage struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// apiError is the error envelope returned by Google APIs.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// PlaylistItemsService implements [TitleSource] against the playlistItems REST endpoint.
type PlaylistItemsService struct {
	baseURL     string
	pageSize    int
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *log.Logger
}

// NewPlaylistItemsService creates a REST title source. Pages are spaced at least opts.PageDelay apart.
//
// When opts.AccessToken is set, requests carry it as an OAuth2 bearer token.
func NewPlaylistItemsService(opts SourceOpts) *PlaylistItemsService {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	if opts.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken}))
	}

	return &PlaylistItemsService{
		baseURL:     baseURL,
		pageSize:    pageSizeOrDefault(opts.PageSize),
		accessToken: opts.AccessToken,
		httpClient:  client,
		limiter:     rate.NewLimiter(rate.Every(opts.PageDelay), 1),
		logger:      loggerOrDiscard(opts.Logger),
	}
}

// FetchAll folds every page of the playlist into one sequence, stopping at the first page without a next token.
func (s *PlaylistItemsService) FetchAll(ctx context.Context, collectionID, credentials string) (models.TitleSequence, error) {
	if err := validateRequest(collectionID, credentials, s.accessToken); err != nil {
		return nil, err
	}

	titles := models.TitleSequence{}
	token := ""
	for page := 1; ; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: waiting for page %d: %v", shared.ErrTransport, page, err)
		}

		items, next, err := s.fetchPage(ctx, collectionID, credentials, token)
		if err != nil {
			return nil, err
		}
		if err := checkPageBoundary(titles, items); err != nil {
			return nil, err
		}
		titles = append(titles, items...)
		s.logger.Debug("retrieved page", "page", page, "titles", len(titles))

		if next == "" {
			return titles, nil
		}
		if next == token {
			return nil, fmt.Errorf("%w: page token %q did not advance", shared.ErrUpstreamAnomaly, next)
		}
		token = next
	}
}

func (s *PlaylistItemsService) pageURL(collectionID, credentials, token string) string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(s.pageSize))
	params.Set("playlistId", collectionID)
	if credentials != "" {
		params.Set("key", credentials)
	}
	if token != "" {
		params.Set("pageToken", token)
	}
	return s.baseURL + "/playlistItems?" + params.Encode()
}

func (s *PlaylistItemsService) fetchPage(ctx context.Context, collectionID, credentials, token string) ([]string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL(collectionID, credentials, token), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, "", fmt.Errorf("%w: youtube API error (status %d): %s", shared.ErrTransport, resp.StatusCode, errResp.Error.Message)
		}
		return nil, "", fmt.Errorf("%w: youtube API error: status %d", shared.ErrTransport, resp.StatusCode)
	}

	var page playlistItemsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode playlist page: %v", shared.ErrParse, err)
	}

	items := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, item.Snippet.Title)
	}
	return items, page.NextPageToken, nil
}

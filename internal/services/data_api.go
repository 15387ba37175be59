package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

// DataAPIService implements [TitleSource] with the generated YouTube Data API v3 client.
type DataAPIService struct {
	endpoint    string
	pageSize    int64
	accessToken string
	limiter     *rate.Limiter
	logger      *log.Logger
}

// NewDataAPIService creates a title source backed by google.golang.org/api/youtube/v3.
//
// opts.BaseURL replaces the client's endpoint unless it is empty or [DefaultBaseURL].
func NewDataAPIService(opts SourceOpts) *DataAPIService {
	endpoint := opts.BaseURL
	if strings.TrimSuffix(endpoint, "/") == DefaultBaseURL {
		endpoint = ""
	}
	return &DataAPIService{
		endpoint:    endpoint,
		pageSize:    int64(pageSizeOrDefault(opts.PageSize)),
		accessToken: opts.AccessToken,
		limiter:     rate.NewLimiter(rate.Every(opts.PageDelay), 1),
		logger:      loggerOrDiscard(opts.Logger),
	}
}

func (s *DataAPIService) newClient(ctx context.Context, credentials string) (*youtube.Service, error) {
	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithAPIKey(credentials))
	} else {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.accessToken})))
	}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create YouTube client: %v", shared.ErrTransport, err)
	}
	return svc, nil
}

// FetchAll pages through PlaylistItems.List until the response carries no next page token.
func (s *DataAPIService) FetchAll(ctx context.Context, collectionID, credentials string) (models.TitleSequence, error) {
	if err := validateRequest(collectionID, credentials, s.accessToken); err != nil {
		return nil, err
	}

	svc, err := s.newClient(ctx, credentials)
	if err != nil {
		return nil, err
	}

	titles := models.TitleSequence{}
	token := ""
	for page := 1; ; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: waiting for page %d: %v", shared.ErrTransport, page, err)
		}

		call := svc.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(collectionID).
			MaxResults(s.pageSize).
			Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, wrapGoogleError(err)
		}

		items := make([]string, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item.Snippet == nil {
				return nil, fmt.Errorf("%w: playlist item %s has no snippet", shared.ErrParse, item.Id)
			}
			items = append(items, item.Snippet.Title)
		}

		if err := checkPageBoundary(titles, items); err != nil {
			return nil, err
		}
		titles = append(titles, items...)
		s.logger.Debug("retrieved page", "page", page, "titles", len(titles))

		if resp.NextPageToken == "" {
			return titles, nil
		}
		if resp.NextPageToken == token {
			return nil, fmt.Errorf("%w: page token %q did not advance", shared.ErrUpstreamAnomaly, token)
		}
		token = resp.NextPageToken
	}
}

func wrapGoogleError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%w: youtube API error (status %d): %s", shared.ErrTransport, gerr.Code, gerr.Message)
	}
	return fmt.Errorf("%w: %v", shared.ErrTransport, err)
}

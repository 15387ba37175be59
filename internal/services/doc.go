// Package services defines the [TitleSource] interface and implements it for the YouTube Data API.
//
// # Title Sources
//
// A source reads a playlist page by page and folds the pages into one [models.TitleSequence]. Pages are paced by a
// [rate.Limiter] allowing one request per page delay (200ms by default). Pagination ends at the first page without a
// next page token.
//
// Two implementations share that contract:
//   - [PlaylistItemsService] : GET {base}/playlistItems?part=snippet over net/http, decoded with encoding/json
//   - [DataAPIService] : the generated google.golang.org/api/youtube/v3 client
//
// [NewTitleSource] picks one from the youtube.client config value.
//
// # Authentication
//
// The API key is passed per call as the credentials argument. An optional OAuth2 access token is sent as a bearer
// token through an [oauth2.StaticTokenSource].
//
// # Error Handling
//
// Sources use typed errors from the shared package:
//   - [shared.ErrInvalidConfig] : empty playlist id or no credentials
//   - [shared.ErrUpstreamAnomaly] : a page starts with the title the previous page ended with
//   - [shared.ErrTransport] : request failed or returned a non-2xx status
//   - [shared.ErrParse] : a page could not be decoded
//
// No request is retried.
package services

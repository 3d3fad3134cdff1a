// Package contentapi is the HTTP implementation of domain.ContentService.
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dev-Pau/evidens/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Evidens/1.0"
)

// Client talks to the evidens content API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new content API client
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetToken updates the authentication token
func (c *Client) SetToken(token string) {
	c.token = token
}

// doRequest performs an authenticated request, JSON-encoding in and
// decoding the response into out when either is non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, in, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("content api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Error("content api request failed", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(data))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// statusError maps an HTTP status to a domain sentinel. A server-supplied
// message is kept as a NetworkError so the alert shows it.
func (c *Client) statusError(status int, body []byte) error {
	var cause error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		cause = domain.ErrAuthFailed
	case http.StatusNotFound, http.StatusGone:
		cause = domain.ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		cause = domain.ErrServerOffline
	default:
		cause = fmt.Errorf("unexpected status code: %d", status)
	}

	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		return &domain.NetworkError{Title: er.Error.Title, Message: er.Error.Message, Err: cause}
	}

	if !errors.Is(cause, domain.ErrAuthFailed) && !errors.Is(cause, domain.ErrNotFound) {
		c.logger.Error("content api error", "status", status, "body", string(body))
	}
	return cause
}

func escape(id string) string { return url.PathEscape(id) }

// feedPath returns the endpoint and query for a filter
func feedPath(f domain.Filter) (string, url.Values, error) {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	switch f.Feed {
	case domain.FeedHome:
		return "/v1/feed", q, nil
	case domain.FeedSearch:
		q.Set("q", f.Query)
		return "/v1/search", q, nil
	case domain.FeedProfile:
		if f.UserID == "" {
			return "", nil, errors.New("profile feed needs a user id")
		}
		return "/v1/users/" + escape(f.UserID) + "/content", q, nil
	case domain.FeedBookmarks:
		return "/v1/me/bookmarks", q, nil
	case domain.FeedCaseDetail:
		if f.CaseID == "" {
			return "", nil, errors.New("case feed needs a case id")
		}
		return "/v1/cases/" + escape(f.CaseID) + "/related", q, nil
	default:
		return "", nil, fmt.Errorf("unknown feed %d", f.Feed)
	}
}

// FetchPage returns one page of the list selected by filter
func (c *Client) FetchPage(ctx context.Context, filter domain.Filter, cursor domain.Cursor) (domain.Page, error) {
	path, query, err := feedPath(filter)
	if err != nil {
		return domain.Page{}, err
	}
	if !cursor.IsNull() {
		query.Set("cursor", string(cursor))
	}

	var resp PageResponse
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return domain.Page{}, err
	}
	return MapPage(resp), nil
}

func (c *Client) LikeItem(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/content/"+escape(id)+"/like", nil, nil, nil)
}

func (c *Client) UnlikeItem(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/v1/content/"+escape(id)+"/like", nil, nil, nil)
}

func (c *Client) BookmarkItem(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/content/"+escape(id)+"/bookmark", nil, nil, nil)
}

func (c *Client) UnbookmarkItem(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/v1/content/"+escape(id)+"/bookmark", nil, nil, nil)
}

func (c *Client) AddComment(ctx context.Context, contentID, body string) (*domain.Comment, error) {
	var out Comment
	path := "/v1/content/" + escape(contentID) + "/comments"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, TextRequest{Body: body}, &out); err != nil {
		return nil, err
	}
	return MapComment(out), nil
}

func (c *Client) DeleteComment(ctx context.Context, contentID, commentID string) error {
	path := "/v1/content/" + escape(contentID) + "/comments/" + escape(commentID)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) AddRevision(ctx context.Context, contentID, body string) (*domain.Revision, error) {
	var out Revision
	path := "/v1/cases/" + escape(contentID) + "/revisions"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, TextRequest{Body: body}, &out); err != nil {
		return nil, err
	}
	return MapRevision(out), nil
}

func (c *Client) MarkSolved(ctx context.Context, contentID, diagnosis string) error {
	path := "/v1/cases/" + escape(contentID) + "/solve"
	return c.doRequest(ctx, http.MethodPost, path, nil, SolveRequest{Diagnosis: diagnosis}, nil)
}

func (c *Client) SetVisibility(ctx context.Context, contentID string, v domain.VisibilityState) error {
	path := "/v1/content/" + escape(contentID) + "/visibility"
	return c.doRequest(ctx, http.MethodPut, path, nil, VisibilityRequest{Visibility: v.String()}, nil)
}

func (c *Client) FollowUser(ctx context.Context, userID string) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/users/"+escape(userID)+"/follow", nil, nil, nil)
}

func (c *Client) UnfollowUser(ctx context.Context, userID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/v1/users/"+escape(userID)+"/follow", nil, nil, nil)
}

var _ domain.ContentService = (*Client)(nil)

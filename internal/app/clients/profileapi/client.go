// Package profileapi is the HTTP client for the remote profile-listing
// API. It implements the profile and team operations the System Users
// panel consumes.
//
// Requests carry a bearer token when one is configured: either a static
// token (personal access token) or OAuth2 client credentials. Outbound
// requests are rate limited per client.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/adminusers/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// teamsPerPage bounds the team list fetched for the team picker.
const teamsPerPage = 1000

// maxBodyBytes caps a response body. A full team page of teamsPerPage
// entries stays well below it.
const maxBodyBytes = 8 << 20

// ErrBodyTooLarge is returned when a response exceeds maxBodyBytes.
var ErrBodyTooLarge = errors.New("profileapi: response body too large")

// ErrNotFound is returned when the remote side answers 404.
var ErrNotFound = errors.New("profileapi: not found")

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	StatusCode int
	ID         string // remote error id, e.g. "api.user.get.app_error"
	Message    string
	Op         string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("profileapi: %s: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("profileapi: %s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is(err, ErrNotFound) match a 404 APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config configures a Client.
type Config struct {
	BaseURL string // e.g. https://chat.example.com

	// Token is a static bearer token. It wins over client credentials.
	Token string

	// OAuth2 client credentials, used when ClientID is set and Token is empty.
	ClientID     string
	ClientSecret string
	TokenURL     string

	// RatePerSecond caps outbound requests; 0 means unlimited.
	RatePerSecond float64

	// HTTPClient is the base transport client. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to the remote profile API. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// New builds a Client from cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("profileapi: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("profileapi: base url %q must be http or https", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	// oauth2 picks up the base client from the context it is built with.
	octx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
	switch {
	case cfg.Token != "":
		hc = oauth2.NewClient(octx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	case cfg.ClientID != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		hc = cc.Client(octx)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{base: base, http: hc, limiter: limiter, log: logger}, nil
}

// GetProfiles returns one page of all profiles.
func (c *Client) GetProfiles(ctx context.Context, page, perPage int, filter models.ListFilter) ([]models.Profile, error) {
	q := pageQuery(page, perPage, filter)
	var out []models.Profile
	if err := c.do(ctx, "get profiles", http.MethodGet, "/api/v4/users", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfilesWithoutTeam returns one page of profiles that belong to no team.
func (c *Client) GetProfilesWithoutTeam(ctx context.Context, page, perPage int, filter models.ListFilter) ([]models.Profile, error) {
	q := pageQuery(page, perPage, filter)
	q.Set("without_team", "1")
	var out []models.Profile
	if err := c.do(ctx, "get profiles without team", http.MethodGet, "/api/v4/users", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type searchRequest struct {
	Term string `json:"term"`
	models.SearchOptions
}

// SearchProfiles searches profiles by term.
func (c *Client) SearchProfiles(ctx context.Context, term string, opts models.SearchOptions) ([]models.Profile, error) {
	var out []models.Profile
	body := searchRequest{Term: term, SearchOptions: opts}
	if err := c.do(ctx, "search profiles", http.MethodPost, "/api/v4/users/search", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser loads a single profile by id. A missing user yields ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, "get user", http.MethodGet, "/api/v4/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, ErrNotFound
	}
	return &out, nil
}

// GetTeams returns the team list.
func (c *Client) GetTeams(ctx context.Context) ([]models.Team, error) {
	q := url.Values{}
	q.Set("page", "0")
	q.Set("per_page", strconv.Itoa(teamsPerPage))
	var out []models.Team
	if err := c.do(ctx, "get teams", http.MethodGet, "/api/v4/teams", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTeamStats returns membership counts for a team.
func (c *Client) GetTeamStats(ctx context.Context, teamID string) (models.TeamStats, error) {
	var out models.TeamStats
	err := c.do(ctx, "get team stats", http.MethodGet, "/api/v4/teams/"+url.PathEscape(teamID)+"/stats", nil, nil, &out)
	return out, err
}

// GetFilteredUsersStats returns the user count for a filtered listing.
func (c *Client) GetFilteredUsersStats(ctx context.Context, f models.UsersStatsFilter) (models.UsersStats, error) {
	q := url.Values{}
	if f.InTeam != "" {
		q.Set("in_team", f.InTeam)
	}
	if f.IncludeDeleted {
		q.Set("include_deleted", "true")
	}
	if f.Inactive {
		q.Set("inactive", "true")
	}
	if f.Role != "" {
		q.Set("roles", f.Role)
	}
	var out models.UsersStats
	err := c.do(ctx, "get filtered users stats", http.MethodGet, "/api/v4/users/stats/filtered", q, nil, &out)
	return out, err
}

func pageQuery(page, perPage int, filter models.ListFilter) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if filter.Inactive {
		q.Set("inactive", "true")
	}
	return q
}

// remoteError is the error body the remote API sends with non-2xx codes.
type remoteError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// do sends one request and decodes a JSON answer into out. An empty or
// "null" body leaves out untouched.
func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("profileapi: %s: %w", op, err)
	}

	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("profileapi: %s: encode body: %w", op, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("profileapi: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("profileapi: %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("profileapi: %s: read body: %w", op, err)
	}
	if len(raw) > maxBodyBytes {
		return fmt.Errorf("profileapi: %s: %w", op, ErrBodyTooLarge)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Op: op}
		var re remoteError
		if json.Unmarshal(raw, &re) == nil {
			apiErr.ID, apiErr.Message = re.ID, re.Message
		}
		c.log.Debug("profile api error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("error_id", apiErr.ID))
		return apiErr
	}

	if len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("profileapi: %s: decode: %w", op, err)
	}
	return nil
}

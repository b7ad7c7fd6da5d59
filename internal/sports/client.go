package sports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	userAgent      = "Sports-Events-Hub/1.0"
	maxTeamQuery   = 50
	maxBodyBytes   = 8 << 20
	defaultTimeout = 30 * time.Second
)

var teamQueryPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.'&]+$`)

// ErrInvalidQuery is returned for team searches that fail input checks.
var ErrInvalidQuery = errors.New("invalid team name")

// UpstreamError wraps any failure talking to TheSportsDB.
type UpstreamError struct {
	Path string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("sportsdb %s: %v", e.Path, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Cache stores raw upstream responses. *store.RedisCache implements it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// Client calls TheSportsDB v1 JSON API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      Cache
	log        *slog.Logger
}

// NewClient returns a client with a fixed request timeout. cache may be nil.
func NewClient(baseURL, apiKey string, timeout time.Duration, cache Cache, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		log:        log,
	}
}

// Sports calls all_sports.php.
func (c *Client) Sports(ctx context.Context) ([]Sport, error) {
	var resp sportsResponse
	if err := c.getJSON(ctx, "all_sports.php", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]Sport, 0, len(resp.Sports))
	for _, s := range resp.Sports {
		out = append(out, Sport{ID: s.ID, Name: s.Name, Format: s.Format, Thumb: s.Thumb})
	}
	return out, nil
}

// Leagues calls search_all_leagues.php for one sport.
func (c *Client) Leagues(ctx context.Context, sport string) ([]League, error) {
	var resp leaguesResponse
	if err := c.getJSON(ctx, "search_all_leagues.php", url.Values{"s": {sport}}, &resp); err != nil {
		return nil, err
	}

	raw := resp.Countries
	if len(raw) == 0 {
		raw = resp.Countrys
	}
	out := make([]League, 0, len(raw))
	for _, l := range raw {
		out = append(out, League{ID: l.ID, Name: l.Name, Sport: l.Sport, Country: l.Country})
	}
	return out, nil
}

// EventsForLeague returns the next and the most recent events of a league.
// Both lookups run concurrently; it only fails when both fail.
func (c *Client) EventsForLeague(ctx context.Context, leagueID string) ([]RawEvent, error) {
	q := url.Values{"id": {leagueID}}

	var (
		next, past       []RawEvent
		nextErr, pastErr error
		g                errgroup.Group
	)
	g.Go(func() error {
		next, nextErr = c.events(ctx, "eventsnextleague.php", q)
		return nil
	})
	g.Go(func() error {
		past, pastErr = c.events(ctx, "eventspastleague.php", q)
		return nil
	})
	g.Wait()

	if nextErr != nil && pastErr != nil {
		return nil, errors.Join(nextErr, pastErr)
	}
	if nextErr != nil {
		c.log.Warn("upcoming league events unavailable", "league_id", leagueID, "error", nextErr)
	}
	if pastErr != nil {
		c.log.Warn("past league events unavailable", "league_id", leagueID, "error", pastErr)
	}
	return append(next, past...), nil
}

// UpcomingEventsForTeam calls eventsnext.php. A non-numeric argument is
// treated as a team name and resolved through SearchTeams first.
func (c *Client) UpcomingEventsForTeam(ctx context.Context, teamNameOrID string) ([]RawEvent, error) {
	teamID := strings.TrimSpace(teamNameOrID)
	if !isNumeric(teamID) {
		teams, err := c.SearchTeams(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			return []RawEvent{}, nil
		}
		teamID = teams[0].ID
	}
	return c.events(ctx, "eventsnext.php", url.Values{"id": {teamID}})
}

// SearchTeams calls searchteams.php after validating the name.
func (c *Client) SearchTeams(ctx context.Context, name string) ([]Team, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxTeamQuery || !teamQueryPattern.MatchString(name) {
		return nil, ErrInvalidQuery
	}
	return c.teams(ctx, "searchteams.php", url.Values{"t": {name}})
}

// TeamsForLeague resolves the league name with lookupleague.php, then
// calls search_all_teams.php with it.
func (c *Client) TeamsForLeague(ctx context.Context, leagueID string) ([]Team, error) {
	var resp leaguesResponse
	if err := c.getJSON(ctx, "lookupleague.php", url.Values{"id": {leagueID}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Leagues) == 0 || resp.Leagues[0].Name == "" {
		return nil, &UpstreamError{Path: "lookupleague.php", Err: fmt.Errorf("league %s not found", leagueID)}
	}
	return c.teams(ctx, "search_all_teams.php", url.Values{"l": {resp.Leagues[0].Name}})
}

func (c *Client) events(ctx context.Context, path string, q url.Values) ([]RawEvent, error) {
	var resp eventsResponse
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	events := resp.Events
	if len(events) == 0 {
		events = resp.Results
	}
	if events == nil {
		events = []RawEvent{}
	}
	return events, nil
}

func (c *Client) teams(ctx context.Context, path string, q url.Values) ([]Team, error) {
	var resp teamsResponse
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	out := make([]Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		badge := t.Badge
		if badge == "" {
			badge = t.TeamBadge
		}
		out = append(out, Team{
			ID:        t.ID,
			Name:      t.Name,
			Alternate: t.Alternate,
			League:    t.League,
			LeagueID:  t.LeagueID,
			Sport:     t.Sport,
			Country:   t.Country,
			Venue:     t.Stadium,
			Location:  t.Location,
			Founded:   t.FormedYear,
			Badge:     badge,
		})
	}
	return out, nil
}

// getJSON fetches path, consulting the cache first, and decodes into v.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v interface{}) error {
	endpoint := c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	cacheKey := path + "?" + q.Encode()

	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			c.log.Debug("cache get failed", "key", cacheKey, "error", err)
		}
		if ok {
			if err := json.Unmarshal(data, v); err == nil {
				return nil
			}
		}
	}

	data, err := c.fetch(ctx, endpoint)
	if err != nil {
		return &UpstreamError{Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &UpstreamError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, data); err != nil {
			c.log.Debug("cache set failed", "key", cacheKey, "error", err)
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// checkResp returns an error including the upstream body if the status is
// not 2xx.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

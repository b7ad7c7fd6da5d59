package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayush/sports-events-hub/internal/models"
	"github.com/ayush/sports-events-hub/internal/sports"
)

const (
	// MaxCurrentEvents caps the "all current events" result.
	MaxCurrentEvents = 50

	maxLeaguesPerSport   = 5
	maxConcurrentFetches = 8

	NoPreferencesMessage = "No preferences set"
	NoEventsMessage      = "No events found for your selected preferences"
)

// Status tells an empty result caused by missing preferences apart from one
// where the upstream simply had nothing.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNoPreferences Status = "no_preferences"
	StatusNoEvents      Status = "no_events"
)

// EventSource is the part of the sports client the engine needs.
type EventSource interface {
	EventsForLeague(ctx context.Context, leagueID string) ([]sports.RawEvent, error)
	UpcomingEventsForTeam(ctx context.Context, teamNameOrID string) ([]sports.RawEvent, error)
	Leagues(ctx context.Context, sport string) ([]sports.League, error)
}

// Result is the outcome of one aggregation.
type Result struct {
	Status  Status         `json:"status"`
	Events  []models.Event `json:"events"`
	Message string         `json:"message,omitempty"`
	Failed  int            `json:"failedSources"`
}

// Engine turns a preference record into a list of events by fetching every
// selected league and team concurrently.
type Engine struct {
	src     EventSource
	timeout time.Duration
	log     *slog.Logger
}

// NewEngine returns an engine whose aggregations stop waiting for upstream
// after timeout and return what has arrived. Zero means no limit.
func NewEngine(src EventSource, timeout time.Duration, log *slog.Logger) *Engine {
	return &Engine{src: src, timeout: timeout, log: log}
}

func (e *Engine) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// fetch is one upstream call of a fan-out.
type fetch struct {
	kind string
	id   string
	run  func(ctx context.Context) ([]sports.RawEvent, error)
}

// Filtered returns the events of every selected league and team, in
// selection order. Events that appear under several selections are
// returned once per selection.
func (e *Engine) Filtered(ctx context.Context, p models.Preferences) Result {
	if p.Unset() {
		return noPreferences()
	}
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	fetches := append(e.leagueFetches(p.SelectedLeagues), e.teamFetches(p.SelectedTeams)...)
	events, failed := e.fanOut(ctx, fetches)
	return newResult(events, failed)
}

// Current is Filtered with three differences: a selected sport without any
// selected league of its own contributes its first leagues, events are
// deduplicated by id, and at most MaxCurrentEvents are returned.
func (e *Engine) Current(ctx context.Context, p models.Preferences) Result {
	if p.Unset() {
		return noPreferences()
	}
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	leagues := append([]models.Selection{}, p.SelectedLeagues...)
	leagues = append(leagues, e.expandSports(ctx, p)...)

	fetches := append(e.leagueFetches(leagues), e.teamFetches(p.SelectedTeams)...)
	events, failed := e.fanOut(ctx, fetches)

	events = dedupe(events)
	if len(events) > MaxCurrentEvents {
		events = events[:MaxCurrentEvents]
	}
	return newResult(events, failed)
}

func (e *Engine) leagueFetches(leagues []models.Selection) []fetch {
	out := make([]fetch, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, fetch{kind: "league_id", id: l.ID, run: func(ctx context.Context) ([]sports.RawEvent, error) {
			return e.src.EventsForLeague(ctx, l.ID)
		}})
	}
	return out
}

func (e *Engine) teamFetches(teams []models.Selection) []fetch {
	out := make([]fetch, 0, len(teams))
	for _, t := range teams {
		out = append(out, fetch{kind: "team_id", id: t.ID, run: func(ctx context.Context) ([]sports.RawEvent, error) {
			return e.src.UpcomingEventsForTeam(ctx, t.ID)
		}})
	}
	return out
}

// fanOut runs every fetch and waits for all of them. A failed fetch is
// logged and contributes nothing; the merged list keeps fetch order.
func (e *Engine) fanOut(ctx context.Context, fetches []fetch) ([]models.Event, int) {
	results := make([][]sports.RawEvent, len(fetches))
	errs := make([]error, len(fetches))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, f := range fetches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = f.run(ctx)
			return nil
		})
	}
	g.Wait()

	failed := 0
	events := []models.Event{}
	for i, raw := range results {
		if errs[i] != nil {
			failed++
			e.log.Warn("event fetch failed", fetches[i].kind, fetches[i].id, "error", errs[i])
			continue
		}
		for _, ev := range raw {
			events = append(events, ev.Normalize())
		}
	}
	return events, failed
}

// expandSports looks up leagues for selected sports that have no selected
// league of their own. Nothing is expanded while a selected league has no
// sport recorded, since its sport cannot be ruled out.
func (e *Engine) expandSports(ctx context.Context, p models.Preferences) []models.Selection {
	covered := map[string]bool{}
	for _, l := range p.SelectedLeagues {
		if l.Sport == "" {
			e.log.Debug("skipping sport expansion, league without sport", "league_id", l.ID)
			return nil
		}
		covered[strings.ToLower(l.Sport)] = true
	}
	var pending []string
	for _, s := range p.SelectedSports {
		if !covered[strings.ToLower(s)] {
			covered[strings.ToLower(s)] = true
			pending = append(pending, s)
		}
	}

	found := make([][]sports.League, len(pending))
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, sport := range pending {
		g.Go(func() error {
			leagues, err := e.src.Leagues(ctx, sport)
			if err != nil {
				e.log.Warn("league lookup failed", "sport", sport, "error", err)
				return nil
			}
			if len(leagues) > maxLeaguesPerSport {
				leagues = leagues[:maxLeaguesPerSport]
			}
			found[i] = leagues
			return nil
		})
	}
	g.Wait()

	var out []models.Selection
	for _, leagues := range found {
		for _, l := range leagues {
			out = append(out, models.Selection{ID: l.ID, Name: l.Name, Sport: l.Sport})
		}
	}
	return out
}

// dedupe keeps the first event for each id. Events without an id are kept.
func dedupe(events []models.Event) []models.Event {
	seen := make(map[string]bool, len(events))
	out := events[:0]
	for _, ev := range events {
		if ev.ID != "" {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
		}
		out = append(out, ev)
	}
	return out
}

func noPreferences() Result {
	return Result{Status: StatusNoPreferences, Events: []models.Event{}, Message: NoPreferencesMessage}
}

func newResult(events []models.Event, failed int) Result {
	if len(events) == 0 {
		return Result{Status: StatusNoEvents, Events: events, Message: NoEventsMessage, Failed: failed}
	}
	return Result{Status: StatusOK, Events: events, Failed: failed}
}

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/sports-events-hub/internal/logging"
	"github.com/ayush/sports-events-hub/internal/models"
	"github.com/ayush/sports-events-hub/internal/sports"
)

type fakeSource struct {
	mu      sync.Mutex
	leagues map[string][]sports.RawEvent
	teams   map[string][]sports.RawEvent
	catalog map[string][]sports.League
	fail    map[string]bool
	calls   []string
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) EventsForLeague(_ context.Context, id string) ([]sports.RawEvent, error) {
	f.record("league:" + id)
	if f.fail[id] {
		return nil, &sports.UpstreamError{Path: "eventsnextleague.php", Err: errors.New("timeout")}
	}
	return f.leagues[id], nil
}

func (f *fakeSource) UpcomingEventsForTeam(_ context.Context, id string) ([]sports.RawEvent, error) {
	f.record("team:" + id)
	if f.fail[id] {
		return nil, errors.New("team lookup failed")
	}
	return f.teams[id], nil
}

func (f *fakeSource) Leagues(_ context.Context, sport string) ([]sports.League, error) {
	f.record("sport:" + sport)
	if f.fail[sport] {
		return nil, errors.New("catalog down")
	}
	return f.catalog[sport], nil
}

func rawEvents(prefix string, n int) []sports.RawEvent {
	out := make([]sports.RawEvent, n)
	for i := range out {
		out[i] = sports.RawEvent{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			HomeTeam: "Home " + prefix,
			AwayTeam: fmt.Sprintf("Away %d", i),
		}
	}
	return out
}

func leagues(ids ...string) []models.Selection {
	out := make([]models.Selection, len(ids))
	for i, id := range ids {
		out[i] = models.Selection{ID: id, Sport: "Soccer"}
	}
	return out
}

func eventIDs(events []models.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func TestFiltered_NoPreferencesSkipsUpstream(t *testing.T) {
	src := &fakeSource{}
	e := NewEngine(src, 0, logging.Discard())

	for _, run := range []func(context.Context, models.Preferences) Result{e.Filtered, e.Current} {
		res := run(context.Background(), models.Preferences{SelectedTeams: leagues("133604")})

		assert.Equal(t, StatusNoPreferences, res.Status)
		assert.Equal(t, NoPreferencesMessage, res.Message)
		assert.NotNil(t, res.Events)
		assert.Empty(t, res.Events)
	}
	assert.Empty(t, src.calls)
}

func TestFiltered_PartialFailure(t *testing.T) {
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{"4328": rawEvents("epl", 3)},
		fail:    map[string]bool{"4335": true},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Filtered(context.Background(), models.Preferences{SelectedLeagues: leagues("4335", "4328")})

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{"epl-0", "epl-1", "epl-2"}, eventIDs(res.Events))
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, res.Message)
}

func TestFiltered_AllFailIsEmptyNotError(t *testing.T) {
	src := &fakeSource{fail: map[string]bool{"4328": true}}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Filtered(context.Background(), models.Preferences{SelectedLeagues: leagues("4328")})

	assert.Equal(t, StatusNoEvents, res.Status)
	assert.Equal(t, NoEventsMessage, res.Message)
	assert.Empty(t, res.Events)
}

func TestFiltered_SportsOnlyFetchesNothing(t *testing.T) {
	src := &fakeSource{}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Filtered(context.Background(), models.Preferences{SelectedSports: []string{"Soccer"}})

	assert.Equal(t, StatusNoEvents, res.Status)
	assert.Empty(t, src.calls)
}

func TestFiltered_KeepsDuplicatesAndOrder(t *testing.T) {
	shared := sports.RawEvent{ID: "shared", HomeTeam: "Arsenal", AwayTeam: "Chelsea"}
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{
			"4328": {shared, {ID: "a"}},
			"4480": {shared},
		},
		teams: map[string][]sports.RawEvent{"133604": {shared}},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Filtered(context.Background(), models.Preferences{
		SelectedLeagues: leagues("4328", "4480"),
		SelectedTeams:   []models.Selection{{ID: "133604", Name: "Arsenal"}},
	})

	assert.Equal(t, []string{"shared", "a", "shared", "shared"}, eventIDs(res.Events))
	assert.Equal(t, "Arsenal vs Chelsea", res.Events[0].Name)
}

func TestCurrent_DeduplicatesByID(t *testing.T) {
	shared := sports.RawEvent{ID: "shared"}
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{
			"4328": {shared, {ID: "a"}},
			"4480": {shared, {ID: "b"}, {ID: ""}, {ID: ""}},
		},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Current(context.Background(), models.Preferences{SelectedLeagues: leagues("4328", "4480")})

	assert.Equal(t, []string{"shared", "a", "b", "", ""}, eventIDs(res.Events))
}

func TestCurrent_CapsAtFifty(t *testing.T) {
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{
			"1": rawEvents("x", 30),
			"2": rawEvents("y", 30),
		},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Current(context.Background(), models.Preferences{SelectedLeagues: leagues("1", "2")})

	require.Len(t, res.Events, MaxCurrentEvents)
	assert.Equal(t, "x-0", res.Events[0].ID)
	assert.Equal(t, "y-19", res.Events[49].ID)
}

func TestCurrent_ExpandsUncoveredSports(t *testing.T) {
	catalog := make([]sports.League, 7)
	for i := range catalog {
		catalog[i] = sports.League{ID: fmt.Sprintf("nba-%d", i), Sport: "Basketball"}
	}
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{
			"4328":  rawEvents("epl", 1),
			"nba-0": rawEvents("nba", 2),
		},
		catalog: map[string][]sports.League{"Basketball": catalog},
		fail:    map[string]bool{"Tennis": true},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Current(context.Background(), models.Preferences{
		SelectedSports:  []string{"soccer", "Basketball", "Tennis"},
		SelectedLeagues: leagues("4328"),
	})

	assert.Equal(t, []string{"epl-0", "nba-0", "nba-1"}, eventIDs(res.Events))
	assert.NotContains(t, src.calls, "sport:soccer")
	assert.Contains(t, src.calls, "sport:Tennis")
	assert.Contains(t, src.calls, "league:nba-4")
	assert.NotContains(t, src.calls, "league:nba-5")
}

func TestFiltered_ScoresPassThrough(t *testing.T) {
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{"4328": {
			{ID: "played", HomeScore: scoreOf(3), AwayScore: scoreOf(1)},
			{ID: "upcoming"},
		}},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Filtered(context.Background(), models.Preferences{SelectedLeagues: leagues("4328")})

	require.Len(t, res.Events, 2)
	assert.True(t, res.Events[0].Played())
	assert.Equal(t, 3, *res.Events[0].HomeScore)
	assert.False(t, res.Events[1].Played())
	assert.Nil(t, res.Events[1].AwayScore)
}

func scoreOf(n int) sports.Score {
	var s sports.Score
	if err := json.Unmarshal([]byte(strconv.Itoa(n)), &s); err != nil {
		panic(err)
	}
	return s
}

func TestCurrent_LeagueWithoutSportBlocksExpansion(t *testing.T) {
	src := &fakeSource{
		leagues: map[string][]sports.RawEvent{"4328": rawEvents("epl", 1)},
		catalog: map[string][]sports.League{"Soccer": {{ID: "4331", Sport: "Soccer"}}},
	}
	e := NewEngine(src, 0, logging.Discard())

	res := e.Current(context.Background(), models.Preferences{
		SelectedSports:  []string{"Soccer"},
		SelectedLeagues: []models.Selection{{ID: "4328"}},
	})

	assert.Equal(t, []string{"epl-0"}, eventIDs(res.Events))
	assert.Equal(t, []string{"league:4328"}, src.calls)
}

func TestFiltered_SlowUpstreamReturnsWithinDeadline(t *testing.T) {
	const delay = 200 * time.Millisecond
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"events":[{"idEvent":"%s-%s","strHomeTeam":"A","strAwayTeam":"B"}]}`,
			r.URL.Path, r.URL.Query().Get("id"))
	}))
	t.Cleanup(upstream.Close)

	client := sports.NewClient(upstream.URL, "key", 10*time.Second, nil, logging.Discard())
	e := NewEngine(client, 300*time.Millisecond, logging.Discard())

	// Eight leagues fit in the first wave; the ninth starts after it and
	// cannot finish before the deadline.
	ids := make([]string, maxConcurrentFetches+1)
	for i := range ids {
		ids[i] = strconv.Itoa(4328 + i)
	}

	start := time.Now()
	res := e.Filtered(context.Background(), models.Preferences{SelectedLeagues: leagues(ids...)})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 700*time.Millisecond)
	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Events, 2*maxConcurrentFetches)
	assert.Equal(t, 1, res.Failed)
}

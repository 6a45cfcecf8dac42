package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/trellotodo/pkg/config"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
	"github.com/harrisonrobin/trellotodo/pkg/util"
)

// Fetcher reads upcoming events from a Google calendar.
type Fetcher struct {
	connect    func(ctx context.Context) (*calendar.Service, error)
	calendarID string
	maxResults int64
	now        func() time.Time
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher on an already authorized service.
func NewFetcher(srv *calendar.Service, cfg config.Google, logger *slog.Logger) *Fetcher {
	return newFetcher(func(context.Context) (*calendar.Service, error) { return srv, nil }, cfg, logger)
}

func newFetcher(connect func(context.Context) (*calendar.Service, error), cfg config.Google, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = config.DefaultCalendarID
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = config.DefaultMaxResults
	}
	return &Fetcher{
		connect:    connect,
		calendarID: cfg.CalendarID,
		maxResults: cfg.MaxResults,
		now:        time.Now,
		logger:     logger,
	}
}

// ListUpcoming returns the next single events starting from now, ordered
// by start time.
func (f *Fetcher) ListUpcoming(ctx context.Context) ([]*calendar.Event, error) {
	srv, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List(f.calendarID).
		TimeMin(f.now().UTC().Format(time.RFC3339)).
		MaxResults(f.maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events.Items, nil
}

// TodaysTitles returns the titles of the upcoming events that start today,
// in calendar order. Calendar problems never stop the board update, so
// errors are logged and an empty slice is returned.
func (f *Fetcher) TodaysTitles(ctx context.Context) []string {
	events, err := f.ListUpcoming(ctx)
	if err != nil {
		f.logger.Error("could not fetch today's events", logging.Err(err))
		return []string{}
	}
	titles := FilterToday(events, f.now(), f.logger)
	f.logger.Info("fetched today's events", logging.Count(len(titles)))
	return titles
}

// FilterToday keeps the titles of events whose start date is now's local
// date. Events with an unreadable start are skipped.
func FilterToday(events []*calendar.Event, now time.Time, logger *slog.Logger) []string {
	today := util.DateOf(now.Local())
	titles := []string{}
	for _, event := range events {
		date, err := util.EventDate(event)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping event", logging.Err(err))
			}
			continue
		}
		if date == today {
			titles = append(titles, event.Summary)
		}
	}
	return titles
}

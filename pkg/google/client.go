package google

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/trellotodo/pkg/auth"
	"github.com/harrisonrobin/trellotodo/pkg/config"
)

// NewClient creates a Fetcher whose calendar service is authorized through
// store. The token is only acquired when events are first requested.
func NewClient(store *auth.Store, cfg config.Google, logger *slog.Logger) *Fetcher {
	connect := func(ctx context.Context) (*calendar.Service, error) {
		client, err := store.Client(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
		}
		srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
		}
		return srv, nil
	}
	return newFetcher(connect, cfg, logger)
}

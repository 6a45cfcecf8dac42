package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adlio/trello"

	"github.com/harrisonrobin/trellotodo/pkg/config"
	"github.com/harrisonrobin/trellotodo/pkg/logging"
)

// ErrListNotFound is returned when the board has no list with a configured name.
var ErrListNotFound = errors.New("list not found on board")

// Session is an authenticated connection to one Trello board and its
// to-do and done lists.
type Session struct {
	board *trello.Board
	todo  *List
	done  *List
}

// NewSession logs in with the configured key and token, loads the board and
// resolves both lists by name.
func NewSession(ctx context.Context, cfg config.Trello, logger *slog.Logger) (*Session, error) {
	return Connect(ctx, trello.NewClient(cfg.APIKey, cfg.Token), cfg, logger)
}

// Connect is NewSession on a caller supplied client.
func Connect(ctx context.Context, client *trello.Client, cfg config.Trello, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TodoList == "" || cfg.DoneList == "" {
		return nil, fmt.Errorf("%w: to-do and done list names are required", config.ErrMissingKey)
	}

	board, err := client.WithContext(ctx).GetBoard(cfg.BoardID, trello.Defaults())
	if err != nil {
		if trello.IsNotFound(err) {
			return nil, fmt.Errorf("board %s not found: %w", cfg.BoardID, err)
		}
		return nil, fmt.Errorf("failed to load board %s: %w", cfg.BoardID, err)
	}

	lists, err := board.GetLists(trello.Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to load lists of board %s: %w", board.Name, err)
	}

	s := &Session{board: board}
	for _, l := range lists {
		switch {
		case l.Name == cfg.TodoList && s.todo == nil:
			s.todo = &List{client: client, id: l.ID, name: l.Name}
		case l.Name == cfg.DoneList && s.done == nil:
			s.done = &List{client: client, id: l.ID, name: l.Name}
		}
	}
	if s.todo == nil {
		return nil, fmt.Errorf("%w: %q on board %s", ErrListNotFound, cfg.TodoList, board.Name)
	}
	if s.done == nil {
		return nil, fmt.Errorf("%w: %q on board %s", ErrListNotFound, cfg.DoneList, board.Name)
	}

	logger.Info("connected to board",
		slog.String("board", board.Name),
		slog.String("todo", s.todo.name),
		slog.String("done", s.done.name))
	logger.Debug("trello lists resolved", logging.Count(len(lists)))
	return s, nil
}

func (s *Session) BoardName() string {
	return s.board.Name
}

func (s *Session) Todo() *List {
	return s.todo
}

func (s *Session) Done() *List {
	return s.done
}

package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harrisonrobin/trellotodo/pkg/logging"
	"github.com/harrisonrobin/trellotodo/pkg/model"
	"github.com/harrisonrobin/trellotodo/pkg/routine"
)

// List is a task board list as the reconciliation sees it.
type List interface {
	Name() string
	CardTitles(ctx context.Context) ([]string, error)
	ArchiveAll(ctx context.Context) error
	AddCard(ctx context.Context, title string) error
}

type Step string

const (
	StepInspectTodo Step = "inspect-todo"
	StepArchiveDone Step = "archive-done"
	StepArchiveTodo Step = "archive-todo"
	StepEveryday    Step = "add-everyday"
	StepWeekday     Step = "add-weekday"
	StepCalendar    Step = "add-calendar"
)

// StepError reports the step a reconciliation stopped at. Changes made by
// earlier steps stay on the board.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result summarizes a completed run.
type Result struct {
	Day          string
	DoneArchived bool
	Everyday     int
	Weekday      int
	Calendar     int
	// WeekdayErr is set when the weekday tasks could not all be added.
	WeekdayErr error
}

// Added is the number of cards created.
func (r Result) Added() int {
	return r.Everyday + r.Weekday + r.Calendar
}

// Reconciler resets the to-do list for a new day.
type Reconciler struct {
	Todo    List
	Done    List
	Routine routine.Routine
	Now     func() time.Time
	Logger  *slog.Logger
}

func New(todo, done List, r routine.Routine, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		Todo:    todo,
		Done:    done,
		Routine: r,
		Now:     time.Now,
		Logger:  logger,
	}
}

// Run clears yesterday's cards and fills the to-do list with the everyday
// tasks, today's weekday tasks and the given event titles, in that order.
//
// The done list is only cleared when the to-do list is already empty. A
// failure while adding weekday tasks is logged and the run goes on; any
// other failure stops the run with a *StepError.
func (r *Reconciler) Run(ctx context.Context, events []string) (Result, error) {
	res := Result{Day: routine.Abbrev(r.Now())}

	current, err := r.Todo.CardTitles(ctx)
	if err != nil {
		return res, r.fail(StepInspectTodo, err)
	}

	if len(current) == 0 {
		r.Logger.Info("to-do list is empty, archiving done list", logging.List(r.Done.Name()))
		if err := r.Done.ArchiveAll(ctx); err != nil {
			return res, r.fail(StepArchiveDone, err)
		}
		res.DoneArchived = true
	}

	if err := r.Todo.ArchiveAll(ctx); err != nil {
		return res, r.fail(StepArchiveTodo, err)
	}
	r.Logger.Info("archived to-do list", logging.List(r.Todo.Name()), logging.Count(len(current)))

	weekday, err := r.Routine.ForDay(res.Day)
	if err != nil {
		r.Logger.Error("could not look up weekday tasks", logging.Day(res.Day), logging.Err(err))
		res.WeekdayErr = err
		weekday = nil
	}

	plan := model.Plan(r.Routine.Everyday, weekday, events)
	r.Logger.Debug("adding cards", logging.List(r.Todo.Name()), slog.Any("titles", model.Titles(plan)))

	skipWeekday := false
	for _, card := range plan {
		if card.Source == model.SourceWeekday && skipWeekday {
			continue
		}
		if err := r.Todo.AddCard(ctx, card.Title); err != nil {
			if card.Source == model.SourceWeekday {
				r.Logger.Error("could not add weekday task", logging.Day(res.Day), logging.Title(card.Title), logging.Err(err))
				res.WeekdayErr = err
				skipWeekday = true
				continue
			}
			return res, r.fail(stepFor(card.Source), fmt.Errorf("add card %q: %w", card.Title, err))
		}
		switch card.Source {
		case model.SourceEveryday:
			res.Everyday++
		case model.SourceWeekday:
			res.Weekday++
		case model.SourceCalendar:
			res.Calendar++
		}
	}

	r.Logger.Info("to-do list updated",
		logging.Day(res.Day),
		slog.Int("everyday", res.Everyday),
		slog.Int("weekday", res.Weekday),
		slog.Int("calendar", res.Calendar))
	return res, nil
}

func (r *Reconciler) fail(step Step, err error) error {
	r.Logger.Error("daily reconciliation failed", logging.Step(string(step)), logging.Err(err))
	return &StepError{Step: step, Err: err}
}

func stepFor(s model.Source) Step {
	switch s {
	case model.SourceEveryday:
		return StepEveryday
	case model.SourceWeekday:
		return StepWeekday
	}
	return StepCalendar
}

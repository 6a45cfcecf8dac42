package board

import (
	"context"
	"fmt"

	"github.com/adlio/trello"
)

// List is one Trello list, addressed by id.
type List struct {
	client *trello.Client
	id     string
	name   string
}

func (l *List) ID() string {
	return l.id
}

func (l *List) Name() string {
	return l.name
}

// CardTitles returns the titles of the open cards on the list.
func (l *List) CardTitles(ctx context.Context) ([]string, error) {
	var cards []*trello.Card
	path := fmt.Sprintf("lists/%s/cards", l.id)
	if err := l.client.WithContext(ctx).Get(path, trello.Defaults(), &cards); err != nil {
		return nil, fmt.Errorf("failed to list cards of %q: %w", l.name, err)
	}
	titles := make([]string, 0, len(cards))
	for _, c := range cards {
		titles = append(titles, c.Name)
	}
	return titles, nil
}

// ArchiveAll archives every card on the list in one request.
func (l *List) ArchiveAll(ctx context.Context) error {
	path := fmt.Sprintf("lists/%s/archiveAllCards", l.id)
	var resp map[string]any
	if err := l.client.WithContext(ctx).Post(path, trello.Defaults(), &resp); err != nil {
		return fmt.Errorf("failed to archive cards of %q: %w", l.name, err)
	}
	return nil
}

// AddCard appends a card with the given title to the bottom of the list.
func (l *List) AddCard(ctx context.Context, title string) error {
	card := &trello.Card{Name: title, IDList: l.id}
	if err := l.client.WithContext(ctx).CreateCard(card, trello.Arguments{"pos": "bottom"}); err != nil {
		return fmt.Errorf("failed to add card %q to %q: %w", title, l.name, err)
	}
	return nil
}

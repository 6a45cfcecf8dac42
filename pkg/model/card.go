package model

// Source tells which part of the reconciliation a card comes from.
type Source string

const (
	SourceEveryday Source = "everyday"
	SourceWeekday  Source = "weekday"
	SourceCalendar Source = "calendar"
)

// Card is a to-do card to be created. Titles are not unique: the same title
// coming from two sources yields two cards.
type Card struct {
	Title  string
	Source Source
}

// Plan concatenates the cards of one day in creation order: the everyday
// tasks, then the weekday tasks, then the calendar events.
func Plan(everyday, weekday, events []string) []Card {
	cards := make([]Card, 0, len(everyday)+len(weekday)+len(events))
	for _, t := range everyday {
		cards = append(cards, Card{Title: t, Source: SourceEveryday})
	}
	for _, t := range weekday {
		cards = append(cards, Card{Title: t, Source: SourceWeekday})
	}
	for _, t := range events {
		cards = append(cards, Card{Title: t, Source: SourceCalendar})
	}
	return cards
}

func Titles(cards []Card) []string {
	titles := make([]string, len(cards))
	for i, c := range cards {
		titles[i] = c.Title
	}
	return titles
}

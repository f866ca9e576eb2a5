package booking

import (
	"fmt"
	"slices"
)

// Party is the side of a booking an actor is on.
type Party string

const (
	PartyClient   Party = "client"
	PartyProvider Party = "provider"
)

type transition struct {
	from Status
	to   Status
}

var transitions = map[transition][]Party{
	{StatusPending, StatusConfirmed}:    {PartyProvider},
	{StatusPending, StatusRejected}:     {PartyProvider},
	{StatusPending, StatusCancelled}:    {PartyClient},
	{StatusConfirmed, StatusInProgress}: {PartyProvider},
	{StatusConfirmed, StatusCancelled}:  {PartyClient, PartyProvider},
	{StatusInProgress, StatusCompleted}: {PartyProvider},
	{StatusInProgress, StatusCancelled}: {PartyProvider},
}

// CheckTransition returns a *TransitionError when the pair is not in the table
// and ErrActorNotAllowed when the pair exists but the party may not perform it.
func CheckTransition(from, to Status, party Party) error {
	allowed, ok := transitions[transition{from: from, to: to}]
	if !ok {
		return &TransitionError{From: from, To: to}
	}
	if !slices.Contains(allowed, party) {
		return fmt.Errorf("%w: %s may not move a booking from %s to %s", ErrActorNotAllowed, party, from, to)
	}
	return nil
}

func CanTransition(from, to Status) bool {
	_, ok := transitions[transition{from: from, to: to}]
	return ok
}

// AllowedTargets lists the statuses the party may move a booking to from the given status,
// in lifecycle order.
func AllowedTargets(from Status, party Party) []Status {
	var out []Status
	for _, to := range AllStatuses() {
		if allowed, ok := transitions[transition{from: from, to: to}]; ok && slices.Contains(allowed, party) {
			out = append(out, to)
		}
	}
	return out
}

func eventTypeFor(to Status) EventType {
	switch to {
	case StatusConfirmed:
		return EventConfirmed
	case StatusRejected:
		return EventRejected
	case StatusCompleted:
		return EventCompleted
	case StatusCancelled:
		return EventCancelled
	default:
		return EventUpdated
	}
}

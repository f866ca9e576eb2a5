//go:build unit

package booking_test

import (
	"testing"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Written out independently of the production table so a change there shows up here.
var expectedTransitions = map[[2]booking.Status][]booking.Party{
	{booking.StatusPending, booking.StatusConfirmed}:    {booking.PartyProvider},
	{booking.StatusPending, booking.StatusRejected}:     {booking.PartyProvider},
	{booking.StatusPending, booking.StatusCancelled}:    {booking.PartyClient},
	{booking.StatusConfirmed, booking.StatusInProgress}: {booking.PartyProvider},
	{booking.StatusConfirmed, booking.StatusCancelled}:  {booking.PartyClient, booking.PartyProvider},
	{booking.StatusInProgress, booking.StatusCompleted}: {booking.PartyProvider},
	{booking.StatusInProgress, booking.StatusCancelled}: {booking.PartyProvider},
}

func TestCheckTransition_FullGrid(t *testing.T) {
	parties := []booking.Party{booking.PartyClient, booking.PartyProvider}

	for _, from := range booking.AllStatuses() {
		for _, to := range booking.AllStatuses() {
			for _, party := range parties {
				name := string(from) + "->" + string(to) + " by " + string(party)
				t.Run(name, func(t *testing.T) {
					err := booking.CheckTransition(from, to, party)

					allowed, listed := expectedTransitions[[2]booking.Status{from, to}]
					switch {
					case !listed:
						var te *booking.TransitionError
						require.ErrorAs(t, err, &te)
						assert.Equal(t, from, te.From)
						assert.Equal(t, to, te.To)
						assert.ErrorIs(t, err, errs.ErrInvalidTransition)
						assert.NotErrorIs(t, err, errs.ErrForbidden)
					case contains(allowed, party):
						assert.NoError(t, err)
					default:
						assert.ErrorIs(t, err, booking.ErrActorNotAllowed)
						assert.ErrorIs(t, err, errs.ErrForbidden)
						assert.NotErrorIs(t, err, errs.ErrInvalidTransition)
					}
				})
			}
		}
	}
}

func TestCheckTransition_TerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range booking.AllStatuses() {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range booking.AllStatuses() {
			assert.False(t, booking.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAllowedTargets(t *testing.T) {
	cases := []struct {
		from  booking.Status
		party booking.Party
		want  []booking.Status
	}{
		{booking.StatusPending, booking.PartyProvider, []booking.Status{booking.StatusConfirmed, booking.StatusRejected}},
		{booking.StatusPending, booking.PartyClient, []booking.Status{booking.StatusCancelled}},
		{booking.StatusConfirmed, booking.PartyProvider, []booking.Status{booking.StatusInProgress, booking.StatusCancelled}},
		{booking.StatusConfirmed, booking.PartyClient, []booking.Status{booking.StatusCancelled}},
		{booking.StatusInProgress, booking.PartyProvider, []booking.Status{booking.StatusCompleted, booking.StatusCancelled}},
		{booking.StatusInProgress, booking.PartyClient, nil},
		{booking.StatusCompleted, booking.PartyProvider, nil},
	}

	for _, c := range cases {
		t.Run(string(c.from)+"/"+string(c.party), func(t *testing.T) {
			assert.Equal(t, c.want, booking.AllowedTargets(c.from, c.party))
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	active := map[booking.Status]bool{
		booking.StatusPending:    true,
		booking.StatusConfirmed:  true,
		booking.StatusInProgress: true,
	}
	for _, s := range booking.AllStatuses() {
		assert.True(t, s.IsValid())
		assert.Equal(t, active[s], s.IsActive(), string(s))
		assert.Equal(t, !active[s], s.IsTerminal(), string(s))
	}

	_, err := booking.ParseStatus("archived")
	assert.ErrorIs(t, err, errs.ErrValidation)

	got, err := booking.ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusInProgress, got)
}

func contains(ps []booking.Party, p booking.Party) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}

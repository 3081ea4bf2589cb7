package services_test

import (
	"context"
	"testing"

	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundFixture struct {
	store      *memStore
	playerRepo *memTournamentPlayerRepo
	roundRepo  *memRoundRepo
	standings  *memStandingRepo
	matches    *memMatchRepo
	svc        services.RoundService
}

func newRoundFixture() *roundFixture {
	store := newMemStore()
	f := &roundFixture{
		store:      store,
		playerRepo: &memTournamentPlayerRepo{store: store},
		roundRepo:  &memRoundRepo{store: store},
		standings:  &memStandingRepo{store: store},
		matches:    &memMatchRepo{store: store},
	}
	f.svc = services.NewRoundService(&memTxManager{}, f.playerRepo, f.roundRepo, f.standings, f.matches, fixedShuffler{})
	return f
}

func (f *roundFixture) registerPlayers(t *testing.T, tournamentID, count int) []int {
	t.Helper()
	ids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		player := &models.TournamentPlayer{
			TournamentID: tournamentID,
			UserID:       int64(1000 + i),
			Status:       models.TournamentPlayerActive,
		}
		require.NoError(t, f.playerRepo.Create(context.Background(), nil, player))
		ids = append(ids, player.ID)
	}
	return ids
}

func TestCreateRoundBuildsGroupsStandingsAndMatches(t *testing.T) {
	f := newRoundFixture()
	ctx := context.Background()
	f.registerPlayers(t, 1, 9)

	round, err := f.svc.CreateRound(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, models.RoundStatusRunning, round.Status)

	groups, err := f.roundRepo.ListGroupsByRound(ctx, nil, round.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	// 9 участников делятся на 4 + 5
	assert.Equal(t, 4, groups[0].Size)
	assert.Equal(t, 5, groups[1].Size)
	assert.Equal(t, 1, groups[0].GroupIndex)
	assert.Equal(t, 2, groups[1].GroupIndex)

	standings, err := f.svc.RoundStandings(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, standings, 9)
	for _, s := range standings {
		assert.Zero(t, s.Score)
	}

	// круговой турнир: C(4,2) + C(5,2) матчей
	first, err := f.matches.ListByGroup(ctx, nil, groups[0].ID)
	require.NoError(t, err)
	assert.Len(t, first, 6)
	second, err := f.matches.ListByGroup(ctx, nil, groups[1].ID)
	require.NoError(t, err)
	assert.Len(t, second, 10)

	for _, m := range append(first, second...) {
		assert.Equal(t, models.MatchStatusPending, m.Status)
		assert.Less(t, m.Player1ID, m.Player2ID)
	}
}

func TestCreateRoundSixPlayersSingleGroup(t *testing.T) {
	f := newRoundFixture()
	ctx := context.Background()
	f.registerPlayers(t, 1, 6)

	round, err := f.svc.CreateRound(ctx, 1, 1)
	require.NoError(t, err)

	groups, err := f.roundRepo.ListGroupsByRound(ctx, nil, round.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 6, groups[0].Size)
}

func TestCreateRoundIsIdempotent(t *testing.T) {
	f := newRoundFixture()
	ctx := context.Background()
	f.registerPlayers(t, 1, 8)

	first, err := f.svc.CreateRound(ctx, 1, 1)
	require.NoError(t, err)

	second, err := f.svc.CreateRound(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// группы не перегенерируются
	groups, err := f.roundRepo.ListGroupsByRound(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	standings, err := f.svc.RoundStandings(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, standings, 8)
}

func TestCreateRoundRequiresTwoPlayers(t *testing.T) {
	f := newRoundFixture()
	ctx := context.Background()
	f.registerPlayers(t, 1, 1)

	_, err := f.svc.CreateRound(ctx, 1, 1)
	assert.ErrorIs(t, err, services.ErrNotEnoughPlayers)
}

func TestCreateRoundSkipsInactivePlayers(t *testing.T) {
	f := newRoundFixture()
	ctx := context.Background()
	ids := f.registerPlayers(t, 1, 5)
	require.NoError(t, f.playerRepo.UpdateStatus(ctx, nil, ids[0], models.TournamentPlayerInactive))

	round, err := f.svc.CreateRound(ctx, 1, 1)
	require.NoError(t, err)

	groups, err := f.roundRepo.ListGroupsByRound(ctx, nil, round.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 4, groups[0].Size)

	standings, err := f.svc.RoundStandings(ctx, 1, 1)
	require.NoError(t, err)
	for _, s := range standings {
		assert.NotEqual(t, ids[0], s.TournamentPlayerID)
	}
}

func TestRoundStandingsUnknownRoundIsEmpty(t *testing.T) {
	f := newRoundFixture()

	standings, err := f.svc.RoundStandings(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Empty(t, standings)
}

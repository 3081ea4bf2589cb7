package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Dosada05/rps-arena/game"
	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchFixture struct {
	store      *memStore
	playerRepo *memTournamentPlayerRepo
	matchRepo  *memMatchRepo
	standings  *memStandingRepo
	svc        services.MatchService

	round *models.Round
	group *models.Group
	p1    *models.TournamentPlayer
	p2    *models.TournamentPlayer
	match *models.Match
}

// newMatchFixture готовит турнир с двумя активными игроками,
// одной группой и одним pending-матчем между ними.
func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()

	f := &matchFixture{
		store:      store,
		playerRepo: &memTournamentPlayerRepo{store: store},
		matchRepo:  &memMatchRepo{store: store},
		standings:  &memStandingRepo{store: store},
	}
	f.svc = services.NewMatchService(&memTxManager{}, f.playerRepo, f.matchRepo, f.standings, nil, nil)

	f.p1 = &models.TournamentPlayer{TournamentID: 1, UserID: 100, Status: models.TournamentPlayerActive}
	require.NoError(t, f.playerRepo.Create(ctx, nil, f.p1))
	f.p2 = &models.TournamentPlayer{TournamentID: 1, UserID: 200, Status: models.TournamentPlayerActive}
	require.NoError(t, f.playerRepo.Create(ctx, nil, f.p2))

	roundRepo := &memRoundRepo{store: store}
	f.round = &models.Round{TournamentID: 1, RoundNumber: 1, Type: models.RoundTypeGroup, Status: models.RoundStatusRunning}
	require.NoError(t, roundRepo.Create(ctx, nil, f.round))
	f.group = &models.Group{TournamentID: 1, RoundID: f.round.ID, GroupIndex: 1, Size: 2, Status: models.RoundStatusRunning}
	require.NoError(t, roundRepo.CreateGroup(ctx, nil, f.group))

	for _, p := range []*models.TournamentPlayer{f.p1, f.p2} {
		standing := &models.GroupStanding{
			TournamentID:       1,
			RoundID:            f.round.ID,
			GroupID:            f.group.ID,
			TournamentPlayerID: p.ID,
		}
		require.NoError(t, f.standings.Create(ctx, nil, standing))
	}

	f.match = &models.Match{
		TournamentID: 1,
		RoundID:      f.round.ID,
		GroupID:      f.group.ID,
		Player1ID:    f.p1.ID,
		Player2ID:    f.p2.ID,
		Status:       models.MatchStatusPending,
	}
	require.NoError(t, f.matchRepo.Create(ctx, nil, f.match))
	return f
}

func (f *matchFixture) scoreOf(t *testing.T, playerID int) int {
	t.Helper()
	standings, err := f.standings.ListByRound(context.Background(), nil, f.round.ID)
	require.NoError(t, err)
	for _, s := range standings {
		if s.TournamentPlayerID == playerID {
			return s.Score
		}
	}
	t.Fatalf("no standing for player %d", playerID)
	return 0
}

func TestSubmitMoveFullMatch(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	first, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "rock")
	require.NoError(t, err)
	assert.Equal(t, services.MoveStatusWaitingForOpponent, first.Status)
	require.NotNil(t, first.Player1Move)
	assert.Equal(t, models.MoveRock, *first.Player1Move)
	assert.Nil(t, first.Player2Move)
	assert.Nil(t, first.Result)

	second, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 200, "scissors")
	require.NoError(t, err)
	assert.Equal(t, services.MoveStatusFinished, second.Status)
	require.NotNil(t, second.Result)
	assert.Equal(t, models.MatchResultPlayer1Win, *second.Result)
	require.NotNil(t, second.Player1Delta)
	require.NotNil(t, second.Player2Delta)
	assert.Equal(t, 3, *second.Player1Delta)
	assert.Equal(t, 0, *second.Player2Delta)

	assert.Equal(t, 3, f.scoreOf(t, f.p1.ID))
	assert.Equal(t, 0, f.scoreOf(t, f.p2.ID))
}

func TestSubmitMoveDraw(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "paper")
	require.NoError(t, err)
	outcome, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 200, "paper")
	require.NoError(t, err)

	require.NotNil(t, outcome.Result)
	assert.Equal(t, models.MatchResultDraw, *outcome.Result)
	assert.Equal(t, 1, f.scoreOf(t, f.p1.ID))
	assert.Equal(t, 1, f.scoreOf(t, f.p2.ID))
}

// Первый записанный ход в слоте сохраняется, повтор не перетирает его.
func TestSubmitMoveSlotIsWriteOnce(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "rock")
	require.NoError(t, err)

	repeat, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "paper")
	require.NoError(t, err)
	require.NotNil(t, repeat.Player1Move)
	assert.Equal(t, models.MoveRock, *repeat.Player1Move)
	assert.NotEqual(t, services.MoveStatusFinished, repeat.Status)
}

// Повторный ход в завершённый матч возвращает сохранённый результат
// и не начисляет очки второй раз.
func TestSubmitMoveAlreadyFinishedReplay(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "rock")
	require.NoError(t, err)
	_, err = f.svc.SubmitMove(ctx, 1, f.match.ID, 200, "scissors")
	require.NoError(t, err)

	replay, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 200, "paper")
	require.NoError(t, err)
	assert.Equal(t, services.MoveStatusAlreadyFinished, replay.Status)
	require.NotNil(t, replay.Result)
	assert.Equal(t, models.MatchResultPlayer1Win, *replay.Result)
	assert.Nil(t, replay.Player1Delta)

	assert.Equal(t, 3, f.scoreOf(t, f.p1.ID))
	assert.Equal(t, 0, f.scoreOf(t, f.p2.ID))
}

func TestSubmitMoveRejectsOutsiders(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	// не зарегистрирован в турнире
	_, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 999, "rock")
	assert.ErrorIs(t, err, services.ErrPlayerNotRegistered)

	// зарегистрирован, но не участник матча
	outsider := &models.TournamentPlayer{TournamentID: 1, UserID: 300, Status: models.TournamentPlayerActive}
	require.NoError(t, f.playerRepo.Create(ctx, nil, outsider))
	_, err = f.svc.SubmitMove(ctx, 1, f.match.ID, 300, "rock")
	assert.ErrorIs(t, err, services.ErrPlayerNotInMatch)
}

func TestSubmitMoveValidation(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "banana")
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	_, err = f.svc.SubmitMove(ctx, 1, f.match.ID+1000, 100, "rock")
	assert.ErrorIs(t, err, services.ErrMatchNotFound)
}

// Гонка двух ходов: ровно один из них завершает матч, очки
// начисляются один раз.
func TestSubmitMoveConcurrentSubmissions(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	outcomes := make([]*services.MoveOutcome, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		outcomes[0], errs[0] = f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "rock")
	}()
	go func() {
		defer wg.Done()
		outcomes[1], errs[1] = f.svc.SubmitMove(ctx, 1, f.match.ID, 200, "scissors")
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	finished := 0
	waiting := 0
	for _, outcome := range outcomes {
		switch outcome.Status {
		case services.MoveStatusFinished:
			finished++
		case services.MoveStatusWaitingForOpponent:
			waiting++
		}
	}
	assert.Equal(t, 1, finished)
	assert.Equal(t, 1, waiting)

	assert.Equal(t, 3, f.scoreOf(t, f.p1.ID))
	assert.Equal(t, 0, f.scoreOf(t, f.p2.ID))
}

// Полный сценарий: двое регистрируются, создаётся раунд с одной группой
// из двух и единственным матчем, матч разыгрывается до начисления очков.
func TestTournamentEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	playerRepo := &memTournamentPlayerRepo{store: store}
	roundRepo := &memRoundRepo{store: store}
	standings := &memStandingRepo{store: store}
	matches := &memMatchRepo{store: store}
	tx := &memTxManager{}

	roundSvc := services.NewRoundService(tx, playerRepo, roundRepo, standings, matches, fixedShuffler{})
	matchSvc := services.NewMatchService(tx, playerRepo, matches, standings, nil, nil)

	for _, userID := range []int64{10, 20} {
		player := &models.TournamentPlayer{TournamentID: 1, UserID: userID, Status: models.TournamentPlayerActive}
		require.NoError(t, playerRepo.Create(ctx, nil, player))
	}

	round, err := roundSvc.CreateRound(ctx, 1, 1)
	require.NoError(t, err)
	groups, err := roundRepo.ListGroupsByRound(ctx, nil, round.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Size)

	match, err := matchSvc.NextMatchForPlayer(ctx, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, match)

	first, err := matchSvc.SubmitMove(ctx, 1, match.ID, 10, "rock")
	require.NoError(t, err)
	assert.Equal(t, services.MoveStatusWaitingForOpponent, first.Status)

	second, err := matchSvc.SubmitMove(ctx, 1, match.ID, 20, "scissors")
	require.NoError(t, err)
	assert.Equal(t, services.MoveStatusFinished, second.Status)
	require.NotNil(t, second.Result)
	assert.Equal(t, models.MatchResultPlayer1Win, *second.Result)

	rows, err := roundSvc.RoundStandings(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Score)
	assert.Equal(t, 0, rows[1].Score)
}

func TestNextMatchForPlayer(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	match, err := f.svc.NextMatchForPlayer(ctx, 1, 100)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, f.match.ID, match.ID)

	_, err = f.svc.NextMatchForPlayer(ctx, 1, 999)
	assert.ErrorIs(t, err, services.ErrPlayerNotRegistered)

	// после завершения матча играть больше нечего
	_, err = f.svc.SubmitMove(ctx, 1, f.match.ID, 100, "rock")
	require.NoError(t, err)
	_, err = f.svc.SubmitMove(ctx, 1, f.match.ID, 200, "paper")
	require.NoError(t, err)

	match, err = f.svc.NextMatchForPlayer(ctx, 1, 100)
	require.NoError(t, err)
	assert.Nil(t, match)
}

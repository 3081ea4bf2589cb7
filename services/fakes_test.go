package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/repositories"
)

// memStore — общее состояние in-memory фейков. Мьютекс защищает каждую
// отдельную операцию; сериализацию целых транзакций обеспечивает
// memTxManager.
type memStore struct {
	mu     sync.Mutex
	nextID int

	tournaments       []*models.Tournament
	tournamentPlayers []*models.TournamentPlayer
	rounds            []*models.Round
	groups            []*models.Group
	standings         []*models.GroupStanding
	matches           []*models.Match
	rooms             []*models.Room
	roomPlayers       []*models.RoomPlayer
	turns             []*models.Turn
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

// memTxManager держит одну "транзакцию" в полёте: пока fn не вернулась,
// конкурирующий переход ждёт, как при блокировке строки в Postgres.
type memTxManager struct {
	mu sync.Mutex
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(nil)
}

// --- tournaments ---

type memTournamentRepo struct {
	store *memStore
}

func (r *memTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	tournament.ID = r.store.id()
	tournament.CreatedAt = time.Now()
	clone := *tournament
	r.store.tournaments = append(r.store.tournaments, &clone)
	return nil
}

func (r *memTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.tournaments {
		if t.ID == id {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *memTournamentRepo) ListUpcoming(ctx context.Context, limit int) ([]*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.store.tournaments {
		if t.Status == models.TournamentStatusScheduled || t.Status == models.TournamentStatusActive {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- tournament players ---

type memTournamentPlayerRepo struct {
	store *memStore
}

func (r *memTournamentPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.TournamentPlayer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.tournamentPlayers {
		if p.TournamentID == player.TournamentID && p.UserID == player.UserID {
			return repositories.ErrTournamentPlayerConflict
		}
	}
	player.ID = r.store.id()
	player.CreatedAt = time.Now()
	clone := *player
	r.store.tournamentPlayers = append(r.store.tournamentPlayers, &clone)
	return nil
}

func (r *memTournamentPlayerRepo) GetByTournamentAndUser(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, userID int64) (*models.TournamentPlayer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.tournamentPlayers {
		if p.TournamentID == tournamentID && p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrTournamentPlayerNotFound
}

func (r *memTournamentPlayerRepo) ListActiveIDs(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ids := make([]int, 0)
	for _, p := range r.store.tournamentPlayers {
		if p.TournamentID == tournamentID && p.Status == models.TournamentPlayerActive {
			ids = append(ids, p.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *memTournamentPlayerRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentPlayerStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.tournamentPlayers {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return repositories.ErrTournamentPlayerNotFound
}

// --- rounds and groups ---

type memRoundRepo struct {
	store *memStore
}

func (r *memRoundRepo) Create(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	round.ID = r.store.id()
	round.CreatedAt = time.Now()
	clone := *round
	r.store.rounds = append(r.store.rounds, &clone)
	return nil
}

func (r *memRoundRepo) GetByTournamentAndNumber(ctx context.Context, exec repositories.SQLExecutor, tournamentID, roundNumber int) (*models.Round, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rd := range r.store.rounds {
		if rd.TournamentID == tournamentID && rd.RoundNumber == roundNumber {
			clone := *rd
			return &clone, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r *memRoundRepo) CreateGroup(ctx context.Context, exec repositories.SQLExecutor, group *models.Group) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	group.ID = r.store.id()
	clone := *group
	r.store.groups = append(r.store.groups, &clone)
	return nil
}

func (r *memRoundRepo) ListGroupsByRound(ctx context.Context, exec repositories.SQLExecutor, roundID int) ([]*models.Group, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Group, 0)
	for _, g := range r.store.groups {
		if g.RoundID == roundID {
			clone := *g
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupIndex < out[j].GroupIndex })
	return out, nil
}

// --- standings ---

type memStandingRepo struct {
	store *memStore
}

func (r *memStandingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, standing *models.GroupStanding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	standing.ID = r.store.id()
	clone := *standing
	r.store.standings = append(r.store.standings, &clone)
	return nil
}

func (r *memStandingRepo) AddScore(ctx context.Context, exec repositories.SQLExecutor, roundID, groupID, tournamentPlayerID, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.standings {
		if s.RoundID == roundID && s.GroupID == groupID && s.TournamentPlayerID == tournamentPlayerID {
			s.Score += delta
			return nil
		}
	}
	return repositories.ErrStandingNotFound
}

func (r *memStandingRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, groupID int) ([]*models.GroupStanding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.GroupStanding, 0)
	for _, s := range r.store.standings {
		if s.GroupID == groupID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sortStandings(out)
	return out, nil
}

func (r *memStandingRepo) ListByRound(ctx context.Context, exec repositories.SQLExecutor, roundID int) ([]*models.GroupStanding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.GroupStanding, 0)
	for _, s := range r.store.standings {
		if s.RoundID == roundID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sortStandings(out)
	return out, nil
}

func sortStandings(standings []*models.GroupStanding) {
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].TournamentPlayerID < standings[j].TournamentPlayerID
	})
}

// --- matches ---

type memMatchRepo struct {
	store *memStore
}

func (r *memMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match.ID = r.store.id()
	match.CreatedAt = time.Now()
	clone := *match
	r.store.matches = append(r.store.matches, &clone)
	return nil
}

func (r *memMatchRepo) find(matchID int) *models.Match {
	for _, m := range r.store.matches {
		if m.ID == matchID {
			return m
		}
	}
	return nil
}

func (r *memMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, tournamentID, matchID int) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.find(matchID)
	if m == nil || m.TournamentID != tournamentID {
		return nil, repositories.ErrMatchNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memMatchRepo) NextForPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, tournamentPlayerID int) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var best *models.Match
	for _, m := range r.store.matches {
		if m.TournamentID != tournamentID || m.Status == models.MatchStatusFinished {
			continue
		}
		if m.Player1ID != tournamentPlayerID && m.Player2ID != tournamentPlayerID {
			continue
		}
		if best == nil || m.ID < best.ID {
			best = m
		}
	}
	if best == nil {
		return nil, repositories.ErrMatchNotFound
	}
	clone := *best
	return &clone, nil
}

func (r *memMatchRepo) SetMove(ctx context.Context, exec repositories.SQLExecutor, matchID int, seat models.Seat, move models.Move) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.find(matchID)
	if m == nil {
		return repositories.ErrMatchNotFound
	}
	if seat == models.Seat1 {
		m.Player1Move = &move
	} else {
		m.Player2Move = &move
	}
	return nil
}

func (r *memMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, matchID int, status models.MatchStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.find(matchID)
	if m == nil {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *memMatchRepo) Finish(ctx context.Context, exec repositories.SQLExecutor, matchID int, result models.MatchResult) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.find(matchID)
	if m == nil {
		return repositories.ErrMatchNotFound
	}
	now := time.Now()
	m.Result = &result
	m.Status = models.MatchStatusFinished
	m.FinishedAt = &now
	return nil
}

func (r *memMatchRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, groupID int) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if m.GroupID == groupID {
			clone := *m
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- rooms ---

type memRoomRepo struct {
	store *memStore
}

func (r *memRoomRepo) Create(ctx context.Context, exec repositories.SQLExecutor, room *models.Room) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	room.ID = r.store.id()
	room.CreatedAt = time.Now()
	clone := *room
	r.store.rooms = append(r.store.rooms, &clone)
	return nil
}

func (r *memRoomRepo) find(id int) *models.Room {
	for _, room := range r.store.rooms {
		if room.ID == id {
			return room
		}
	}
	return nil
}

func (r *memRoomRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Room, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	room := r.find(id)
	if room == nil {
		return nil, repositories.ErrRoomNotFound
	}
	clone := *room
	return &clone, nil
}

func (r *memRoomRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Room, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *memRoomRepo) FindOpenRoomID(ctx context.Context, exec repositories.SQLExecutor) (int, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var best *models.Room
	for _, room := range r.store.rooms {
		if room.Status != models.RoomStatusWaiting && room.Status != models.RoomStatusActive {
			continue
		}
		seated := 0
		for _, p := range r.store.roomPlayers {
			if p.RoomID == room.ID {
				seated++
			}
		}
		if seated >= 2 {
			continue
		}
		if best == nil || room.CreatedAt.Before(best.CreatedAt) {
			best = room
		}
	}
	if best == nil {
		return 0, false, nil
	}
	return best.ID, true, nil
}

func (r *memRoomRepo) Activate(ctx context.Context, exec repositories.SQLExecutor, id int) (models.RoomStatus, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	room := r.find(id)
	if room == nil {
		return "", repositories.ErrRoomNotFound
	}
	room.Status = models.RoomStatusActive
	if room.StartedAt == nil {
		now := time.Now()
		room.StartedAt = &now
	}
	return room.Status, nil
}

// --- room players ---

type memRoomPlayerRepo struct {
	store *memStore
}

func (r *memRoomPlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.RoomPlayer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.roomPlayers {
		if p.RoomID == player.RoomID && p.Seat == player.Seat {
			return repositories.ErrSeatTaken
		}
	}
	player.ID = r.store.id()
	player.JoinedAt = time.Now()
	clone := *player
	r.store.roomPlayers = append(r.store.roomPlayers, &clone)
	return nil
}

func (r *memRoomPlayerRepo) GetByRoomAndUser(ctx context.Context, exec repositories.SQLExecutor, roomID int, userID int64) (*models.RoomPlayer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.roomPlayers {
		if p.RoomID == roomID && p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrRoomPlayerNotFound
}

func (r *memRoomPlayerRepo) ListByRoom(ctx context.Context, exec repositories.SQLExecutor, roomID int) ([]*models.RoomPlayer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.RoomPlayer, 0)
	for _, p := range r.store.roomPlayers {
		if p.RoomID == roomID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out, nil
}

func (r *memRoomPlayerRepo) CountByRoom(ctx context.Context, exec repositories.SQLExecutor, roomID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, p := range r.store.roomPlayers {
		if p.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (r *memRoomPlayerRepo) ApplyDraw(ctx context.Context, exec repositories.SQLExecutor, roomID, points int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.roomPlayers {
		if p.RoomID == roomID {
			p.TotalPoints += points
			p.RoundsDraw++
		}
	}
	return nil
}

func (r *memRoomPlayerRepo) ApplyWin(ctx context.Context, exec repositories.SQLExecutor, roomID int, winner models.Seat, points int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.roomPlayers {
		if p.RoomID != roomID {
			continue
		}
		if p.Seat == winner {
			p.TotalPoints += points
			p.RoundsWon++
		} else {
			p.RoundsLost++
		}
	}
	return nil
}

// --- turns ---

type memTurnRepo struct {
	store *memStore
}

func (r *memTurnRepo) Ensure(ctx context.Context, exec repositories.SQLExecutor, roomID, roundIndex, gameIndex int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.find(roomID, roundIndex, gameIndex) != nil {
		return nil
	}
	turn := &models.Turn{
		ID:         r.store.id(),
		RoomID:     roomID,
		RoundIndex: roundIndex,
		GameIndex:  gameIndex,
		Status:     models.TurnStatusPending,
		CreatedAt:  time.Now(),
	}
	r.store.turns = append(r.store.turns, turn)
	return nil
}

func (r *memTurnRepo) find(roomID, roundIndex, gameIndex int) *models.Turn {
	for _, t := range r.store.turns {
		if t.RoomID == roomID && t.RoundIndex == roundIndex && t.GameIndex == gameIndex {
			return t
		}
	}
	return nil
}

func (r *memTurnRepo) findByID(turnID int) *models.Turn {
	for _, t := range r.store.turns {
		if t.ID == turnID {
			return t
		}
	}
	return nil
}

func (r *memTurnRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, roomID, roundIndex, gameIndex int) (*models.Turn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := r.find(roomID, roundIndex, gameIndex)
	if t == nil {
		return nil, repositories.ErrTurnNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *memTurnRepo) SetMove(ctx context.Context, exec repositories.SQLExecutor, turnID int, seat models.Seat, move models.Move) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := r.findByID(turnID)
	if t == nil {
		return repositories.ErrTurnNotFound
	}
	if seat == models.Seat1 {
		t.Player1Move = &move
	} else {
		t.Player2Move = &move
	}
	return nil
}

func (r *memTurnRepo) Finish(ctx context.Context, exec repositories.SQLExecutor, turnID int, winner *models.Seat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := r.findByID(turnID)
	if t == nil {
		return repositories.ErrTurnNotFound
	}
	now := time.Now()
	t.WinnerSeat = winner
	t.Status = models.TurnStatusFinished
	t.FinishedAt = &now
	return nil
}

func (r *memTurnRepo) ListByRoomAndRound(ctx context.Context, exec repositories.SQLExecutor, roomID, roundIndex int) ([]*models.Turn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Turn, 0)
	for _, t := range r.store.turns {
		if t.RoomID == roomID && t.RoundIndex == roundIndex {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameIndex < out[j].GameIndex })
	return out, nil
}

// fixedShuffler оставляет порядок как есть: разбиение на группы
// становится детерминированным.
type fixedShuffler struct{}

func (fixedShuffler) Shuffle(n int, swap func(i, j int)) {}

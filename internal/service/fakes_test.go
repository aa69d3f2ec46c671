package service

import (
	"context"
	"sync"

	"dice-games-bot/internal/game"
	"dice-games-bot/internal/model"
	"dice-games-bot/internal/repository"
)

// fakeStore is an in-memory UserStore with per-method error injection.
type fakeStore struct {
	mu    sync.Mutex
	users map[int64]*model.User
	errs  map[string]error
	calls map[string]int

	// stealBusy makes TryMarkBusy behave as if a concurrent request set
	// the flag between the caller's read and its conditional update.
	stealBusy bool
}

func newFakeStore(users ...*model.User) *fakeStore {
	s := &fakeStore{
		users: make(map[int64]*model.User),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
	for _, u := range users {
		s.users[u.TelegramID] = u
	}
	return s
}

func (s *fakeStore) hit(method string) error {
	s.calls[method]++
	return s.errs[method]
}

func (s *fakeStore) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *fakeStore) snapshot(id int64) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *fakeStore) get(id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("GetByID"); err != nil {
		return nil, err
	}
	return s.get(id)
}

func (s *fakeStore) GetOrCreate(_ context.Context, id int64, name string) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("GetOrCreate"); err != nil {
		return nil, false, err
	}
	if u, err := s.get(id); err == nil {
		return u, false, nil
	}
	s.users[id] = &model.User{TelegramID: id, DisplayName: name, Coins: model.DefaultCoins}
	u, _ := s.get(id)
	return u, true, nil
}

func (s *fakeStore) TryMarkBusy(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("TryMarkBusy"); err != nil {
		return false, err
	}
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	if s.stealBusy {
		u.Busy = true
	}
	if u.Busy || u.Coins <= 0 {
		return false, nil
	}
	u.Busy = true
	return true, nil
}

func (s *fakeStore) Settle(_ context.Context, id int64, victories, coins int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("Settle"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Victories += victories
	u.Coins += coins
	u.Games++
	u.Busy = false
	return s.get(id)
}

func (s *fakeStore) ReleaseAllBusy(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("ReleaseAllBusy"); err != nil {
		return 0, err
	}
	var n int64
	for _, u := range s.users {
		if u.Busy {
			u.Busy = false
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) GrantBonus(_ context.Context, id int64, coins int64, next float64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("GrantBonus"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Coins += coins
	u.LastBonusAt = next
	return s.get(id)
}

func (s *fakeStore) ListForRanking(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("ListForRanking"); err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(s.users))
	for id := range s.users {
		u, _ := s.get(id)
		users = append(users, u)
	}
	return users, nil
}

func (s *fakeStore) TopByVictories(ctx context.Context, limit int) ([]*model.User, error) {
	users, err := s.ListForRanking(ctx)
	if err != nil {
		return nil, err
	}
	ranks := AssignRanks(users)
	top := make([]*model.User, len(users))
	for _, u := range users {
		top[ranks[u.TelegramID]-1] = u
	}
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *fakeStore) UpdateRankings(_ context.Context, ranks map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.hit("UpdateRankings"); err != nil {
		return err
	}
	for id, r := range ranks {
		if u, ok := s.users[id]; ok {
			u.Ranking = r
		}
	}
	return nil
}

// fixedRoller always lands on value and counts its calls.
type fixedRoller struct {
	mu    sync.Mutex
	value int
	err   error
	calls int
}

func (r *fixedRoller) Roll(_ context.Context, _ *game.Game) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.value, r.err
}

func (r *fixedRoller) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

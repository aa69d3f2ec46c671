package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"dice-games-bot/internal/model"
)

// RankingService recomputes victory rankings and serves ranking-dependent
// reads. Rankings are only recomputed on demand, right before such a read.
type RankingService struct {
	users UserStore
	top   int
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(users UserStore, top int) *RankingService {
	return &RankingService{users: users, top: top}
}

// RecomputeRankings assigns every user a 1-based rank by descending victories.
func (s *RankingService) RecomputeRankings(ctx context.Context) error {
	users, err := s.users.ListForRanking(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for ranking: %w", err)
	}
	if err := s.users.UpdateRankings(ctx, AssignRanks(users)); err != nil {
		return fmt.Errorf("failed to store rankings: %w", err)
	}
	return nil
}

// Leaderboard recomputes rankings and returns the top users.
func (s *RankingService) Leaderboard(ctx context.Context) ([]*model.User, error) {
	if err := s.RecomputeRankings(ctx); err != nil {
		return nil, err
	}
	users, err := s.users.TopByVictories(ctx, s.top)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return users, nil
}

// Stats recomputes rankings and returns the user's fresh record.
func (s *RankingService) Stats(ctx context.Context, telegramID int64) (*model.User, error) {
	if err := s.RecomputeRankings(ctx); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, telegramID)
}

// AssignRanks orders users by victories descending, ties by Telegram ID
// ascending, and maps each ID to its position starting at 1.
func AssignRanks(users []*model.User) map[int64]int {
	ordered := slices.Clone(users)
	slices.SortStableFunc(ordered, func(a, b *model.User) int {
		if c := cmp.Compare(b.Victories, a.Victories); c != 0 {
			return c
		}
		return cmp.Compare(a.TelegramID, b.TelegramID)
	})

	ranks := make(map[int64]int, len(ordered))
	for i, u := range ordered {
		ranks[u.TelegramID] = i + 1
	}
	return ranks
}

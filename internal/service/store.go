// Package service provides business logic implementations.
package service

import (
	"context"

	"dice-games-bot/internal/model"
	"dice-games-bot/internal/repository"
)

// UserStore is the persistence the services need. It is satisfied by
// *repository.UserRepository.
type UserStore interface {
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	GetOrCreate(ctx context.Context, telegramID int64, displayName string) (*model.User, bool, error)
	TryMarkBusy(ctx context.Context, telegramID int64) (bool, error)
	Settle(ctx context.Context, telegramID int64, victoriesDelta, coinsDelta int64) (*model.User, error)
	ReleaseAllBusy(ctx context.Context) (int64, error)
	GrantBonus(ctx context.Context, telegramID int64, coins int64, nextBonusAt float64) (*model.User, error)
	ListForRanking(ctx context.Context) ([]*model.User, error)
	TopByVictories(ctx context.Context, limit int) ([]*model.User, error)
	UpdateRankings(ctx context.Context, ranks map[int64]int) error
}

var _ UserStore = (*repository.UserRepository)(nil)

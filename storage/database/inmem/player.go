package inmemdb

import (
	"context"

	"github.com/fastbreakhq/fastbreak/core/player"
)

type playerRepository struct {
	db *playerTable
}

func NewPlayerRepository(db *DB) player.Repository {
	return &playerRepository{db: db.player}
}

func (repo *playerRepository) query() []player.Player {
	ps := make([]player.Player, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		ps = append(ps, *p)
	}
	return ps
}

func (repo *playerRepository) CreatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *playerRepository) GetPlayerByID(_ context.Context, id string) (player.Player, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return player.Player{}, player.ErrNotFound
}

func (repo *playerRepository) QueryAllPlayers(_ context.Context) ([]player.Player, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *playerRepository) QueryPlayersByGuardian(_ context.Context, guardianID string) ([]player.Player, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var ps []player.Player
	for _, p := range repo.query() {
		if p.GuardianID == guardianID {
			ps = append(ps, p)
		}
	}
	return ps, nil
}

func (repo *playerRepository) UpdatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return player.Player{}, player.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *playerRepository) DeletePlayersByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

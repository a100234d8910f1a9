package inmemdb

import (
	"context"
	"strings"

	"github.com/fastbreakhq/fastbreak/core/guardian"
)

type guardianRepository struct {
	db *guardianTable
}

func NewGuardianRepository(db *DB) guardian.Repository {
	return &guardianRepository{db: db.guardian}
}

func (repo *guardianRepository) query() []guardian.Guardian {
	gs := make([]guardian.Guardian, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		gs = append(gs, *g)
	}
	return gs
}

func (repo *guardianRepository) CheckEmailUniqueness(_ context.Context, email string, excluded ...guardian.Guardian) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, g := range repo.query() {
		if !strings.EqualFold(g.Email, email) {
			continue
		}
		if isExcluded(g.ID, excluded) {
			continue
		}
		return guardian.ErrEmailExists
	}
	return nil
}

func (repo *guardianRepository) CreateGuardian(_ context.Context, g guardian.Guardian) (guardian.Guardian, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *guardianRepository) QueryAllGuardians(_ context.Context) ([]guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *guardianRepository) GetGuardianByID(_ context.Context, id string) (guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.table[id]; ok {
		return *g, nil
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) GetGuardianByEmail(_ context.Context, email string) (guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, g := range repo.query() {
		if strings.EqualFold(g.Email, email) {
			return g, nil
		}
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) FilterGuardians(_ context.Context, filter guardian.QueryFilter) ([]guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var gs []guardian.Guardian
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, g := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(g.FullName), search) &&
			!strings.Contains(strings.ToLower(g.Email), search) {
			continue
		}
		if filter.IsCoach != nil && g.IsCoach != *filter.IsCoach {
			continue
		}
		if filter.IsAdmin != nil && g.IsAdmin != *filter.IsAdmin {
			continue
		}
		gs = append(gs, g)
	}
	return gs, nil
}

func (repo *guardianRepository) UpdateGuardian(_ context.Context, g guardian.Guardian) (guardian.Guardian, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[g.ID]; !ok {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *guardianRepository) DeleteGuardiansByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func isExcluded(id string, excluded []guardian.Guardian) bool {
	for _, g := range excluded {
		if g.ID == id {
			return true
		}
	}
	return false
}

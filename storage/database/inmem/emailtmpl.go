package inmemdb

import (
	"context"
	"sort"

	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
)

type emailTemplateRepository struct {
	db *emailTemplateTable
}

func NewEmailTemplateRepository(db *DB) emailtmpl.Repository {
	return &emailTemplateRepository{db: db.emailtpl}
}

func (repo *emailTemplateRepository) CreateTemplate(_ context.Context, t emailtmpl.Template) (emailtmpl.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *emailTemplateRepository) QueryAllTemplates(_ context.Context) ([]emailtmpl.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ts := make([]emailtmpl.Template, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		ts = append(ts, *t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })
	return ts, nil
}

func (repo *emailTemplateRepository) GetTemplateByID(_ context.Context, id string) (emailtmpl.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return emailtmpl.Template{}, emailtmpl.ErrNotFound
}

func (repo *emailTemplateRepository) UpdateTemplate(_ context.Context, t emailtmpl.Template) (emailtmpl.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.ID]; !ok {
		return emailtmpl.Template{}, emailtmpl.ErrNotFound
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *emailTemplateRepository) DeleteTemplatesByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

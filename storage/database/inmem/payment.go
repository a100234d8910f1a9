package inmemdb

import (
	"context"
	"sort"

	"github.com/fastbreakhq/fastbreak/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, rec payment.Record) (payment.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *paymentRepository) GetPaymentByID(_ context.Context, id string) (payment.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return payment.Record{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPaymentsByGuardian(_ context.Context, guardianID string) ([]payment.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []payment.Record
	for _, rec := range repo.db.table {
		if rec.GuardianID == guardianID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

package inmemdb

import (
	"sync"

	"github.com/fastbreakhq/fastbreak/core/emailtmpl"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
)

type (
	DB struct {
		guardian *guardianTable
		player   *playerTable
		payment  *paymentTable
		emailtpl *emailTemplateTable
	}

	guardianTable struct {
		table map[string]*guardian.Guardian
		mutex sync.RWMutex
	}

	playerTable struct {
		table map[string]*player.Player
		mutex sync.RWMutex
	}

	paymentTable struct {
		table map[string]*payment.Record
		mutex sync.RWMutex
	}

	emailTemplateTable struct {
		table map[string]*emailtmpl.Template
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		guardian: &guardianTable{table: make(map[string]*guardian.Guardian)},
		player:   &playerTable{table: make(map[string]*player.Player)},
		payment:  &paymentTable{table: make(map[string]*payment.Record)},
		emailtpl: &emailTemplateTable{table: make(map[string]*emailtmpl.Template)},
	}
	return db, nil
}

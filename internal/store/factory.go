package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Stores struct {
	pool *pgxpool.Pool
}

func NewStores(pool *pgxpool.Pool) *Stores {
	return &Stores{pool: pool}
}

func (s *Stores) Entries() EntryStore {
	return newEntryStore(s.pool)
}

func (s *Stores) Narratives() NarrativeStore {
	return newNarrativeStore(s.pool)
}

package store

import (
	"context"

	"gorm.io/gorm"
)

type datastore struct {
	db *gorm.DB
}

// New creates a Factory backed by the given GORM database handle.
func New(db *gorm.DB) Factory {
	return &datastore{db: db}
}

func (ds *datastore) Agents() AgentStore {
	return newAgents(ds.db)
}

func (ds *datastore) Knowledge() KnowledgeStore {
	return newKnowledge(ds.db)
}

func (ds *datastore) TX(ctx context.Context, fn func(Factory) error) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&datastore{db: tx})
	})
}

func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package sql

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"
)

// ConnectionKey identifies a physical database endpoint. Credentials aren't part of it.
type ConnectionKey struct {
	Host     string
	Driver   string
	Database string
	Port     int
}

// ConnectionCache shares one connection pool per endpoint between all the adapters using it.
// Entries are never evicted; Reset closes and forgets all of them.
type ConnectionCache struct {
	mutex     sync.Mutex
	templates map[string]Template
	databases map[ConnectionKey]*Database
}

// NewConnectionCache creates a cache able to open databases for the given templates, keyed by driver name.
func NewConnectionCache(templates map[string]Template) *ConnectionCache {
	return &ConnectionCache{
		templates: templates,
		databases: make(map[ConnectionKey]*Database),
	}
}

func (cc *ConnectionCache) Template(driver string) (Template, error) {
	template, ok := cc.templates[driver]
	if !ok {
		available := make([]string, 0, len(cc.templates))
		for name := range cc.templates {
			available = append(available, name)
		}
		return nil, errors.Errorf("no such database driver: %s, available drivers: %v", driver, available)
	}
	return template, nil
}

// Open returns the cached database for the key, connecting on first use.
func (cc *ConnectionCache) Open(ctx context.Context, key ConnectionKey, user, password string) (*Database, error) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	template, err := cc.Template(key.Driver)
	if err != nil {
		return nil, err
	}
	if key.Port == 0 {
		key.Port = template.DefaultPort()
	}

	if db, ok := cc.databases[key]; ok {
		return db, nil
	}

	db, err := Open(ctx, template, ConnectionParams{
		Host:     key.Host,
		Port:     key.Port,
		User:     user,
		Password: password,
		Database: key.Database,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't connect to %s database %s", key.Driver, key.Database)
	}
	log.Printf("connection cache: opened %s database %s on %s:%d", key.Driver, key.Database, key.Host, key.Port)
	cc.databases[key] = db

	return db, nil
}

func (cc *ConnectionCache) Len() int {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	return len(cc.databases)
}

// Reset closes every cached connection pool and empties the cache.
func (cc *ConnectionCache) Reset() error {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	var firstErr error
	for key, db := range cc.databases {
		if err := db.db.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "couldn't close %s database %s", key.Driver, key.Database)
		}
	}
	cc.databases = make(map[ConnectionKey]*Database)

	return firstErr
}

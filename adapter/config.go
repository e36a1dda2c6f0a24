package adapter

import (
	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/config"
)

// FileResolver makes a configured file queryable, returning the identity of the table it got loaded into.
type FileResolver func(file *config.FileConfig) (TableIdentity, error)

// FromConfig creates the adapter with the given id from the configuration.
// Adapters over files need a FileResolver, others may pass nil.
func FromConfig(cfg *config.Config, id string, files FileResolver, opts ...Option) (*Adapter, error) {
	adapterConfig, err := cfg.GetAdapterConfig(id)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't get adapter %s", id)
	}

	// An id column declared without a type is an integer, unlike expressions.
	decl := Declaration{
		ID:        adapterConfig.ID,
		IDColumn:  adapterConfig.IDColumn,
		IDType:    adapterConfig.IDType,
		RAColumn:  adapterConfig.RAColumn,
		DecColumn: adapterConfig.DecColumn,
	}

	switch {
	case adapterConfig.Database != "":
		dbConfig, err := cfg.GetDatabaseConfig(adapterConfig.Database)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't get database %s", adapterConfig.Database)
		}
		if err := fillDatabase(&decl, dbConfig); err != nil {
			return nil, errors.Wrapf(err, "invalid database %s", dbConfig.Name)
		}
	case adapterConfig.File != "":
		if files == nil {
			return nil, errors.Errorf("adapter %s queries file %s but files can't be loaded", id, adapterConfig.File)
		}
		fileConfig, err := cfg.GetFileConfig(adapterConfig.File)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't get file %s", adapterConfig.File)
		}
		identity, err := files(fileConfig)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't load file %s", fileConfig.Name)
		}
		decl.Identity = identity
	}
	if adapterConfig.Table != "" {
		decl.Identity.Table = adapterConfig.Table
	}

	for _, column := range adapterConfig.Columns {
		decl.Columns = append(decl.Columns, catalogs.NewColumnMapping(column.Name, column.Expression, column.Type))
	}
	for _, def := range adapterConfig.Defaults {
		value, err := catalogs.ConvertValue(def.Type, def.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid default %s of adapter %s", def.Name, id)
		}
		decl.Defaults = append(decl.Defaults, Default{Name: def.Name, Value: value})
	}

	return New(decl, opts...)
}

func fillDatabase(decl *Declaration, dbConfig *config.DatabaseConfig) error {
	decl.Identity.Driver = dbConfig.Type

	if dbConfig.Type == "sqlite" {
		path, err := config.GetString(dbConfig.Config, "path")
		if err != nil {
			return errors.Wrap(err, "couldn't get path")
		}
		decl.Identity.Database = path
		return nil
	}

	host, port, err := config.GetAddress(dbConfig.Config, "address", config.WithDefault([]interface{}{"localhost", 0}))
	if err != nil {
		return errors.Wrap(err, "couldn't get address")
	}
	decl.Identity.Host = host
	decl.Identity.Port = port

	decl.Identity.Database, err = config.GetString(dbConfig.Config, "databaseName")
	if err != nil {
		return errors.Wrap(err, "couldn't get databaseName")
	}
	decl.User, err = config.GetString(dbConfig.Config, "user", config.WithDefault(""))
	if err != nil {
		return errors.Wrap(err, "couldn't get user")
	}
	decl.Password, err = config.GetString(dbConfig.Config, "password", config.WithDefault(""))
	if err != nil {
		return errors.Wrap(err, "couldn't get password")
	}
	return nil
}

// ChunkSize returns the chunk size configured for the database of an adapter, or the given default.
func ChunkSize(cfg *config.Config, id string, defaultSize int) (int, error) {
	adapterConfig, err := cfg.GetAdapterConfig(id)
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't get adapter %s", id)
	}
	if adapterConfig.Database == "" {
		return defaultSize, nil
	}
	dbConfig, err := cfg.GetDatabaseConfig(adapterConfig.Database)
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't get database %s", adapterConfig.Database)
	}
	return config.GetInt(dbConfig.Config, "options.chunkSize", config.WithDefault(defaultSize))
}

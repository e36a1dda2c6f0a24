package cmd

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs/adapter"
	"github.com/lsst-sims/catalogs/config"
	"github.com/lsst-sims/catalogs/storage/files"
	"github.com/lsst-sims/catalogs/storage/sql"
	"github.com/lsst-sims/catalogs/storage/sql/mysql"
	"github.com/lsst-sims/catalogs/storage/sql/postgres"
	"github.com/lsst-sims/catalogs/storage/sql/sqlite"
)

var templates = map[string]sql.Template{
	"sqlite":   &sqlite.Template{},
	"postgres": &postgres.Template{},
	"pgx":      &postgres.PgxTemplate{},
	"mysql":    &mysql.Template{},
}

// environment holds what a single command invocation shares: the configuration,
// the connection cache and the files ingested so far.
type environment struct {
	config    *config.Config
	cache     *sql.ConnectionCache
	ingestDir string
	ingested  map[string]*files.Result
}

func newEnvironment(configPath string) (*environment, error) {
	cfg, err := config.Read(configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && configPath == defaultConfigPath:
		// A missing default configuration is fine, adapters may come from the registry.
		log.Printf("no configuration at %s", configPath)
		cfg = &config.Config{}
	default:
		return nil, errors.Wrap(err, "couldn't read config")
	}

	return &environment{
		config:   cfg,
		cache:    sql.NewConnectionCache(templates),
		ingested: make(map[string]*files.Result),
	}, nil
}

// ingest loads a configured file once per invocation.
func (env *environment) ingest(ctx context.Context, file *config.FileConfig) (*files.Result, error) {
	if result, ok := env.ingested[file.Name]; ok {
		return result, nil
	}
	if env.ingestDir == "" {
		dir, err := os.MkdirTemp("", "catalogs-ingest-*")
		if err != nil {
			return nil, errors.Wrap(err, "couldn't create ingestion directory")
		}
		env.ingestDir = dir
	}

	result, err := files.FromConfig(ctx, file, env.ingestDir)
	if err != nil {
		return nil, err
	}
	env.ingested[file.Name] = result
	return result, nil
}

// adapters resolves ids against the configuration first, then against the adapter registry.
func (env *environment) adapters(ctx context.Context, ids []string) ([]*adapter.Adapter, error) {
	resolveFile := func(file *config.FileConfig) (adapter.TableIdentity, error) {
		result, err := env.ingest(ctx, file)
		if err != nil {
			return adapter.TableIdentity{}, err
		}
		return result.Identity(), nil
	}

	out := make([]*adapter.Adapter, len(ids))
	for i, id := range ids {
		if _, err := env.config.GetAdapterConfig(id); err == nil {
			a, err := adapter.FromConfig(env.config, id, resolveFile, adapter.WithTemplates(templates))
			if err != nil {
				return nil, err
			}
			out[i] = a
			continue
		}
		a, err := adapter.Lookup(id)
		if err != nil {
			return nil, errors.Wrapf(err, "adapter %s isn't configured nor registered", id)
		}
		out[i] = a
	}
	return out, nil
}

func (env *environment) Close() error {
	var outErr error
	if err := env.cache.Reset(); err != nil {
		outErr = errors.Wrap(err, "couldn't close database connections")
	}
	for name, result := range env.ingested {
		if err := result.Close(); err != nil && outErr == nil {
			outErr = errors.Wrapf(err, "couldn't remove ingested file %s", name)
		}
	}
	if env.ingestDir != "" {
		if err := os.RemoveAll(env.ingestDir); err != nil && outErr == nil {
			outErr = errors.Wrap(err, "couldn't remove ingestion directory")
		}
	}
	return outErr
}

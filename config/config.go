package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lsst-sims/catalogs"
)

var ErrNotFound = errors.New("field not found")

// DatabaseConfig describes a database. Type selects the SQL template (sqlite, postgres, pgx, mysql),
// Config holds the template specific settings.
type DatabaseConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

type ColumnConfig struct {
	Name       string        `yaml:"name"`
	Expression string        `yaml:"expression"`
	Type       catalogs.Type `yaml:"type"`
}

type DefaultConfig struct {
	Name  string        `yaml:"name"`
	Value interface{}   `yaml:"value"`
	Type  catalogs.Type `yaml:"type"`
}

// AdapterConfig declares an adapter over a table of either a database or an ingested file.
type AdapterConfig struct {
	ID        string          `yaml:"id"`
	Database  string          `yaml:"database"`
	File      string          `yaml:"file"`
	Table     string          `yaml:"table"`
	IDColumn  string          `yaml:"idColumn"`
	IDType    *catalogs.Type  `yaml:"idType"`
	RAColumn  string          `yaml:"raColumn"`
	DecColumn string          `yaml:"decColumn"`
	Columns   []ColumnConfig  `yaml:"columns"`
	Defaults  []DefaultConfig `yaml:"defaults"`
}

// FileConfig declares a text file to be loaded into a throwaway database before querying.
type FileConfig struct {
	Name      string         `yaml:"name"`
	Path      string         `yaml:"path"`
	Table     string         `yaml:"table"`
	Delimiter string         `yaml:"delimiter"`
	IDColumn  string         `yaml:"idColumn"`
	Columns   []ColumnConfig `yaml:"columns"`
}

type Config struct {
	Databases []DatabaseConfig `yaml:"databases"`
	Adapters  []AdapterConfig  `yaml:"adapters"`
	Files     []FileConfig     `yaml:"files"`
}

func (config *Config) GetDatabaseConfig(name string) (*DatabaseConfig, error) {
	for i := range config.Databases {
		if config.Databases[i].Name == name {
			return &config.Databases[i], nil
		}
	}

	return nil, ErrNotFound
}

func (config *Config) GetFileConfig(name string) (*FileConfig, error) {
	for i := range config.Files {
		if config.Files[i].Name == name {
			return &config.Files[i], nil
		}
	}

	return nil, ErrNotFound
}

func (config *Config) GetAdapterConfig(id string) (*AdapterConfig, error) {
	for i := range config.Adapters {
		if config.Adapters[i].ID == id {
			return &config.Adapters[i], nil
		}
	}

	return nil, ErrNotFound
}

// CacheDir is where the command line tool keeps its logs and default configuration.
func CacheDir() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "couldn't get user home directory")
	}
	return filepath.Join(dir, ".catalogs"), nil
}

func DefaultPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Read(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't expand path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var config Config

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}

	if err := config.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

func (config *Config) validate() error {
	names := make(map[string]struct{})
	for _, db := range config.Databases {
		if db.Name == "" {
			return errors.New("database without a name")
		}
		if _, ok := names[db.Name]; ok {
			return errors.Errorf("database name %s used more than once", db.Name)
		}
		names[db.Name] = struct{}{}
	}
	for _, file := range config.Files {
		if file.Name == "" || file.Path == "" {
			return errors.Errorf("file %q needs both a name and a path", file.Name)
		}
		if _, ok := names[file.Name]; ok {
			return errors.Errorf("file name %s already used", file.Name)
		}
		names[file.Name] = struct{}{}
	}
	for _, adapter := range config.Adapters {
		if (adapter.Database == "") == (adapter.File == "") {
			return errors.Errorf("adapter %s must reference exactly one of a database or a file", adapter.ID)
		}
		source := adapter.Database
		if source == "" {
			source = adapter.File
		}
		if _, ok := names[source]; !ok {
			return errors.Errorf("adapter %s references unknown source %s", adapter.ID, source)
		}
	}
	return nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsst-sims/catalogs"
)

func TestRead(t *testing.T) {
	cfg, err := Read("fixtures/example.yaml")
	require.NoError(t, err)

	want := &Config{
		Databases: []DatabaseConfig{
			{
				Name: "local",
				Type: "sqlite",
				Config: map[string]interface{}{
					"path": "/tmp/catalogs/galaxies.db",
				},
			},
			{
				Name: "fatboy",
				Type: "postgres",
				Config: map[string]interface{}{
					"address":      "db.example.org:5433",
					"user":         "reader",
					"password":     "secret",
					"databaseName": "lsstcat",
					"options": map[string]interface{}{
						"chunkSize": 5000,
					},
				},
			},
		},
		Files: []FileConfig{
			{
				Name:      "stars",
				Path:      "fixtures/stars.txt",
				Table:     "stars",
				Delimiter: ",",
				Columns: []ColumnConfig{
					{Name: "id", Type: catalogs.Int},
					{Name: "ra", Type: catalogs.Float},
					{Name: "decl", Type: catalogs.Float},
				},
			},
		},
		Adapters: []AdapterConfig{
			{
				ID:        "bulge",
				Database:  "local",
				Table:     "galaxy",
				IDColumn:  "galid",
				RAColumn:  "ra",
				DecColumn: "decl",
				Columns: []ColumnConfig{
					{Name: "raJ2000", Expression: "ra*PI()/180.0", Type: catalogs.Float},
					{Name: "redshift", Type: catalogs.Float},
					{Name: "sedFile", Expression: "sedname", Type: catalogs.FixedString(40)},
				},
				Defaults: []DefaultConfig{
					{Name: "variabilityParameters", Value: "None", Type: catalogs.FixedString(40)},
					{Name: "internalAv", Value: 0.1, Type: catalogs.Float},
				},
			},
			{
				ID:        "brightStars",
				File:      "stars",
				Table:     "stars",
				RAColumn:  "ra",
				DecColumn: "decl",
			},
		},
	}
	assert.Equal(t, want, cfg)

	db, err := cfg.GetDatabaseConfig("fatboy")
	require.NoError(t, err)
	assert.Equal(t, "postgres", db.Type)

	_, err = cfg.GetDatabaseConfig("nope")
	assert.Equal(t, ErrNotFound, err)

	adapter, err := cfg.GetAdapterConfig("brightStars")
	require.NoError(t, err)
	assert.Equal(t, "stars", adapter.File)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid",
			config: Config{
				Databases: []DatabaseConfig{{Name: "db", Type: "sqlite"}},
				Adapters:  []AdapterConfig{{ID: "a", Database: "db", Table: "t"}},
			},
		},
		{
			name: "unknown database",
			config: Config{
				Adapters: []AdapterConfig{{ID: "a", Database: "db", Table: "t"}},
			},
			wantErr: true,
		},
		{
			name: "both database and file",
			config: Config{
				Databases: []DatabaseConfig{{Name: "db", Type: "sqlite"}},
				Files:     []FileConfig{{Name: "f", Path: "f.txt"}},
				Adapters:  []AdapterConfig{{ID: "a", Database: "db", File: "f", Table: "t"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate database",
			config: Config{
				Databases: []DatabaseConfig{{Name: "db", Type: "sqlite"}, {Name: "db", Type: "mysql"}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

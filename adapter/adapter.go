// Package adapter describes how one table of a database is exposed as catalog columns.
package adapter

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/storage/sql"
)

const (
	DefaultDriver   = "sqlite"
	DefaultIDColumn = "id"
)

// TableIdentity is the physical table an adapter queries.
// Adapters can only be combined into one query when their identities are equal.
type TableIdentity struct {
	Host     string
	Port     int
	Driver   string
	Database string
	Table    string
}

func (ti TableIdentity) ConnectionKey() sql.ConnectionKey {
	return sql.ConnectionKey{
		Host:     ti.Host,
		Driver:   ti.Driver,
		Database: ti.Database,
		Port:     ti.Port,
	}
}

type Default struct {
	Name  string
	Value catalogs.Value
}

// Declaration is what an adapter author provides.
// Optional fields are left at their zero value and resolved by New.
type Declaration struct {
	ID       string
	Identity TableIdentity
	User     string
	Password string
	Columns  []catalogs.ColumnMapping
	Defaults []Default

	IDColumn  string
	IDType    *catalogs.Type
	RAColumn  string
	DecColumn string
}

// Adapter is a validated, immutable Declaration.
type Adapter struct {
	id       string
	identity TableIdentity
	user     string
	password string
	columns  []catalogs.ColumnMapping
	defaults []Default

	idColumn  string
	idType    catalogs.Type
	raColumn  string
	decColumn string

	columnIndex  map[string]int
	defaultIndex map[string]int
}

type Option func(options *options)

type options struct {
	templates map[string]sql.Template
}

// WithTemplates validates the driver against the given templates,
// and uses their default ports when none is declared.
func WithTemplates(templates map[string]sql.Template) Option {
	return func(options *options) {
		options.templates = templates
	}
}

func New(decl Declaration, opts ...Option) (*Adapter, error) {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}

	if strings.TrimSpace(decl.ID) == "" {
		return nil, errors.New("adapter has no id")
	}
	if decl.Identity.Table == "" {
		return nil, errors.Errorf("adapter %s has no table", decl.ID)
	}

	identity := decl.Identity
	if identity.Driver == "" {
		identity.Driver = DefaultDriver
	}
	if options.templates != nil {
		template, ok := options.templates[identity.Driver]
		if !ok {
			return nil, errors.Errorf("adapter %s uses unknown driver %s", decl.ID, identity.Driver)
		}
		if identity.Port == 0 {
			identity.Port = template.DefaultPort()
		}
	}

	if err := catalogs.ValidateMappings(decl.Columns); err != nil {
		return nil, errors.Wrapf(err, "invalid columns of adapter %s", decl.ID)
	}
	columnIndex := make(map[string]int, len(decl.Columns))
	columns := make([]catalogs.ColumnMapping, len(decl.Columns))
	for i := range decl.Columns {
		columns[i] = catalogs.NewColumnMapping(decl.Columns[i].OutputName, decl.Columns[i].SourceExpression, decl.Columns[i].Type)
		columnIndex[columns[i].OutputName] = i
	}

	defaultIndex := make(map[string]int, len(decl.Defaults))
	for i := range decl.Defaults {
		if decl.Defaults[i].Name == "" {
			return nil, errors.Errorf("default with index %d of adapter %s has no name", i, decl.ID)
		}
		if _, ok := defaultIndex[decl.Defaults[i].Name]; ok {
			return nil, errors.Errorf("default %s of adapter %s declared more than once", decl.Defaults[i].Name, decl.ID)
		}
		defaultIndex[decl.Defaults[i].Name] = i
	}

	idColumn := decl.IDColumn
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	idType := catalogs.Int
	if decl.IDType != nil {
		idType = *decl.IDType
	}
	if (decl.RAColumn == "") != (decl.DecColumn == "") {
		return nil, errors.Errorf("adapter %s must declare both or neither of the ra and dec columns", decl.ID)
	}

	return &Adapter{
		id:           decl.ID,
		identity:     identity,
		user:         decl.User,
		password:     decl.Password,
		columns:      columns,
		defaults:     append([]Default{}, decl.Defaults...),
		idColumn:     idColumn,
		idType:       idType,
		raColumn:     decl.RAColumn,
		decColumn:    decl.DecColumn,
		columnIndex:  columnIndex,
		defaultIndex: defaultIndex,
	}, nil
}

func (a *Adapter) ID() string {
	return a.id
}

func (a *Adapter) Identity() TableIdentity {
	return a.identity
}

func (a *Adapter) Columns() []catalogs.ColumnMapping {
	return a.columns
}

func (a *Adapter) Mapping(name string) (catalogs.ColumnMapping, bool) {
	i, ok := a.columnIndex[name]
	if !ok {
		return catalogs.ColumnMapping{}, false
	}
	return a.columns[i], true
}

func (a *Adapter) OutputNames() []string {
	out := make([]string, len(a.columns))
	for i := range a.columns {
		out[i] = a.columns[i].OutputName
	}
	return out
}

func (a *Adapter) Defaults() []Default {
	return a.defaults
}

func (a *Adapter) Default(name string) (catalogs.Value, bool) {
	i, ok := a.defaultIndex[name]
	if !ok {
		return catalogs.Value{}, false
	}
	return a.defaults[i].Value, true
}

func (a *Adapter) IDColumn() string {
	return a.idColumn
}

func (a *Adapter) IDType() catalogs.Type {
	return a.idType
}

func (a *Adapter) RAColumn() string {
	return a.raColumn
}

func (a *Adapter) DecColumn() string {
	return a.decColumn
}

// Open returns the connection to the adapter's database, shared through the cache.
func (a *Adapter) Open(ctx context.Context, cache *sql.ConnectionCache) (*sql.Database, error) {
	db, err := cache.Open(ctx, a.identity.ConnectionKey(), a.user, a.password)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open database of adapter %s", a.id)
	}
	return db, nil
}

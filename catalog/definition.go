// Package catalog computes the output columns of catalogs from the chunks of a compound query.
package catalog

import (
	"github.com/pkg/errors"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
)

type DefinitionOptions struct {
	// ColumnOutputs are the columns of the catalog, in order.
	ColumnOutputs []string
	Getters       []*Getter
	// Defaults are used for columns which neither a getter nor the database provide.
	Defaults []adapter.Default
	// CannotBeNull columns drop the rows in which they're missing.
	CannotBeNull []string
}

// Definition describes a catalog: which columns it outputs and how to compute them.
type Definition struct {
	name          string
	columnOutputs []string
	getters       map[string]*Getter
	defaults      map[string]catalogs.Value
	cannotBeNull  []string
}

func NewDefinition(name string, opts DefinitionOptions) (*Definition, error) {
	if name == "" {
		return nil, errors.New("catalog has no name")
	}
	if len(opts.ColumnOutputs) == 0 {
		return nil, errors.Errorf("catalog %s has no output columns", name)
	}

	seen := make(map[string]struct{}, len(opts.ColumnOutputs))
	for _, column := range opts.ColumnOutputs {
		if _, ok := seen[column]; ok {
			return nil, errors.Errorf("catalog %s outputs column %s more than once", name, column)
		}
		seen[column] = struct{}{}
	}

	getters := make(map[string]*Getter)
	for i, getter := range opts.Getters {
		if len(getter.outputs) == 0 {
			return nil, errors.Errorf("getter with index %d of catalog %s has no outputs", i, name)
		}
		for _, output := range getter.outputs {
			if _, ok := getters[output]; ok {
				return nil, errors.Errorf("column %s of catalog %s has more than one getter", output, name)
			}
			getters[output] = getter
		}
	}

	defaults := make(map[string]catalogs.Value, len(opts.Defaults))
	for _, def := range opts.Defaults {
		if _, ok := defaults[def.Name]; ok {
			return nil, errors.Errorf("default %s of catalog %s declared more than once", def.Name, name)
		}
		defaults[def.Name] = def.Value
	}

	return &Definition{
		name:          name,
		columnOutputs: opts.ColumnOutputs,
		getters:       getters,
		defaults:      defaults,
		cannotBeNull:  opts.CannotBeNull,
	}, nil
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) ColumnOutputs() []string {
	return d.columnOutputs
}

func (d *Definition) CannotBeNull() []string {
	return d.cannotBeNull
}

// requiredColumns are the output columns plus the cannot-be-null ones.
func (d *Definition) requiredColumns() []string {
	out := append([]string{}, d.columnOutputs...)
	for _, column := range d.cannotBeNull {
		if !contains(out, column) {
			out = append(out, column)
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for i := range list {
		if list[i] == value {
			return true
		}
	}
	return false
}

package catalog

import (
	"github.com/lsst-sims/catalogs"
)

// Source gives getters access to the columns of the current chunk,
// whether they come from the database, a default or another getter.
type Source interface {
	Column(name string) (catalogs.Column, error)
	Len() int
}

// Getter computes one or more output columns of a catalog from a Source.
// Getters are declared with Simple or Compound and refined with Cached and DependsOn.
type Getter struct {
	outputs   []string
	simple    func(src Source) (catalogs.Column, error)
	compound  func(src Source) ([]catalogs.Column, error)
	cached    bool
	dependsOn []string
}

// Simple declares a getter computing a single column.
// Its result isn't cached unless Cached is called, so it's recomputed on every reference.
func Simple(name string, fn func(src Source) (catalogs.Column, error)) *Getter {
	return &Getter{
		outputs: []string{name},
		simple:  fn,
	}
}

// Compound declares a getter computing several columns at once, returned in the order of names.
// It runs at most once per chunk, whichever of its columns is requested first.
func Compound(names []string, fn func(src Source) ([]catalogs.Column, error)) *Getter {
	return &Getter{
		outputs:  names,
		compound: fn,
		cached:   true,
	}
}

// Cached makes the getter's result live until the chunk changes.
func (g *Getter) Cached() *Getter {
	g.cached = true
	return g
}

// DependsOn declares the raw columns the getter reads, instead of discovering them with a dry run.
func (g *Getter) DependsOn(columns ...string) *Getter {
	g.dependsOn = append(g.dependsOn, columns...)
	return g
}

func (g *Getter) Outputs() []string {
	return g.outputs
}

func (g *Getter) IsCompound() bool {
	return g.compound != nil
}

func (g *Getter) IsCached() bool {
	return g.cached
}

func (g *Getter) hasDeclaredDependencies() bool {
	return g.dependsOn != nil
}

package compound

import (
	"fmt"
	"log"

	"github.com/lsst-sims/catalogs"
	"github.com/lsst-sims/catalogs/adapter"
)

// MasterEntry is one distinct expression of a compound query.
// System entries are the adapters' id columns, which keep their bare name.
type MasterEntry struct {
	MasterName string
	Expression string
	Type       catalogs.Type
	System     bool
}

// MasterMapping is the deduplicated union of the column mappings of a group of adapters.
type MasterMapping struct {
	entries      []MasterEntry
	byName       map[string]int
	byExpression map[string]int
}

// Entries returns the entries of the mapped columns, in the order they were first seen.
func (mm *MasterMapping) Entries() []MasterEntry {
	out := make([]MasterEntry, 0, len(mm.entries))
	for i := range mm.entries {
		if !mm.entries[i].System {
			out = append(out, mm.entries[i])
		}
	}
	return out
}

// SystemEntries returns the entries of the id columns, which every query fetches.
func (mm *MasterMapping) SystemEntries() []MasterEntry {
	var out []MasterEntry
	for i := range mm.entries {
		if mm.entries[i].System {
			out = append(out, mm.entries[i])
		}
	}
	return out
}

// Len is the number of mapped column entries, id columns excluded.
func (mm *MasterMapping) Len() int {
	return len(mm.Entries())
}

// Entry looks up a mapped or id column entry by its master name.
func (mm *MasterMapping) Entry(masterName string) (MasterEntry, bool) {
	i, ok := mm.byName[masterName]
	if !ok {
		return MasterEntry{}, false
	}
	return mm.entries[i], true
}

// Names returns the master names of the mapped columns.
func (mm *MasterMapping) Names() []string {
	entries := mm.Entries()
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = entries[i].MasterName
	}
	return out
}

func (mm *MasterMapping) add(entry MasterEntry) {
	mm.byName[entry.MasterName] = len(mm.entries)
	mm.byExpression[entry.Expression] = len(mm.entries)
	mm.entries = append(mm.entries, entry)
}

type AdapterColumn struct {
	AdapterID  string
	OutputName string
}

// NameTranslationIndex maps adapter output names to master names and back.
type NameTranslationIndex struct {
	forward map[AdapterColumn]string
	reverse map[string][]AdapterColumn
}

func (nti *NameTranslationIndex) Master(adapterID, outputName string) (string, bool) {
	name, ok := nti.forward[AdapterColumn{AdapterID: adapterID, OutputName: outputName}]
	return name, ok
}

// Sources lists the adapter columns served by the given master column, in declaration order.
func (nti *NameTranslationIndex) Sources(masterName string) []AdapterColumn {
	return nti.reverse[masterName]
}

func (nti *NameTranslationIndex) add(column AdapterColumn, masterName string) {
	nti.forward[column] = masterName
	nti.reverse[masterName] = append(nti.reverse[masterName], column)
}

// buildMapping merges the column mappings of the adapters, which must already be validated.
// Two columns share an entry iff their expressions are textually identical.
func buildMapping(adapters []*adapter.Adapter) (*MasterMapping, *NameTranslationIndex) {
	mapping := &MasterMapping{
		byName:       make(map[string]int),
		byExpression: make(map[string]int),
	}
	index := &NameTranslationIndex{
		forward: make(map[AdapterColumn]string),
		reverse: make(map[string][]AdapterColumn),
	}

	for _, a := range adapters {
		if _, ok := mapping.byExpression[a.IDColumn()]; ok {
			continue
		}
		mapping.add(MasterEntry{
			MasterName: a.IDColumn(),
			Expression: a.IDColumn(),
			Type:       a.IDType(),
			System:     true,
		})
	}

	ordinals := make(map[string]int)
	for _, a := range adapters {
		for _, column := range a.Columns() {
			expression := column.Expression()
			key := AdapterColumn{AdapterID: a.ID(), OutputName: column.OutputName}

			if i, ok := mapping.byExpression[expression]; ok {
				if !mapping.entries[i].Type.Equals(column.Type) {
					log.Printf("compound: column %s of adapter %s declared as %s, merged into %s of type %s",
						column.OutputName, a.ID(), column.Type, mapping.entries[i].MasterName, mapping.entries[i].Type)
				}
				index.add(key, mapping.entries[i].MasterName)
				continue
			}

			ordinals[column.OutputName]++
			masterName := fmt.Sprintf("master_%d_%s", ordinals[column.OutputName], column.OutputName)
			for {
				// An id column could already be using this name.
				if _, ok := mapping.byName[masterName]; !ok {
					break
				}
				ordinals[column.OutputName]++
				masterName = fmt.Sprintf("master_%d_%s", ordinals[column.OutputName], column.OutputName)
			}
			mapping.add(MasterEntry{
				MasterName: masterName,
				Expression: expression,
				Type:       column.Type,
			})
			index.add(key, masterName)
		}

		if _, ok := a.Mapping(a.IDColumn()); !ok {
			index.add(AdapterColumn{AdapterID: a.ID(), OutputName: a.IDColumn()}, a.IDColumn())
		}
	}

	return mapping, index
}

// Package batch reports the progress of catalogs being written chunk by chunk.
package batch

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uilive"
)

// Progress shows live row counts per catalog, refreshed at most four times a second.
type Progress struct {
	live       *uilive.Writer
	counts     map[string]int
	chunks     int
	start      time.Time
	lastUpdate time.Time
}

func NewProgress(w io.Writer) *Progress {
	live := uilive.New()
	live.Out = w

	return &Progress{
		live:   live,
		counts: make(map[string]int),
		start:  time.Now(),
	}
}

// Add records rows written to a catalog.
func (p *Progress) Add(catalog string, rows int) {
	p.counts[catalog] += rows
	p.chunks++

	if time.Since(p.lastUpdate) > time.Second/4 {
		p.lastUpdate = time.Now()
		p.render()
	}
}

func (p *Progress) Count(catalog string) int {
	return p.counts[catalog]
}

// Stop prints the final counts.
func (p *Progress) Stop() {
	p.render()
}

func (p *Progress) render() {
	names := make([]string, 0, len(p.counts))
	for name := range p.counts {
		names = append(names, name)
	}
	sort.Strings(names)

	sb := &strings.Builder{}
	for _, name := range names {
		fmt.Fprintf(sb, "%s: %d rows\n", name, p.counts[name])
	}
	fmt.Fprintf(sb, "%d chunks in %s\n", p.chunks, time.Since(p.start).Round(time.Millisecond))

	fmt.Fprint(p.live, sb.String())
	p.live.Flush()
}

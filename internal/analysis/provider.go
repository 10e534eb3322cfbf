package analysis

import (
	"sync"

	"github.com/wikilytics/wikiclass/internal/dataset"
)

// Provider derives the aggregate matrices from the memoized dataset
// store. The aggregate is rebuilt only when the store hands back a new
// table, so repeated requests share one immutable aggregate.
type Provider struct {
	store *dataset.Store
	path  string
	topN  int

	mu    sync.Mutex
	table *dataset.Table
	agg   *Aggregate
}

// NewProvider creates a provider over the given store and source path.
func NewProvider(store *dataset.Store, path string, topN int) *Provider {
	if topN <= 0 {
		topN = DefaultTopLanguages
	}
	return &Provider{store: store, path: path, topN: topN}
}

// Aggregate returns the current aggregate, loading and rebuilding as
// needed.
func (p *Provider) Aggregate() (*Aggregate, error) {
	table, err := p.store.Load(p.path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if table != p.table {
		p.agg = Build(table.Rows, p.topN)
		p.table = table
	}
	return p.agg, nil
}

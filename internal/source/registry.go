package source

import (
	"sync"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/model"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
)

// DefaultSources статический список лент, порядок важен: по нему разрешаются равные даты при сортировке
func DefaultSources() []model.Source {
	return []model.Source{
		{ID: "coindesk", Name: "CoinDesk", FeedURL: "https://www.coindesk.com/arc/outboundfeeds/rss/", Active: true},
		{ID: "theblock", Name: "The Block", FeedURL: "https://www.theblock.co/rss.xml", Active: true},
		{ID: "cointelegraph", Name: "Cointelegraph", FeedURL: "https://cointelegraph.com/rss", Active: true},
		{ID: "decrypt", Name: "Decrypt", FeedURL: "https://decrypt.co/feed", Active: true},
		{ID: "cryptoslate", Name: "CryptoSlate", FeedURL: "https://cryptoslate.com/feed/", Active: true},
	}
}

// Registry хранит источники в порядке объявления.
// Меняются только LastFetched и ArticleCount, источники не удаляются.
type Registry struct {
	mu      sync.RWMutex
	sources []model.Source
	index   map[string]int
}

func NewRegistry(sources []model.Source, disabled ...string) *Registry {
	disabledSet := set.New(disabled...)

	r := &Registry{
		sources: make([]model.Source, 0, len(sources)),
		index:   make(map[string]int, len(sources)),
	}

	for _, src := range sources {
		if _, exists := r.index[src.ID]; exists {
			continue
		}

		if disabledSet.Contains(src.ID) {
			src.Active = false
		}

		r.index[src.ID] = len(r.sources)
		r.sources = append(r.sources, src)
	}

	return r
}

// All возвращает копию всех источников
func (r *Registry) All() []model.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Source(nil), r.sources...)
}

func (r *Registry) Active() []model.Source {
	return lo.Filter(r.All(), func(src model.Source, _ int) bool {
		return src.Active
	})
}

// IDs возвращает идентификаторы активных источников
func (r *Registry) IDs() []string {
	return lo.Map(r.Active(), func(src model.Source, _ int) string {
		return src.ID
	})
}

func (r *Registry) Lookup(id string) (model.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return model.Source{}, false
	}

	return r.sources[i], true
}

// Position нужен для стабильной сортировки по порядку реестра
func (r *Registry) Position(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i, ok := r.index[id]; ok {
		return i
	}

	return len(r.sources)
}

func (r *Registry) MarkFetched(id string, at time.Time, articles int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return
	}

	r.sources[i].LastFetched = at
	r.sources[i].ArticleCount = articles
}

package queryutil

import (
	"sync"

	query "github.com/zoncoen/query-go"
)

var (
	m    sync.RWMutex
	opts = []query.Option{}
)

// New returns a query that can walk decoded JSON bodies and tagged structs.
func New(opts ...query.Option) *query.Query {
	return query.New(append(Options(), opts...)...)
}

// Parse parses a query string like ".proprietors[0].verifications[0].id".
func Parse(s string, opts ...query.Option) (*query.Query, error) {
	return query.ParseString(s, append(Options(), opts...)...)
}

func Options() []query.Option {
	m.RLock()
	defer m.RUnlock()
	return append(
		[]query.Option{
			query.ExtractByStructTag("json", "yaml"),
		},
		opts...,
	)
}

func AppendOptions(customOpts ...query.Option) {
	m.Lock()
	defer m.Unlock()
	opts = append(opts, customOpts...)
}

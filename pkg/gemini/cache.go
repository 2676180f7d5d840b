package gemini

import "sync"

// ClientCache hands out one Client per distinct model name with thread-safe
// lazy construction. Entries are never evicted; the cache is bounded by the
// number of distinct model names requested over the process lifetime.
type ClientCache struct {
	config  ClientConfig
	mutex   sync.Mutex
	clients map[string]*Client
}

// NewClientCache creates an empty cache whose clients share the given config.
func NewClientCache(config ClientConfig) *ClientCache {
	return &ClientCache{
		config:  config,
		clients: make(map[string]*Client),
	}
}

// Get returns the cached client for the model name, constructing it on first
// use. Concurrent first requests for the same name build exactly one client.
func (cc *ClientCache) Get(model string) *Client {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	client, ok := cc.clients[model]
	if !ok {
		client = NewClient(model, cc.config)
		cc.clients[model] = client
	}
	return client
}

// Len returns the number of distinct model clients constructed so far.
func (cc *ClientCache) Len() int {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	return len(cc.clients)
}

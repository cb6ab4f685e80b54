package proxy

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

// Manager handles the rotation of proxies and user agents for browser tabs
// and plain HTTP fetches.
type Manager struct {
	proxies    []string
	userAgents []string

	mu         sync.Mutex
	proxyIndex int
	rnd        *rand.Rand
}

// NewManager builds a manager from comma-separated lists. An empty user
// agent list falls back to a few desktop Chrome strings.
func NewManager(proxies, userAgents string) *Manager {
	m := &Manager{
		proxies:    splitList(proxies),
		userAgents: splitList(userAgents),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if len(m.userAgents) == 0 {
		m.userAgents = defaultUserAgents
	}
	return m
}

// GetProxy returns a proxy URL from the list, rotating sequentially.
func (m *Manager) GetProxy() string {
	if len(m.proxies) == 0 {
		return "" // No proxy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userAgents[m.rnd.Intn(len(m.userAgents))]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package conversation tracks per-conversation retrieval state: the file
// references surfaced so far and the de-duplication filter. The Manager owns
// conversation lifecycle, which keeps the seen-state an explicit object
// handed to callers instead of a process-wide table keyed by session ids.
package conversation

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codectx/internal/dedupe"
)

// Conversation is one multi-turn interaction's retrieval state. References
// are recorded as initially-hidden markers in the order retained; the filter
// accumulates every identifier the conversation has been shown.
type Conversation struct {
	id     string
	filter *dedupe.Filter

	mu     sync.Mutex
	refs   []string
	refSet map[string]struct{}
}

func newConversation(id string) *Conversation {
	return &Conversation{
		id:     id,
		filter: dedupe.NewFilter(),
		refSet: make(map[string]struct{}),
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string { return c.id }

// Filter returns the conversation's de-duplication filter.
func (c *Conversation) Filter() *dedupe.Filter { return c.filter }

// AddReference records a file path as a conversation reference. Repeated
// paths are recorded once.
func (c *Conversation) AddReference(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.refSet[path]; ok {
		return
	}
	c.refSet[path] = struct{}{}
	c.refs = append(c.refs, path)
}

// References returns the recorded paths in insertion order.
func (c *Conversation) References() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.refs))
	copy(out, c.refs)
	return out
}

// Manager hands out conversations keyed by the host's session identifier.
// Conversations are created lazily on first use and live until the host
// explicitly ends them.
type Manager struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	logger        *zap.Logger
}

// NewManager returns an empty manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		conversations: make(map[string]*Conversation),
		logger:        logger,
	}
}

// Get returns the conversation for id, creating it on first use. An empty id
// gets a generated one, for hosts that do not track sessions themselves.
func (m *Manager) Get(id string) *Conversation {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.RLock()
	c, ok := m.conversations[id]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.conversations[id]; ok {
		return c
	}
	c = newConversation(id)
	m.conversations[id] = c
	m.logger.Debug("conversation created", zap.String("conversation_id", id))
	return c
}

// End drops the conversation's state. Safe to call for unknown ids.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, id)
}

// Count reports the number of live conversations.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conversations)
}

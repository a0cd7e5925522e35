package chat

import "sync"

// Conversation is an append-only message log. Insertion order is display order.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

func (c *Conversation) append(m Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}

// Messages returns a snapshot of the conversation.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len is the number of messages appended so far.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

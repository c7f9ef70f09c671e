package chat

// Store persists the full session list under a single fixed key.
// Implementations swallow their own failures: Load returns an empty list
// when nothing usable is stored, Save is a best-effort write. Persistence
// must never block the in-memory chat flow.
type Store interface {
	Load() []Session
	Save(sessions []Session)
}

// The session-list operations below are the only writers of c.sessions and
// c.activeID. Callers hold c.mu. Every operation replaces the slice
// wholesale rather than mutating it in place, so snapshots handed to
// readers never see a torn intermediate state.

// createSessionLocked prepends a fresh session and makes it active.
func (c *Client) createSessionLocked(preview string) Session {
	session := newSession(preview)
	updated := make([]Session, 0, len(c.sessions)+1)
	updated = append(updated, session)
	updated = append(updated, c.sessions...)
	c.sessions = updated
	c.activeID = session.ID
	c.persistLocked()
	return session
}

// ensureActiveLocked resolves the active session id, creating a session
// seeded from the first message text when none is active.
func (c *Client) ensureActiveLocked(firstMessageText string) string {
	if c.activeID != "" && c.sessionIndexLocked(c.activeID) >= 0 {
		return c.activeID
	}
	session := c.createSessionLocked(truncatePreview(firstMessageText))
	return session.ID
}

// appendExchangeLocked appends a completed user message and a fresh
// streaming assistant message to the named session and returns the
// assistant message id. The session preview is seeded from the user text on
// the session's first message pair and never touched again.
func (c *Client) appendExchangeLocked(sessionID, userText string) string {
	assistant := newAssistantMessage()
	user := newUserMessage(userText)

	updated := make([]Session, len(c.sessions))
	for i, s := range c.sessions {
		if s.ID != sessionID {
			updated[i] = s
			continue
		}
		if len(s.Messages) == 0 {
			s.Preview = truncatePreview(userText)
		}
		messages := make([]Message, 0, len(s.Messages)+2)
		messages = append(messages, s.Messages...)
		messages = append(messages, user, assistant)
		s.Messages = messages
		updated[i] = s
	}
	c.sessions = updated
	c.persistLocked()
	return assistant.ID
}

// patchAssistantLocked replaces the targeted assistant message with the
// result of applying mutate to it. All other messages and sessions carry
// over structurally unchanged. Persistence is deferred to the end of the
// exchange, which always finishes with a full save.
func (c *Client) patchAssistantLocked(sessionID, messageID string, mutate func(Message) Message) {
	updated := make([]Session, len(c.sessions))
	for i, s := range c.sessions {
		if s.ID != sessionID {
			updated[i] = s
			continue
		}
		messages := make([]Message, len(s.Messages))
		for j, m := range s.Messages {
			if m.ID == messageID {
				messages[j] = mutate(m)
			} else {
				messages[j] = m
			}
		}
		s.Messages = messages
		updated[i] = s
	}
	c.sessions = updated
}

func (c *Client) sessionIndexLocked(id string) int {
	for i, s := range c.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full session list through the store. Failures
// are the store's problem; the in-memory list is already updated.
func (c *Client) persistLocked() {
	if c.store == nil {
		return
	}
	snapshot := make([]Session, len(c.sessions))
	copy(snapshot, c.sessions)
	c.store.Save(snapshot)
}

// Package chat holds the client core of the multi-agent chat UI: the
// session list and its state machine, the reasoning-trace model, and the
// orchestrator that streams a backend response into the in-flight assistant
// message. The rendering layer only reads the snapshots this package hands
// out and calls the three mutating entry points (SendMessage, NewSession,
// SelectSession).
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"chaoscontext/config"
	"chaoscontext/stream"
)

// ErrBusy rejects a send while a previous exchange is still streaming. The
// running exchange is never preempted.
var ErrBusy = errors.New("chat: an exchange is already in flight")

// readBufferSize is the chunk size used when draining the response body.
const readBufferSize = 4096

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Client owns the session list and drives exchanges against the backend
// chat endpoint. All exported methods are safe for concurrent use; the
// mutex serializes every state transition, so readers never observe a
// half-applied mutation.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   Store

	mu        sync.Mutex
	sessions  []Session
	activeID  string
	streaming bool

	// notify coalesces change signals for the rendering layer.
	notify chan struct{}
}

// NewClient loads the persisted session list through store (which may be
// nil for a memory-only client) and makes the most recent session active.
// baseURL is the backend address, e.g. "http://localhost:8080".
func NewClient(baseURL string, store Store) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		store:   store,
		notify:  make(chan struct{}, 1),
	}
	if store != nil {
		c.sessions = store.Load()
	}
	if len(c.sessions) > 0 {
		c.activeID = c.sessions[0].ID
	}
	return c
}

// Changed returns a channel that receives a signal after state mutations.
// Signals are coalesced; receivers re-read the snapshots they care about.
func (c *Client) Changed() <-chan struct{} {
	return c.notify
}

func (c *Client) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Sessions returns a snapshot of the session list, newest first.
func (c *Client) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]Session, len(c.sessions))
	copy(snapshot, c.sessions)
	return snapshot
}

// ActiveSessionID returns the id of the active session, or "" when none.
func (c *Client) ActiveSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Messages returns a snapshot of the active session's messages. An unknown
// or empty active id yields an empty list.
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.sessionIndexLocked(c.activeID)
	if i < 0 {
		return nil
	}
	snapshot := make([]Message, len(c.sessions[i].Messages))
	copy(snapshot, c.sessions[i].Messages)
	return snapshot
}

// IsStreaming reports whether an exchange is in flight.
func (c *Client) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming
}

// NewSession creates an empty session and makes it active.
func (c *Client) NewSession() Session {
	c.mu.Lock()
	session := c.createSessionLocked(defaultPreview)
	c.mu.Unlock()
	c.signal()
	return session
}

// SelectSession changes the active session pointer and nothing else. An
// unknown id is not an error: the read model then reports no messages until
// another session is selected or created.
func (c *Client) SelectSession(id string) {
	c.mu.Lock()
	c.activeID = id
	c.mu.Unlock()
	c.signal()
}

// SendMessage runs one exchange: it appends the user message plus an empty
// streaming assistant message to the active session (creating the session
// if needed), posts to the backend and folds the response stream into the
// assistant message until a done event, stream closure, or an error.
//
// Transport and stream failures are absorbed: the assistant message is
// finalized with whatever partial content and thoughts arrived, and the
// failure is only logged. The one error callers see is ErrBusy when an
// exchange is already in flight; that call performs no mutation and no
// request.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.streaming {
		c.mu.Unlock()
		return ErrBusy
	}
	c.streaming = true
	sessionID := c.ensureActiveLocked(text)
	assistantID := c.appendExchangeLocked(sessionID, text)
	c.mu.Unlock()
	c.signal()

	defer func() {
		c.mu.Lock()
		c.streaming = false
		c.persistLocked()
		c.mu.Unlock()
		c.signal()
	}()

	body, err := json.Marshal(chatRequest{SessionID: sessionID, Message: text})
	if err != nil {
		c.finalizeAssistant(sessionID, assistantID)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[chat] building request failed: %v", err)
		}
		c.finalizeAssistant(sessionID, assistantID)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[chat] request failed: %v", err)
		}
		c.finalizeAssistant(sessionID, assistantID)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[chat] backend returned HTTP %d", resp.StatusCode)
		}
		c.finalizeAssistant(sessionID, assistantID)
		return nil
	}

	c.consume(resp.Body, sessionID, assistantID)
	return nil
}

// consume drives the framer over the response body and dispatches each
// record in arrival order. It returns once a done record is seen, the body
// ends, or a read fails; in every case the assistant message leaves in a
// terminal state with its partial content intact.
func (c *Client) consume(body io.Reader, sessionID, assistantID string) {
	framer := stream.NewFramer()
	buf := make([]byte, readBufferSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, record := range framer.Feed(string(buf[:n])) {
				if done := c.dispatch(sessionID, assistantID, record); done {
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF && config.DebugLog != nil {
				config.DebugLog.Printf("[chat] stream read failed: %v", err)
			}
			c.finalizeAssistant(sessionID, assistantID)
			return
		}
	}
}

// dispatch applies one record to the in-flight assistant message and
// reports whether consumption should stop. A payload that fails JSON
// parsing drops the record; the stream keeps going.
func (c *Client) dispatch(sessionID, assistantID string, record stream.Record) bool {
	fields := map[string]string{}
	if record.Data != "" {
		if err := json.Unmarshal([]byte(record.Data), &fields); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[chat] dropping %s record with bad payload: %v", record.Event, err)
			}
			return false
		}
	}

	switch record.Event {
	case "token":
		text := fields["text"]
		c.patchAssistant(sessionID, assistantID, func(m Message) Message {
			m.Content += text
			return m
		})
	case "done":
		c.finalizeAssistant(sessionID, assistantID)
		return true
	default:
		step := DecodeThought(record.Event, fields)
		if step == nil {
			return false
		}
		c.patchAssistant(sessionID, assistantID, func(m Message) Message {
			thoughts := make(Thoughts, 0, len(m.Thoughts)+1)
			thoughts = append(thoughts, m.Thoughts...)
			thoughts = append(thoughts, step)
			m.Thoughts = thoughts
			return m
		})
	}
	return false
}

func (c *Client) patchAssistant(sessionID, assistantID string, mutate func(Message) Message) {
	c.mu.Lock()
	c.patchAssistantLocked(sessionID, assistantID, mutate)
	c.mu.Unlock()
	c.signal()
}

// finalizeAssistant marks the assistant message terminal. Safe to call more
// than once on the same message.
func (c *Client) finalizeAssistant(sessionID, assistantID string) {
	c.patchAssistant(sessionID, assistantID, func(m Message) Message {
		m.IsStreaming = false
		return m
	})
}

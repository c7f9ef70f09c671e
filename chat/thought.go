package chat

import "encoding/json"

// Agent identifiers used by the backend's reasoning trace. The decoder does
// not validate against this set; unknown agents pass through and the
// rendering layer decides how to show them.
const (
	AgentInterface   = "interface"
	AgentScavenger   = "scavenger"
	AgentSynthesizer = "synthesizer"
)

// ThoughtStep is one unit of the assistant's visible reasoning trace. The
// set of implementations is closed: AgentStart, Handoff, ToolCall and
// ToolResult.
type ThoughtStep interface {
	thoughtStep()
}

// AgentStart records an agent role becoming active.
type AgentStart struct {
	Agent string
}

// Handoff records control passing between agent roles.
type Handoff struct {
	From string
	To   string
}

// ToolCall records an agent invoking a named tool with a query string.
type ToolCall struct {
	Agent string
	Tool  string
	Query string
}

// ToolResult records a tool call returning a result string.
type ToolResult struct {
	Agent  string
	Tool   string
	Result string
}

func (AgentStart) thoughtStep() {}
func (Handoff) thoughtStep()    {}
func (ToolCall) thoughtStep()   {}
func (ToolResult) thoughtStep() {}

// DecodeThought maps one stream record to a ThoughtStep. Exactly four event
// names are recognized; anything else returns nil and must be ignored by the
// caller. That is how the control events (token, done, handled by the
// orchestrator) and any future event names are tolerated. Missing optional
// fields default to the empty string.
func DecodeThought(event string, fields map[string]string) ThoughtStep {
	switch event {
	case "agent_start":
		return AgentStart{Agent: fields["agent"]}
	case "handoff":
		return Handoff{From: fields["from"], To: fields["to"]}
	case "tool_call":
		return ToolCall{Agent: fields["agent"], Tool: fields["tool"], Query: fields["query"]}
	case "tool_result":
		return ToolResult{Agent: fields["agent"], Tool: fields["tool"], Result: fields["result"]}
	default:
		return nil
	}
}

// Thoughts is an ordered reasoning trace with tagged JSON encoding, so
// session lists round-trip through the persistence layer.
type Thoughts []ThoughtStep

// thoughtEnvelope is the persisted form of a single step.
type thoughtEnvelope struct {
	Type   string `json:"type"`
	Agent  string `json:"agent,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Tool   string `json:"tool,omitempty"`
	Query  string `json:"query,omitempty"`
	Result string `json:"result,omitempty"`
}

func (t Thoughts) MarshalJSON() ([]byte, error) {
	envelopes := make([]thoughtEnvelope, 0, len(t))
	for _, step := range t {
		switch s := step.(type) {
		case AgentStart:
			envelopes = append(envelopes, thoughtEnvelope{Type: "agent_start", Agent: s.Agent})
		case Handoff:
			envelopes = append(envelopes, thoughtEnvelope{Type: "handoff", From: s.From, To: s.To})
		case ToolCall:
			envelopes = append(envelopes, thoughtEnvelope{Type: "tool_call", Agent: s.Agent, Tool: s.Tool, Query: s.Query})
		case ToolResult:
			envelopes = append(envelopes, thoughtEnvelope{Type: "tool_result", Agent: s.Agent, Tool: s.Tool, Result: s.Result})
		}
	}
	return json.Marshal(envelopes)
}

func (t *Thoughts) UnmarshalJSON(data []byte) error {
	var envelopes []thoughtEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}

	var steps Thoughts
	for _, e := range envelopes {
		switch e.Type {
		case "agent_start":
			steps = append(steps, AgentStart{Agent: e.Agent})
		case "handoff":
			steps = append(steps, Handoff{From: e.From, To: e.To})
		case "tool_call":
			steps = append(steps, ToolCall{Agent: e.Agent, Tool: e.Tool, Query: e.Query})
		case "tool_result":
			steps = append(steps, ToolResult{Agent: e.Agent, Tool: e.Tool, Result: e.Result})
		default:
			// Unknown step types from a newer format are skipped rather
			// than failing the whole load.
		}
	}
	*t = steps
	return nil
}

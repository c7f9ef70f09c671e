package ui

import (
	"strings"
	"testing"

	"chaoscontext/chat"
)

func TestDescribeThought(t *testing.T) {
	tests := []struct {
		name string
		step chat.ThoughtStep
		want []string
	}{
		{
			name: "agent start",
			step: chat.AgentStart{Agent: chat.AgentInterface},
			want: []string{"interface", "working"},
		},
		{
			name: "handoff",
			step: chat.Handoff{From: chat.AgentInterface, To: chat.AgentScavenger},
			want: []string{"interface", "scavenger", "handed off"},
		},
		{
			name: "tool call",
			step: chat.ToolCall{Agent: chat.AgentScavenger, Tool: "doc_search", Query: "auth"},
			want: []string{"scavenger", "doc_search", "auth"},
		},
		{
			name: "tool result",
			step: chat.ToolResult{Agent: chat.AgentScavenger, Tool: "doc_search", Result: "2 docs"},
			want: []string{"scavenger", "doc_search", "2 docs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeThought(tt.step)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Errorf("describeThought() = %q, missing %q", got, fragment)
				}
			}
		})
	}
}

func TestDescribeThoughtTruncatesLongToolOutput(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := describeThought(chat.ToolResult{Agent: chat.AgentScavenger, Tool: "doc_search", Result: long})
	if len(got) >= 500 {
		t.Errorf("long tool output not truncated: %d chars", len(got))
	}
}

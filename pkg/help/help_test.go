package help

import (
	"strings"
	"testing"

	"github.com/soplang/soplang/pkg/evaluator"
	"github.com/soplang/soplang/pkg/lexer"
	"github.com/soplang/soplang/pkg/stdlib"
)

func TestQUICKREFNonEmpty(t *testing.T) {
	if len(QUICKREF) == 0 {
		t.Fatal("QUICKREF is empty")
	}
}

func TestQUICKREFContainsVersion(t *testing.T) {
	if !strings.Contains(QUICKREF, "v"+Version) {
		t.Errorf("QUICKREF does not contain version string v%s", Version)
	}
}

func TestQUICKREFListsTopics(t *testing.T) {
	for _, topic := range TopicList {
		if !strings.Contains(QUICKREF, topic) {
			t.Errorf("QUICKREF does not mention topic %q", topic)
		}
	}
}

func TestTopicListMatchesTopics(t *testing.T) {
	for _, name := range TopicList {
		if _, ok := Topics[name]; !ok {
			t.Errorf("TopicList entry %q not in Topics map", name)
		}
	}
	if len(Topics) != len(TopicList) {
		t.Errorf("expected %d topics, got %d", len(TopicList), len(Topics))
	}
}

func TestTopicsNonEmpty(t *testing.T) {
	for name, content := range Topics {
		if len(content) == 0 {
			t.Errorf("topic %q has empty content", name)
		}
	}
}

func TestSyntaxTopicListsKeywords(t *testing.T) {
	for _, kw := range lexer.Keywords() {
		if !strings.Contains(Topics["syntax"], kw) {
			t.Errorf("syntax topic does not mention keyword %q", kw)
		}
	}
}

func TestTypesTopicCoversTypeNames(t *testing.T) {
	values := []evaluator.Value{
		evaluator.NewNumber(1),
		evaluator.NewNumber(1.5),
		evaluator.NewString(""),
		evaluator.NewBool(true),
		evaluator.NewList(nil),
		evaluator.NewObject(nil),
		evaluator.NewNull(),
	}
	for _, v := range values {
		name := evaluator.TypeName(v)
		if !strings.Contains(Topics["types"], name) {
			t.Errorf("types topic does not mention %q", name)
		}
	}
	if !strings.Contains(Topics["types"], `"walax"`) {
		t.Error("types topic should mention the older object type name")
	}
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"syntax", "syntax"},
		{"SYNTAX", "syntax"},
		{"fl", "flow"},
		{"ex", "examples"},
		{"err", "errors"},
		{"st", "stdlib"},
		{" repl ", "repl"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			name, content, err := MatchTopic(tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Errorf("got %q, want %q", name, tt.want)
			}
			if content == "" {
				t.Error("expected non-empty content")
			}
		})
	}
}

func TestMatchTopicErrors(t *testing.T) {
	if _, _, err := MatchTopic("nonexistent"); err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Errorf("expected unknown-topic error, got %v", err)
	}
	if _, _, err := MatchTopic(""); err == nil {
		t.Error("expected error for empty topic")
	}
	_, _, err := MatchTopic("e")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous-topic error, got %v", err)
	}
}

func TestMatchTopicAllExact(t *testing.T) {
	for _, topic := range TopicList {
		name, content, err := MatchTopic(topic)
		if err != nil {
			t.Errorf("MatchTopic(%q) error: %v", topic, err)
			continue
		}
		if name != topic {
			t.Errorf("MatchTopic(%q) returned name %q", topic, name)
		}
		if content == "" {
			t.Errorf("MatchTopic(%q) returned empty content", topic)
		}
	}
}

func TestStdlibIndexCount(t *testing.T) {
	idx := StdlibIndex()
	if !strings.Contains(idx, "Total: 32 entries") {
		t.Errorf("StdlibIndex should report 32 entries, got:\n%s", idx)
	}
	for _, want := range []string{"qor / bandhig", "find_index / hel_index", "merge / kudar"} {
		if !strings.Contains(idx, want) {
			t.Errorf("StdlibIndex missing %q", want)
		}
	}
}

// The index and the registry must describe the same library.
func TestStdlibIndexMatchesRegistry(t *testing.T) {
	reg := stdlib.Default()
	names := StdlibNames()
	for _, n := range names["Functions"] {
		if reg.Get(n) == nil {
			t.Errorf("index lists function %q which is not registered", n)
		}
	}
	for _, n := range names["List methods"] {
		if reg.ListMethods()[n] == nil {
			t.Errorf("index lists list method %q which is not registered", n)
		}
	}
	for _, n := range names["Object methods"] {
		if reg.ObjectMethods()[n] == nil {
			t.Errorf("index lists object method %q which is not registered", n)
		}
	}
	if got, want := len(reg.All()), len(names["Functions"]); got != want {
		t.Errorf("registry has %d functions, index lists %d", got, want)
	}
	if got, want := len(reg.ListMethods()), len(names["List methods"]); got != want {
		t.Errorf("registry has %d list methods, index lists %d", got, want)
	}
	if got, want := len(reg.ObjectMethods()), len(names["Object methods"]); got != want {
		t.Errorf("registry has %d object methods, index lists %d", got, want)
	}
}

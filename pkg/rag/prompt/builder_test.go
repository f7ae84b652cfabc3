package prompt

import (
	"strings"
	"testing"
)

func TestBuildOrdering(t *testing.T) {
	b := NewAugmentedBuilder("Q: capital of France?\nA: Paris.", "And Germany?")
	got := b.Build()

	instr := strings.Index(got, "<instructions>")
	ctx := strings.Index(got, "<prior_context>")
	msg := strings.Index(got, "<message>")

	if instr == -1 || ctx == -1 || msg == -1 {
		t.Fatalf("prompt is missing a section:\n%s", got)
	}
	if !(instr < ctx && ctx < msg) {
		t.Errorf("sections out of order: instructions=%d context=%d message=%d", instr, ctx, msg)
	}

	if !strings.Contains(got, "Paris.") {
		t.Errorf("prompt does not embed the context block:\n%s", got)
	}
	if !strings.Contains(got, "And Germany?") {
		t.Errorf("prompt does not embed the new message:\n%s", got)
	}
}

package hierarchy

import (
	"fmt"
	"testing"
)

func TestDirectSelfParentRejected(t *testing.T) {
	err := CheckParent("t1", "t1", MapParentFunc(nil))
	if err != ErrWouldCreateCycle {
		t.Fatalf("expected ErrWouldCreateCycle, got %v", err)
	}
}

func TestCycleRejectedAtEveryChainLength(t *testing.T) {
	// Build chains t1 <- t2 <- ... <- tn and try to reparent t1 under tn.
	for length := 2; length <= MaxDepth; length++ {
		parents := map[string]string{}
		for i := 2; i <= length; i++ {
			parents[node(i)] = node(i - 1)
		}
		err := CheckParent(node(1), node(length), MapParentFunc(parents))
		if err != ErrWouldCreateCycle {
			t.Fatalf("chain length %d: expected ErrWouldCreateCycle, got %v", length, err)
		}
	}
}

func TestReparentToSiblingAllowed(t *testing.T) {
	parents := map[string]string{
		"child-a": "root",
		"child-b": "root",
		"leaf":    "child-a",
	}
	if err := CheckParent("leaf", "child-b", MapParentFunc(parents)); err != nil {
		t.Fatalf("expected sibling move to pass, got %v", err)
	}
}

func TestEmptyParentClearsWithoutCheck(t *testing.T) {
	if err := CheckParent("t1", "", MapParentFunc(map[string]string{"t1": "t0"})); err != nil {
		t.Fatalf("expected clearing parent to pass, got %v", err)
	}
}

func TestDepthLimit(t *testing.T) {
	parents := map[string]string{}
	for i := 2; i <= MaxDepth+5; i++ {
		parents[node(i)] = node(i - 1)
	}
	err := CheckParent("other", node(MaxDepth+5), MapParentFunc(parents))
	if err != ErrDepthExceeded {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func node(i int) string {
	return fmt.Sprintf("t%d", i)
}

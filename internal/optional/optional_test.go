package optional

import "testing"

func TestValueKnownAndUnknown(t *testing.T) {
	known := Of(42)
	if got, ok := known.Get(); !ok || got != 42 {
		t.Fatalf("expected known 42, got %d (%v)", got, ok)
	}
	if known.Or(-1) != 42 {
		t.Fatalf("expected Or to return wrapped value")
	}

	unknown := None[int]()
	if unknown.Known() {
		t.Fatal("expected unknown value")
	}
	if unknown.Or(-1) != -1 {
		t.Fatalf("expected fallback -1, got %d", unknown.Or(-1))
	}
}

func TestZeroValueIsUnknown(t *testing.T) {
	var v Value[[]int]
	if v.Known() {
		t.Fatal("zero Value must be unknown")
	}
	if got := v.Or(nil); got != nil {
		t.Fatalf("expected nil fallback, got %v", got)
	}
}

package domain

import "testing"

func TestBackpack_PushPopLast(t *testing.T) {
	b := NewBackpack()

	if b.PopLast() != nil {
		t.Error("expected nil from empty backpack")
	}

	b.Push(testTrack("a"))
	b.Push(testTrack("b"))
	b.Push(testTrack("c"))

	if b.Len() != 3 {
		t.Fatalf("expected 3 tracks, got %d", b.Len())
	}

	// Pop order is reverse of completion order.
	for _, want := range []TrackID{"c", "b", "a"} {
		got := b.PopLast()
		if got == nil {
			t.Fatalf("expected %s, got nil", want)
		}
		if got.ID != want {
			t.Errorf("expected %s, got %s", want, got.ID)
		}
	}
	if b.Len() != 0 {
		t.Errorf("expected empty backpack, got %d", b.Len())
	}
}

func TestBackpack_Clear(t *testing.T) {
	b := NewBackpack()
	b.Push(testTrack("a"))
	b.Push(testTrack("b"))

	b.Clear()

	if b.Len() != 0 {
		t.Errorf("expected empty backpack after clear, got %d", b.Len())
	}
}

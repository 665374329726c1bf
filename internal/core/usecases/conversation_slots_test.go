package usecases

import "testing"

func TestSessionSlotsAreReclaimed(t *testing.T) {
	s := &ConversationService{inflight: make(map[string]*sessionSlot)}

	a := s.acquireSlot("s1")
	b := s.acquireSlot("s1")
	if a != b {
		t.Fatal("runs for the same session must share a slot")
	}
	if c := s.acquireSlot("s2"); c == a {
		t.Fatal("distinct sessions must not share a slot")
	}

	s.releaseSlot("s1", a)
	if _, ok := s.inflight["s1"]; !ok {
		t.Fatal("slot dropped while a run still holds it")
	}
	s.releaseSlot("s1", b)
	if _, ok := s.inflight["s1"]; ok {
		t.Error("slot not reclaimed after the last run released it")
	}
}

package state

import (
	"errors"
	"sync/atomic"
	"testing"
)

type fakeResource struct {
	releases atomic.Int32
	fail     bool
}

func (f *fakeResource) Release() error {
	f.releases.Add(1)
	if f.fail {
		return errors.New("release failed")
	}
	return nil
}

func TestMemoryManagerDefaultState(t *testing.T) {
	m := NewMemoryManager()
	if st := m.GetState(1); st != StateIdle {
		t.Fatalf("expected idle for unknown user, got %s", st)
	}
	if m.HasState(1) {
		t.Fatal("unknown user should not report active state")
	}
	if _, ok := m.Resource(1); ok {
		t.Fatal("unknown user should not hold a resource")
	}
}

func TestMemoryManagerSingleStateAtATime(t *testing.T) {
	const awaitingA State = "awaiting_a"
	const awaitingB State = "awaiting_b"

	m := NewMemoryManager()
	m.SetState(7, awaitingA)
	m.SetState(7, awaitingB)
	if st := m.GetState(7); st != awaitingB {
		t.Fatalf("expected %s, got %s", awaitingB, st)
	}
	m.ClearState(7)
	if st := m.GetState(7); st != StateIdle {
		t.Fatalf("expected idle after clear, got %s", st)
	}
}

func TestSetResourceReleasesPreviousExactlyOnce(t *testing.T) {
	m := NewMemoryManager()

	first := &fakeResource{}
	second := &fakeResource{}
	m.SetResource(3, first)
	m.SetResource(3, second)

	if n := first.releases.Load(); n != 1 {
		t.Fatalf("previous resource released %d times, expected 1", n)
	}
	if n := second.releases.Load(); n != 0 {
		t.Fatalf("current resource must stay live, released %d times", n)
	}

	res, ok := m.Resource(3)
	if !ok || res != second {
		t.Fatal("session should hold the replacement resource")
	}
}

func TestResetReleasesResourceAndReturnsIdle(t *testing.T) {
	const awaiting State = "awaiting_input"

	m := NewMemoryManager()
	res := &fakeResource{}
	m.SetResource(5, res)
	m.SetState(5, awaiting)

	m.Reset(5)

	if st := m.GetState(5); st != StateIdle {
		t.Fatalf("expected idle after reset, got %s", st)
	}
	if _, ok := m.Resource(5); ok {
		t.Fatal("reset must drop the resource")
	}
	if n := res.releases.Load(); n != 1 {
		t.Fatalf("resource released %d times, expected 1", n)
	}

	// A second reset must not double-release.
	m.Reset(5)
	if n := res.releases.Load(); n != 1 {
		t.Fatalf("resource released %d times after repeated reset, expected 1", n)
	}
}

func TestClearRemovesSession(t *testing.T) {
	m := NewMemoryManager()
	res := &fakeResource{fail: true}
	m.SetResource(9, res)
	if m.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", m.Count())
	}

	m.Clear(9)

	if m.Count() != 0 {
		t.Fatalf("expected 0 sessions after clear, got %d", m.Count())
	}
	if n := res.releases.Load(); n != 1 {
		t.Fatalf("resource released %d times, expected 1", n)
	}
}

func TestRepeatedReplacementDoesNotLeak(t *testing.T) {
	m := NewMemoryManager()
	resources := make([]*fakeResource, 10)
	for i := range resources {
		resources[i] = &fakeResource{}
		m.SetResource(11, resources[i])
	}
	for i, r := range resources[:len(resources)-1] {
		if n := r.releases.Load(); n != 1 {
			t.Fatalf("resource %d released %d times, expected 1", i, n)
		}
	}
	if n := resources[len(resources)-1].releases.Load(); n != 0 {
		t.Fatal("latest resource must remain live")
	}
}

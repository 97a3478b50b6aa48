package service

import (
	"sync"
	"testing"
)

func TestLatch_SingleTrigger(t *testing.T) {
	var l Latch

	if l.State() != LatchIdle {
		t.Fatalf("new latch state = %v, want idle", l.State())
	}
	if !l.Trigger() {
		t.Fatal("first Trigger should win")
	}
	if l.Trigger() {
		t.Fatal("second Trigger should be refused")
	}
	if l.State() != LatchTriggered {
		t.Errorf("state = %v, want triggered", l.State())
	}

	l.Complete()
	if l.State() != LatchDone {
		t.Errorf("state = %v, want done", l.State())
	}
	if l.Trigger() {
		t.Error("Trigger after Complete should be refused")
	}

	l.Reset()
	if !l.Trigger() {
		t.Error("Trigger after Reset should win")
	}
}

func TestLatch_ConcurrentTriggers(t *testing.T) {
	var l Latch
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Trigger() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestLatchRegistry_SharedPerKey(t *testing.T) {
	r := NewLatchRegistry()

	a := r.Get("user|form")
	b := r.Get("user|form")
	if a != b {
		t.Error("same key should return the same latch")
	}

	c := r.Get("user|other-form")
	if a == c {
		t.Error("different keys should return different latches")
	}

	if !a.Trigger() {
		t.Fatal("first trigger on shared latch should win")
	}
	if b.Trigger() {
		t.Error("trigger through second handle should be refused")
	}
	if !c.Trigger() {
		t.Error("independent key should trigger independently")
	}
}

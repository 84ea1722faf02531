package eventsourcing

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

type TestEvent struct {
	ID string
}

func (e TestEvent) EventType() string   { return "TestEvent" }
func (e TestEvent) AggregateID() string { return e.ID }

type OtherEvent struct {
	Name string
}

func (e OtherEvent) EventType() string   { return "OtherEvent" }
func (e OtherEvent) AggregateID() string { return e.Name }

func TestRegisterEvent(t *testing.T) {
	reg := NewEventRegistry()

	t.Run("decode returns the value type", func(t *testing.T) {
		RegisterEvent[TestEvent](reg)

		data, err := reg.Encode(TestEvent{ID: "a-1"})
		if err != nil {
			t.Fatal(err)
		}

		ev, err := reg.Decode("TestEvent", data)
		if err != nil {
			t.Fatal(err)
		}

		got, ok := ev.(TestEvent)
		if !ok {
			t.Fatalf("expected TestEvent, got %T", ev)
		}
		if got.ID != "a-1" {
			t.Fatalf("expected ID a-1, got %q", got.ID)
		}
	})

	t.Run("panic on duplicate registration", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic on duplicate registration")
			}
		}()
		RegisterEvent[TestEvent](reg)
	})
}

func TestRegisterEventByName(t *testing.T) {
	reg := NewEventRegistry()
	RegisterEventByName[OtherEvent](reg, "Custom")

	ev, err := reg.Decode("Custom", []byte(`{"Name":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.(OtherEvent).Name != "x" {
		t.Fatalf("unexpected event %#v", ev)
	}

	t.Run("panic on empty name", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic on empty name")
			}
		}()
		RegisterEventByName[OtherEvent](reg, "")
	})
}

func TestDecodeErrors(t *testing.T) {
	reg := NewEventRegistry()
	RegisterEvent[TestEvent](reg)

	if _, err := reg.Decode("Unknown", nil); !errors.Is(err, ErrEventNotRegistered) {
		t.Fatalf("expected ErrEventNotRegistered, got %v", err)
	}
	if _, err := reg.Decode("TestEvent", []byte("{")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewEventRegistry()
	RegisterEvent[TestEvent](reg)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			RegisterEventByName[OtherEvent](reg, "other-"+strconv.Itoa(i))
		}(i)
		go func() {
			defer wg.Done()
			if _, err := reg.Decode("TestEvent", []byte(`{}`)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := len(reg.Names()); got != 51 {
		t.Fatalf("expected 51 registered names, got %d", got)
	}
}

package system

import (
	"context"
	"errors"
	"testing"
)

type recordedService struct {
	name     string
	startErr error
	log      *[]string
}

func (s *recordedService) Name() string { return s.name }

func (s *recordedService) Start(context.Context) error {
	*s.log = append(*s.log, "start "+s.name)
	return s.startErr
}

func (s *recordedService) Stop(context.Context) error {
	*s.log = append(*s.log, "stop "+s.name)
	return nil
}

func TestManagerStartsInOrderStopsInReverse(t *testing.T) {
	var log []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordedService{name: name, log: &log}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start a", "start b", "start c", "stop c", "stop b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestManagerUnwindsOnStartFailure(t *testing.T) {
	var log []string
	m := NewManager()
	_ = m.Register(&recordedService{name: "a", log: &log})
	_ = m.Register(&recordedService{name: "b", startErr: errors.New("boom"), log: &log})
	_ = m.Register(&recordedService{name: "c", log: &log})

	err := m.Start(context.Background())
	if err == nil {
		t.Fatal("expected start to fail")
	}

	want := []string{"start a", "start b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestManagerRejectsDuplicateAndLateRegistration(t *testing.T) {
	var log []string
	m := NewManager()
	if err := m.Register(&recordedService{name: "a", log: &log}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(&recordedService{name: "a", log: &log}); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Register(&recordedService{name: "b", log: &log}); err == nil {
		t.Fatal("expected registration after start to be rejected")
	}
}

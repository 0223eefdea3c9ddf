package registry

import (
	"testing"

	"covlaunch/backend/fake"
	"covlaunch/core/launch"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := New()
	lt := r.Register("java.application", "Java Application")

	got, err := r.Get("java.application")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != lt {
		t.Fatalf("unexpected launch type reference")
	}
	if got.Name() != "Java Application" {
		t.Fatalf("name %q", got.Name())
	}
	if _, err := r.Get("missing"); err == nil {
		t.Fatal("expected error for missing launch type")
	}
	if _, ok := r.LaunchType("missing"); ok {
		t.Fatal("expected lookup miss")
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != "java.application" {
		t.Fatalf("ids %v", ids)
	}
}

func TestDelegatesForKeepsRegistrationOrder(t *testing.T) {
	r := New()
	first := fake.New(0)
	second := fake.New(1)
	debug := fake.New(2)
	r.Register("java.application", "Java Application").
		AddDelegate(launch.DelegateRef{ID: "first", Delegate: first}, launch.ModeRun).
		AddDelegate(launch.DelegateRef{ID: "debug", Delegate: debug}, launch.ModeDebug).
		AddDelegate(launch.DelegateRef{ID: "second", Delegate: second}, launch.ModeRun, launch.ModeProfile)

	lt, ok := r.LaunchType("java.application")
	if !ok {
		t.Fatal("expected launch type")
	}
	refs := lt.DelegatesFor(launch.ModeRun)
	if len(refs) != 2 {
		t.Fatalf("run delegates %d", len(refs))
	}
	if refs[0].ID != "first" || refs[1].ID != "second" {
		t.Fatalf("unexpected order %q, %q", refs[0].ID, refs[1].ID)
	}
	if refs := lt.DelegatesFor(launch.ModeCoverage); len(refs) != 0 {
		t.Fatalf("coverage delegates %d", len(refs))
	}

	modes := r.types["java.application"].Modes()
	want := []launch.Mode{launch.ModeDebug, launch.ModeProfile, launch.ModeRun}
	if len(modes) != len(want) {
		t.Fatalf("modes %v", modes)
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Fatalf("modes %v, want %v", modes, want)
		}
	}
}

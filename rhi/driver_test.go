// Copyright 2026 The mini-engine authors. All rights reserved.

package rhi

import "testing"

type fakeDriver struct{ name string }

func (d *fakeDriver) Open() (Device, error) { return nil, ErrNoDevice }
func (d *fakeDriver) Name() string          { return d.name }
func (d *fakeDriver) Close()                {}

func TestRegister(t *testing.T) {
	defer func() {
		mu.Lock()
		drivers = nil
		mu.Unlock()
	}()

	a := &fakeDriver{name: "a"}
	b := &fakeDriver{name: "b"}
	Register(a)
	Register(b)
	drv := Drivers()
	if len(drv) != 2 {
		t.Fatalf("Drivers: length %d, want 2", len(drv))
	}
	for i := range drv {
		name := drv[i].Name()
		for j := range i {
			if name == drv[j].Name() {
				t.Error("Drivers: Driver.Name is not unique")
			}
		}
	}

	// Same name replaces the registration.
	a2 := &fakeDriver{name: "a"}
	Register(a2)
	drv = Drivers()
	if len(drv) != 2 {
		t.Fatalf("Drivers after replace: length %d, want 2", len(drv))
	}
	found := false
	for i := range drv {
		if drv[i] == Driver(a2) {
			found = true
		}
		if drv[i] == Driver(a) {
			t.Error("Drivers: replaced driver still registered")
		}
	}
	if !found {
		t.Error("Drivers: replacement not registered")
	}

	// The returned slice is a copy.
	drv[0] = nil
	if d := Drivers(); d[0] == nil {
		t.Error("Drivers: registry aliased by returned slice")
	}
}

package permission

import (
	"errors"
	"reflect"
	"testing"
)

func TestCatalogGroupsFollowRegistrationOrder(t *testing.T) {
	c, err := CatalogFromEntries([]Entry{
		{Key: "leave:read_all"},
		{Key: "employee:read_all"},
		{Key: "leave:approve"},
		{Key: "employee:create"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	want := []Group{
		{Resource: "leave", Keys: []string{"leave:read_all", "leave:approve"}},
		{Resource: "employee", Keys: []string{"employee:read_all", "employee:create"}},
	}
	if got := c.Groups(); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}

	keys, ok := c.Group("employee")
	if !ok || !reflect.DeepEqual(keys, []string{"employee:read_all", "employee:create"}) {
		t.Fatalf("unexpected employee group %v", keys)
	}
	if _, ok := c.Group("payroll"); ok {
		t.Fatal("expected missing group")
	}
}

func TestCatalogRejectsInvalidAndDuplicate(t *testing.T) {
	c := NewCatalog()
	if _, err := c.Register("employee", ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if idx, err := c.Register("employee:read_all", "View"); err != nil || idx != 0 {
		t.Fatalf("register: idx=%d err=%v", idx, err)
	}
	if _, err := c.Register("employee:read_all", "View"); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	c.Freeze()
	if _, err := c.Register("employee:create", ""); !errors.Is(err, ErrCatalogFrozen) {
		t.Fatalf("expected ErrCatalogFrozen, got %v", err)
	}
	if c.Count() != 1 {
		t.Fatalf("expected count 1, got %d", c.Count())
	}
}

func TestCatalogOrdered(t *testing.T) {
	c, err := CatalogFromEntries(DefaultEntries())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	got := c.Ordered(NewSet(EmployeeDelete, "zz:unknown", EmployeeReadAll, "aa:unknown"))
	want := []string{EmployeeReadAll, EmployeeDelete, "aa:unknown", "zz:unknown"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ordered = %v, want %v", got, want)
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		in       string
		resource string
		action   string
		ok       bool
	}{
		{"employee:read_all", "employee", "read_all", true},
		{"employee:", "", "", false},
		{":read", "", "", false},
		{"employee", "", "", false},
		{"emp loyee:read", "", "", false},
	}
	for _, tc := range tests {
		r, a, ok := SplitKey(tc.in)
		if r != tc.resource || a != tc.action || ok != tc.ok {
			t.Fatalf("SplitKey(%q) = %q,%q,%v", tc.in, r, a, ok)
		}
	}
}

func TestSetHasAny(t *testing.T) {
	s := NewSet("a:x", "b:y")
	if !s.HasAny(NewSet("c:z", "b:y")) {
		t.Fatal("expected overlap")
	}
	if s.HasAny(NewSet()) {
		t.Fatal("empty set never overlaps")
	}
	if NewSet().HasAny(s) {
		t.Fatal("empty receiver never overlaps")
	}
}

func TestDefaultCatalogGroups(t *testing.T) {
	c, err := CatalogFromEntries(DefaultEntries())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if c.Count() != 31 {
		t.Fatalf("expected 31 keys, got %d", c.Count())
	}

	var resources []string
	for _, g := range c.Groups() {
		resources = append(resources, g.Resource)
	}
	want := []string{ResourceEmployee, ResourceLeave, ResourcePayroll, ResourceAsset, ResourcePerformance, ResourceSkill, ResourceRole}
	if !reflect.DeepEqual(resources, want) {
		t.Fatalf("resources = %v, want %v", resources, want)
	}

	leave, _ := c.Group(ResourceLeave)
	wantLeave := []string{LeaveCreateSelf, LeaveCreateAll, LeaveReadAll, LeaveReadSelf, LeaveApprove}
	if !reflect.DeepEqual(leave, wantLeave) {
		t.Fatalf("leave group = %v, want %v", leave, wantLeave)
	}
}

// internal/host/table_test.go
package host

import (
	"errors"
	"reflect"
	"testing"
)

func TestTable_DynamicMajors(t *testing.T) {
	tb := NewTable(240)
	a := newEndpoint(t)

	m1, err := tb.RegisterChrdev(0, "a", a)
	if err != nil || m1 != 240 {
		t.Fatalf("first major=%d err=%v", m1, err)
	}
	m2, err := tb.RegisterChrdev(0, "b", a)
	if err != nil || m2 != 241 {
		t.Fatalf("second major=%d err=%v", m2, err)
	}

	tb.UnregisterChrdev(m1, "a")
	m3, err := tb.RegisterChrdev(0, "c", a)
	if err != nil || m3 != 240 {
		t.Fatalf("reused major=%d err=%v", m3, err)
	}
}

func TestTable_StaticMajorBusy(t *testing.T) {
	tb := NewTable(240)
	ep := newEndpoint(t)

	if _, err := tb.RegisterChrdev(300, "a", ep); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := tb.RegisterChrdev(300, "b", ep); !errors.Is(err, ErrBusy) {
		t.Fatalf("err=%v want ErrBusy", err)
	}
}

func TestTable_MajorsExhausted(t *testing.T) {
	tb := NewTable(maxMajor)
	ep := newEndpoint(t)

	if _, err := tb.RegisterChrdev(0, "a", ep); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := tb.RegisterChrdev(0, "b", ep); !errors.Is(err, ErrExhausted) {
		t.Fatalf("err=%v want ErrExhausted", err)
	}
}

func TestTable_NodeRequiresRegisteredClassAndMajor(t *testing.T) {
	tb := NewTable(240)
	ep := newEndpoint(t)

	c, err := tb.CreateClass("mi")
	if err != nil {
		t.Fatalf("CreateClass err=%v", err)
	}
	if _, err := tb.CreateNode(c, MkDev(240, 0), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("node without major err=%v want ErrNotFound", err)
	}

	major, _ := tb.RegisterChrdev(0, "x", ep)
	tb.UnregisterClass(c)
	if _, err := tb.CreateNode(c, MkDev(major, 0), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("node on unregistered class err=%v want ErrNotFound", err)
	}
}

func TestTable_NodesAndLookup(t *testing.T) {
	tb := NewTable(240)
	ep := newEndpoint(t)

	c, _ := tb.CreateClass("mi")
	for _, name := range []string{"b", "a"} {
		major, err := tb.RegisterChrdev(0, name, ep)
		if err != nil {
			t.Fatalf("register %s err=%v", name, err)
		}
		if _, err := tb.CreateNode(c, MkDev(major, 0), name); err != nil {
			t.Fatalf("node %s err=%v", name, err)
		}
	}

	if got := tb.Nodes(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Nodes()=%v", got)
	}
	fops, ok := tb.Lookup("a")
	if !ok || fops.Name() != "mi_char_device" {
		t.Fatalf("Lookup(a)=%v,%v", fops, ok)
	}
	if _, ok := tb.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing) should fail")
	}

	tb.DestroyClass(c)
	if len(tb.Nodes()) != 0 {
		t.Fatalf("class destroy should drop its nodes")
	}
}

func TestDevt_Encode(t *testing.T) {
	d := MkDev(240, 3)
	if d.Encode() != 240<<20|3 {
		t.Fatalf("Encode()=%d", d.Encode())
	}
	if d.String() != "240:3" {
		t.Fatalf("String()=%q", d.String())
	}
}

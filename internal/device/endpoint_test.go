// internal/device/endpoint_test.go
package device

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// ---- fakes ----

type faultySource struct{ n int }

func (f faultySource) Len() int                { return f.n }
func (f faultySource) CopyIn(dst []byte) error { return errors.New("bad address") }

type faultySink struct{}

func (faultySink) CopyOut(src []byte) error { return errors.New("bad address") }

func newEndpoint(t *testing.T, mode Reversal) *Endpoint {
	t.Helper()
	ep, err := New(Options{Name: "mi_char_device", Reversal: mode})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return ep
}

func readAll(t *testing.T, ep *Endpoint, h *Handle) string {
	t.Helper()
	buf := make([]byte, ep.Capacity())
	n, err := ep.ReadBytes(h, buf)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	return string(buf[:n])
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if _, err := New(Options{Name: "x", Capacity: MaxCapacity + 1}); err == nil {
		t.Fatalf("expected error for capacity above MaxCapacity")
	}
	if _, err := New(Options{Name: "x", Capacity: 1}); err == nil {
		t.Fatalf("expected error for capacity 1")
	}
	ep, err := New(Options{Name: "x"})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	if ep.Capacity() != DefaultCapacity {
		t.Fatalf("capacity=%d want %d", ep.Capacity(), DefaultCapacity)
	}
}

func TestWriteThenRead_Hola(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()

	n, err := ep.WriteBytes(h, []byte("hola"))
	if err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if n != 4 {
		t.Fatalf("accepted=%d want 4", n)
	}

	if got := readAll(t, ep, h); got != "aloh" {
		t.Fatalf("read=%q want %q", got, "aloh")
	}

	// same handle: EOF
	if got := readAll(t, ep, h); got != "" {
		t.Fatalf("second read=%q want empty", got)
	}
}

func TestRoundTrip_Reverses(t *testing.T) {
	for _, s := range []string{"", "a", "ab", "abc", "hello world", strings.Repeat("z", 254)} {
		ep := newEndpoint(t, ReversalStable)
		h := ep.Open()
		if _, err := ep.WriteBytes(h, []byte(s)); err != nil {
			t.Fatalf("Write(%q) err=%v", s, err)
		}
		want := []byte(s)
		reverse(want)
		if got := readAll(t, ep, h); got != string(want) {
			t.Fatalf("read=%q want %q", got, want)
		}
	}
}

func TestWrite_TruncatesToCapacity(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()

	in := bytes.Repeat([]byte{'x'}, DefaultCapacity+10)
	n, err := ep.WriteBytes(h, in)
	if err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if n != DefaultCapacity+10 {
		t.Fatalf("accepted=%d want %d", n, DefaultCapacity+10)
	}

	got := readAll(t, ep, h)
	if len(got) != DefaultCapacity-1 {
		t.Fatalf("stored len=%d want %d", len(got), DefaultCapacity-1)
	}
	if strings.Trim(got, "x") != "" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestWrite_TruncationKeepsPrefix(t *testing.T) {
	ep, err := New(Options{Name: "small", Capacity: 8})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	h := ep.Open()

	if _, err := ep.WriteBytes(h, []byte("abcdefghij")); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if got := readAll(t, ep, h); got != "gfedcba" {
		t.Fatalf("read=%q want %q", got, "gfedcba")
	}
}

func TestWrite_EmbeddedTerminator(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()

	n, err := ep.WriteBytes(h, []byte("ab\x00cd"))
	if err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if n != 5 {
		t.Fatalf("accepted=%d want 5", n)
	}
	if got := ep.Stats().Length; got != 2 {
		t.Fatalf("length=%d want 2", got)
	}
	if got := readAll(t, ep, h); got != "ba" {
		t.Fatalf("read=%q want %q", got, "ba")
	}
}

func TestWrite_ReplacesPreviousContent(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()

	ep.WriteBytes(h, []byte("longer message"))
	ep.WriteBytes(h, []byte("hi"))

	if got := readAll(t, ep, h); got != "ih" {
		t.Fatalf("read=%q want %q", got, "ih")
	}
}

func TestWrite_DoesNotResetDrainedHandle(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()

	ep.WriteBytes(h, []byte("one"))
	readAll(t, ep, h)

	ep.WriteBytes(h, []byte("two"))
	if got := readAll(t, ep, h); got != "" {
		t.Fatalf("drained handle read=%q want empty", got)
	}

	h2 := ep.Open()
	if got := readAll(t, ep, h2); got != "owt" {
		t.Fatalf("fresh handle read=%q want %q", got, "owt")
	}
}

func TestFreshHandle_ToggleSeesOriginalOrder(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)

	h1 := ep.Open()
	ep.WriteBytes(h1, []byte("hola"))
	if got := readAll(t, ep, h1); got != "aloh" {
		t.Fatalf("first session=%q", got)
	}
	ep.Release(h1)

	h2 := ep.Open()
	if got := readAll(t, ep, h2); got != "hola" {
		t.Fatalf("second session=%q want %q", got, "hola")
	}
}

func TestFreshHandle_StableAlwaysReversed(t *testing.T) {
	ep := newEndpoint(t, ReversalStable)

	h1 := ep.Open()
	ep.WriteBytes(h1, []byte("hola"))
	readAll(t, ep, h1)
	ep.Release(h1)

	h2 := ep.Open()
	if got := readAll(t, ep, h2); got != "aloh" {
		t.Fatalf("second session=%q want %q", got, "aloh")
	}
	if got := string(ep.Contents()); got != "hola" {
		t.Fatalf("stored=%q want %q", got, "hola")
	}
}

func TestRewind_TogglesInPlace(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()
	ep.WriteBytes(h, []byte("abc"))

	want := []string{"cba", "abc", "cba"}
	for i, w := range want {
		if got := readAll(t, ep, h); got != w {
			t.Fatalf("read %d=%q want %q", i, got, w)
		}
		h.Rewind()
	}
}

func TestRead_IgnoresRequestedLen(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()
	ep.WriteBytes(h, []byte("hola"))

	buf := make([]byte, 64)
	n, err := ep.Read(h, Bytes(buf), 1)
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if n != 4 {
		t.Fatalf("count=%d want 4", n)
	}
}

func TestRead_CopyFaultKeepsSessionAndContent(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()
	ep.WriteBytes(h, []byte("hola"))

	_, err := ep.Read(h, faultySink{}, 256)
	if !errors.Is(err, ErrCopyFault) {
		t.Fatalf("err=%v want ErrCopyFault", err)
	}
	if h.Session() != SessionPending {
		t.Fatalf("session=%v want pending", h.Session())
	}
	if got := string(ep.Contents()); got != "hola" {
		t.Fatalf("stored=%q want %q", got, "hola")
	}

	// short caller buffer faults the same way
	if _, err := ep.ReadBytes(h, make([]byte, 2)); !errors.Is(err, ErrCopyFault) {
		t.Fatalf("short buffer err=%v want ErrCopyFault", err)
	}

	if got := readAll(t, ep, h); got != "aloh" {
		t.Fatalf("read after fault=%q want %q", got, "aloh")
	}
	if got := ep.Stats().Faults; got != 2 {
		t.Fatalf("faults=%d want 2", got)
	}
}

func TestWrite_CopyFaultKeepsContent(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()
	ep.WriteBytes(h, []byte("keep"))

	n, err := ep.Write(h, faultySource{n: 10})
	if !errors.Is(err, ErrCopyFault) {
		t.Fatalf("err=%v want ErrCopyFault", err)
	}
	if n != 0 {
		t.Fatalf("count=%d want 0", n)
	}
	if got := string(ep.Contents()); got != "keep" {
		t.Fatalf("stored=%q want %q", got, "keep")
	}
}

func TestRelease_ClosesHandle(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()
	ep.Release(h)
	ep.Release(h)

	if _, err := ep.WriteBytes(h, []byte("x")); !errors.Is(err, ErrHandleClosed) {
		t.Fatalf("write err=%v want ErrHandleClosed", err)
	}
	if _, err := ep.ReadBytes(h, make([]byte, 8)); !errors.Is(err, ErrHandleClosed) {
		t.Fatalf("read err=%v want ErrHandleClosed", err)
	}
	if live := ep.Stats().Live; live != 0 {
		t.Fatalf("live=%d want 0", live)
	}
}

func TestRelease_WriteWithFaultingSourceIsClosedNotFault(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()
	ep.Release(h)

	if _, err := ep.Write(h, faultySource{n: 3}); !errors.Is(err, ErrHandleClosed) {
		t.Fatalf("write err=%v want ErrHandleClosed", err)
	}
	if f := ep.Stats().Faults; f != 0 {
		t.Fatalf("faults=%d want 0", f)
	}
}

func TestOpen_CountsAndNotifies(t *testing.T) {
	var mu sync.Mutex
	var kinds []EventKind

	ep, err := New(Options{
		Name: "mi_char_device",
		Observer: ObserverFunc(func(ev Event) {
			mu.Lock()
			kinds = append(kinds, ev.Kind)
			mu.Unlock()
		}),
	})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	h := ep.Open()
	ep.Open()
	ep.WriteBytes(h, []byte("a"))
	readAll(t, ep, h)
	ep.Release(h)

	st := ep.Stats()
	if st.Opens != 2 || st.Live != 1 || st.Reads != 1 || st.Writes != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}

	want := []EventKind{EventOpen, EventOpen, EventWrite, EventRead, EventRelease}
	if len(kinds) != len(want) {
		t.Fatalf("events=%v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d=%s want %s", i, kinds[i], want[i])
		}
	}
}

func TestHandle_ReadWriteCloser(t *testing.T) {
	ep := newEndpoint(t, ReversalToggle)
	h := ep.Open()

	if _, err := io.WriteString(h, "hola"); err != nil {
		t.Fatalf("WriteString err=%v", err)
	}

	buf := make([]byte, 16)
	n, err := h.Read(buf)
	if err != nil || string(buf[:n]) != "aloh" {
		t.Fatalf("Read=%q err=%v", buf[:n], err)
	}
	if _, err := h.Read(buf); err != io.EOF {
		t.Fatalf("second Read err=%v want io.EOF", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
}

func TestConcurrentWritersNeverTear(t *testing.T) {
	ep := newEndpoint(t, ReversalStable)
	msgs := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}

	var wg sync.WaitGroup
	for _, m := range msgs {
		wg.Add(1)
		go func(m string) {
			defer wg.Done()
			h := ep.Open()
			defer h.Close()
			for i := 0; i < 200; i++ {
				ep.WriteBytes(h, []byte(m))
			}
		}(m)
	}

	for i := 0; i < 200; i++ {
		h := ep.Open()
		got := readAll(t, ep, h)
		h.Close()
		if got == "" {
			continue
		}
		if strings.Count(got, got[:1]) != len(got) {
			t.Fatalf("torn read %q", got)
		}
	}
	wg.Wait()
}

func TestParseReversal(t *testing.T) {
	tests := []struct {
		in      string
		want    Reversal
		wantErr bool
	}{
		{"", ReversalToggle, false},
		{"toggle", ReversalToggle, false},
		{"STABLE", ReversalStable, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseReversal(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseReversal(%q) err=%v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseReversal(%q)=%v want %v", tt.in, got, tt.want)
		}
	}
}

// internal/host/table.go
package host

import (
	"fmt"
	"sort"
	"sync"
)

const maxMajor = 4095

type chrdev struct {
	name string
	fops FileOperations
}

// Table is the in-process Registrar. It is safe for concurrent use.
type Table struct {
	mu         sync.RWMutex
	firstMajor int
	chrdevs    map[int]chrdev
	classes    map[string]*Class
	nodes      map[string]*Node
}

// NewTable creates an empty registry. Dynamic majors are allocated
// upward from firstMajor.
func NewTable(firstMajor int) *Table {
	if firstMajor <= 0 {
		firstMajor = 1
	}
	return &Table{
		firstMajor: firstMajor,
		chrdevs:    make(map[int]chrdev),
		classes:    make(map[string]*Class),
		nodes:      make(map[string]*Node),
	}
}

func (t *Table) RegisterChrdev(major int, name string, fops FileOperations) (int, error) {
	if name == "" || fops == nil {
		return 0, fmt.Errorf("register chrdev: name and fops required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range t.chrdevs {
		if c.name == name {
			return 0, fmt.Errorf("register chrdev %s: %w", name, ErrBusy)
		}
	}

	if major == 0 {
		for m := t.firstMajor; m <= maxMajor; m++ {
			if _, used := t.chrdevs[m]; !used {
				major = m
				break
			}
		}
		if major == 0 {
			return 0, fmt.Errorf("register chrdev %s: %w", name, ErrExhausted)
		}
	} else if _, used := t.chrdevs[major]; used {
		return 0, fmt.Errorf("register chrdev %s major %d: %w", name, major, ErrBusy)
	}

	t.chrdevs[major] = chrdev{name: name, fops: fops}
	return major, nil
}

func (t *Table) UnregisterChrdev(major int, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.chrdevs[major]; ok && c.name == name {
		delete(t.chrdevs, major)
	}
}

func (t *Table) CreateClass(name string) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("create class: name required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.classes[name]; exists {
		return nil, fmt.Errorf("create class %s: %w", name, ErrBusy)
	}
	c := &Class{Name: name, registered: true}
	t.classes[name] = c
	return c, nil
}

func (t *Table) UnregisterClass(c *Class) {
	if c == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	c.registered = false
}

func (t *Table) DestroyClass(c *Class) {
	if c == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.classes[c.Name]; ok && cur == c {
		delete(t.classes, c.Name)
	}
	for name, n := range t.nodes {
		if n.Class == c {
			delete(t.nodes, name)
		}
	}
}

func (t *Table) CreateNode(c *Class, devt Devt, name string) (*Node, error) {
	if c == nil || name == "" {
		return nil, fmt.Errorf("create node: class and name required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !c.registered {
		return nil, fmt.Errorf("create node %s: class %s: %w", name, c.Name, ErrNotFound)
	}
	if _, ok := t.chrdevs[devt.Major]; !ok {
		return nil, fmt.Errorf("create node %s: major %d: %w", name, devt.Major, ErrNotFound)
	}
	if _, exists := t.nodes[name]; exists {
		return nil, fmt.Errorf("create node %s: %w", name, ErrBusy)
	}
	for _, n := range t.nodes {
		if n.Devt == devt {
			return nil, fmt.Errorf("create node %s devt %s: %w", name, devt, ErrBusy)
		}
	}

	n := &Node{Name: name, Devt: devt, Class: c}
	t.nodes[name] = n
	return n, nil
}

func (t *Table) DestroyNode(c *Class, devt Devt) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, n := range t.nodes {
		if n.Class == c && n.Devt == devt {
			delete(t.nodes, name)
		}
	}
}

// Lookup resolves a node name to the operations bound to its major.
func (t *Table) Lookup(name string) (FileOperations, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[name]
	if !ok {
		return nil, false
	}
	c, ok := t.chrdevs[n.Devt.Major]
	if !ok {
		return nil, false
	}
	return c.fops, true
}

// Nodes lists registered node names in order.
func (t *Table) Nodes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.nodes))
	for name := range t.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var _ Registrar = (*Table)(nil)

// internal/host/registrar.go
package host

import (
	"fmt"

	"github.com/tamzrod/chardev/internal/device"
)

// MinorBits matches the kernel's split of a dev_t.
const MinorBits = 20

// Devt is a major/minor device number pair.
type Devt struct {
	Major int
	Minor int
}

// MkDev builds a Devt.
func MkDev(major, minor int) Devt { return Devt{Major: major, Minor: minor} }

// Encode packs the pair the way MKDEV does.
func (d Devt) Encode() uint32 {
	return uint32(d.Major)<<MinorBits | uint32(d.Minor)
}

func (d Devt) String() string { return fmt.Sprintf("%d:%d", d.Major, d.Minor) }

// FileOperations is the operation table bound to a character device.
type FileOperations interface {
	Name() string
	Capacity() int
	Open() *device.Handle
	Stats() device.Stats
}

var _ FileOperations = (*device.Endpoint)(nil)

// Class is a device category nodes are created under.
type Class struct {
	Name       string
	registered bool
}

// Node is a device node bound to a Devt.
type Node struct {
	Name  string
	Devt  Devt
	Class *Class
}

// Registrar is the host registry a module loads into.
// Teardown methods never fail.
type Registrar interface {
	// RegisterChrdev registers fops under name. major 0 asks for a dynamic
	// number; the allocated major is returned.
	RegisterChrdev(major int, name string, fops FileOperations) (int, error)
	UnregisterChrdev(major int, name string)

	CreateClass(name string) (*Class, error)
	UnregisterClass(c *Class)
	DestroyClass(c *Class)

	CreateNode(c *Class, devt Devt, name string) (*Node, error)
	DestroyNode(c *Class, devt Devt)
}

// internal/host/chardev.go
package host

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CharDevice binds a FileOperations table to a device node.
type CharDevice struct {
	reg       Registrar
	fops      FileOperations
	nodeName  string
	className string
	log       zerolog.Logger

	major int
	class *Class
	node  *Node
}

// NewCharDevice prepares a module that registers fops as nodeName under
// className. Nothing is registered until Init.
func NewCharDevice(reg Registrar, fops FileOperations, nodeName, className string, log zerolog.Logger) *CharDevice {
	return &CharDevice{
		reg:       reg,
		fops:      fops,
		nodeName:  nodeName,
		className: className,
		log:       log.With().Str("module", nodeName).Logger(),
	}
}

func (m *CharDevice) Name() string { return m.nodeName }

// Devt returns the node's device number; valid after Init.
func (m *CharDevice) Devt() Devt { return MkDev(m.major, 0) }

// Init registers a dynamic major, creates the class, then the node.
// A failing step unwinds the previous ones in reverse order.
func (m *CharDevice) Init() error {
	m.log.Info().Msg("initializing char device")

	major, err := m.reg.RegisterChrdev(0, m.nodeName, m.fops)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to register a major number")
		return fmt.Errorf("%w: chrdev %s: %w", ErrRegistration, m.nodeName, err)
	}
	m.major = major
	m.log.Info().Int("major", major).Msg("registered with major number")

	class, err := m.reg.CreateClass(m.className)
	if err != nil {
		m.reg.UnregisterChrdev(major, m.nodeName)
		m.major = 0
		m.log.Error().Err(err).Msg("failed to register device class")
		return fmt.Errorf("%w: class %s: %w", ErrRegistration, m.className, err)
	}
	m.class = class
	m.log.Info().Str("class", m.className).Msg("device class registered")

	node, err := m.reg.CreateNode(class, m.Devt(), m.nodeName)
	if err != nil {
		m.reg.DestroyClass(class)
		m.reg.UnregisterChrdev(major, m.nodeName)
		m.class = nil
		m.major = 0
		m.log.Error().Err(err).Msg("failed to create the device")
		return fmt.Errorf("%w: node %s: %w", ErrRegistration, m.nodeName, err)
	}
	m.node = node
	m.log.Info().Str("devt", node.Devt.String()).Msg("device created")
	return nil
}

// Exit destroys the node, unregisters and destroys the class and releases
// the major number, unconditionally.
func (m *CharDevice) Exit() {
	devt := m.Devt()
	m.reg.DestroyNode(m.class, devt)
	m.reg.UnregisterClass(m.class)
	m.reg.DestroyClass(m.class)
	m.reg.UnregisterChrdev(m.major, m.nodeName)

	m.node = nil
	m.class = nil
	m.major = 0
	m.log.Info().Msg("goodbye from the char device")
}

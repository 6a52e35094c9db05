// internal/events/publisher.go
package events

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/tamzrod/chardev/internal/config"
	"github.com/tamzrod/chardev/internal/device"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 60 * time.Second
	queueSize                = 64
)

// mqttClient is the subset of pahomqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher implements device.Observer over MQTT.
type Publisher struct {
	cli      mqttClient
	topics   Topics
	qos      byte
	clientID string
	log      zerolog.Logger

	queue     chan device.Event
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

var _ device.Observer = (*Publisher)(nil)

// Connect dials the broker and starts the publish worker.
func Connect(cfg config.EventsConfig, deviceName string, log zerolog.Logger) (*Publisher, error) {
	topics := Topics{Prefix: cfg.Prefix, Device: deviceName}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetWill(topics.Status(), encodeStatus("offline", cfg.ClientID, "unexpected_disconnect"), 1, true)

	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		c.Publish(topics.Status(), byte(cfg.QoS), true, encodeStatus("online", cfg.ClientID, ""))
		log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	cli := pahomqtt.NewClient(opts)
	token := cli.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newPublisher(cli, topics, byte(cfg.QoS), cfg.ClientID, log), nil
}

func newPublisher(cli mqttClient, topics Topics, qos byte, clientID string, log zerolog.Logger) *Publisher {
	p := &Publisher{
		cli:      cli,
		topics:   topics,
		qos:      qos,
		clientID: clientID,
		log:      log,
		queue:    make(chan device.Event, queueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Observe queues an event. It never blocks; events are dropped when the
// queue is full or the publisher is closed.
func (p *Publisher) Observe(ev device.Event) {
	select {
	case <-p.done:
		return
	default:
	}

	select {
	case p.queue <- ev:
	default:
		if n := p.dropped.Inc(); n == 1 || n%100 == 0 {
			p.log.Warn().Uint64("dropped", n).Msg("event queue full, dropping events")
		}
	}
}

// Dropped returns how many events were discarded.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

func (p *Publisher) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.done:
			p.drain()
			return
		case ev := <-p.queue:
			p.send(ev)
		}
	}
}

// drain publishes what is still queued, for at most one publish timeout.
func (p *Publisher) drain() {
	deadline := time.Now().Add(defaultPublishTimeout)
	for time.Now().Before(deadline) {
		select {
		case ev := <-p.queue:
			p.send(ev)
		default:
			return
		}
	}
	if n := len(p.queue); n > 0 {
		p.log.Warn().Int("pending", n).Msg("shutdown drain timed out, dropping events")
	}
}

func (p *Publisher) send(ev device.Event) {
	if err := p.publish(ev); err != nil {
		p.log.Debug().Err(err).Str("kind", string(ev.Kind)).Msg("event publish failed")
	}
}

func (p *Publisher) publish(ev device.Event) error {
	if !p.cli.IsConnected() {
		return ErrNotConnected
	}

	payload, err := encodeEvent(ev)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	token := p.cli.Publish(p.topics.Event(ev.Kind), p.qos, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close stops accepting events, publishes the ones still queued, then a
// graceful offline status, and disconnects.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		<-p.stopped
		if p.cli.IsConnected() {
			token := p.cli.Publish(p.topics.Status(), p.qos, true, encodeStatus("offline", p.clientID, "graceful_shutdown"))
			token.WaitTimeout(defaultPublishTimeout)
		}
		p.cli.Disconnect(defaultDisconnectQuiesce)
	})
	return nil
}

// internal/discovery/browse.go
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
)

// Entry is one node found on the network.
type Entry struct {
	Instance string
	Host     string
	Port     int
	Path     string
}

// URL returns the WebSocket base URL for the entry.
func (e Entry) URL() string {
	return "ws://" + net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Browse collects advertised nodes until ctx is done.
func Browse(ctx context.Context, domain string) ([]Entry, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolver: %w", err)
	}

	results := make(chan *zeroconf.ServiceEntry, 16)
	if err := resolver.Browse(ctx, ServiceType, domain, results); err != nil {
		return nil, fmt.Errorf("discovery: browse: %w", err)
	}

	var found []Entry
	for {
		select {
		case se, ok := <-results:
			if !ok {
				return found, nil
			}
			found = append(found, entryFrom(se))
		case <-ctx.Done():
			return found, nil
		}
	}
}

func entryFrom(se *zeroconf.ServiceEntry) Entry {
	e := Entry{Instance: se.Instance, Host: se.HostName, Port: se.Port}
	switch {
	case len(se.AddrIPv4) > 0:
		e.Host = se.AddrIPv4[0].String()
	case len(se.AddrIPv6) > 0:
		e.Host = se.AddrIPv6[0].String()
	}
	for _, kv := range se.Text {
		if v, ok := strings.CutPrefix(kv, "path="); ok {
			e.Path = v
		}
	}
	return e
}

// Package net exposes the overlay to remote toolbars on the local network.
package net

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"ScreenNote/internal/logging"
)

const ServiceType = "_screennote._tcp"

// Peer is one bridge found on the network.
type Peer struct {
	Name string
	Addr string
	Info []string
}

// Advertise announces a bridge on port. Shut the returned server down to
// withdraw it.
func Advertise(port int, logger *slog.Logger) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"ScreenNote", "path=/ws"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.Component(logger, "bridge").Info("advertising bridge", "service", ServiceType, "host", host, "port", port)
	return server, nil
}

// Browse collects bridges that answer within timeout.
func Browse(timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Peer)
	go func() {
		var peers []Peer
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{
				Name: e.Name,
				Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
				Info: e.InfoFields,
			})
		}
		done <- peers
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	peers := <-done
	if err != nil {
		return peers, fmt.Errorf("mdns query: %w", err)
	}
	return peers, nil
}

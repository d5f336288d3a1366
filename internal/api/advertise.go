package api

import (
	"context"
	"fmt"
	"os"

	"github.com/dmdmdm-nz/zeroconf"
	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/reachd/pkg/version"
)

const (
	ServiceType   = "_reachd._tcp"
	ServiceDomain = "local."
)

// Advertiser publishes the API over mDNS for as long as it runs.
type Advertiser struct {
	instance string
	port     int
}

func NewAdvertiser(port int) *Advertiser {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "reachd"
	}
	return &Advertiser{
		instance: fmt.Sprintf("reachd on %s", host),
		port:     port,
	}
}

func (a *Advertiser) txtRecords() []string {
	return []string{
		"version=" + version.Version,
		"protocol=" + version.ProtocolVersion,
		"path=/ws/reachability",
	}
}

// Start registers the service and blocks until ctx is cancelled.
func (a *Advertiser) Start(ctx context.Context) error {
	server, err := zeroconf.Register(a.instance, ServiceType, ServiceDomain, a.port, a.txtRecords(), nil)
	if err != nil {
		return fmt.Errorf("registering mDNS service: %w", err)
	}
	defer server.Shutdown()

	log.WithFields(log.Fields{
		"instance": a.instance,
		"service":  ServiceType,
		"port":     a.port,
	}).Info("Advertising reachd API over mDNS")

	<-ctx.Done()
	log.WithField("instance", a.instance).Debug("Withdrawing mDNS advertisement")
	return nil
}

func (a *Advertiser) Close() error {
	return nil
}

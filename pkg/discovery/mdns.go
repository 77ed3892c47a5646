package discovery

import (
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu sync.Mutex

	server      *zeroconf.Server
	serviceType string
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{config: config}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// AdvertiseDiscoverable starts advertising the discoverable service,
// replacing any active advertisement.
func (a *MDNSAdvertiser) AdvertiseDiscoverable(info *Info) error {
	return a.register(ServiceTypeDiscoverable, info, EncodeDiscoverableTXT(info))
}

// AdvertiseOperational starts advertising the operational service,
// replacing any active advertisement.
func (a *MDNSAdvertiser) AdvertiseOperational(info *Info) error {
	return a.register(ServiceTypeOperational, info, EncodeOperationalTXT(info))
}

func (a *MDNSAdvertiser) register(serviceType string, info *Info, txt TXTRecordMap) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Only one service at a time; stop the active one first.
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		a.serviceType = ""
	}

	instanceName := info.DeviceID
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		serviceType,
		Domain,
		port,
		TXTRecordsToStrings(txt),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register %s service: %w", serviceType, err)
	}

	a.server = server
	a.serviceType = serviceType
	return nil
}

// Update refreshes the TXT records of the active service.
func (a *MDNSAdvertiser) Update(info *Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}

	var txt TXTRecordMap
	if a.serviceType == ServiceTypeDiscoverable {
		txt = EncodeDiscoverableTXT(info)
	} else {
		txt = EncodeOperationalTXT(info)
	}
	a.server.SetText(TXTRecordsToStrings(txt))
	return nil
}

// Stop stops the active advertisement.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return nil
	}
	a.server.Shutdown()
	a.server = nil
	a.serviceType = ""
	return nil
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

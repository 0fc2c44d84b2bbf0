package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// registration is the part of *zeroconf.Server the advertiser uses.
type registration interface {
	SetText(txt []string)
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error)

func zeroconfRegister(instance, service, domain string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error) {
	server, err := zeroconf.Register(instance, service, domain, port, txt, ifaces, opts...)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	config   AdvertiserConfig
	register registerFunc

	mu     sync.Mutex
	server registration
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	return &MDNSAdvertiser{
		config:   config,
		register: zeroconfRegister,
	}
}

// getInterfaces returns the interfaces to advertise on. Nil means all.
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

// Advertise publishes info, replacing any earlier registration.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *HostInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	instance := info.Instance()
	if err := ValidateInstanceName(instance); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	txt := TXTRecordsToStrings(EncodeHostTXT(info))
	server, err := a.register(
		instance,
		ServiceType,
		Domain,
		int(info.Port),
		txt,
		a.getInterfaces(),
		zeroconf.TTL(uint32(a.config.TTL.Seconds())),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", ServiceType, err)
	}
	a.server = server
	return nil
}

// Update replaces the TXT records of the active registration, e.g. after a
// model switch.
func (a *MDNSAdvertiser) Update(info *HostInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodeHostTXT(info)))
	return nil
}

// Stop withdraws the registration. Stopping twice is a no-op.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	return nil
}

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return &MDNSBrowser{config: config}
}

// Browse streams host links until ctx is done. Entries for the same instance
// seen on several interfaces are merged; only the first sighting is emitted.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *HostService, error) {
	out := make(chan *HostService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		agg := newAggregator()

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToHost(entry)
				if svc == nil || !agg.add(svc) {
					continue
				}
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				agg.remove(entry.Instance, ipStrings(entry.AddrIPv4, entry.AddrIPv6))

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.browserOptions()...)
	}()

	return out, nil
}

// Find browses until a host link with uid appears.
func (b *MDNSBrowser) Find(ctx context.Context, uid rdm.UID) (*HostService, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.UID == uid {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

func entryToHost(entry *zeroconf.ServiceEntry) *HostService {
	return hostFromRecord(entry.Instance, entry.HostName, entry.Port, entry.Text,
		ipStrings(entry.AddrIPv4, entry.AddrIPv6))
}

// hostFromRecord builds a HostService from resolved record data. Records with
// unusable TXT data are dropped.
func hostFromRecord(instance, hostName string, port int, text []string, addrs []string) *HostService {
	info, err := DecodeHostTXT(StringsToTXTRecords(text))
	if err != nil {
		return nil
	}
	return &HostService{
		InstanceName: instance,
		Host:         hostName,
		Port:         uint16(port),
		Addresses:    addrs,
		UID:          info.UID,
		ModelID:      info.ModelID,
		ModelName:    info.ModelName,
		Version:      info.Version,
	}
}

// Dial returns the first address as a "host:port" string, falling back to the
// host name.
func (s *HostService) Dial() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, fmt.Sprint(s.Port))
}

func ipStrings(groups ...[]net.IP) []string {
	var out []string
	for _, g := range groups {
		for _, ip := range g {
			out = append(out, ip.String())
		}
	}
	return out
}

// aggregator tracks browsed services by instance name.
type aggregator struct {
	services map[string]*HostService
}

func newAggregator() *aggregator {
	return &aggregator{services: make(map[string]*HostService)}
}

// add records svc and reports whether the instance is new. Known instances
// only gain addresses.
func (a *aggregator) add(svc *HostService) bool {
	existing, found := a.services[svc.InstanceName]
	if found {
		existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
		return false
	}
	a.services[svc.InstanceName] = svc
	return true
}

// remove drops addrs from instance; the instance is forgotten once empty.
func (a *aggregator) remove(instance string, addrs []string) {
	existing, found := a.services[instance]
	if !found {
		return
	}
	existing.Addresses = removeAddresses(existing.Addresses, addrs)
	if len(existing.Addresses) == 0 {
		delete(a.services, instance)
	}
}

func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

func removeAddresses(addresses, drop []string) []string {
	toRemove := make(map[string]bool, len(drop))
	for _, addr := range drop {
		toRemove[addr] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

var (
	_ Advertiser = (*MDNSAdvertiser)(nil)
	_ Browser    = (*MDNSBrowser)(nil)
)

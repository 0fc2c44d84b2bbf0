package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// Service type and domain.
const (
	ServiceType = "_rdm-host._tcp"
	Domain      = "local."
)

// TXT record keys.
const (
	TXTKeyUID     = "uid"
	TXTKeyModel   = "model"
	TXTKeyName    = "name"
	TXTKeyVersion = "ver"
)

// MaxInstanceNameLen is the DNS label limit for instance names.
const MaxInstanceNameLen = 63

// DefaultTTL is the record TTL used when AdvertiserConfig.TTL is zero.
const DefaultTTL = 120 * time.Second

var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrNotAdvertising      = errors.New("not advertising")
)

// HostInfo is what a responder publishes about its host link.
type HostInfo struct {
	InstanceName string
	Port         uint16
	UID          rdm.UID
	ModelID      uint16
	ModelName    string
	Version      string
}

// Instance returns the instance name, deriving one from the UID when unset.
func (h *HostInfo) Instance() string {
	if h.InstanceName != "" {
		return h.InstanceName
	}
	return "RDM-" + h.UID.String()
}

// HostService is a host link found while browsing.
type HostService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string
	UID          rdm.UID
	ModelID      uint16
	ModelName    string
	Version      string
}

// AdvertiserConfig configures an MDNSAdvertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface. Empty means all.
	Interface string

	// TTL for published records. Zero selects DefaultTTL.
	TTL time.Duration
}

// BrowserConfig configures an MDNSBrowser.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface. Empty means all.
	Interface string
}

// Advertiser publishes a host link.
type Advertiser interface {
	Advertise(ctx context.Context, info *HostInfo) error
	Update(info *HostInfo) error
	Stop() error
}

// Browser finds host links.
type Browser interface {
	Browse(ctx context.Context) (<-chan *HostService, error)
	Find(ctx context.Context, uid rdm.UID) (*HostService, error)
}

package responder

import "github.com/rdm-protocol/rdm-go/pkg/rdm"

// Mute control flags reported in the DISC_MUTE / DISC_UN_MUTE reply.
const (
	MuteFlagManagedProxy uint16 = 0x0001
	MuteFlagSubDevice    uint16 = 0x0002
	MuteFlagBootLoader   uint16 = 0x0004
	MuteFlagProxy        uint16 = 0x0008
)

// Limits from E1.20.
const (
	MaxLabelSize       = 32
	MaxDMXStartAddress = 512
	InvalidDMXAddress  = 0xffff
	protocolVersion    = 0x0100
	maxProductDetails  = 6
)

// Slot describes one DMX slot of a personality.
type Slot struct {
	Description string
	// Category is the slot label ID, or for secondary slots the offset of
	// the primary slot.
	Category rdm.SlotCategory
	Type     rdm.SlotType
	Default  uint8
}

// Personality is one DMX footprint a model can run in.
type Personality struct {
	Description string
	Slots       []Slot
}

// Footprint returns the number of slots the personality uses.
func (p Personality) Footprint() uint16 {
	return uint16(len(p.Slots))
}

// Definition is the static description of a device model.
type Definition struct {
	ModelID              uint16
	ModelDescription     string
	ManufacturerLabel    string
	SoftwareVersion      uint32
	SoftwareVersionLabel string
	DefaultDeviceLabel   string
	ProductCategory      rdm.ProductCategory
	ProductDetails       []rdm.ProductDetail
	Personalities        []Personality
	MuteFlags            uint16
	Table                *Table
}

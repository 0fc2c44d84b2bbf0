package devices

import (
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

// DimmerID is the model ID of the dimmer.
const DimmerID uint16 = 0x0102

// Dimmer is a single-channel LED dimmer supporting only the standard
// parameters.
type Dimmer struct {
	def *responder.Definition
	r   *responder.Responder
}

// NewDimmer creates the dimmer model.
func NewDimmer() *Dimmer {
	return &Dimmer{
		def: &responder.Definition{
			ModelID:              DimmerID,
			ModelDescription:     "Dimmer",
			ManufacturerLabel:    "Open Lighting Project",
			SoftwareVersion:      0x00000001,
			SoftwareVersionLabel: "Alpha",
			DefaultDeviceLabel:   "Dimmer",
			ProductCategory:      rdm.ProductCategoryDimmerCSLED,
			ProductDetails:       []rdm.ProductDetail{rdm.ProductDetailLED, rdm.ProductDetailPWM},
			Personalities: []responder.Personality{
				{
					Description: "Intensity",
					Slots: []responder.Slot{
						{Description: "Intensity", Category: rdm.SlotIntensity, Type: rdm.SlotTypePrimary},
					},
				},
			},
			Table: responder.MustTable(responder.StandardDescriptors()...),
		},
	}
}

// ID implements model.Model.
func (d *Dimmer) ID() uint16 { return DimmerID }

// Name implements model.Model.
func (d *Dimmer) Name() string { return "dimmer" }

// Activate implements model.Model.
func (d *Dimmer) Activate(r *responder.Responder) {
	d.r = r
	r.Load(d.def)
}

// Deactivate implements model.Model.
func (d *Dimmer) Deactivate() {
	if d.r != nil {
		d.r.Unload()
		d.r = nil
	}
}

// Tasks implements model.Model. The dimmer has no timers.
func (d *Dimmer) Tasks(time.Time) {}

// Ioctl implements model.Model.
func (d *Dimmer) Ioctl(cmd model.Ioctl, buf []byte) error {
	if cmd == model.IoctlGetUID {
		return model.GetUID(d.r, buf)
	}
	return model.ErrIoctlUnsupported
}

// HandleRequest implements model.Model.
func (d *Dimmer) HandleRequest(req *rdm.Request) rdm.Result {
	if d.r == nil {
		return rdm.None()
	}
	return d.r.HandleRequest(req)
}

var _ model.Model = (*Dimmer)(nil)


package responder

import (
	"encoding/binary"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// Descriptors for the standard parameters. Models compose their tables from
// these plus their own entries.
var (
	DeviceInfo = Descriptor{
		PID: rdm.PIDDeviceInfo,
		Get: HandlerOp((*Responder).GetDeviceInfo),
	}
	ProductDetailIDList = Descriptor{
		PID: rdm.PIDProductDetailIDList,
		Get: HandlerOp((*Responder).GetProductDetailIDList),
	}
	DeviceModelDescription = Descriptor{
		PID: rdm.PIDDeviceModelDescription,
		Get: HandlerOp((*Responder).GetDeviceModelDescription),
	}
	ManufacturerLabel = Descriptor{
		PID: rdm.PIDManufacturerLabel,
		Get: HandlerOp((*Responder).GetManufacturerLabel),
	}
	DeviceLabel = Descriptor{
		PID: rdm.PIDDeviceLabel,
		Get: HandlerOp((*Responder).GetDeviceLabel),
		Set: HandlerOp((*Responder).SetDeviceLabel),
	}
	SoftwareVersionLabel = Descriptor{
		PID: rdm.PIDSoftwareVersionLabel,
		Get: HandlerOp((*Responder).GetSoftwareVersionLabel),
	}
	DMXPersonality = Descriptor{
		PID: rdm.PIDDMXPersonality,
		Get: HandlerOp((*Responder).GetDMXPersonality),
		Set: HandlerOp((*Responder).SetDMXPersonality),
	}
	DMXPersonalityDescription = Descriptor{
		PID: rdm.PIDDMXPersonalityDescription,
		Get: HandlerOpWithArg((*Responder).GetDMXPersonalityDescription, 1),
	}
	DMXStartAddress = Descriptor{
		PID: rdm.PIDDMXStartAddress,
		Get: HandlerOp((*Responder).GetDMXStartAddress),
		Set: HandlerOp((*Responder).SetDMXStartAddress),
	}
	SlotInfo = Descriptor{
		PID: rdm.PIDSlotInfo,
		Get: HandlerOp((*Responder).GetSlotInfo),
	}
	SlotDescription = Descriptor{
		PID: rdm.PIDSlotDescription,
		Get: HandlerOpWithArg((*Responder).GetSlotDescription, 2),
	}
	DefaultSlotValue = Descriptor{
		PID: rdm.PIDDefaultSlotValue,
		Get: HandlerOp((*Responder).GetDefaultSlotValue),
	}
	IdentifyDevice = Descriptor{
		PID: rdm.PIDIdentifyDevice,
		Get: HandlerOp((*Responder).GetIdentifyDevice),
		Set: HandlerOp((*Responder).SetIdentifyDevice),
	}
)

// StandardDescriptors returns the standard parameters every example model
// supports, in SUPPORTED_PARAMETERS order.
func StandardDescriptors() []Descriptor {
	return []Descriptor{
		DeviceInfo,
		ProductDetailIDList,
		DeviceModelDescription,
		ManufacturerLabel,
		DeviceLabel,
		SoftwareVersionLabel,
		DMXPersonality,
		DMXPersonalityDescription,
		DMXStartAddress,
		SlotInfo,
		SlotDescription,
		DefaultSlotValue,
		IdentifyDevice,
	}
}

// GetDeviceInfo answers DEVICE_INFO with the 19-byte structure.
func (r *Responder) GetDeviceInfo(_ *rdm.Request) rdm.Result {
	b := make([]byte, 0, 19)
	b = binary.BigEndian.AppendUint16(b, protocolVersion)
	b = binary.BigEndian.AppendUint16(b, r.def.ModelID)
	b = binary.BigEndian.AppendUint16(b, uint16(r.def.ProductCategory))
	b = binary.BigEndian.AppendUint32(b, r.def.SoftwareVersion)
	b = binary.BigEndian.AppendUint16(b, r.Footprint())
	b = append(b, r.personality, uint8(len(r.def.Personalities)))
	b = binary.BigEndian.AppendUint16(b, r.StartAddress())
	b = binary.BigEndian.AppendUint16(b, 0) // sub-device count
	b = append(b, 0)                        // sensor count
	return rdm.AckWith(b)
}

// GetProductDetailIDList answers PRODUCT_DETAIL_ID_LIST.
func (r *Responder) GetProductDetailIDList(_ *rdm.Request) rdm.Result {
	details := r.def.ProductDetails
	if len(details) > maxProductDetails {
		details = details[:maxProductDetails]
	}
	var b []byte
	for _, d := range details {
		b = binary.BigEndian.AppendUint16(b, uint16(d))
	}
	return rdm.AckWith(b)
}

// GetDeviceModelDescription answers DEVICE_MODEL_DESCRIPTION.
func (r *Responder) GetDeviceModelDescription(_ *rdm.Request) rdm.Result {
	return rdm.AckWith(label(r.def.ModelDescription))
}

// GetManufacturerLabel answers MANUFACTURER_LABEL.
func (r *Responder) GetManufacturerLabel(_ *rdm.Request) rdm.Result {
	return rdm.AckWith(label(r.def.ManufacturerLabel))
}

// GetSoftwareVersionLabel answers SOFTWARE_VERSION_LABEL.
func (r *Responder) GetSoftwareVersionLabel(_ *rdm.Request) rdm.Result {
	return rdm.AckWith(label(r.def.SoftwareVersionLabel))
}

// GetDeviceLabel answers DEVICE_LABEL.
func (r *Responder) GetDeviceLabel(_ *rdm.Request) rdm.Result {
	return rdm.AckWith(label(r.label))
}

// SetDeviceLabel stores up to 32 bytes of label.
func (r *Responder) SetDeviceLabel(req *rdm.Request) rdm.Result {
	if len(req.Data) > MaxLabelSize {
		return rdm.NackWith(rdm.NackFormatError)
	}
	r.label = string(req.Data)
	return rdm.AckWith(nil)
}

// GetDMXPersonality answers with the current personality and the count.
func (r *Responder) GetDMXPersonality(_ *rdm.Request) rdm.Result {
	return rdm.AckWith([]byte{r.personality, uint8(len(r.def.Personalities))})
}

// SetDMXPersonality selects a 1-based personality.
func (r *Responder) SetDMXPersonality(req *rdm.Request) rdm.Result {
	if len(req.Data) != 1 {
		return rdm.NackWith(rdm.NackFormatError)
	}
	if err := r.SetPersonality(req.Data[0]); err != nil {
		return rdm.NackWith(rdm.NackDataOutOfRange)
	}
	return rdm.AckWith(nil)
}

// SetPersonality selects personality n (1-based).
func (r *Responder) SetPersonality(n uint8) error {
	if r.def == nil || n == 0 || int(n) > len(r.def.Personalities) {
		return ErrPersonalityOutOfRange
	}
	r.personality = n
	return nil
}

// GetDMXPersonalityDescription describes the personality in the argument.
func (r *Responder) GetDMXPersonalityDescription(req *rdm.Request) rdm.Result {
	n := req.Data[0]
	if n == 0 || int(n) > len(r.def.Personalities) {
		return rdm.NackWith(rdm.NackDataOutOfRange)
	}
	p := r.def.Personalities[n-1]
	b := []byte{n}
	b = binary.BigEndian.AppendUint16(b, p.Footprint())
	b = append(b, label(p.Description)...)
	return rdm.AckWith(b)
}

// GetDMXStartAddress answers DMX_START_ADDRESS.
func (r *Responder) GetDMXStartAddress(_ *rdm.Request) rdm.Result {
	return rdm.AckWith(binary.BigEndian.AppendUint16(nil, r.StartAddress()))
}

// SetDMXStartAddress accepts 1-512.
func (r *Responder) SetDMXStartAddress(req *rdm.Request) rdm.Result {
	if len(req.Data) != 2 {
		return rdm.NackWith(rdm.NackFormatError)
	}
	addr := binary.BigEndian.Uint16(req.Data)
	if addr == 0 || addr > MaxDMXStartAddress {
		return rdm.NackWith(rdm.NackDataOutOfRange)
	}
	r.startAddress = addr
	return rdm.AckWith(nil)
}

// GetSlotInfo lists offset, type and label ID for each slot.
func (r *Responder) GetSlotInfo(_ *rdm.Request) rdm.Result {
	p, _ := r.currentPersonality()
	var b []byte
	for i, s := range p.Slots {
		b = binary.BigEndian.AppendUint16(b, uint16(i))
		b = append(b, uint8(s.Type))
		b = binary.BigEndian.AppendUint16(b, uint16(s.Category))
	}
	return rdm.AckWith(b)
}

// GetSlotDescription describes the slot offset in the argument.
func (r *Responder) GetSlotDescription(req *rdm.Request) rdm.Result {
	p, _ := r.currentPersonality()
	offset := binary.BigEndian.Uint16(req.Data)
	if int(offset) >= len(p.Slots) {
		return rdm.NackWith(rdm.NackDataOutOfRange)
	}
	b := binary.BigEndian.AppendUint16(nil, offset)
	b = append(b, label(p.Slots[offset].Description)...)
	return rdm.AckWith(b)
}

// GetDefaultSlotValue lists offset and default value for each slot.
func (r *Responder) GetDefaultSlotValue(_ *rdm.Request) rdm.Result {
	p, _ := r.currentPersonality()
	var b []byte
	for i, s := range p.Slots {
		b = binary.BigEndian.AppendUint16(b, uint16(i))
		b = append(b, s.Default)
	}
	return rdm.AckWith(b)
}

// GetIdentifyDevice answers IDENTIFY_DEVICE.
func (r *Responder) GetIdentifyDevice(_ *rdm.Request) rdm.Result {
	if r.identify {
		return rdm.AckWith([]byte{1})
	}
	return rdm.AckWith([]byte{0})
}

// SetIdentifyDevice turns identify mode on or off.
func (r *Responder) SetIdentifyDevice(req *rdm.Request) rdm.Result {
	if len(req.Data) != 1 {
		return rdm.NackWith(rdm.NackFormatError)
	}
	if req.Data[0] > 1 {
		return rdm.NackWith(rdm.NackDataOutOfRange)
	}
	on := req.Data[0] == 1
	if on != r.identify {
		r.identify = on
		r.debugLog("identify changed", "on", on)
		if r.onIdentifyChange != nil {
			r.onIdentifyChange(on)
		}
	}
	return rdm.AckWith(nil)
}

func label(s string) []byte {
	if len(s) > MaxLabelSize {
		s = s[:MaxLabelSize]
	}
	return []byte(s)
}

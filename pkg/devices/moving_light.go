package devices

import (
	"log/slog"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

// MovingLightID is the model ID of the moving light.
const MovingLightID uint16 = 0x0101

// LampStrikeDelay is how long the lamp stays in STRIKE before turning ON.
const LampStrikeDelay = 5 * time.Second

var movingLightPersonalities = []responder.Personality{
	{
		Description: "8-bit mode",
		Slots: []responder.Slot{
			{Description: "Dimmer", Category: rdm.SlotIntensity, Type: rdm.SlotTypePrimary},
			{Description: "Pan", Category: rdm.SlotPan, Type: rdm.SlotTypePrimary},
			{Description: "Tilt", Category: rdm.SlotTilt, Type: rdm.SlotTypePrimary},
			{Description: "Color Wheel", Category: rdm.SlotColorWheel, Type: rdm.SlotTypePrimary},
		},
	},
	{
		Description: "16-bit mode",
		Slots: []responder.Slot{
			{Description: "Dimmer", Category: rdm.SlotIntensity, Type: rdm.SlotTypePrimary},
			{Description: "Pan", Category: rdm.SlotPan, Type: rdm.SlotTypePrimary},
			{Description: "Pan (Fine)", Category: 1, Type: rdm.SlotTypeSecFine},
			{Description: "Tilt", Category: rdm.SlotTilt, Type: rdm.SlotTypePrimary},
			{Description: "Tilt (Fine)", Category: 3, Type: rdm.SlotTypeSecFine},
			{Description: "Color Wheel", Category: rdm.SlotColorWheel, Type: rdm.SlotTypePrimary},
		},
	},
}

// lightState is the parameter storage the dispatch table points into.
type lightState struct {
	deviceHours      uint32
	lampHours        uint32
	lampStrikes      uint32
	devicePowerCycle uint32
	lampState        uint8
	lampOnMode       uint8
	displayInvert    uint8
	displayLevel     uint8
	powerState       uint8
	panInvert        bool
	tiltInvert       bool
	panTiltSwap      bool
}

func defaultLightState() lightState {
	return lightState{
		lampState:     rdm.LampOff.Wire(),
		lampOnMode:    rdm.LampOnModeOn.Wire(),
		displayInvert: rdm.DisplayInvertOff.Wire(),
		displayLevel:  255,
		powerState:    rdm.PowerStateNormal.Wire(),
	}
}

// MovingLight is a model with lamp, display and pan/tilt parameters.
type MovingLight struct {
	def   *responder.Definition
	r     *responder.Responder
	state lightState

	strikeStart time.Time
	clock       func() time.Time
	logger      *slog.Logger
}

// NewMovingLight creates the moving light model.
func NewMovingLight() *MovingLight {
	m := &MovingLight{
		state: defaultLightState(),
		clock: time.Now,
	}
	st := &m.state

	descs := append(responder.StandardDescriptors(),
		responder.Descriptor{PID: rdm.PIDDeviceHours, Get: responder.Uint32Op(&st.deviceHours), Set: responder.Uint32Op(&st.deviceHours)},
		responder.Descriptor{PID: rdm.PIDLampHours, Get: responder.Uint32Op(&st.lampHours), Set: responder.Uint32Op(&st.lampHours)},
		responder.Descriptor{PID: rdm.PIDLampStrikes, Get: responder.Uint32Op(&st.lampStrikes), Set: responder.Uint32Op(&st.lampStrikes)},
		responder.Descriptor{PID: rdm.PIDLampState, Get: responder.Uint8Op(&st.lampState), Set: responder.HandlerOp(m.setLampState)},
		responder.Descriptor{
			PID: rdm.PIDLampOnMode,
			Get: responder.Uint8Op(&st.lampOnMode),
			Set: responder.Enum8Op(&st.lampOnMode, func(b uint8) bool {
				return rdm.LampOnModeFromWire(b) != rdm.LampOnModeUnrecognized
			}),
		},
		responder.Descriptor{PID: rdm.PIDDevicePowerCycles, Get: responder.Uint32Op(&st.devicePowerCycle), Set: responder.Uint32Op(&st.devicePowerCycle)},
		responder.Descriptor{
			PID: rdm.PIDDisplayInvert,
			Get: responder.Uint8Op(&st.displayInvert),
			Set: responder.Enum8Op(&st.displayInvert, func(b uint8) bool {
				return rdm.DisplayInvertFromWire(b) != rdm.DisplayInvertUnrecognized
			}),
		},
		responder.Descriptor{PID: rdm.PIDDisplayLevel, Get: responder.Uint8Op(&st.displayLevel), Set: responder.Uint8Op(&st.displayLevel)},
		responder.Descriptor{PID: rdm.PIDPanInvert, Get: responder.BoolOp(&st.panInvert), Set: responder.BoolOp(&st.panInvert)},
		responder.Descriptor{PID: rdm.PIDTiltInvert, Get: responder.BoolOp(&st.tiltInvert), Set: responder.BoolOp(&st.tiltInvert)},
		responder.Descriptor{PID: rdm.PIDPanTiltSwap, Get: responder.BoolOp(&st.panTiltSwap), Set: responder.BoolOp(&st.panTiltSwap)},
		responder.Descriptor{
			PID: rdm.PIDPowerState,
			Get: responder.Uint8Op(&st.powerState),
			Set: responder.Enum8Op(&st.powerState, func(b uint8) bool {
				return rdm.PowerStateFromWire(b) != rdm.PowerStateUnrecognized
			}),
		},
	)

	m.def = &responder.Definition{
		ModelID:              MovingLightID,
		ModelDescription:     "Moving Light",
		ManufacturerLabel:    "Open Lighting Project",
		SoftwareVersion:      0x00000001,
		SoftwareVersionLabel: "Alpha",
		DefaultDeviceLabel:   "Default Label",
		ProductCategory:      rdm.ProductCategoryFixtureMovingYoke,
		ProductDetails:       []rdm.ProductDetail{rdm.ProductDetailArc, rdm.ProductDetailChangeoverManual},
		Personalities:        movingLightPersonalities,
		Table:                responder.MustTable(descs...),
	}
	return m
}

// SetLogger sets the logger for debug output.
func (m *MovingLight) SetLogger(logger *slog.Logger) { m.logger = logger }

// SetClock replaces the clock used to time lamp strikes.
func (m *MovingLight) SetClock(clock func() time.Time) { m.clock = clock }

// ID implements model.Model.
func (m *MovingLight) ID() uint16 { return MovingLightID }

// Name implements model.Model.
func (m *MovingLight) Name() string { return "moving light" }

// Definition returns the static model description.
func (m *MovingLight) Definition() *responder.Definition { return m.def }

// Activate implements model.Model.
func (m *MovingLight) Activate(r *responder.Responder) {
	m.r = r
	r.Load(m.def)
}

// Deactivate implements model.Model.
func (m *MovingLight) Deactivate() {
	if m.r != nil {
		m.r.Unload()
		m.r = nil
	}
}

// Tasks completes a pending lamp strike once LampStrikeDelay has passed.
func (m *MovingLight) Tasks(now time.Time) {
	if rdm.LampStateFromWire(m.state.lampState) != rdm.LampStrike {
		return
	}
	if now.Sub(m.strikeStart) < LampStrikeDelay {
		return
	}
	m.state.lampState = rdm.LampOn.Wire()
	m.state.lampStrikes++
	m.debugLog("lamp struck", "strikes", m.state.lampStrikes)
}

// Ioctl implements model.Model.
func (m *MovingLight) Ioctl(cmd model.Ioctl, buf []byte) error {
	switch cmd {
	case model.IoctlGetUID:
		return model.GetUID(m.r, buf)
	default:
		return model.ErrIoctlUnsupported
	}
}

// HandleRequest implements model.Model.
func (m *MovingLight) HandleRequest(req *rdm.Request) rdm.Result {
	if m.r == nil {
		return rdm.None()
	}
	return m.r.HandleRequest(req)
}

// LampState returns the current lamp state.
func (m *MovingLight) LampState() rdm.LampState {
	return rdm.LampStateFromWire(m.state.lampState)
}

// LampStrikes returns the lamp strike counter.
func (m *MovingLight) LampStrikes() uint32 { return m.state.lampStrikes }

// setLampState accepts OFF, ON and STRIKE. OFF to ON counts a strike;
// STRIKE starts the strike timer.
func (m *MovingLight) setLampState(_ *responder.Responder, req *rdm.Request) rdm.Result {
	if len(req.Data) != 1 {
		return rdm.NackWith(rdm.NackFormatError)
	}
	next := rdm.LampStateFromWire(req.Data[0])
	switch next {
	case rdm.LampOff, rdm.LampOn, rdm.LampStrike:
	default:
		return rdm.NackWith(rdm.NackDataOutOfRange)
	}

	prev := m.LampState()
	if prev == rdm.LampOff && next == rdm.LampOn {
		m.state.lampStrikes++
	}
	if next == rdm.LampStrike && prev != rdm.LampStrike {
		m.strikeStart = m.clock()
	}
	m.state.lampState = next.Wire()
	return rdm.AckWith(nil)
}

func (m *MovingLight) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

var _ model.Model = (*MovingLight)(nil)

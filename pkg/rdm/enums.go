package rdm

// CommandClass is the semantic command class of a frame.
type CommandClass uint8

const (
	// CommandClassUnrecognized is any wire value not defined by E1.20.
	CommandClassUnrecognized CommandClass = iota
	CommandClassDiscovery
	CommandClassDiscoveryResponse
	CommandClassGet
	CommandClassGetResponse
	CommandClassSet
	CommandClassSetResponse
)

// Command class wire values.
const (
	wireDiscovery         uint8 = 0x10
	wireDiscoveryResponse uint8 = 0x11
	wireGet               uint8 = 0x20
	wireGetResponse       uint8 = 0x21
	wireSet               uint8 = 0x30
	wireSetResponse       uint8 = 0x31
)

// CommandClassFromWire converts a wire byte to a CommandClass.
func CommandClassFromWire(b uint8) CommandClass {
	switch b {
	case wireDiscovery:
		return CommandClassDiscovery
	case wireDiscoveryResponse:
		return CommandClassDiscoveryResponse
	case wireGet:
		return CommandClassGet
	case wireGetResponse:
		return CommandClassGetResponse
	case wireSet:
		return CommandClassSet
	case wireSetResponse:
		return CommandClassSetResponse
	default:
		return CommandClassUnrecognized
	}
}

// Wire returns the on-wire byte. Unrecognized encodes as 0.
func (c CommandClass) Wire() uint8 {
	switch c {
	case CommandClassDiscovery:
		return wireDiscovery
	case CommandClassDiscoveryResponse:
		return wireDiscoveryResponse
	case CommandClassGet:
		return wireGet
	case CommandClassGetResponse:
		return wireGetResponse
	case CommandClassSet:
		return wireSet
	case CommandClassSetResponse:
		return wireSetResponse
	default:
		return 0
	}
}

// IsRequest reports whether the class is one a controller sends.
func (c CommandClass) IsRequest() bool {
	return c == CommandClassDiscovery || c == CommandClassGet || c == CommandClassSet
}

// Response returns the _RESPONSE variant of a request class.
func (c CommandClass) Response() CommandClass {
	switch c {
	case CommandClassDiscovery:
		return CommandClassDiscoveryResponse
	case CommandClassGet:
		return CommandClassGetResponse
	case CommandClassSet:
		return CommandClassSetResponse
	default:
		return c
	}
}

// String returns the command class name.
func (c CommandClass) String() string {
	switch c {
	case CommandClassDiscovery:
		return "DISCOVERY"
	case CommandClassDiscoveryResponse:
		return "DISCOVERY_RESPONSE"
	case CommandClassGet:
		return "GET"
	case CommandClassGetResponse:
		return "GET_RESPONSE"
	case CommandClassSet:
		return "SET"
	case CommandClassSetResponse:
		return "SET_RESPONSE"
	default:
		return "UNRECOGNIZED"
	}
}

// ResponseType is the semantic response type carried in byte 16 of a
// response frame.
type ResponseType uint8

const (
	ResponseTypeUnrecognized ResponseType = iota
	ResponseTypeAck
	ResponseTypeAckTimer
	ResponseTypeNackReason
	ResponseTypeAckOverflow
)

// ResponseTypeFromWire converts a wire byte to a ResponseType.
func ResponseTypeFromWire(b uint8) ResponseType {
	switch b {
	case 0x00:
		return ResponseTypeAck
	case 0x01:
		return ResponseTypeAckTimer
	case 0x02:
		return ResponseTypeNackReason
	case 0x03:
		return ResponseTypeAckOverflow
	default:
		return ResponseTypeUnrecognized
	}
}

// Wire returns the on-wire byte. Unrecognized encodes as 0xff.
func (r ResponseType) Wire() uint8 {
	switch r {
	case ResponseTypeAck:
		return 0x00
	case ResponseTypeAckTimer:
		return 0x01
	case ResponseTypeNackReason:
		return 0x02
	case ResponseTypeAckOverflow:
		return 0x03
	default:
		return 0xff
	}
}

// String returns the response type name.
func (r ResponseType) String() string {
	switch r {
	case ResponseTypeAck:
		return "ACK"
	case ResponseTypeAckTimer:
		return "ACK_TIMER"
	case ResponseTypeNackReason:
		return "NACK_REASON"
	case ResponseTypeAckOverflow:
		return "ACK_OVERFLOW"
	default:
		return "UNRECOGNIZED"
	}
}

// NackReason is the semantic reason code of a NACK response.
type NackReason uint8

const (
	NackUnrecognized NackReason = iota
	NackUnknownPID
	NackFormatError
	NackHardwareFault
	NackProxyReject
	NackWriteProtect
	NackUnsupportedCommandClass
	NackDataOutOfRange
	NackBufferFull
	NackPacketSizeUnsupported
	NackSubDeviceOutOfRange
	NackProxyBufferFull
	NackActionNotSupported
	NackEndpointNumberInvalid
)

var nackWire = map[NackReason]uint16{
	NackUnknownPID:              0x0000,
	NackFormatError:             0x0001,
	NackHardwareFault:           0x0002,
	NackProxyReject:             0x0003,
	NackWriteProtect:            0x0004,
	NackUnsupportedCommandClass: 0x0005,
	NackDataOutOfRange:          0x0006,
	NackBufferFull:              0x0007,
	NackPacketSizeUnsupported:   0x0008,
	NackSubDeviceOutOfRange:     0x0009,
	NackProxyBufferFull:         0x000a,
	NackActionNotSupported:      0x000b,
	NackEndpointNumberInvalid:   0x0011,
}

var nackNames = map[NackReason]string{
	NackUnknownPID:              "UNKNOWN_PID",
	NackFormatError:             "FORMAT_ERROR",
	NackHardwareFault:           "HARDWARE_FAULT",
	NackProxyReject:             "PROXY_REJECT",
	NackWriteProtect:            "WRITE_PROTECT",
	NackUnsupportedCommandClass: "UNSUPPORTED_COMMAND_CLASS",
	NackDataOutOfRange:          "DATA_OUT_OF_RANGE",
	NackBufferFull:              "BUFFER_FULL",
	NackPacketSizeUnsupported:   "PACKET_SIZE_UNSUPPORTED",
	NackSubDeviceOutOfRange:     "SUB_DEVICE_OUT_OF_RANGE",
	NackProxyBufferFull:         "PROXY_BUFFER_FULL",
	NackActionNotSupported:      "ACTION_NOT_SUPPORTED",
	NackEndpointNumberInvalid:   "ENDPOINT_NUMBER_INVALID",
}

// NackReasonFromWire converts a 16-bit wire code to a NackReason.
func NackReasonFromWire(code uint16) NackReason {
	for reason, wire := range nackWire {
		if wire == code {
			return reason
		}
	}
	return NackUnrecognized
}

// Wire returns the 16-bit wire code. Unrecognized encodes as 0xffff.
func (n NackReason) Wire() uint16 {
	if code, ok := nackWire[n]; ok {
		return code
	}
	return 0xffff
}

// String returns the reason name.
func (n NackReason) String() string {
	if name, ok := nackNames[n]; ok {
		return name
	}
	return "UNRECOGNIZED"
}

// LampState is the semantic value of PID LAMP_STATE.
type LampState uint8

const (
	LampOff LampState = iota
	LampOn
	LampStrike
	LampStandby
	LampNotPresent
	LampError
	LampStateUnrecognized
)

// LampStateFromWire converts a wire byte to a LampState.
func LampStateFromWire(b uint8) LampState {
	switch b {
	case 0x00:
		return LampOff
	case 0x01:
		return LampOn
	case 0x02:
		return LampStrike
	case 0x03:
		return LampStandby
	case 0x04:
		return LampNotPresent
	case 0x7f:
		return LampError
	default:
		return LampStateUnrecognized
	}
}

// Wire returns the on-wire byte.
func (l LampState) Wire() uint8 {
	switch l {
	case LampOff:
		return 0x00
	case LampOn:
		return 0x01
	case LampStrike:
		return 0x02
	case LampStandby:
		return 0x03
	case LampNotPresent:
		return 0x04
	default:
		return 0x7f
	}
}

// String returns the lamp state name.
func (l LampState) String() string {
	switch l {
	case LampOff:
		return "OFF"
	case LampOn:
		return "ON"
	case LampStrike:
		return "STRIKE"
	case LampStandby:
		return "STANDBY"
	case LampNotPresent:
		return "NOT_PRESENT"
	case LampError:
		return "ERROR"
	default:
		return "UNRECOGNIZED"
	}
}

// LampOnMode is the semantic value of PID LAMP_ON_MODE.
type LampOnMode uint8

const (
	LampOnModeOff LampOnMode = iota
	LampOnModeDMX
	LampOnModeOn
	LampOnModeOnAfterCal
	LampOnModeUnrecognized
)

// LampOnModeFromWire converts a wire byte to a LampOnMode.
func LampOnModeFromWire(b uint8) LampOnMode {
	if b > uint8(LampOnModeOnAfterCal) {
		return LampOnModeUnrecognized
	}
	return LampOnMode(b)
}

// Wire returns the on-wire byte.
func (m LampOnMode) Wire() uint8 {
	return uint8(m)
}

// DisplayInvert is the semantic value of PID DISPLAY_INVERT.
type DisplayInvert uint8

const (
	DisplayInvertOff DisplayInvert = iota
	DisplayInvertOn
	DisplayInvertAuto
	DisplayInvertUnrecognized
)

// DisplayInvertFromWire converts a wire byte to a DisplayInvert.
func DisplayInvertFromWire(b uint8) DisplayInvert {
	if b > uint8(DisplayInvertAuto) {
		return DisplayInvertUnrecognized
	}
	return DisplayInvert(b)
}

// Wire returns the on-wire byte.
func (d DisplayInvert) Wire() uint8 {
	return uint8(d)
}

// PowerState is the semantic value of PID POWER_STATE.
type PowerState uint8

const (
	PowerStateFullOff PowerState = iota
	PowerStateShutdown
	PowerStateStandby
	PowerStateNormal
	PowerStateUnrecognized
)

// PowerStateFromWire converts a wire byte to a PowerState.
func PowerStateFromWire(b uint8) PowerState {
	switch b {
	case 0x00:
		return PowerStateFullOff
	case 0x01:
		return PowerStateShutdown
	case 0x02:
		return PowerStateStandby
	case 0xff:
		return PowerStateNormal
	default:
		return PowerStateUnrecognized
	}
}

// Wire returns the on-wire byte.
func (p PowerState) Wire() uint8 {
	switch p {
	case PowerStateFullOff:
		return 0x00
	case PowerStateShutdown:
		return 0x01
	case PowerStateStandby:
		return 0x02
	default:
		return 0xff
	}
}

// SlotType is a slot type from table C-1 of E1.20.
type SlotType uint8

const (
	SlotTypePrimary        SlotType = 0x00
	SlotTypeSecFine        SlotType = 0x01
	SlotTypeSecTiming      SlotType = 0x02
	SlotTypeSecSpeed       SlotType = 0x03
	SlotTypeSecControl     SlotType = 0x04
	SlotTypeSecIndex       SlotType = 0x05
	SlotTypeSecRotation    SlotType = 0x06
	SlotTypeSecIndexRotate SlotType = 0x07
	SlotTypeSecUndefined   SlotType = 0xff
)

// SlotCategory is a slot label ID from table C-2 of E1.20. For secondary
// slots it holds the offset of the primary slot instead.
type SlotCategory uint16

const (
	SlotIntensity   SlotCategory = 0x0001
	SlotPan         SlotCategory = 0x0101
	SlotTilt        SlotCategory = 0x0102
	SlotColorWheel  SlotCategory = 0x0201
	SlotStrobe      SlotCategory = 0x0404
	SlotLampControl SlotCategory = 0x0501
	SlotUndefined   SlotCategory = 0xffff
)

// ProductCategory is a product category code from table A-5.
type ProductCategory uint16

const (
	ProductCategoryNotDeclared       ProductCategory = 0x0000
	ProductCategoryFixture           ProductCategory = 0x0100
	ProductCategoryFixtureMovingYoke ProductCategory = 0x0102
	ProductCategoryDimmer            ProductCategory = 0x0500
	ProductCategoryDimmerCSLED       ProductCategory = 0x0509
	ProductCategoryTestEquipment     ProductCategory = 0x7101
	ProductCategoryOther             ProductCategory = 0x7fff
)

// ProductDetail is a product detail ID from table A-6.
type ProductDetail uint16

const (
	ProductDetailNotDeclared      ProductDetail = 0x0000
	ProductDetailArc              ProductDetail = 0x0001
	ProductDetailLED              ProductDetail = 0x0004
	ProductDetailPWM              ProductDetail = 0x0403
	ProductDetailChangeoverManual ProductDetail = 0x0900
	ProductDetailTest             ProductDetail = 0x0902
	ProductDetailOther            ProductDetail = 0x7fff
)

package rdm

import (
	"fmt"
	"strconv"
	"strings"
)

// PID is a 16-bit RDM parameter ID.
type PID uint16

// Discovery PIDs.
const (
	PIDDiscUniqueBranch PID = 0x0001
	PIDDiscMute         PID = 0x0002
	PIDDiscUnMute       PID = 0x0003
)

// Product information PIDs.
const (
	PIDSupportedParameters    PID = 0x0050
	PIDParameterDescription   PID = 0x0051
	PIDDeviceInfo             PID = 0x0060
	PIDProductDetailIDList    PID = 0x0070
	PIDDeviceModelDescription PID = 0x0080
	PIDManufacturerLabel      PID = 0x0081
	PIDDeviceLabel            PID = 0x0082
	PIDSoftwareVersionLabel   PID = 0x00c0
)

// DMX setup PIDs.
const (
	PIDDMXPersonality            PID = 0x00e0
	PIDDMXPersonalityDescription PID = 0x00e1
	PIDDMXStartAddress           PID = 0x00f0
	PIDSlotInfo                  PID = 0x0120
	PIDSlotDescription           PID = 0x0121
	PIDDefaultSlotValue          PID = 0x0122
)

// Power and lamp PIDs.
const (
	PIDDeviceHours       PID = 0x0400
	PIDLampHours         PID = 0x0401
	PIDLampStrikes       PID = 0x0402
	PIDLampState         PID = 0x0403
	PIDLampOnMode        PID = 0x0404
	PIDDevicePowerCycles PID = 0x0405
)

// Display and configuration PIDs.
const (
	PIDDisplayInvert PID = 0x0500
	PIDDisplayLevel  PID = 0x0501
	PIDPanInvert     PID = 0x0600
	PIDTiltInvert    PID = 0x0601
	PIDPanTiltSwap   PID = 0x0602
)

// Control PIDs.
const (
	PIDIdentifyDevice PID = 0x1000
	PIDResetDevice    PID = 0x1001
	PIDPowerState     PID = 0x1010
)

// Manufacturer-specific PIDs.
const (
	PIDDeviceModel     PID = 0x8002
	PIDDeviceModelList PID = 0x8003
)

var pidNames = map[PID]string{
	PIDDiscUniqueBranch:          "DISC_UNIQUE_BRANCH",
	PIDDiscMute:                  "DISC_MUTE",
	PIDDiscUnMute:                "DISC_UN_MUTE",
	PIDSupportedParameters:       "SUPPORTED_PARAMETERS",
	PIDParameterDescription:      "PARAMETER_DESCRIPTION",
	PIDDeviceInfo:                "DEVICE_INFO",
	PIDProductDetailIDList:       "PRODUCT_DETAIL_ID_LIST",
	PIDDeviceModelDescription:    "DEVICE_MODEL_DESCRIPTION",
	PIDManufacturerLabel:         "MANUFACTURER_LABEL",
	PIDDeviceLabel:               "DEVICE_LABEL",
	PIDSoftwareVersionLabel:      "SOFTWARE_VERSION_LABEL",
	PIDDMXPersonality:            "DMX_PERSONALITY",
	PIDDMXPersonalityDescription: "DMX_PERSONALITY_DESCRIPTION",
	PIDDMXStartAddress:           "DMX_START_ADDRESS",
	PIDSlotInfo:                  "SLOT_INFO",
	PIDSlotDescription:           "SLOT_DESCRIPTION",
	PIDDefaultSlotValue:          "DEFAULT_SLOT_VALUE",
	PIDDeviceHours:               "DEVICE_HOURS",
	PIDLampHours:                 "LAMP_HOURS",
	PIDLampStrikes:               "LAMP_STRIKES",
	PIDLampState:                 "LAMP_STATE",
	PIDLampOnMode:                "LAMP_ON_MODE",
	PIDDevicePowerCycles:         "DEVICE_POWER_CYCLES",
	PIDDisplayInvert:             "DISPLAY_INVERT",
	PIDDisplayLevel:              "DISPLAY_LEVEL",
	PIDPanInvert:                 "PAN_INVERT",
	PIDTiltInvert:                "TILT_INVERT",
	PIDPanTiltSwap:               "PAN_TILT_SWAP",
	PIDIdentifyDevice:            "IDENTIFY_DEVICE",
	PIDResetDevice:               "RESET_DEVICE",
	PIDPowerState:                "POWER_STATE",
	PIDDeviceModel:               "DEVICE_MODEL",
	PIDDeviceModelList:           "DEVICE_MODEL_LIST",
}

// String returns the PID name, or its hex value when unnamed.
func (p PID) String() string {
	if name, ok := pidNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", uint16(p))
}

// IsDiscovery reports whether p belongs to the discovery command class.
func (p PID) IsDiscovery() bool {
	return p == PIDDiscUniqueBranch || p == PIDDiscMute || p == PIDDiscUnMute
}

// ParsePID resolves a PID name such as "DEVICE_INFO" (case-insensitive) or
// a numeric value such as "0x0060".
func ParsePID(s string) (PID, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range pidNames {
		if n == name {
			return p, nil
		}
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown PID %q", s)
	}
	return PID(v), nil
}

package rawcmos

import (
	"strconv"

	"cpicam-go/errcode"
)

// ControlID names an image control. None of them is backed by hardware on
// this sensor.
type ControlID uint8

const (
	CtrlBrightness ControlID = iota
	CtrlContrast
	CtrlSaturation
	CtrlHue
	CtrlHFlip
	CtrlVFlip
	CtrlGain
	CtrlAutoGain
	CtrlExposure
	CtrlAutoExposure
	CtrlAutoWhiteBalance
	CtrlWhiteBalance
	CtrlColorEffect

	numControls
)

var controlNames = [numControls]string{
	"brightness", "contrast", "saturation", "hue", "hflip", "vflip",
	"gain", "autogain", "exposure", "autoexposure", "autowb", "wb", "colorfx",
}

func (c ControlID) String() string {
	if c < numControls {
		return controlNames[c]
	}
	return "ctrl(" + strconv.Itoa(int(c)) + ")"
}

// ControlByName maps a control name, or a decimal control number, to its
// ID. Numbers outside the known set are returned as is; the control calls
// reject them like any other id.
func ControlByName(name string) (ControlID, bool) {
	for i, n := range controlNames {
		if n == name {
			return ControlID(i), true
		}
	}
	if n, err := strconv.ParseUint(name, 10, 8); err == nil {
		return ControlID(n), true
	}
	return 0, false
}

// Controls holds the image control values. They start at zero and stay
// there.
type Controls struct {
	Brightness   int32
	Contrast     int32
	Saturation   int32
	Hue          int32
	HFlip        bool
	VFlip        bool
	Gain         int32
	AutoGain     bool
	Exposure     int32
	AutoExposure bool
	AutoWB       bool
	WB           int32
	ColorEffect  int32
}

// ControlInfo describes a control's range.
type ControlInfo struct {
	ID                      ControlID
	Name                    string
	Min, Max, Step, Default int32
}

func unsupportedControl(op string, id ControlID) error {
	return errcode.New(errcode.Unsupported, op, id.String())
}

func (d *Device) GetControl(id ControlID) (int32, error) {
	return 0, unsupportedControl("rawcmos.GetControl", id)
}

func (d *Device) SetControl(id ControlID, _ int32) error {
	return unsupportedControl("rawcmos.SetControl", id)
}

func (d *Device) QueryControl(id ControlID) (ControlInfo, error) {
	return ControlInfo{}, unsupportedControl("rawcmos.QueryControl", id)
}

// EnumControls lists the controls the sensor exposes. There are none.
func (d *Device) EnumControls() ([]ControlInfo, error) {
	return nil, errcode.New(errcode.Unsupported, "rawcmos.EnumControls", "no controls")
}

// Exif is the capture metadata record.
type Exif struct {
	FNumber         uint32
	FocalLength     uint32
	Brightness      int32
	FlashFire       uint32
	ISOSpeed        uint32
	ExposureTimeNum uint32
	ExposureTimeDen uint32
}

// Exif always returns a zero record: without a command interface the
// sensor reports no metadata.
func (d *Device) Exif() Exif { return Exif{} }

// Command identifies a private diagnostic request.
type Command uint32

const (
	CmdGetExif Command = iota + 1
	CmdGetWindowConfig
	CmdSetFPS
	CmdSetFlash
	CmdSetExpGain
)

func (c Command) String() string {
	switch c {
	case CmdGetExif:
		return "get_exif"
	case CmdGetWindowConfig:
		return "get_window_config"
	case CmdSetFPS:
		return "set_fps"
	case CmdSetFlash:
		return "set_flash"
	case CmdSetExpGain:
		return "set_exp_gain"
	default:
		return "cmd(" + strconv.FormatUint(uint64(c), 10) + ")"
	}
}

// Diagnostic handles private commands. Only CmdGetExif is answered.
func (d *Device) Diagnostic(cmd Command, _ any) (any, error) {
	if cmd == CmdGetExif {
		return d.Exif(), nil
	}
	return nil, errcode.New(errcode.Unsupported, "rawcmos.Diagnostic", cmd.String())
}

// IdentUnknown is reported by ChipIdent: the sensor cannot be identified.
const IdentUnknown = 0

// ChipIdent identifies a sensor part.
type ChipIdent struct {
	Ident    uint32
	Revision uint32
}

func (d *Device) ChipIdent() ChipIdent { return ChipIdent{Ident: IdentUnknown} }

// BusType is the physical video bus.
type BusType uint8

const (
	BusParallel BusType = iota + 1
)

// BusFlags describe signal polarities on the video bus.
type BusFlags uint16

const (
	BusMaster BusFlags = 1 << iota
	BusVSyncActiveHigh
	BusHSyncActiveHigh
	BusPClkSampleRising
)

func (b BusFlags) Has(flag BusFlags) bool { return b&flag != 0 }

// BusConfig is the video bus the sensor drives.
type BusConfig struct {
	Type  BusType
	Flags BusFlags
}

func (d *Device) BusConfig() BusConfig {
	return BusConfig{
		Type:  BusParallel,
		Flags: BusMaster | BusVSyncActiveHigh | BusHSyncActiveHigh | BusPClkSampleRising,
	}
}

// Init would identify and boot an addressable sensor; this one needs
// nothing beyond the power sequence.
func (d *Device) Init(uint32) error { return nil }

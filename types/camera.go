package types

// ---- Camera capability info (Info.Detail) ----

type CameraInfo struct {
	MclkMHz  uint32       `json:"mclk_mhz" yaml:"mclk_mhz"`
	Bus      string       `json:"bus" yaml:"bus"` // "parallel"
	Master   bool         `json:"master" yaml:"master"`
	Ident    uint32       `json:"ident" yaml:"ident"`
	Revision uint32       `json:"revision" yaml:"revision"`
	Formats  []FormatInfo `json:"formats" yaml:"formats"`
	Windows  []WindowInfo `json:"windows" yaml:"windows"`
}

type FormatInfo struct {
	Desc string `json:"desc" yaml:"desc"`
	Code uint32 `json:"code" yaml:"code"`
	BPP  int    `json:"bpp" yaml:"bpp"`
}

type WindowInfo struct {
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

// ---- Camera value ----

type CameraState struct {
	Power         string `json:"power" yaml:"power"` // "off", "standby", "streaming"
	Format        uint32 `json:"format" yaml:"format"`
	Width         uint32 `json:"width" yaml:"width"`
	Height        uint32 `json:"height" yaml:"height"`
	FPS           uint32 `json:"fps" yaml:"fps"`
	PixelClockHz  uint32 `json:"pclk_hz" yaml:"pclk_hz"`
	ResetAsserted bool   `json:"reset" yaml:"reset"`
}

// ---- Camera controls ----

// PowerSet selects a transition by name ("power_on", "power_off",
// "standby_on", "standby_off") or by numeric request code.
type PowerSet struct {
	Request string `json:"request" yaml:"request"`
}

type ResetSet struct {
	Level uint32 `json:"level" yaml:"level"` // 0 release, 1 assert
}

type FormatSet struct {
	Code   uint32 `json:"code" yaml:"code"`
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
}

type FormatValue struct {
	Code   uint32 `json:"code" yaml:"code"`
	Desc   string `json:"desc" yaml:"desc"`
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
	Field  string `json:"field" yaml:"field"`
}

// Interval is a time-per-frame fraction, used for both requests and replies.
type Interval struct {
	Numerator   uint32 `json:"num" yaml:"num"`
	Denominator uint32 `json:"den" yaml:"den"`
}

type ControlGet struct {
	Name string `json:"name" yaml:"name"`
}

type ControlSet struct {
	Name  string `json:"name" yaml:"name"`
	Value int32  `json:"value" yaml:"value"`
}

type ExifValue struct {
	FNumber         uint32 `json:"fnumber" yaml:"fnumber"`
	FocalLength     uint32 `json:"focal_length" yaml:"focal_length"`
	Brightness      int32  `json:"brightness" yaml:"brightness"`
	FlashFire       uint32 `json:"flash" yaml:"flash"`
	ISOSpeed        uint32 `json:"iso" yaml:"iso"`
	ExposureTimeNum uint32 `json:"exposure_num" yaml:"exposure_num"`
	ExposureTimeDen uint32 `json:"exposure_den" yaml:"exposure_den"`
}

// DiagnosticCmd carries a private sensor command.
type DiagnosticCmd struct {
	Cmd     uint32 `json:"cmd" yaml:"cmd"`
	Payload any    `json:"payload,omitempty" yaml:"payload,omitempty"`
}

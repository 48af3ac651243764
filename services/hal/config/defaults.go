package config

import "strconv"

// -----------------------------------------------------------------------------
// Embedded board descriptions
//
// Key: board name as passed on the command line.
// Val: raw YAML for that board.
// -----------------------------------------------------------------------------

// Raspberry Pi header, BCM numbering. Only IOVDD and AVDD are switched;
// DVDD and AFVDD come up with the board supply.
const cfgRPi = `
devices:
  - id: cam0
    type: cpicam
    params:
      mclk_mhz: 24
      pins:
        reset: GPIO17
        pwdn: GPIO27
        power_en: GPIO22
        mclk: GPIO4
        iovdd: GPIO5
        avdd: GPIO6
        fixed: [dvdd, afvdd]
`

// Every signal wired, with a VGA window ahead of the full frame.
const cfgSim = `
devices:
  - id: cam0
    type: cpicam
    params:
      mclk_mhz: 24
      pins:
        reset: RESET
        pwdn: PWDN
        power_en: POWER_EN
        mclk: MCLK
        iovdd: IOVDD
        avdd: AVDD
        dvdd: DVDD
        afvdd: AFVDD
      windows:
        - {width: 640, height: 480, fps: 25, pclk_hz: 34000000}
        - {width: 2048, height: 2048}
`

var embeddedConfigs = map[string]string{
	"rpi": cfgRPi,
	"sim": cfgSim,
}

// Builtin returns the embedded description for board.
func Builtin(board string) (HALConfig, bool) {
	raw, ok := embeddedConfigs[board]
	if !ok {
		return HALConfig{}, false
	}
	cfg, err := Parse([]byte(raw))
	if err != nil {
		panic("config: embedded board " + board + ": " + err.Error())
	}
	return cfg, true
}

func itoa(i int) string { return strconv.Itoa(i) }

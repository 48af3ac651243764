// Command cpicam-probe powers a raw CMOS camera sensor up, negotiates a
// mode, reports what it got and powers it down again.
//
//	cpicam-probe -board rpi -width 640 -height 480
//	cpicam-probe -sim -v
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"periph.io/x/host/v3"

	"cpicam-go/drivers/rawcmos"
	"cpicam-go/services/hal"
	"cpicam-go/services/hal/config"
	"cpicam-go/types"
	"cpicam-go/x/strx"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "cpicam-probe: %s\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	cfgPath := flag.String("config", "", "board description file (YAML); overrides -board")
	board := flag.String("board", "rpi", "embedded board description (rpi, sim)")
	sim := flag.Bool("sim", false, "drive in-memory pins instead of host GPIO")
	mclk := flag.Uint("mclk", 0, "master clock in MHz, 0 keeps the board value")
	width := flag.Uint("width", 640, "requested frame width")
	height := flag.Uint("height", 480, "requested frame height")
	devID := flag.String("dev", "", "device id, default first configured")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	zc := zap.NewDevelopmentConfig()
	if !*verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := zc.Build()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(*cfgPath, *board)
	if err != nil {
		return err
	}
	if *mclk != 0 {
		if err := overrideMclk(&cfg, uint32(*mclk)); err != nil {
			return err
		}
	}

	var res hal.Resources
	if *sim {
		res, _ = hal.SimResources(log, nil)
	} else {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("gpio: host init failed: %w", err)
		}
		var buses *hal.HostBuses
		res, buses = hal.HostResources(log)
		defer buses.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := hal.New(res)
	defer func() {
		if err := h.Close(); err != nil {
			log.Warn("close", zap.Error(err))
		}
	}()
	if err := h.Apply(ctx, cfg); err != nil {
		return err
	}

	devs := h.Devices()
	if len(devs) == 0 {
		return errors.New("no devices configured")
	}
	id := strx.Coalesce(*devID, devs[0].ID)
	for _, d := range devs {
		log.Info("device", zap.String("id", d.ID), zap.String("type", d.Type), zap.Any("info", d.Info.Detail))
	}
	return probe(ctx, log, h, id, uint32(*width), uint32(*height))
}

func loadConfig(path, board string) (config.HALConfig, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, ok := config.Builtin(board)
	if !ok {
		return cfg, fmt.Errorf("unknown board %q", board)
	}
	return cfg, nil
}

func overrideMclk(cfg *config.HALConfig, mhz uint32) error {
	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Type != "cpicam" {
			continue
		}
		if d.Params == nil {
			d.Params = map[string]any{}
		}
		p, ok := d.Params.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: params are not a mapping", d.ID)
		}
		p["mclk_mhz"] = mhz
	}
	return nil
}

type step struct {
	verb    string
	payload any
}

func probe(ctx context.Context, log *zap.Logger, h *hal.HAL, id string, width, height uint32) error {
	steps := []step{
		{"power", types.PowerSet{Request: rawcmos.PowerOn.String()}},
		{"set_format", types.FormatSet{Code: uint32(rawcmos.CodeGrey8), Width: width, Height: height}},
		{"get_interval", nil},
		{"exif", nil},
		{"power", types.PowerSet{Request: rawcmos.StandbyOn.String()}},
		{"power", types.PowerSet{Request: rawcmos.StandbyOff.String()}},
		{"state", nil},
		{"power", types.PowerSet{Request: rawcmos.PowerOff.String()}},
	}
	for _, s := range steps {
		out, err := h.Control(ctx, id, s.verb, s.payload)
		if err != nil {
			return fmt.Errorf("%s: %w", s.verb, err)
		}
		log.Info(s.verb, zap.Any("reply", out))
	}
	return nil
}

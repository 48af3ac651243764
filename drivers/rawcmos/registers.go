package rawcmos

import (
	"strconv"

	"cpicam-go/errcode"
)

// writeArray sends a register list over the control bus, one two-byte
// write per entry. An empty list is a no-op; a non-empty list on a board
// without a control bus cannot be honoured.
func (d *Device) writeArray(op string, regs []Reg) error {
	if len(regs) == 0 {
		return nil
	}
	if d.bus == nil {
		return errcode.New(errcode.HardwareUnavailable, op, strconv.Itoa(len(regs))+" registers but no control bus")
	}
	for _, r := range regs {
		d.w[0] = r.Addr
		d.w[1] = r.Val
		if err := d.bus.Tx(d.addr, d.w[:2], nil); err != nil {
			return &errcode.E{
				C:   errcode.HardwareUnavailable,
				Op:  op,
				Msg: "reg 0x" + strconv.FormatUint(uint64(r.Addr), 16) + ": " + err.Error(),
				Err: err,
			}
		}
	}
	return nil
}

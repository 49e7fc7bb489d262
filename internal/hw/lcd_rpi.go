//go:build linux && (arm || arm64) && !nogpio

package hw

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// lcd drives a 16x2 HD44780 character display behind a PCF8574 I2C backpack
// (the common 0x27 modules), in 4-bit mode with the backlight on.
type lcd struct {
	mu  sync.Mutex
	bus i2c.BusCloser
	dev *i2c.Dev
}

const (
	lcdBacklight = 0x08
	lcdEnable    = 0x04
	lcdRegData   = 0x01 // RS high: character data rather than a command

	lcdWidth = 16
)

// DDRAM start addresses for the two lines.
var lcdLineAddr = [...]byte{0x80, 0xC0}

func newLCD(addr int) (*lcd, error) {
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	d := &lcd{bus: bus, dev: &i2c.Dev{Bus: bus, Addr: uint16(addr)}}
	if err := d.init(); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("lcd init: %w", err)
	}
	return d, nil
}

func (d *lcd) init() error {
	time.Sleep(50 * time.Millisecond)

	// HD44780 4-bit initialisation sequence.
	for _, nib := range []byte{0x30, 0x30, 0x30, 0x20} {
		if err := d.writeNibble(nib, 0); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, cmd := range []byte{
		0x28, // 4-bit, 2 lines, 5x8 font
		0x0C, // display on, cursor off
		0x06, // left-to-right entry
		0x01, // clear
	} {
		if err := d.command(cmd); err != nil {
			return err
		}
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

func (d *lcd) Message(text string, line int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if line < 1 || line > len(lcdLineAddr) {
		return fmt.Errorf("lcd line %d out of range", line)
	}
	if err := d.command(lcdLineAddr[line-1]); err != nil {
		return err
	}

	// Pad to the full width so stale characters are overwritten.
	if len(text) > lcdWidth {
		text = text[:lcdWidth]
	}
	for len(text) < lcdWidth {
		text += " "
	}
	for i := 0; i < len(text); i++ {
		if err := d.writeByte(text[i], lcdRegData); err != nil {
			return err
		}
	}
	return nil
}

func (d *lcd) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.command(0x01); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

func (d *lcd) close() error { return d.bus.Close() }

func (d *lcd) command(b byte) error { return d.writeByte(b, 0) }

func (d *lcd) writeByte(b, mode byte) error {
	if err := d.writeNibble(b&0xF0, mode); err != nil {
		return err
	}
	return d.writeNibble((b<<4)&0xF0, mode)
}

// writeNibble puts the high nibble of v on the data lines and pulses EN.
func (d *lcd) writeNibble(v, mode byte) error {
	out := v | mode | lcdBacklight
	for _, b := range []byte{out | lcdEnable, out} {
		if err := d.dev.Tx([]byte{b}, nil); err != nil {
			return fmt.Errorf("lcd write: %w", err)
		}
		time.Sleep(50 * time.Microsecond)
	}
	return nil
}

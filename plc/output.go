// Package plc mirrors the solar position into holding registers of a
// Modbus TCP device, so that lighting or shading controllers can follow
// the Sun without computing it themselves.
package plc

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/devskill-org/sunclock/report"
	"github.com/devskill-org/sunclock/solar"
	"github.com/goburrow/modbus"
)

// Register layout, relative to the base register.
const (
	ElevationRegister = 0 // int16, hundredths of a degree
	AzimuthRegister   = 1 // uint16, tenths of a degree clockwise from north
	DayPartRegister   = 2 // uint16, 0 night to 4 day
	RegisterCount     = 3
)

type registerWriter interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) (results []byte, err error)
}

// Output writes poll reports to a Modbus device.
type Output struct {
	client  registerWriter
	handler *modbus.TCPClientHandler
	base    uint16
}

// Dial connects to the Modbus TCP device at address.
func Dial(address string, slaveID byte, base uint16, timeout time.Duration) (*Output, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = slaveID
	handler.Timeout = timeout

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	return &Output{
		client:  modbus.NewClient(handler),
		handler: handler,
		base:    base,
	}, nil
}

// Close closes the Modbus connection
func (o *Output) Close() error {
	if o.handler != nil {
		return o.handler.Close()
	}
	return nil
}

// Publish implements watch.Sink.
func (o *Output) Publish(_ context.Context, r *report.PollReport) error {
	if _, err := o.client.WriteMultipleRegisters(o.base, RegisterCount, Encode(r)); err != nil {
		return fmt.Errorf("failed to write registers %d-%d: %w", o.base, o.base+RegisterCount-1, err)
	}
	return nil
}

// Encode returns the register block for r.
func Encode(r *report.PollReport) []byte {
	azimuth := uint16(math.Round(r.Azimuth*10)) % 3600
	buf := make([]byte, 0, 2*RegisterCount)
	buf = append(buf, s16ToBytes(int16(math.Round(r.Elevation*100)))...)
	buf = append(buf, u16ToBytes(azimuth)...)
	buf = append(buf, u16ToBytes(uint16(r.DayPart))...)
	return buf
}

// Decode is the inverse of Encode.
func Decode(data []byte) (elevation, azimuth float64, part solar.DayPart, err error) {
	if len(data) != 2*RegisterCount {
		return 0, 0, 0, fmt.Errorf("expected %d bytes, got %d", 2*RegisterCount, len(data))
	}
	elevation = float64(bytesToS16(data[0:2])) / 100.0
	azimuth = float64(bytesToU16(data[2:4])) / 10.0
	part = solar.DayPart(bytesToU16(data[4:6]))
	return elevation, azimuth, part, nil
}

func bytesToU16(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

func bytesToS16(data []byte) int16 {
	return int16(binary.BigEndian.Uint16(data))
}

func u16ToBytes(val uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, val)
	return buf
}

func s16ToBytes(val int16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(val))
	return buf
}

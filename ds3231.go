// Package ds3231 implements a driver for the DS3231 battery-backed I2C real-time clock, covering time read/write, both
// alarms, the square-wave/interrupt output and the die temperature sensor.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
package ds3231

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

var (
	// ErrOscillatorStopped is returned by Now when the oscillator-stop flag is set: the chip lost power at some point
	// and its time can not be trusted. Writing a fresh time with Set clears the condition.
	ErrOscillatorStopped = errors.New("ds3231: oscillator was stopped, time is unreliable")

	// ErrInvalidTime is returned for times the chip can not represent (years outside 2000-2099) and for register
	// contents that do not form a real calendar date.
	ErrInvalidTime = errors.New("ds3231: invalid time")
)

// Device wraps an I2C connection to a DS3231 chip. Methods are not safe for
// concurrent use; callers that poll from a goroutine should serialize access,
// which the rtctime package does.
type Device struct {
	bus     drivers.I2C
	Address uint8
	regs    registerSet
}

// New creates a handle for a DS3231 on the given bus, which must already be configured. The device is not touched
// until Configure is called.
func New(i2c drivers.I2C) Device {
	return Device{
		bus:     i2c,
		Address: Address,
	}
}

// Configure reads every register group into the driver's mirror. The five reads double as a communication check: the
// first failure is returned and the device should then be considered unusable.
func (d *Device) Configure() error {
	err := d.readClock()
	if err != nil {
		return err
	}
	err = d.readAlarm1()
	if err != nil {
		return err
	}
	err = d.readAlarm2()
	if err != nil {
		return err
	}
	err = d.readControl()
	if err != nil {
		return err
	}
	return d.readStatus()
}

// Now returns the current time in UTC. When the oscillator-stop flag is set the clock registers are not read at all
// and ErrOscillatorStopped is returned instead.
func (d *Device) Now() (time.Time, error) {
	err := d.readStatus()
	if err != nil {
		return time.Time{}, err
	}
	if stOscStopped.flag(d.regs.status[:]) {
		return time.Time{}, ErrOscillatorStopped
	}
	err = d.readClock()
	if err != nil {
		return time.Time{}, err
	}
	return decodeClock(d.regs.clock[:]).Time()
}

// Set writes t to the clock registers, truncated to whole seconds and converted to UTC. If the oscillator-stop flag
// was set it is cleared first; this is the only operation that clears it.
func (d *Device) Set(t time.Time) error {
	v, err := clockValueOf(t)
	if err != nil {
		return err
	}
	err = d.readStatus()
	if err != nil {
		return err
	}
	if stOscStopped.flag(d.regs.status[:]) {
		stOscStopped.putFlag(d.regs.status[:], false)
		err = d.writeStatus()
		if err != nil {
			return err
		}
	}
	encodeClock(d.regs.clock[:], v)
	return d.writeClock()
}

// SetAlarm programs the alarm selected by alarmType with the given time components. Components excluded from matching
// by the type's mask bits are still stored. Alarm 2 has no seconds register; second is ignored for it.
//
// The control register is rewritten only when the alarm's interrupt-enable bit actually changes, so programming one
// alarm never disturbs the other one's interrupt routing.
func (d *Device) SetAlarm(alarmType AlarmType, second, minute, hour, day uint8) error {
	err := d.readControl()
	if err != nil {
		return err
	}
	v := AlarmValue{
		Second:       second,
		Minute:       minute,
		Hour:         hour,
		Day:          day,
		MatchSecond:  alarmType&AlarmM1 == 0,
		MatchMinute:  alarmType&AlarmM2 == 0,
		MatchHour:    alarmType&AlarmM3 == 0,
		MatchDay:     alarmType&AlarmM4 == 0,
		DayIsWeekday: alarmType&AlarmDayOfWeek != 0,
	}
	var enable field
	if alarmType.Number() == Alarm1 {
		err = d.readAlarm1()
		if err != nil {
			return err
		}
		encodeAlarm1(d.regs.alarm1[:], v)
		err = d.writeAlarm1()
		enable = ctlAlarm1Int
	} else {
		err = d.readAlarm2()
		if err != nil {
			return err
		}
		encodeAlarm2(d.regs.alarm2[:], v)
		err = d.writeAlarm2()
		enable = ctlAlarm2Int
	}
	if err != nil {
		return err
	}
	want := alarmType&AlarmInterrupt != 0
	if enable.flag(d.regs.control[:]) == want {
		return nil
	}
	enable.putFlag(d.regs.control[:], want)
	return d.writeControl()
}

// Alarm returns the decoded settings of the given alarm.
func (d *Device) Alarm(alarm AlarmNumber) (AlarmValue, error) {
	if alarm == Alarm1 {
		err := d.readAlarm1()
		if err != nil {
			return AlarmValue{}, err
		}
		return decodeAlarm1(d.regs.alarm1[:]), nil
	}
	err := d.readAlarm2()
	if err != nil {
		return AlarmValue{}, err
	}
	return decodeAlarm2(d.regs.alarm2[:]), nil
}

// Fired reports whether the given alarm has gone off since it was last reset. The flag is latched by the chip; use
// ResetAlarm to clear it.
func (d *Device) Fired(alarm AlarmNumber) (bool, error) {
	err := d.readStatus()
	if err != nil {
		return false, err
	}
	if alarm == Alarm1 {
		return stAlarm1Fired.flag(d.regs.status[:]), nil
	}
	return stAlarm2Fired.flag(d.regs.status[:]), nil
}

// ResetAlarm clears the fired flag of the given alarm so it can go off again. The status register is written back even
// when the flag was already clear.
func (d *Device) ResetAlarm(alarm AlarmNumber) error {
	err := d.readStatus()
	if err != nil {
		return err
	}
	switch alarm {
	case Alarm1:
		stAlarm1Fired.putFlag(d.regs.status[:], false)
	case Alarm2:
		stAlarm2Fired.putFlag(d.regs.status[:], false)
	}
	return d.writeStatus()
}

// SetSquareWave selects what the INT/SQW pin outputs. The control register is written only when something actually
// changes, so calling this again with the same mode causes no bus write.
func (d *Device) SetSquareWave(mode SquareWaveMode) error {
	err := d.readControl()
	if err != nil {
		return err
	}
	ctl := d.regs.control[:]
	if mode == AlarmInterruptOutput {
		if ctlIntCtrl.flag(ctl) {
			return nil
		}
		ctlIntCtrl.putFlag(ctl, true)
		return d.writeControl()
	}
	if !ctlIntCtrl.flag(ctl) && ctlRate.get(ctl) == uint8(mode) {
		return nil
	}
	ctlIntCtrl.putFlag(ctl, false)
	ctlRate.put(ctl, uint8(mode))
	return d.writeControl()
}

// LostPower reports whether the oscillator has been stopped since the flag was last cleared, which usually means the
// chip ran out of backup power and its time is meaningless.
func (d *Device) LostPower() (bool, error) {
	err := d.readStatus()
	if err != nil {
		return false, err
	}
	return stOscStopped.flag(d.regs.status[:]), nil
}

// Temperature returns the die temperature in milli-degrees Celsius, at the chip's 0.25 degree resolution. The chip
// updates it every 64 seconds, or when a conversion is requested with ConvertTemperature.
func (d *Device) Temperature() (int32, error) {
	var buf [2]byte
	err := d.bus.ReadRegister(d.Address, TemperatureAddress, buf[:])
	if err != nil {
		return 0, err
	}
	// signed 10-bit value in the top bits, 0.25 degrees per LSB
	raw := int16(uint16(buf[0])<<8|uint16(buf[1])) >> 6
	return int32(raw) * 250, nil
}

// ConvertTemperature asks the chip to run a temperature conversion now instead of waiting for the 64-second cycle. The
// request is skipped when a conversion is already running.
func (d *Device) ConvertTemperature() error {
	err := d.readStatus()
	if err != nil {
		return err
	}
	if stBusy.flag(d.regs.status[:]) {
		return nil
	}
	err = d.readControl()
	if err != nil {
		return err
	}
	ctlConvTemp.putFlag(d.regs.control[:], true)
	return d.writeControl()
}

// ControlState returns the decoded control register.
func (d *Device) ControlState() (ControlValue, error) {
	err := d.readControl()
	if err != nil {
		return ControlValue{}, err
	}
	return decodeControl(d.regs.control[:]), nil
}

// StatusState returns the decoded status register.
func (d *Device) StatusState() (StatusValue, error) {
	err := d.readStatus()
	if err != nil {
		return StatusValue{}, err
	}
	return decodeStatus(d.regs.status[:]), nil
}

func (d *Device) readClock() error {
	return d.bus.ReadRegister(d.Address, ClockAddress, d.regs.clock[:])
}

func (d *Device) writeClock() error {
	return d.bus.WriteRegister(d.Address, ClockAddress, d.regs.clock[:])
}

func (d *Device) readAlarm1() error {
	return d.bus.ReadRegister(d.Address, Alarm1Address, d.regs.alarm1[:])
}

func (d *Device) writeAlarm1() error {
	return d.bus.WriteRegister(d.Address, Alarm1Address, d.regs.alarm1[:])
}

func (d *Device) readAlarm2() error {
	return d.bus.ReadRegister(d.Address, Alarm2Address, d.regs.alarm2[:])
}

func (d *Device) writeAlarm2() error {
	return d.bus.WriteRegister(d.Address, Alarm2Address, d.regs.alarm2[:])
}

func (d *Device) readControl() error {
	return d.bus.ReadRegister(d.Address, ControlAddress, d.regs.control[:])
}

func (d *Device) writeControl() error {
	return d.bus.WriteRegister(d.Address, ControlAddress, d.regs.control[:])
}

func (d *Device) readStatus() error {
	return d.bus.ReadRegister(d.Address, StatusAddress, d.regs.status[:])
}

func (d *Device) writeStatus() error {
	return d.bus.WriteRegister(d.Address, StatusAddress, d.regs.status[:])
}

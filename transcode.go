package ds3231

import (
	"fmt"
	"time"
)

// ClockValue is the decoded content of the clock register group. Field
// ranges follow the chip: Year covers 2000 through 2099, Weekday counts 1
// through 7 with Sunday as 1. A value read from the device may still be
// nonsense (the chip stores February 31 without complaint); Time reports
// that as ErrInvalidTime.
type ClockValue struct {
	Second  uint8
	Minute  uint8
	Hour    uint8
	Weekday uint8
	Day     uint8
	Month   uint8
	Year    uint16
}

func decodeClock(group []byte) ClockValue {
	return ClockValue{
		Second:  bcdGet(group, clkSecond, clkSecond10),
		Minute:  bcdGet(group, clkMinute, clkMinute10),
		Hour:    bcdGet(group, clkHour, clkHour10),
		Weekday: clkWeekday.get(group),
		Day:     bcdGet(group, clkDay, clkDay10),
		Month:   bcdGet(group, clkMonth, clkMonth10),
		Year:    2000 + uint16(bcdGet(group, clkYear, clkYear10)),
	}
}

// encodeClock owns the whole group: reserved bits and the century bit are
// written as 0.
func encodeClock(group []byte, v ClockValue) {
	for i := range group {
		group[i] = 0
	}
	bcdPut(group, clkSecond, clkSecond10, v.Second)
	bcdPut(group, clkMinute, clkMinute10, v.Minute)
	bcdPut(group, clkHour, clkHour10, v.Hour)
	clkWeekday.put(group, v.Weekday)
	bcdPut(group, clkDay, clkDay10, v.Day)
	bcdPut(group, clkMonth, clkMonth10, v.Month)
	bcdPut(group, clkYear, clkYear10, uint8(v.Year%100))
}

// Time converts the value to a time.Time in UTC. time.Date normalizes
// impossible dates instead of rejecting them, so the result is checked
// field by field against the input and ErrInvalidTime is returned on any
// mismatch.
func (v ClockValue) Time() (time.Time, error) {
	if v.Second > 59 || v.Minute > 59 || v.Hour > 23 ||
		v.Day == 0 || v.Month == 0 || v.Month > 12 ||
		v.Year < 2000 || v.Year > 2099 {
		return time.Time{}, ErrInvalidTime
	}
	t := time.Date(int(v.Year), time.Month(v.Month), int(v.Day),
		int(v.Hour), int(v.Minute), int(v.Second), 0, time.UTC)
	if t.Day() != int(v.Day) || t.Month() != time.Month(v.Month) || t.Year() != int(v.Year) {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

// clockValueOf converts a host time to register form. The chip can only
// store years 2000 through 2099; anything else is ErrInvalidTime.
func clockValueOf(t time.Time) (ClockValue, error) {
	t = t.UTC()
	if t.Year() < 2000 || t.Year() > 2099 {
		return ClockValue{}, ErrInvalidTime
	}
	return ClockValue{
		Second:  uint8(t.Second()),
		Minute:  uint8(t.Minute()),
		Hour:    uint8(t.Hour()),
		Weekday: uint8(t.Weekday()) + 1,
		Day:     uint8(t.Day()),
		Month:   uint8(t.Month()),
		Year:    uint16(t.Year()),
	}, nil
}

func (v ClockValue) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		v.Year, v.Month, v.Day, v.Hour, v.Minute, v.Second)
}

// AlarmValue is the decoded content of an alarm register group. For alarm 2
// Second is always 0 and MatchSecond false, as the chip has no seconds byte
// there. The Match flags are the inverse of the register's mask bits: true
// means the component takes part in matching.
type AlarmValue struct {
	Second uint8
	Minute uint8
	Hour   uint8
	Day    uint8

	MatchSecond bool
	MatchMinute bool
	MatchHour   bool
	MatchDay    bool

	// DayIsWeekday selects what Day is compared against: the weekday when
	// true, the day of the month when false.
	DayIsWeekday bool
}

func decodeAlarm1(group []byte) AlarmValue {
	return AlarmValue{
		Second:       bcdGet(group, al1Second, al1Second10),
		Minute:       bcdGet(group, al1Minute, al1Minute10),
		Hour:         bcdGet(group, al1Hour, al1Hour10),
		Day:          bcdGet(group, al1Day, al1Day10),
		MatchSecond:  !al1M1.flag(group),
		MatchMinute:  !al1M2.flag(group),
		MatchHour:    !al1M3.flag(group),
		MatchDay:     !al1M4.flag(group),
		DayIsWeekday: al1DayMode.flag(group),
	}
}

func encodeAlarm1(group []byte, v AlarmValue) {
	for i := range group {
		group[i] = 0
	}
	bcdPut(group, al1Second, al1Second10, v.Second)
	bcdPut(group, al1Minute, al1Minute10, v.Minute)
	bcdPut(group, al1Hour, al1Hour10, v.Hour)
	bcdPut(group, al1Day, al1Day10, v.Day)
	al1M1.putFlag(group, !v.MatchSecond)
	al1M2.putFlag(group, !v.MatchMinute)
	al1M3.putFlag(group, !v.MatchHour)
	al1M4.putFlag(group, !v.MatchDay)
	al1DayMode.putFlag(group, v.DayIsWeekday)
}

func decodeAlarm2(group []byte) AlarmValue {
	return AlarmValue{
		Minute:       bcdGet(group, al2Minute, al2Minute10),
		Hour:         bcdGet(group, al2Hour, al2Hour10),
		Day:          bcdGet(group, al2Day, al2Day10),
		MatchMinute:  !al2M2.flag(group),
		MatchHour:    !al2M3.flag(group),
		MatchDay:     !al2M4.flag(group),
		DayIsWeekday: al2DayMode.flag(group),
	}
}

func encodeAlarm2(group []byte, v AlarmValue) {
	for i := range group {
		group[i] = 0
	}
	bcdPut(group, al2Minute, al2Minute10, v.Minute)
	bcdPut(group, al2Hour, al2Hour10, v.Hour)
	bcdPut(group, al2Day, al2Day10, v.Day)
	al2M2.putFlag(group, !v.MatchMinute)
	al2M3.putFlag(group, !v.MatchHour)
	al2M4.putFlag(group, !v.MatchDay)
	al2DayMode.putFlag(group, v.DayIsWeekday)
}

func (v AlarmValue) String() string {
	day := "date"
	if v.DayIsWeekday {
		day = "weekday"
	}
	return fmt.Sprintf("%02d:%02d:%02d %s %d match[s:%s m:%s h:%s d:%s]",
		v.Hour, v.Minute, v.Second, day, v.Day,
		onoff(v.MatchSecond), onoff(v.MatchMinute), onoff(v.MatchHour), onoff(v.MatchDay))
}

// ControlValue is the decoded content of the control register.
type ControlValue struct {
	Alarm1Interrupt    bool  // A1IE
	Alarm2Interrupt    bool  // A2IE
	InterruptOutput    bool  // INTCN, true routes alarms to the output pin
	RateSelect         uint8 // RS2:RS1, square-wave rate 0 through 3
	ConvertTemperature bool  // CONV
	BatterySquareWave  bool  // BBSQW
	DisableOscillator  bool  // EOSC inverted, true stops the clock on battery
}

func decodeControl(group []byte) ControlValue {
	return ControlValue{
		Alarm1Interrupt:    ctlAlarm1Int.flag(group),
		Alarm2Interrupt:    ctlAlarm2Int.flag(group),
		InterruptOutput:    ctlIntCtrl.flag(group),
		RateSelect:         ctlRate.get(group),
		ConvertTemperature: ctlConvTemp.flag(group),
		BatterySquareWave:  ctlBatSQW.flag(group),
		DisableOscillator:  ctlOscDis.flag(group),
	}
}

func (v ControlValue) String() string {
	out := "sqw"
	if v.InterruptOutput {
		out = "int"
	}
	return fmt.Sprintf("a1i:%s a2i:%s out:%s rate:%d conv:%s bbsqw:%s osc-dis:%s",
		onoff(v.Alarm1Interrupt), onoff(v.Alarm2Interrupt), out, v.RateSelect,
		onoff(v.ConvertTemperature), onoff(v.BatterySquareWave), onoff(v.DisableOscillator))
}

// StatusValue is the decoded content of the status register.
type StatusValue struct {
	Alarm1Fired       bool // A1F
	Alarm2Fired       bool // A2F
	Busy              bool // BSY
	Output32kHz       bool // EN32kHz
	OscillatorStopped bool // OSF
}

func decodeStatus(group []byte) StatusValue {
	return StatusValue{
		Alarm1Fired:       stAlarm1Fired.flag(group),
		Alarm2Fired:       stAlarm2Fired.flag(group),
		Busy:              stBusy.flag(group),
		Output32kHz:       stEn32kHz.flag(group),
		OscillatorStopped: stOscStopped.flag(group),
	}
}

func (v StatusValue) String() string {
	return fmt.Sprintf("a1f:%s a2f:%s busy:%s 32khz:%s osc-stop:%s",
		onoff(v.Alarm1Fired), onoff(v.Alarm2Fired), onoff(v.Busy),
		onoff(v.Output32kHz), onoff(v.OscillatorStopped))
}

func onoff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

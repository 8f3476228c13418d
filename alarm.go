package ds3231

// AlarmType selects an alarm and describes when it should go off. The low
// four bits mirror the mask bits of the alarm registers, so a set M bit
// means the component is ignored during matching. Compose a type from the
// bits below or use one of the named configurations.
type AlarmType uint8

const (
	// AlarmM1 excludes seconds from matching. Alarm 1 only.
	AlarmM1 AlarmType = 0x01
	// AlarmM2 excludes minutes from matching.
	AlarmM2 AlarmType = 0x02
	// AlarmM3 excludes hours from matching.
	AlarmM3 AlarmType = 0x04
	// AlarmM4 excludes the day from matching.
	AlarmM4 AlarmType = 0x08
	// AlarmDayOfWeek compares the day component against the weekday
	// instead of the day of the month.
	AlarmDayOfWeek AlarmType = 0x10
	// AlarmInterrupt additionally routes the alarm to the interrupt
	// output when it fires.
	AlarmInterrupt AlarmType = 0x40
	// AlarmSelect2 targets alarm 2 instead of alarm 1.
	AlarmSelect2 AlarmType = 0x80
)

// Alarm 1 configurations. Alarm 1 matches with one-second resolution.
const (
	Alarm1EverySecond           = AlarmM1 | AlarmM2 | AlarmM3 | AlarmM4
	Alarm1MatchSecond           = AlarmM2 | AlarmM3 | AlarmM4
	Alarm1MatchMinuteSecond     = AlarmM3 | AlarmM4
	Alarm1MatchHourMinuteSecond = AlarmM4
	Alarm1MatchDate             = AlarmType(0)
	Alarm1MatchWeekday          = AlarmDayOfWeek
)

// Alarm 2 configurations. Alarm 2 has no seconds register and matches at
// most once per minute, on second zero.
const (
	Alarm2EveryMinute     = AlarmSelect2 | AlarmM2 | AlarmM3 | AlarmM4
	Alarm2MatchMinute     = AlarmSelect2 | AlarmM3 | AlarmM4
	Alarm2MatchHourMinute = AlarmSelect2 | AlarmM4
	Alarm2MatchDate       = AlarmSelect2
	Alarm2MatchWeekday    = AlarmSelect2 | AlarmDayOfWeek
)

// AlarmNumber identifies one of the chip's two alarms.
type AlarmNumber uint8

const (
	Alarm1 AlarmNumber = 1
	Alarm2 AlarmNumber = 2
)

// Number returns which alarm the type targets.
func (t AlarmType) Number() AlarmNumber {
	if t&AlarmSelect2 != 0 {
		return Alarm2
	}
	return Alarm1
}

// SquareWaveMode selects what the INT/SQW pin carries: a fixed-rate square
// wave, or the alarm interrupts.
type SquareWaveMode uint8

const (
	SquareWave1Hz        SquareWaveMode = 0
	SquareWave1kHz       SquareWaveMode = 1 // 1.024 kHz
	SquareWave4kHz       SquareWaveMode = 2 // 4.096 kHz
	SquareWave8kHz       SquareWaveMode = 3 // 8.192 kHz
	AlarmInterruptOutput SquareWaveMode = 4
)

func (m SquareWaveMode) String() string {
	switch m {
	case SquareWave1Hz:
		return "1 Hz"
	case SquareWave1kHz:
		return "1.024 kHz"
	case SquareWave4kHz:
		return "4.096 kHz"
	case SquareWave8kHz:
		return "8.192 kHz"
	case AlarmInterruptOutput:
		return "alarm interrupt"
	}
	return "unknown"
}

package ds3231

// DS3231 register map. The registers form five groups that are always
// transferred whole, in a single bus operation per group.
const (
	// Address is the fixed I2C address of the DS3231. The chip has no
	// address-select pins.
	Address = 0x68

	ClockAddress       = 0x00 // 7 bytes: seconds, minutes, hours, weekday, day, month/century, year
	Alarm1Address      = 0x07 // 4 bytes: seconds, minutes, hours, day
	Alarm2Address      = 0x0B // 3 bytes: minutes, hours, day
	ControlAddress     = 0x0E // 1 byte
	StatusAddress      = 0x0F // 1 byte
	AgingOffsetAddress = 0x10 // 1 byte, signed crystal trim
	TemperatureAddress = 0x11 // 2 bytes: integer part, fraction in the top 2 bits
)

// registerSet mirrors the device register groups byte for byte. Operations
// refresh the group they need from the bus, modify the named bits below and
// write the whole group back, so bits they do not touch always return to
// the chip exactly as read.
type registerSet struct {
	clock   [7]byte
	alarm1  [4]byte
	alarm2  [3]byte
	control [1]byte
	status  [1]byte
}

// field locates one named value inside a register group: the byte it lives
// in, the bit position of its least significant bit, and its width. All
// packing and unpacking goes through get/put so the layout is spelled out
// here once, in plain masks, rather than scattered through the driver.
type field struct {
	index uint8 // byte offset within the group
	shift uint8 // bit position of the least significant bit
	width uint8 // width in bits
}

func (f field) mask() uint8 {
	return (1<<f.width - 1) << f.shift
}

func (f field) get(group []byte) uint8 {
	return (group[f.index] & f.mask()) >> f.shift
}

func (f field) put(group []byte, v uint8) {
	group[f.index] = group[f.index]&^f.mask() | v<<f.shift&f.mask()
}

func (f field) flag(group []byte) bool {
	return f.get(group) != 0
}

func (f field) putFlag(group []byte, v bool) {
	if v {
		f.put(group, 1)
	} else {
		f.put(group, 0)
	}
}

// bcdGet combines a units digit and a tens digit into one binary value.
func bcdGet(group []byte, units, tens field) uint8 {
	return units.get(group) + 10*tens.get(group)
}

// bcdPut splits a binary value into its decimal digits and stores them.
func bcdPut(group []byte, units, tens field, v uint8) {
	units.put(group, v%10)
	tens.put(group, v/10)
}

// Clock group layout. Times are kept in 24-hour mode only; the 12/24-hour
// select bit (byte 2, bit 6) stays clear, which the two-bit width of
// clkHour10 enforces on every write. The weekday counts 1 through 7 with
// Sunday as 1.
var (
	clkSecond   = field{0, 0, 4}
	clkSecond10 = field{0, 4, 3}
	clkMinute   = field{1, 0, 4}
	clkMinute10 = field{1, 4, 3}
	clkHour     = field{2, 0, 4}
	clkHour10   = field{2, 4, 2}
	clkWeekday  = field{3, 0, 3}
	clkDay      = field{4, 0, 4}
	clkDay10    = field{4, 4, 2}
	clkMonth    = field{5, 0, 4}
	clkMonth10  = field{5, 4, 1}
	clkCentury  = field{5, 7, 1} // set by the chip on year rollover, written back as 0
	clkYear     = field{6, 0, 4}
	clkYear10   = field{6, 4, 4}
)

// Alarm 1 group layout. The match-disable bit of each byte sits in bit 7;
// bit 6 of the last byte switches the day field between day of month and
// weekday.
var (
	al1Second   = field{0, 0, 4}
	al1Second10 = field{0, 4, 3}
	al1M1       = field{0, 7, 1}
	al1Minute   = field{1, 0, 4}
	al1Minute10 = field{1, 4, 3}
	al1M2       = field{1, 7, 1}
	al1Hour     = field{2, 0, 4}
	al1Hour10   = field{2, 4, 2}
	al1M3       = field{2, 7, 1}
	al1Day      = field{3, 0, 4}
	al1Day10    = field{3, 4, 2}
	al1DayMode  = field{3, 6, 1}
	al1M4       = field{3, 7, 1}
)

// Alarm 2 group layout, as alarm 1 without the seconds byte.
var (
	al2Minute   = field{0, 0, 4}
	al2Minute10 = field{0, 4, 3}
	al2M2       = field{0, 7, 1}
	al2Hour     = field{1, 0, 4}
	al2Hour10   = field{1, 4, 2}
	al2M3       = field{1, 7, 1}
	al2Day      = field{2, 0, 4}
	al2Day10    = field{2, 4, 2}
	al2DayMode  = field{2, 6, 1}
	al2M4       = field{2, 7, 1}
)

// Control register bits.
var (
	ctlAlarm1Int = field{0, 0, 1} // A1IE, route alarm 1 to the interrupt output
	ctlAlarm2Int = field{0, 1, 1} // A2IE, route alarm 2 to the interrupt output
	ctlIntCtrl   = field{0, 2, 1} // INTCN, 1 = interrupt output, 0 = square wave
	ctlRate      = field{0, 3, 2} // RS1/RS2, square-wave rate select
	ctlConvTemp  = field{0, 5, 1} // CONV, start a temperature conversion now
	ctlBatSQW    = field{0, 6, 1} // BBSQW, keep the square wave running on battery
	ctlOscDis    = field{0, 7, 1} // EOSC (inverted), 1 stops the oscillator on battery
)

// Status register bits. Bits 4 through 6 are reserved and pass through
// read-modify-write cycles untouched.
var (
	stAlarm1Fired = field{0, 0, 1} // A1F
	stAlarm2Fired = field{0, 1, 1} // A2F
	stBusy        = field{0, 2, 1} // BSY, TCXO conversion in progress
	stEn32kHz     = field{0, 3, 1} // EN32kHz, 32.768 kHz output enable
	stOscStopped  = field{0, 7, 1} // OSF, oscillator stopped since last cleared
)

package measure

// Average is a throughput in bytes per second. Kilo and mega are decimal
// (10^3, 10^6), not binary.
type Average float64

// BytesPerSecond returns the average in B/s.
func (a Average) BytesPerSecond() float64 {
	return float64(a)
}

// KilobytesPerSecond returns the average in kB/s.
func (a Average) KilobytesPerSecond() float64 {
	return float64(a) / 1_000
}

// MegabytesPerSecond returns the average in MB/s.
func (a Average) MegabytesPerSecond() float64 {
	return float64(a) / 1_000_000
}

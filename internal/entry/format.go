package entry

import "fmt"

var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// HumanSize formats a byte count with a binary unit suffix.
func HumanSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", v, sizeUnits[unit])
}

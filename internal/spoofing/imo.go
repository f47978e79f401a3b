package spoofing

import "strconv"

// validIMO reports whether a 7-digit IMO number string passes its weighted checksum:
// the first six digits multiplied by 7..2 respectively, summed, mod 10 must equal the
// seventh digit.
func validIMO(imo string) bool {
	if len(imo) != 7 {
		return false
	}
	weights := [6]int{7, 6, 5, 4, 3, 2}
	sum := 0
	for i, w := range weights {
		d, err := strconv.Atoi(string(imo[i]))
		if err != nil {
			return false
		}
		sum += d * w
	}
	check, err := strconv.Atoi(string(imo[6]))
	if err != nil {
		return false
	}
	return sum%10 == check
}

// oneDigitApart reports whether two equal-length numeric strings differ in exactly one
// position, used by the IMO-fraud near-miss check.
func oneDigitApart(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
			if diff > 1 {
				return false
			}
		}
	}
	return diff == 1
}

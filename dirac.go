package qsim

import (
	"math"
	"math/bits"
	"math/cmplx"
	"strconv"
	"strings"
)

// negligible is the smallest amplitude magnitude that earns a ket term.
const negligible = 1e-6

// DiracNotation renders amplitudes as a ket sum with two decimals, e.g.
// "0.71|0> + 0.71|1>". The width of each label is log2(len(amplitudes)).
func DiracNotation(amplitudes []complex128) string {
	return DiracNotationDecimals(amplitudes, 2)
}

func DiracNotationDecimals(amplitudes []complex128, decimals int) string {
	width := 0
	if len(amplitudes) > 1 {
		width = bits.Len(uint(len(amplitudes) - 1))
	}

	terms := make([]string, 0)
	for i, a := range amplitudes {
		if cmplx.Abs(a) <= negligible {
			continue
		}
		coef, ok := formatCoefficient(a, decimals)
		if !ok {
			continue
		}
		terms = append(terms, coef+"|"+bitstring(i, width)+">")
	}

	if len(terms) == 0 {
		return "0"
	}
	return strings.ReplaceAll(strings.Join(terms, " + "), " + -", " - ")
}

// Dirac is DiracNotation over this vector's amplitudes.
func (s *StateVector) Dirac() string {
	return DiracNotation(s.Amplitudes)
}

// formatCoefficient rounds a to the given decimals. It reports false when
// the rounded value is zero. A coefficient of exactly 1 prints as nothing
// and -1 as a bare sign.
func formatCoefficient(a complex128, decimals int) (string, bool) {
	re := round(real(a), decimals)
	im := round(imag(a), decimals)

	switch {
	case re == 0 && im == 0:
		return "", false
	case im == 0:
		switch re {
		case 1:
			return "", true
		case -1:
			return "-", true
		}
		return formatFloat(re), true
	case re == 0:
		return formatFloat(im) + "i", true
	}

	sign := "+"
	if im < 0 {
		sign = ""
	}
	return "(" + formatFloat(re) + sign + formatFloat(im) + "i)", true
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // folds -0
	}
	return r
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

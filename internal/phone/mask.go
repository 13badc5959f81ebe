package phone

import "strings"

// FormatPartial renders a digit string the way the live input mask
// shows it while the user is still typing. Unlike Normalize it never
// fails; incomplete input is rendered in a shape the user can keep
// editing (or deleting) without fighting the mask.
func FormatPartial(raw string) string {
	digits := stripNonDigits(raw)
	if digits == "" {
		return ""
	}
	if len(digits) > 11 {
		digits = digits[:11]
	}

	// Below two digits nothing is decorated, so a lone 7 or 8 can
	// still be backspaced away.
	if len(digits) < 2 {
		return digits
	}

	switch {
	case digits[0] == '8' && len(digits) == 11:
		return formatPlus7(digits[1:])
	case digits[0] == '7':
		return formatPlus7(digits[1:])
	case digits[0] == '9' && len(digits) >= 10:
		return formatPlus7(digits)
	case digits[0] == '8':
		return formatDomestic8(digits[1:])
	}

	return digits
}

func formatPlus7(rest string) string {
	if len(rest) > 10 {
		rest = rest[:10]
	}
	a := slice(rest, 0, 3)
	b := slice(rest, 3, 6)
	c := slice(rest, 6, 8)
	d := slice(rest, 8, 10)

	var out strings.Builder
	out.WriteString("+7")
	if a != "" {
		out.WriteString(" (" + a)
	}
	if len(a) == 3 {
		out.WriteString(")")
	}
	if b != "" {
		out.WriteString(" " + b)
	}
	if c != "" {
		out.WriteString("-" + c)
	}
	if d != "" {
		out.WriteString("-" + d)
	}
	return out.String()
}

func formatDomestic8(rest string) string {
	if len(rest) > 10 {
		rest = rest[:10]
	}
	a := slice(rest, 0, 3)
	b := slice(rest, 3, 6)
	c := slice(rest, 6, 8)
	d := slice(rest, 8, 10)

	var out strings.Builder
	out.WriteString("8")
	if a != "" {
		out.WriteString(" (" + a)
		if len(a) == 3 {
			out.WriteString(")")
		}
	}
	if b != "" {
		if len(a) == 3 {
			out.WriteString(" ")
		}
		out.WriteString(b)
	}
	if c != "" {
		if b != "" {
			out.WriteString("-")
		}
		out.WriteString(c)
	}
	if d != "" {
		if c != "" {
			out.WriteString("-")
		}
		out.WriteString(d)
	}
	return out.String()
}

func slice(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

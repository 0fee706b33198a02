package gs1

import (
	"fmt"
	"strings"
	"time"
)

// Data holds the fields decoded from a GS1 barcode payload.
// Every field is optional; an AI that is absent or unparseable leaves
// the corresponding field empty.
type Data struct {
	// GTIN is the 14-digit Global Trade Item Number from AI 01.
	GTIN string `json:"gtin,omitempty"`

	// ExpirationDate is the AI 17 expiration date normalized to YYYY-MM-DD.
	ExpirationDate string `json:"expiration_date,omitempty"`

	// LotNumber is the variable-length lot/batch number from AI 10.
	LotNumber string `json:"lot_number,omitempty"`

	// SerialNumber is the variable-length serial number from AI 21.
	SerialNumber string `json:"serial_number,omitempty"`
}

// groupSeparator is the FNC1 field separator transmitted by scanners
// between variable-length AI values.
const groupSeparator = '\x1d'

// maxVariableLen is the GS1 maximum for lot (AI 10) and serial (AI 21).
const maxVariableLen = 20

// symbologyPrefixes are scanner-emitted symbology identifiers that mark
// a payload as GS1 regardless of its leading AI.
var symbologyPrefixes = []string{"]C1", "]e0", "]d2", "]Q3"}

// IsGS1Barcode reports whether raw looks like a GS1 AI-framed payload.
// Plain EAN/UPC/JAN payloads (8-14 digits with no AI framing) return
// false and must not be passed to Decode.
func IsGS1Barcode(raw string) bool {
	s := stripSymbology(raw)
	if s == "" {
		return false
	}

	// A GTIN-led payload needs at least AI(2) + 14 digits. Anything
	// shorter is a bare product code, not an AI string.
	if strings.HasPrefix(s, "01") && len(s) >= 16 && allDigits(s[2:16]) {
		return true
	}

	// Payloads can also open with expiration, lot or serial when the
	// scanner already consumed the GTIN symbol.
	for _, ai := range []string{"17", "10", "21"} {
		if strings.HasPrefix(s, ai) && len(s) > len(ai)+2 && len(s) >= 15 {
			return true
		}
	}

	return false
}

// Decode parses a GS1 AI-framed payload into structured fields.
// It never fails hard on field content: a segment it cannot parse is
// skipped and the fields decoded so far are preserved. Decode returns
// an error only when raw is not GS1-framed at all.
func Decode(raw string) (Data, error) {
	s := stripSymbology(raw)
	if !IsGS1Barcode(raw) {
		return Data{}, fmt.Errorf("not a GS1 AI-framed barcode: %q", raw)
	}

	var d Data
	i := 0
	for i < len(s) {
		// Skip stray separators between groups.
		if s[i] == groupSeparator {
			i++
			continue
		}
		if i+2 > len(s) {
			break
		}

		switch s[i : i+2] {
		case "01":
			// Fixed: 14 digits. A truncated group ends the scan but
			// keeps everything parsed before it.
			if i+16 > len(s) || !allDigits(s[i+2:i+16]) {
				i = skipGroup(s, i+2)
				continue
			}
			if d.GTIN == "" {
				d.GTIN = s[i+2 : i+16]
			}
			i += 16

		case "17":
			if i+8 > len(s) || !allDigits(s[i+2:i+8]) {
				i = skipGroup(s, i+2)
				continue
			}
			if d.ExpirationDate == "" {
				d.ExpirationDate = formatExpiration(s[i+2 : i+8])
			}
			i += 8

		case "10":
			value, next := readVariable(s, i+2)
			if d.LotNumber == "" {
				d.LotNumber = value
			}
			i = next

		case "21":
			value, next := readVariable(s, i+2)
			if d.SerialNumber == "" {
				d.SerialNumber = value
			}
			i = next

		default:
			// Unknown AI: advance one byte so a later recognizable
			// group can still be picked up.
			i++
		}
	}

	return d, nil
}

// readVariable reads a variable-length AI value starting at start.
// The value ends at a GS separator, at the start of a following
// complete fixed-length AI group, or at the maximum length.
func readVariable(s string, start int) (value string, next int) {
	end := start
	for end < len(s) {
		if s[end] == groupSeparator {
			// Separator is consumed, not part of the value.
			return s[start:end], end + 1
		}
		if end-start >= maxVariableLen {
			break
		}
		rest := s[end:]
		// Only a complete following group terminates the value; a bare
		// "01" or "17" inside a lot string stays part of the lot.
		if strings.HasPrefix(rest, "01") && len(rest) >= 16 && allDigits(rest[2:16]) {
			break
		}
		if strings.HasPrefix(rest, "17") && len(rest) >= 8 && allDigits(rest[2:8]) {
			break
		}
		end++
	}
	return s[start:end], end
}

// skipGroup advances past a malformed group: everything up to the next
// GS separator is discarded.
func skipGroup(s string, start int) int {
	for i := start; i < len(s); i++ {
		if s[i] == groupSeparator {
			return i + 1
		}
	}
	return len(s)
}

// formatExpiration converts a YYMMDD expiration to YYYY-MM-DD.
// A day of "00" means end of month per the GS1 general specification.
func formatExpiration(yymmdd string) string {
	yy := yymmdd[0:2]
	mm := yymmdd[2:4]
	dd := yymmdd[4:6]

	year := "20" + yy
	if mm < "01" || mm > "12" {
		return ""
	}

	if dd == "00" {
		t, err := time.Parse("2006-01", year+"-"+mm)
		if err != nil {
			return ""
		}
		last := t.AddDate(0, 1, -1)
		return last.Format("2006-01-02")
	}

	t, err := time.Parse("2006-01-02", year+"-"+mm+"-"+dd)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// stripSymbology removes a scanner symbology identifier prefix, if any.
func stripSymbology(s string) string {
	for _, p := range symbologyPrefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

package gs1_test

import (
	"testing"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/gs1"

	"github.com/stretchr/testify/assert"
)

func TestIsGS1Barcode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"GTIN with expiration and lot", "01050123456789031725123110LOTAB12", true},
		{"GTIN only group", "0105012345678903", true},
		{"Symbology prefix GS1-128", "]C10105012345678903", true},
		{"Symbology prefix DataMatrix", "]d201050123456789032110045678", true},
		{"Plain EAN-13", "5012345678903", false},
		{"Plain GTIN-14 no AI framing", "01234567890128", false},
		{"Short numeric", "12345678", false},
		{"Empty", "", false},
		{"GTIN AI with letters in payload", "01ABCDEFGHIJKLMN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gs1.IsGS1Barcode(tt.raw))
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	// GTIN + expiration + lot, no separators needed.
	d, err := gs1.Decode("01050123456789031725123110LOTAB12")
	assert.NoError(t, err)
	assert.Equal(t, "05012345678903", d.GTIN)
	assert.Equal(t, "2025-12-31", d.ExpirationDate)
	assert.Equal(t, "LOTAB12", d.LotNumber)
	assert.Empty(t, d.SerialNumber)
}

func TestDecode_SerialNumber(t *testing.T) {
	d, err := gs1.Decode("010501234567890317261130211000123456")
	assert.NoError(t, err)
	assert.Equal(t, "05012345678903", d.GTIN)
	assert.Equal(t, "2026-11-30", d.ExpirationDate)
	assert.Equal(t, "1000123456", d.SerialNumber)
	assert.Empty(t, d.LotNumber)
}

func TestDecode_VariableFieldDelimitedBySeparator(t *testing.T) {
	// Lot terminated by GS, followed by serial.
	d, err := gs1.Decode("010501234567890310LOT99\x1d21SER42")
	assert.NoError(t, err)
	assert.Equal(t, "05012345678903", d.GTIN)
	assert.Equal(t, "LOT99", d.LotNumber)
	assert.Equal(t, "SER42", d.SerialNumber)
}

func TestDecode_VariableFieldDelimitedByNextAI(t *testing.T) {
	// Lot appears ahead of a fixed-length group with no separator.
	// The parser must stop the lot at the complete AI 17 group.
	d, err := gs1.Decode("010501234567890310ABC17281000")
	assert.NoError(t, err)
	assert.Equal(t, "ABC", d.LotNumber)
	// Day 00 resolves to the last day of the month.
	assert.Equal(t, "2028-10-31", d.ExpirationDate)
}

func TestDecode_EmbeddedDigitsStayInLot(t *testing.T) {
	// "17" inside the lot value is not followed by six digits and a
	// valid group, so it belongs to the lot.
	d, err := gs1.Decode("010501234567890310A17B9")
	assert.NoError(t, err)
	assert.Equal(t, "A17B9", d.LotNumber)
	assert.Empty(t, d.ExpirationDate)
}

func TestDecode_MalformedGroupPreservesParsedFields(t *testing.T) {
	// Truncated expiration after a valid GTIN: GTIN survives,
	// expiration is simply absent.
	d, err := gs1.Decode("0105012345678903172512")
	assert.NoError(t, err)
	assert.Equal(t, "05012345678903", d.GTIN)
	assert.Empty(t, d.ExpirationDate)
}

func TestDecode_InvalidMonthOmitted(t *testing.T) {
	d, err := gs1.Decode("0105012345678903171399011")
	assert.NoError(t, err)
	assert.Equal(t, "05012345678903", d.GTIN)
	assert.Empty(t, d.ExpirationDate)
}

func TestDecode_NonGS1Rejected(t *testing.T) {
	_, err := gs1.Decode("5012345678903")
	assert.Error(t, err)
}

func TestDecode_SymbologyPrefixStripped(t *testing.T) {
	d, err := gs1.Decode("]C1010501234567890310LOT1")
	assert.NoError(t, err)
	assert.Equal(t, "05012345678903", d.GTIN)
	assert.Equal(t, "LOT1", d.LotNumber)
}

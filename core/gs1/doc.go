// Package gs1 decodes GS1 Application Identifier (AI) framed barcode
// payloads into structured identity fields.
//
// The decoder recognizes the AIs used by medical device packaging:
//
//   - 01: GTIN, 14 digits, fixed length
//   - 17: expiration date, 6 digits YYMMDD, fixed length
//   - 10: lot number, variable length (max 20)
//   - 21: serial number, variable length (max 20)
//
// Variable-length values are delimited by an ASCII GS separator (0x1D),
// by the start of a following complete AI group, or by their maximum
// length. Decoding is purely syntactic and fails softly: a malformed
// segment is skipped without corrupting fields that were already parsed.
//
// Callers must gate decoding on IsGS1Barcode so that plain EAN/UPC
// payloads are never misread as AI-framed data.
package gs1

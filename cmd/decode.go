package cmd

import (
	"fmt"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/gs1"

	"github.com/spf13/cobra"
)

// decodeCmd decodes a raw barcode the way the scan endpoint would.
// Useful for checking what a scanner actually emits, separator bytes
// included.
var decodeCmd = &cobra.Command{
	Use:   "decode <barcode>",
	Short: "Decode a GS1 barcode",
	Long: `Decode a GS1 DataMatrix or GS1-128 barcode string and print the
extracted fields. Group separators may be passed as the raw 0x1D byte
or escaped as \x1d.

Example:
  stock-tracker decode '01050123456789031725123110LOTAB12'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := unescapeGS(args[0])
		if !gs1.IsGS1Barcode(raw) {
			fmt.Println("not a GS1 barcode; would be treated as a plain product code")
			return nil
		}

		data, err := gs1.Decode(raw)
		if err != nil {
			return err
		}

		fmt.Printf("GTIN:        %s\n", orDash(data.GTIN))
		fmt.Printf("Expiration:  %s\n", orDash(data.ExpirationDate))
		fmt.Printf("Lot:         %s\n", orDash(data.LotNumber))
		fmt.Printf("Serial:      %s\n", orDash(data.SerialNumber))
		return nil
	},
}

// unescapeGS replaces the textual \x1d escape with the ASCII group
// separator so barcodes can be passed through a shell.
func unescapeGS(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if i+3 < len(s) && s[i] == '\\' && s[i+1] == 'x' && s[i+2] == '1' && (s[i+3] == 'd' || s[i+3] == 'D') {
			out = append(out, 0x1d)
			i += 3
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	RootCmd.AddCommand(decodeCmd)
}

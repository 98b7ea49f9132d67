package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justicz/packstream"
)

func newInspectCmd() *cobra.Command {
	var (
		in    string
		asHex bool
	)
	c := &cobra.Command{
		Use:   "inspect",
		Short: "Print the layout of PackStream bytes",
		Long: `Inspect walks encoded values without decoding them and prints one
line per value: offset, marker, class, lead bytes, length and total span.

Example:
  printf '92 01 C9 03 E8' | packstream inspect --hex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, in, asHex)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for off := 0; off < len(b); {
				n, err := inspect(w, b, off, 0)
				if err != nil {
					return err
				}
				off += n
			}
			return nil
		},
	}
	c.Flags().StringVarP(&in, "in", "i", "", "Input file (default stdin)")
	c.Flags().BoolVar(&asHex, "hex", false, "Read hex text instead of raw bytes")
	return c
}

// inspect prints the value at b[off] and its children, returning its span.
func inspect(w io.Writer, b []byte, off, depth int) (int, error) {
	cur := b[off:]
	lead, err := packstream.LeadByteLength(cur)
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", off, err)
	}
	size, err := packstream.ByteLength(cur)
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", off, err)
	}
	total, err := packstream.TotalBytes(cur)
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", off, err)
	}

	class := packstream.ClassOf(cur[0])
	fmt.Fprintf(w, "%s%06d  0x%02X  %-8s lead=%d length=%d total=%d",
		strings.Repeat("  ", depth), off, cur[0], class, lead, size, total)
	if class == packstream.ClassStruct {
		fmt.Fprintf(w, "  tag=0x%02X %s", cur[1], packstream.StructTag(cur[1]))
	}
	fmt.Fprintln(w)

	var children int
	switch class {
	case packstream.ClassList:
		children = size
	case packstream.ClassMap:
		children = 2 * size
	case packstream.ClassStruct:
		children = 1
	}
	pos := off + lead
	for i := 0; i < children; i++ {
		n, err := inspect(w, b, pos, depth+1)
		if err != nil {
			return 0, err
		}
		pos += n
	}
	return total, nil
}

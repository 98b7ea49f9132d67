package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/justicz/packstream"
)

func newDecodeCmd() *cobra.Command {
	var (
		in       string
		asHex    bool
		overflow string
	)
	c := &cobra.Command{
		Use:   "decode",
		Short: "Decode PackStream into JSON",
		Long: `Decode reads PackStream bytes and prints every value in them as
indented JSON. Structures print as {"$structure": "<Kind>", "fields": {...}}.

Example:
  printf 'A1 81 41 01' | packstream decode --hex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)
			opts := rt.cfg.CodecOptions(rt.log)
			if cmd.Flags().Changed("overflow") {
				mode, ok := packstream.ParseOverflowMode(overflow)
				if !ok {
					return fmt.Errorf("--overflow must be native or text, got %q", overflow)
				}
				opts.Overflow = mode
			}

			b, err := readInput(cmd, in, asHex)
			if err != nil {
				return err
			}
			dec := packstream.NewDecoder(opts)
			for offset := 0; len(b) > 0; {
				v, rest, err := dec.DecodeNext(b)
				if err != nil {
					return fmt.Errorf("offset %d: %w", offset, err)
				}
				offset += len(b) - len(rest)
				b = rest

				out, err := json.MarshalIndent(renderJSON(v), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			return nil
		},
	}
	c.Flags().StringVarP(&in, "in", "i", "", "Input file (default stdin)")
	c.Flags().BoolVar(&asHex, "hex", false, "Read hex text instead of raw bytes")
	c.Flags().StringVar(&overflow, "overflow", "native", "8-byte integers as native numbers or text")
	return c
}

// object is a JSON object that keeps its key order.
type object []field

type field struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// renderJSON maps a Value to something encoding/json prints faithfully.
func renderJSON(v packstream.Value) any {
	switch x := v.(type) {
	case nil, packstream.Null:
		return nil
	case packstream.Bool:
		return bool(x)
	case packstream.Int:
		return int64(x)
	case packstream.IntText:
		return string(x)
	case packstream.Float:
		f := float64(x)
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "+Inf"
		case math.IsInf(f, -1):
			return "-Inf"
		}
		return f
	case packstream.String:
		return string(x)
	case packstream.Bytes:
		return []byte(x)
	case packstream.List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = renderJSON(e)
		}
		return out
	case packstream.Map:
		out := make(object, len(x))
		for i, e := range x {
			out[i] = field{key: e.Key, value: renderJSON(e.Value)}
		}
		return out
	case packstream.Structure:
		out := object{{key: "$structure", value: x.Tag().String()}}
		if !x.Tag().Known() {
			out = append(out, field{key: "tag", value: fmt.Sprintf("0x%02X", byte(x.Tag()))})
		}
		return append(out, field{key: "fields", value: renderJSON(x.Fields())})
	}
	return fmt.Sprintf("%v", v)
}

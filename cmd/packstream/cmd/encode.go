package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/justicz/packstream"
)

func newEncodeCmd() *cobra.Command {
	var (
		in    string
		out   string
		asHex bool
	)
	c := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON document as PackStream",
		Long: `Encode reads one JSON document and writes its PackStream encoding.
Integers become Int, other numbers Float, and objects keep their key order.

Example:
  echo '{"name":"Ann","age":30}' | packstream encode --hex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeFrom(cmd)
			data, err := readInput(cmd, in, false)
			if err != nil {
				return err
			}
			v, err := parseJSON(data)
			if err != nil {
				return err
			}
			b, err := packstream.Encode(v)
			if err != nil {
				return err
			}
			rt.log.Debug().Int("bytes", len(b)).Msg("encoded")

			if asHex {
				b = []byte(fmt.Sprintf("% X\n", b))
			}
			if out != "" {
				if err := os.WriteFile(out, b, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	c.Flags().StringVarP(&in, "in", "i", "", "Input JSON file (default stdin)")
	c.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	c.Flags().BoolVar(&asHex, "hex", false, "Write space separated hex instead of raw bytes")
	return c
}

// parseJSON converts exactly one JSON document to a Value.
func parseJSON(data []byte) (packstream.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: trailing data after document")
	}
	return v, nil
}

func jsonValue(dec *json.Decoder) (packstream.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch x := tok.(type) {
	case nil:
		return packstream.Null{}, nil
	case bool:
		return packstream.Bool(x), nil
	case string:
		return packstream.String(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return packstream.Int(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return packstream.Float(f), nil
	case json.Delim:
		switch x {
		case '[':
			l := packstream.List{}
			for dec.More() {
				v, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				l = append(l, v)
			}
			_, err := dec.Token()
			return l, err
		case '{':
			m := packstream.Map{}
			for dec.More() {
				k, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				m = append(m, packstream.MapEntry{Key: k.(string), Value: v})
			}
			_, err := dec.Token()
			return m, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/google/gopacket"
	"github.com/spf13/cobra"

	"firestige.xyz/layerspy/internal/core"
	"firestige.xyz/layerspy/internal/core/decoder"
	"firestige.xyz/layerspy/internal/sink/console"
)

func newDecodeCmd(opts *options) *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode HEX...",
		Short: "Decode one frame given as hex",
		Long: `Decode one Ethernet frame given as hex digits.

Whitespace and colons between digits are ignored, so output copied from
tcpdump -xx or Wireshark can be pasted as is. Use "-" to read from stdin.

Examples:
  layerspy decode 001122334455aabbccddeeff0800...
  layerspy decode "00:11:22:33:44:55 aa:bb:cc:dd:ee:ff 08 00 ..."
  xxd -p frame.bin | layerspy decode -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			input := strings.Join(args, "")
			if input == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				input = string(b)
			}
			data, err := parseHex(input)
			if err != nil {
				return err
			}

			sink, err := console.New(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.Hexdump)
			if err != nil {
				return err
			}
			ci := gopacket.CaptureInfo{
				Timestamp:     time.Now(),
				CaptureLength: len(data),
				Length:        len(data),
			}
			return sink.Write(1, ci, data, decoder.Decode(data))
		},
	}

	addOutputFlags(decodeCmd.Flags(), opts, false)
	return decodeCmd
}

// parseHex decodes hex digits, skipping whitespace and colons. A leading
// 0x is accepted.
func parseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ':' {
			return -1
		}
		return r
	}, s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if clean == "" {
		return nil, fmt.Errorf("%w: no hex digits in input", core.ErrConfigInvalid)
	}
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex input: %v", core.ErrConfigInvalid, err)
	}
	return data, nil
}

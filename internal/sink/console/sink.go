// Package console renders decoded packets to a writer.
package console

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/gopacket"
	"gopkg.in/yaml.v3"

	"firestige.xyz/layerspy/internal/config"
	"firestige.xyz/layerspy/internal/core"
)

const timeLayout = "2006-01-02 15:04:05.000000"

// FieldView is one rendered header field.
type FieldView struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// LayerView is one layer of a packet, outermost first.
type LayerView struct {
	Name   string      `json:"name" yaml:"name"`
	Fields []FieldView `json:"fields" yaml:"fields"`
}

// PacketView is the document written for each packet.
type PacketView struct {
	Number        int         `json:"number" yaml:"number"`
	Timestamp     time.Time   `json:"timestamp" yaml:"timestamp"`
	Length        int         `json:"length" yaml:"length"`
	CaptureLength int         `json:"capture_length" yaml:"capture_length"`
	Truncated     bool        `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Layers        []LayerView `json:"layers" yaml:"layers"`
	Hex           string      `json:"hex,omitempty" yaml:"hex,omitempty"`
}

// NewPacketView builds the view of one decoded packet. A nil root marks a
// frame too short for Ethernet.
func NewPacketView(n int, ci gopacket.CaptureInfo, data []byte, root core.Layer) PacketView {
	pv := PacketView{
		Number:        n,
		Timestamp:     ci.Timestamp.UTC(),
		Length:        ci.Length,
		CaptureLength: ci.CaptureLength,
		Truncated:     root == nil,
		Layers:        []LayerView{},
	}
	if pv.CaptureLength == 0 {
		pv.CaptureLength = len(data)
	}
	if pv.Length == 0 {
		pv.Length = pv.CaptureLength
	}
	for _, l := range core.Layers(root) {
		lv := LayerView{Name: l.Name(), Fields: []FieldView{}}
		for _, f := range l.Fields() {
			lv.Fields = append(lv.Fields, FieldView{Name: f.Name, Value: f.Value})
		}
		pv.Layers = append(pv.Layers, lv)
	}
	return pv
}

// Sink writes one record per packet in the configured format.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	format  string
	hexdump bool
	enc     *json.Encoder
	written int
}

// New returns a sink writing format (text, json or yaml) to w. With hexdump
// set every record also carries the frame bytes.
func New(w io.Writer, format string, hexdump bool) (*Sink, error) {
	if err := config.ValidateFormat(format); err != nil {
		return nil, err
	}
	s := &Sink{w: w, format: format, hexdump: hexdump}
	if format == config.FormatJSON {
		s.enc = json.NewEncoder(w)
	}
	return s, nil
}

// Write renders packet n. data is the captured frame and root its decoded
// tree, nil when the frame was too short.
func (s *Sink) Write(n int, ci gopacket.CaptureInfo, data []byte, root core.Layer) error {
	pv := NewPacketView(n, ci, data, root)

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch s.format {
	case config.FormatJSON:
		if s.hexdump {
			pv.Hex = hex.EncodeToString(data)
		}
		err = s.enc.Encode(pv)
	case config.FormatYAML:
		if s.hexdump {
			pv.Hex = hex.EncodeToString(data)
		}
		err = s.writeYAML(pv)
	default:
		err = s.writeText(pv, data)
	}
	if err != nil {
		return fmt.Errorf("failed to write packet %d: %w", n, err)
	}
	s.written++
	return nil
}

func (s *Sink) writeYAML(pv PacketView) error {
	out, err := yaml.Marshal(pv)
	if err != nil {
		return err
	}
	if s.written > 0 {
		if _, err := io.WriteString(s.w, "---\n"); err != nil {
			return err
		}
	}
	_, err = s.w.Write(out)
	return err
}

func (s *Sink) writeText(pv PacketView, data []byte) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s length %d captured %d\n",
		pv.Number, pv.Timestamp.Format(timeLayout), pv.Length, pv.CaptureLength)
	if pv.Truncated {
		b.WriteString("  (truncated frame)\n")
	}
	for _, lv := range pv.Layers {
		b.WriteString("  " + lv.Name + "\n")
		for _, f := range lv.Fields {
			b.WriteString("    " + f.Name + ": " + f.Value + "\n")
		}
	}
	if s.hexdump && len(data) > 0 {
		for _, line := range strings.SplitAfter(hex.Dump(data), "\n") {
			if line != "" {
				b.WriteString("  " + line)
			}
		}
	}
	b.WriteString("\n")
	_, err := io.WriteString(s.w, b.String())
	return err
}

// Written returns how many packets have been rendered.
func (s *Sink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

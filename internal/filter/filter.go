// Package filter compiles small tcpdump-style expressions into classic BPF
// programs and matches Ethernet frames against them.
//
// Grammar, a subset of pcap-filter(7):
//
//	expr      = term { ("or" | "||") term }
//	term      = primitive { ("and" | "&&") primitive }
//	primitive = "ip" | "ip6" | "tcp" | "udp" | "icmp" | "icmp6"
//	          | "port" N | "ether" "proto" N
//
// "and" binds tighter than "or"; there are no parentheses or negation.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/bpf"

	"firestige.xyz/layerspy/internal/core"
)

// Filter is a compiled expression. A nil *Filter matches every frame. It is
// safe for concurrent use.
type Filter struct {
	expr  string
	terms []term // OR of ANDs
}

type term []*program

type program struct {
	name string
	insn []bpf.Instruction
	vm   *bpf.VM
}

// Compile parses expr. An empty or all-space expression yields a nil
// filter. Syntax errors wrap core.ErrConfigInvalid.
func Compile(expr string) (*Filter, error) {
	tokens := strings.Fields(strings.ToLower(expr))
	if len(tokens) == 0 {
		return nil, nil
	}

	f := &Filter{expr: strings.Join(tokens, " ")}
	var cur term
	expectPrimitive := true
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if !expectPrimitive {
			switch tok {
			case "and", "&&":
			case "or", "||":
				f.terms = append(f.terms, cur)
				cur = nil
			default:
				return nil, syntaxError(expr, "expected 'and' or 'or', got %q", tok)
			}
			expectPrimitive = true
			i++
			continue
		}

		p, n, err := parsePrimitive(tokens[i:])
		if err != nil {
			return nil, syntaxError(expr, "%v", err)
		}
		cur = append(cur, p)
		expectPrimitive = false
		i += n
	}
	if expectPrimitive {
		return nil, syntaxError(expr, "dangling operator")
	}
	f.terms = append(f.terms, cur)
	return f, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(expr string) *Filter {
	f, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// parsePrimitive compiles the primitive at the front of tokens and reports
// how many tokens it used.
func parsePrimitive(tokens []string) (*program, int, error) {
	var (
		insn []bpf.Instruction
		n    = 1
	)
	switch tokens[0] {
	case "ip":
		insn = etherProgram(etherTypeIPv4)
	case "ip6":
		insn = etherProgram(etherTypeIPv6)
	case "tcp":
		insn = transportProgram(core.ProtocolTCP)
	case "udp":
		insn = transportProgram(core.ProtocolUDP)
	case "icmp":
		insn = ipv4ProtoProgram(core.ProtocolICMP)
	case "icmp6":
		insn = ipv6NextProgram(core.ProtocolICMPv6)
	case "port":
		if len(tokens) < 2 {
			return nil, 0, fmt.Errorf("port needs a number")
		}
		port, err := parseNumber(tokens[1], 16)
		if err != nil {
			return nil, 0, fmt.Errorf("bad port %q", tokens[1])
		}
		insn = portProgram(uint16(port))
		n = 2
	case "ether":
		if len(tokens) < 3 || tokens[1] != "proto" {
			return nil, 0, fmt.Errorf("expected 'ether proto N'")
		}
		t, err := parseNumber(tokens[2], 16)
		if err != nil {
			return nil, 0, fmt.Errorf("bad ether proto %q", tokens[2])
		}
		insn = etherProgram(uint16(t))
		n = 3
	default:
		return nil, 0, fmt.Errorf("unknown primitive %q", tokens[0])
	}

	vm, err := bpf.NewVM(insn)
	if err != nil {
		return nil, 0, fmt.Errorf("assemble %s: %w", tokens[0], err)
	}
	return &program{name: strings.Join(tokens[:n], " "), insn: insn, vm: vm}, n, nil
}

// parseNumber accepts decimal or 0x-prefixed hex.
func parseNumber(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}

func syntaxError(expr, format string, args ...any) error {
	return fmt.Errorf("%w: filter %q: %s", core.ErrConfigInvalid, expr, fmt.Sprintf(format, args...))
}

// Match runs the programs over frame.
func (f *Filter) Match(frame []byte) bool {
	if f == nil {
		return true
	}
	for _, t := range f.terms {
		if t.match(frame) {
			return true
		}
	}
	return false
}

func (t term) match(frame []byte) bool {
	for _, p := range t {
		if n, err := p.vm.Run(frame); err != nil || n == 0 {
			return false
		}
	}
	return true
}

// String returns the normalized expression, "" for a nil filter.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Primitives lists the compiled primitive names per OR term.
func (f *Filter) Primitives() [][]string {
	if f == nil {
		return nil
	}
	out := make([][]string, len(f.terms))
	for i, t := range f.terms {
		for _, p := range t {
			out[i] = append(out[i], p.name)
		}
	}
	return out
}

// Assemble returns the raw instructions of one primitive, for inspection.
func Assemble(primitive string) ([]bpf.RawInstruction, error) {
	tokens := strings.Fields(strings.ToLower(primitive))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty primitive", core.ErrConfigInvalid)
	}
	p, n, err := parsePrimitive(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	if n != len(tokens) {
		return nil, fmt.Errorf("%w: %q is not a single primitive", core.ErrConfigInvalid, primitive)
	}
	return bpf.Assemble(p.insn)
}

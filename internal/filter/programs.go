package filter

import "golang.org/x/net/bpf"

// Ethernet II offsets. VLAN tags are not skipped.
const (
	offEtherType  = 12
	offIPv4Proto  = 14 + 9
	offIPv4Frag   = 14 + 6
	offIPv4Start  = 14
	offIPv6Next   = 14 + 6
	offIPv6L4     = 14 + 40
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD

	accept = 0xFFFF
)

// etherProgram accepts frames whose EtherType is t.
func etherProgram(t uint16) []bpf.Instruction {
	return []bpf.Instruction{
		// Load EtherType (2 bytes at offset 12)
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(t), SkipFalse: 1},
		bpf.RetConstant{Val: accept},
		bpf.RetConstant{Val: 0},
	}
}

// ipv4ProtoProgram accepts IPv4 frames carrying proto.
func ipv4ProtoProgram(proto uint8) []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherTypeIPv4, SkipFalse: 3},
		// Protocol (1 byte at IPv4 offset 9)
		bpf.LoadAbsolute{Off: offIPv4Proto, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(proto), SkipFalse: 1},
		bpf.RetConstant{Val: accept},
		bpf.RetConstant{Val: 0},
	}
}

// ipv6NextProgram accepts IPv6 frames whose fixed header names next.
func ipv6NextProgram(next uint8) []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherTypeIPv6, SkipFalse: 3},
		// Next Header (1 byte at IPv6 offset 6)
		bpf.LoadAbsolute{Off: offIPv6Next, Size: 1},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(next), SkipFalse: 1},
		bpf.RetConstant{Val: accept},
		bpf.RetConstant{Val: 0},
	}
}

// transportProgram accepts IPv4 or IPv6 frames carrying proto.
func transportProgram(proto uint8) []bpf.Instruction {
	return []bpf.Instruction{
		/* 0 */ bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		/* 1 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherTypeIPv4, SkipFalse: 2},
		/* 2 */ bpf.LoadAbsolute{Off: offIPv4Proto, Size: 1},
		/* 3 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(proto), SkipTrue: 3, SkipFalse: 4},
		/* 4 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherTypeIPv6, SkipFalse: 3},
		/* 5 */ bpf.LoadAbsolute{Off: offIPv6Next, Size: 1},
		/* 6 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(proto), SkipFalse: 1},
		/* 7 */ bpf.RetConstant{Val: accept},
		/* 8 */ bpf.RetConstant{Val: 0},
	}
}

// portProgram accepts TCP or UDP over IPv4 or IPv6 with either port equal
// to port. IPv4 non-first fragments never match; the IPv4 header length is
// taken from IHL.
func portProgram(port uint16) []bpf.Instruction {
	p := uint32(port)
	return []bpf.Instruction{
		/* 0 */ bpf.LoadAbsolute{Off: offEtherType, Size: 2},
		/* 1 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherTypeIPv4, SkipFalse: 10},

		// IPv4
		/* 2 */ bpf.LoadAbsolute{Off: offIPv4Proto, Size: 1},
		/* 3 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: 6, SkipTrue: 1},
		/* 4 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: 17, SkipFalse: 16},
		/* 5 */ bpf.LoadAbsolute{Off: offIPv4Frag, Size: 2},
		/* 6 */ bpf.JumpIf{Cond: bpf.JumpBitsSet, Val: 0x1FFF, SkipTrue: 14},
		/* 7 */ bpf.LoadMemShift{Off: offIPv4Start},
		/* 8 */ bpf.LoadIndirect{Off: offIPv4Start, Size: 2},
		/* 9 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: p, SkipTrue: 10},
		/* 10 */ bpf.LoadIndirect{Off: offIPv4Start + 2, Size: 2},
		/* 11 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: p, SkipTrue: 8, SkipFalse: 9},

		// IPv6, A still holds the EtherType
		/* 12 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherTypeIPv6, SkipFalse: 8},
		/* 13 */ bpf.LoadAbsolute{Off: offIPv6Next, Size: 1},
		/* 14 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: 6, SkipTrue: 1},
		/* 15 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: 17, SkipFalse: 5},
		/* 16 */ bpf.LoadAbsolute{Off: offIPv6L4, Size: 2},
		/* 17 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: p, SkipTrue: 2},
		/* 18 */ bpf.LoadAbsolute{Off: offIPv6L4 + 2, Size: 2},
		/* 19 */ bpf.JumpIf{Cond: bpf.JumpEqual, Val: p, SkipFalse: 1},

		/* 20 */ bpf.RetConstant{Val: accept},
		/* 21 */ bpf.RetConstant{Val: 0},
	}
}

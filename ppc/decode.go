package ppc

// primaryOpcode is the 6-bit major opcode field (bits 0-5, IBM order).
func primaryOpcode(word uint32) uint32 { return bits(word, 31, 26) }

// extendedOpcode is the secondary opcode field used by primary opcodes 19,
// 31 and others that multiplex many operations onto one major opcode.
func extendedOpcode(word uint32) uint32 { return bits(word, 10, 1) }

// Decode decodes a single 32-bit big-endian PowerPC instruction word into
// its Opcode identity. Instructions outside the families this VM models
// decode to Other rather than Illegal — only primary opcode 0 (which
// includes word == 0, by convention used for padding) is Illegal; other
// reserved primary opcodes decode to Other.
func Decode(word uint32) Ins {
	ins := Ins{word: word}
	switch primaryOpcode(word) {
	case 0:
		ins.Op = Illegal
	case 10:
		ins.Op = Cmpli
	case 11:
		ins.Op = Cmpi
	case 12:
		ins.Op = Addic
	case 13:
		ins.Op = AddicDot
	case 14:
		ins.Op = Addi
	case 15:
		ins.Op = Addis
	case 16:
		ins.Op = Bc
	case 18:
		ins.Op = B
	case 19:
		ins.Op = decode19(word)
	case 21:
		ins.Op = Rlwinm
	case 23:
		ins.Op = Rlwnm
	case 24:
		ins.Op = Ori
	case 31:
		ins.Op = decode31(word)
	case 32:
		ins.Op = Lwz
	case 33:
		ins.Op = Lwzu
	case 34:
		ins.Op = Lbz
	case 35:
		ins.Op = Lbzu
	case 36:
		ins.Op = Stw
	case 37:
		ins.Op = Stwu
	case 38:
		ins.Op = Stb
	case 39:
		ins.Op = Stbu
	case 40:
		ins.Op = Lhz
	case 41:
		ins.Op = Lhzu
	case 42:
		ins.Op = Lha
	case 43:
		ins.Op = Lhau
	case 44:
		ins.Op = Sth
	case 45:
		ins.Op = Sthu
	case 46:
		ins.Op = Lmw
	case 47:
		ins.Op = Stmw
	case 48:
		ins.Op = Lfs
	case 49:
		ins.Op = Lfsu
	case 50:
		ins.Op = Lfd
	case 51:
		ins.Op = Lfdu
	case 52:
		ins.Op = Stfs
	case 53:
		ins.Op = Stfsu
	case 54:
		ins.Op = Stfd
	case 55:
		ins.Op = Stfdu
	default:
		ins.Op = Other
	}
	return ins
}

func decode19(word uint32) Opcode {
	switch extendedOpcode(word) {
	case 16:
		return Bclr
	case 50:
		return Rfi
	case 528:
		return Bcctr
	default:
		return Other
	}
}

func decode31(word uint32) Opcode {
	switch extendedOpcode(word) {
	case 0:
		return Cmp
	case 23:
		return Lwzx
	case 32:
		return Cmpl
	case 55:
		return Lwzux
	case 119:
		return Lbzux
	case 183:
		return Stwux
	case 247:
		return Stbux
	case 266:
		return Add
	case 311:
		return Lhzux
	case 339:
		return Mfspr
	case 375:
		return Lhaux
	case 439:
		return Sthux
	case 444:
		return Or
	case 467:
		return Mtspr
	case 567:
		return Lfsux
	case 631:
		return Lfdux
	case 695:
		return Stfsux
	case 759:
		return Stfdux
	default:
		return Other
	}
}

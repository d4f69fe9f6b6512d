package jit

import "fmt"

// === x86-64 Assembler: just the instruction forms the generator needs ===

// Reg is a general purpose register number as used in ModR/M encoding.
type Reg uint8

// Register constants
const (
	RAX Reg = 0
	RCX Reg = 1
	RDX Reg = 2
	RBX Reg = 3
	RSP Reg = 4
	RBP Reg = 5
	RSI Reg = 6
	RDI Reg = 7
	R8  Reg = 8
	R9  Reg = 9
	R10 Reg = 10
	R11 Reg = 11
	R12 Reg = 12
	R13 Reg = 13
	R14 Reg = 14
	R15 Reg = 15
)

// Cond is the second opcode byte of a near conditional jump (0F xx).
type Cond byte

// Condition code constants for jcc.
const (
	CondB  Cond = 0x82 // below (unsigned) / carry
	CondAE Cond = 0x83 // above or equal (unsigned) / not carry
	CondE  Cond = 0x84 // equal / zero
	CondNE Cond = 0x85 // not equal / not zero
)

// Label identifies a code position that jumps may refer to before it is
// bound.
type Label int

type fixup struct {
	offset int // position of the rel32 field
	label  Label
}

// Assembler accumulates machine code and resolves label references when
// finalized.
type Assembler struct {
	code   []byte
	labels []int // bound offset per label, -1 while unbound
	fixups []fixup
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Len returns the number of bytes emitted so far.
func (a *Assembler) Len() int {
	return len(a.code)
}

func (a *Assembler) emitByte(b byte) {
	a.code = append(a.code, b)
}

func (a *Assembler) emitBytes(bytes ...byte) {
	a.code = append(a.code, bytes...)
}

func (a *Assembler) emitU32(v uint32) {
	a.code = append(a.code, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (a *Assembler) emitU64(v uint64) {
	a.code = append(a.code, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// NewLabel allocates an unbound label.
func (a *Assembler) NewLabel() Label {
	a.labels = append(a.labels, -1)
	return Label(len(a.labels) - 1)
}

// Bind attaches l to the current position.
func (a *Assembler) Bind(l Label) {
	a.labels[l] = len(a.code)
}

// Finalize patches every label reference and returns the code.
func (a *Assembler) Finalize() ([]byte, error) {
	for _, fix := range a.fixups {
		target := a.labels[fix.label]
		if target < 0 {
			return nil, fmt.Errorf("label %d referenced at offset %d is never bound", fix.label, fix.offset)
		}
		a.patchRel32At(fix.offset, target)
	}
	a.fixups = nil
	return a.code, nil
}

func (a *Assembler) patchRel32At(fixupOff int, targetOff int) {
	rel := int32(targetOff - (fixupOff + 4))
	a.code[fixupOff] = byte(rel)
	a.code[fixupOff+1] = byte(rel >> 8)
	a.code[fixupOff+2] = byte(rel >> 16)
	a.code[fixupOff+3] = byte(rel >> 24)
}

// === Control flow ===

// Jmp emits `jmp rel32` to l.
func (a *Assembler) Jmp(l Label) {
	a.emitByte(0xe9)
	a.fixups = append(a.fixups, fixup{offset: len(a.code), label: l})
	a.emitU32(0) // placeholder
}

// Jcc emits `jCC rel32` to l.
func (a *Assembler) Jcc(cc Cond, l Label) {
	a.emitBytes(0x0f, byte(cc))
	a.fixups = append(a.fixups, fixup{offset: len(a.code), label: l})
	a.emitU32(0) // placeholder
}

// CallR emits `call reg`.
func (a *Assembler) CallR(reg Reg) {
	if reg >= 8 {
		a.emitByte(0x41)
	}
	a.emitBytes(0xff, byte(0xd0|(reg&7)))
}

// Ret emits `ret`.
func (a *Assembler) Ret() {
	a.emitByte(0xc3)
}

// === Stack ===

// Push emits `push reg` (handles r8-r15 with REX.B prefix).
func (a *Assembler) Push(reg Reg) {
	if reg >= 8 {
		a.emitBytes(0x41, byte(0x50+(reg&7)))
	} else {
		a.emitByte(byte(0x50 + reg))
	}
}

// Pop emits `pop reg` (handles r8-r15 with REX.B prefix).
func (a *Assembler) Pop(reg Reg) {
	if reg >= 8 {
		a.emitBytes(0x41, byte(0x58+(reg&7)))
	} else {
		a.emitByte(byte(0x58 + reg))
	}
}

// === Register-register operations ===

// rexRR computes the REX prefix for a 64-bit reg-reg operation where r goes
// in the ModR/M reg field and b in the rm field.
func rexRR(r, b Reg) byte {
	rex := byte(0x48)
	if r >= 8 {
		rex |= 0x04 // REX.R
	}
	if b >= 8 {
		rex |= 0x01 // REX.B
	}
	return rex
}

// modrmRR builds the ModR/M byte for register-direct addressing (mod=11).
func modrmRR(r, b Reg) byte {
	return byte(0xc0 | ((r & 7) << 3) | (b & 7))
}

// MovRR emits `mov dst, src`.
func (a *Assembler) MovRR(dst, src Reg) {
	a.emitBytes(rexRR(src, dst), 0x89, modrmRR(src, dst))
}

// AddRR emits `add dst, src`.
func (a *Assembler) AddRR(dst, src Reg) {
	a.emitBytes(rexRR(src, dst), 0x01, modrmRR(src, dst))
}

// SubRR emits `sub dst, src`.
func (a *Assembler) SubRR(dst, src Reg) {
	a.emitBytes(rexRR(src, dst), 0x29, modrmRR(src, dst))
}

// CmpRR emits `cmp x, y`, setting flags for x - y.
func (a *Assembler) CmpRR(x, y Reg) {
	a.emitBytes(rexRR(y, x), 0x39, modrmRR(y, x))
}

// TestRR emits `test x, y`.
func (a *Assembler) TestRR(x, y Reg) {
	a.emitBytes(rexRR(y, x), 0x85, modrmRR(y, x))
}

// XorR32 emits `xor r32, r32`, clearing the full 64-bit register.
func (a *Assembler) XorR32(reg Reg) {
	if reg >= 8 {
		a.emitByte(0x45)
	}
	a.emitBytes(0x31, modrmRR(reg, reg))
}

// === Register-immediate operations ===

// MovRI32 emits `mov r32, imm32`, which zero-extends into the 64-bit
// register.
func (a *Assembler) MovRI32(reg Reg, val uint32) {
	if reg >= 8 {
		a.emitByte(0x41)
	}
	a.emitByte(byte(0xb8 + (reg & 7)))
	a.emitU32(val)
}

// MovRI64 emits `movabs reg, imm64` (REX.W + B8+rd + imm64).
func (a *Assembler) MovRI64(reg Reg, val uint64) {
	rex := byte(0x48)
	if reg >= 8 {
		rex = 0x49
	}
	a.emitBytes(rex, byte(0xb8+(reg&7)))
	a.emitU64(val)
}

// AddRI emits `add reg, imm` (auto-selects imm8 or imm32). The immediate is
// sign-extended to 64 bits by the processor.
func (a *Assembler) AddRI(reg Reg, val int32) {
	a.aluRI(0, reg, val)
}

// SubRI emits `sub reg, imm` (auto-selects imm8 or imm32).
func (a *Assembler) SubRI(reg Reg, val int32) {
	a.aluRI(5, reg, val)
}

// aluRI emits the group-1 instruction selected by digit with a register
// destination and an immediate source.
func (a *Assembler) aluRI(digit byte, reg Reg, val int32) {
	rex := byte(0x48)
	if reg >= 8 {
		rex |= 0x01
	}
	modrm := byte(0xc0 | digit<<3 | byte(reg&7))
	if val >= -128 && val <= 127 {
		a.emitBytes(rex, 0x83, modrm, byte(val))
		return
	}
	if reg == RAX {
		a.emitBytes(rex, 0x05|digit<<3)
	} else {
		a.emitBytes(rex, 0x81, modrm)
	}
	a.emitU32(uint32(val))
}

// === Byte memory operations ===

// AddMem8 emits `add byte [base], imm8`.
func (a *Assembler) AddMem8(base Reg, val uint8) {
	a.aluMem8(0, base, val)
}

// SubMem8 emits `sub byte [base], imm8`.
func (a *Assembler) SubMem8(base Reg, val uint8) {
	a.aluMem8(5, base, val)
}

// CmpMem8 emits `cmp byte [base], imm8`.
func (a *Assembler) CmpMem8(base Reg, val uint8) {
	a.aluMem8(7, base, val)
}

// aluMem8 emits `80 /digit ib` against the byte at [base]. RSP/R12 need a
// SIB byte and RBP/R13 have no disp-less form, so those get [base+0].
func (a *Assembler) aluMem8(digit byte, base Reg, val uint8) {
	if base >= 8 {
		a.emitByte(0x41)
	}
	switch base & 7 {
	case RSP:
		a.emitBytes(0x80, digit<<3|4, 0x24)
	case RBP:
		a.emitBytes(0x80, 0x40|digit<<3|5, 0x00)
	default:
		a.emitBytes(0x80, digit<<3|byte(base&7))
	}
	a.emitByte(val)
}

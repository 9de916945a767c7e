package scriptbuilder

import (
	"bytes"
	"testing"

	"github.com/defunctec/crownj/txscript/opcode"
)

func TestAddOpAndData(t *testing.T) {
	script, err := NewScriptBuilder().
		AddOp(opcode.OP_DUP).
		AddOp(opcode.OP_HASH160).
		AddData(make([]byte, 20)).
		AddOp(opcode.OP_EQUALVERIFY).
		AddOp(opcode.OP_CHECKSIG).
		Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	want := append([]byte{opcode.OP_DUP, opcode.OP_HASH160, 0x14}, make([]byte, 20)...)
	want = append(want, opcode.OP_EQUALVERIFY, opcode.OP_CHECKSIG)
	if !bytes.Equal(script, want) {
		t.Fatalf("got %x, want %x", script, want)
	}
}

func TestAddInt64SmallValues(t *testing.T) {
	script, err := NewScriptBuilder().AddInt64(0).AddInt64(1).AddInt64(16).AddInt64(-1).Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	want := []byte{opcode.OP_0, opcode.OP_1, opcode.OP_16, opcode.OP_1NEGATE}
	if !bytes.Equal(script, want) {
		t.Fatalf("got %x, want %x", script, want)
	}
}

func TestAddInt64LargeValueEncodesMinimally(t *testing.T) {
	script, err := NewScriptBuilder().AddInt64(17).Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	want := []byte{0x01, 0x11}
	if !bytes.Equal(script, want) {
		t.Fatalf("got %x, want %x", script, want)
	}
}

func TestScriptTooLongFails(t *testing.T) {
	b := NewScriptBuilder()
	big := make([]byte, MaxScriptSize+1)
	if _, err := b.AddData(big).Script(); err == nil {
		t.Fatal("expected error for oversized script")
	}
}

func TestResetClearsScript(t *testing.T) {
	b := NewScriptBuilder().AddOp(opcode.OP_1)
	b.Reset()
	script, err := b.Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	if len(script) != 0 {
		t.Fatalf("expected empty script after reset, got %x", script)
	}
}

package parsescript

import (
	"bytes"
	"testing"

	"github.com/defunctec/crownj/txscript/opcode"
)

func TestParseScriptSimplePushes(t *testing.T) {
	script := []byte{opcode.OP_DUP, opcode.OP_HASH160, 0x02, 0xaa, 0xbb, opcode.OP_EQUALVERIFY, opcode.OP_CHECKSIG}
	pops, err := ParseScript(script)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(pops) != 5 {
		t.Fatalf("got %d pops, want 5", len(pops))
	}
	if pops[2].Opcode != 0x02 || !bytes.Equal(pops[2].Data, []byte{0xaa, 0xbb}) {
		t.Fatalf("unexpected push opcode: %+v", pops[2])
	}
}

func TestParseScriptTruncatedPushErrors(t *testing.T) {
	script := []byte{0x4c, 0x05, 0x01, 0x02}
	if _, err := ParseScript(script); err == nil {
		t.Fatal("expected error for truncated PUSHDATA1")
	}
}

func TestIsPushOnly(t *testing.T) {
	pushOnly := []byte{0x01, 0xaa, opcode.OP_1}
	pops, err := ParseScript(pushOnly)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if !IsPushOnly(pops) {
		t.Fatal("expected push-only script to be recognized as such")
	}

	notPushOnly := []byte{0x01, 0xaa, opcode.OP_CHECKSIG}
	pops, err = ParseScript(notPushOnly)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if IsPushOnly(pops) {
		t.Fatal("expected script with OP_CHECKSIG to not be push-only")
	}
}

func TestIsUnspendable(t *testing.T) {
	if !IsUnspendable([]byte{opcode.OP_RETURN, 0x01, 0xaa}) {
		t.Fatal("expected OP_RETURN script to be unspendable")
	}
	if IsUnspendable([]byte{opcode.OP_DUP, opcode.OP_CHECKSIG}) {
		t.Fatal("expected non-OP_RETURN script to be spendable")
	}
}

func TestUnparseScriptRoundTrip(t *testing.T) {
	script := []byte{opcode.OP_DUP, opcode.OP_HASH160, 0x14}
	script = append(script, make([]byte, 20)...)
	script = append(script, opcode.OP_EQUALVERIFY, opcode.OP_CHECKSIG)

	pops, err := ParseScript(script)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	out, err := UnparseScript(pops)
	if err != nil {
		t.Fatalf("UnparseScript: %v", err)
	}
	if !bytes.Equal(out, script) {
		t.Fatalf("round trip mismatch: got %x, want %x", out, script)
	}
}

package btcec

import (
	"bytes"
	"testing"

	"github.com/defunctec/crownj/chaincfg/chainhash"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv, errR := NewPrivateKey()
	if errR != nil {
		t.Fatalf("NewPrivateKey: %v", errR)
	}
	digest := chainhash.DoubleHashB([]byte("message to be signed"))

	sig, errR := priv.Sign(digest)
	if errR != nil {
		t.Fatalf("Sign: %v", errR)
	}

	pub := priv.PubKey()
	if !sig.Verify(digest, pub) {
		t.Fatal("signature did not verify against the correct public key")
	}

	otherPriv, _ := NewPrivateKey()
	if sig.Verify(digest, otherPriv.PubKey()) {
		t.Fatal("signature verified against the wrong public key")
	}
}

func TestSerializeParsePubKey(t *testing.T) {
	priv, _ := NewPrivateKey()
	pub := priv.PubKey()

	compressed := pub.SerializeCompressed()
	if len(compressed) != PubKeyBytesLenCompressed {
		t.Fatalf("compressed pubkey length = %d, want %d", len(compressed), PubKeyBytesLenCompressed)
	}

	parsed, errR := ParsePubKey(compressed)
	if errR != nil {
		t.Fatalf("ParsePubKey: %v", errR)
	}
	if !parsed.IsEqual(pub) {
		t.Fatal("parsed pubkey does not equal original")
	}
}

func TestSerializeParseSignatureRoundTrip(t *testing.T) {
	priv, _ := NewPrivateKey()
	digest := chainhash.DoubleHashB([]byte("another message"))

	sig, _ := priv.Sign(digest)
	der := sig.Serialize()

	parsed, errR := ParseSignature(der)
	if errR != nil {
		t.Fatalf("ParseSignature: %v", errR)
	}
	if !bytes.Equal(parsed.Serialize(), der) {
		t.Fatal("re-serialized signature does not match original DER bytes")
	}
	if !parsed.Verify(digest, priv.PubKey()) {
		t.Fatal("parsed signature failed to verify")
	}
}

func TestPrivKeyFromBytesRoundTrip(t *testing.T) {
	orig, _ := NewPrivateKey()
	b := orig.Serialize()

	priv, pub := PrivKeyFromBytes(b)
	if !bytes.Equal(priv.Serialize(), b) {
		t.Fatal("round-tripped private key bytes differ")
	}
	if !pub.IsEqual(orig.PubKey()) {
		t.Fatal("round-tripped public key differs")
	}
}

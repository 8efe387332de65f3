package tools

import (
	"testing"
)

func TestGPGMissingBinary(t *testing.T) {
	g := NewGPG("AES256", "SHA256", 0)
	g.bin = "no-such-binary-fpg-test"

	if _, err := g.Probe(); err == nil {
		t.Fatal("want probe error for missing binary")
	}
	if err := g.Encrypt("in", "out", "pass"); err == nil {
		t.Fatal("want encrypt error for missing binary")
	}
}

func TestGPGDefaults(t *testing.T) {
	g := NewGPG("AES256", "SHA256", 3)
	if g.bin != "gpg" || g.cipher != "AES256" || g.digest != "SHA256" || g.compressLevel != 3 {
		t.Fatalf("unexpected defaults: %+v", g)
	}
}

func TestExecSplitMissingInput(t *testing.T) {
	s := NewExecSplit()
	if s.bin != "split" {
		t.Fatalf("bin: %s", s.bin)
	}
	if _, err := s.Split("/definitely/not/there", 1024); err == nil {
		t.Fatal("want error for missing input")
	}
}

package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/coregx/packetizer"
	"github.com/coregx/packetizer/target"
)

func TestRenderFunction(t *testing.T) {
	tgt, err := target.Builtin("dual")
	if err != nil {
		t.Fatal(err)
	}
	fn, err := tgt.LoadProgram(filepath.Join("..", "..", "target", "testdata", "loop.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.NewPacketizer(fn)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range fn.Blocks {
		if err := p.PacketizeBlock(b); err != nil {
			t.Fatal(err)
		}
	}

	out := renderFunction(tgt, fn)
	for _, want := range []string{"loop · dual", "entry:", "exit:", "{", "ldw r1 = r10", "[mem]", "[-]", "brf b0"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderFunction() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStats(t *testing.T) {
	out := renderStats(packetizer.Stats{Instrs: 13, Bundles: 3, Bundled: 6, DependenceStalls: 1})
	for _, want := range []string{"statistics", "instructions", "13", "3 (6 instructions)", "dependence stalls"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderStats() missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTargets(t *testing.T) {
	out, err := renderTargets(target.BuiltinNames())
	if err != nil {
		t.Fatalf("renderTargets() error = %v", err)
	}
	for _, want := range []string{"targets", "dual", "ALU0 ALU1", "mem br alu"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderTargets() missing %q:\n%s", want, out)
		}
	}
	if _, err := renderTargets([]string{"nosuch"}); err == nil {
		t.Error("renderTargets(nosuch) succeeded")
	}
}

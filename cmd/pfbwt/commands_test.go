package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplicationHasAllSubcommands(t *testing.T) {
	app := application()
	want := []string{"build", "merge", "scan-vcf", "align-markers", "merge-mps", "dump-mps", "mps-to-ma"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("application() missing subcommand %q", name)
		}
	}
}

func TestBuildRejectsMutuallyExclusiveNonACGTFlags(t *testing.T) {
	dir := t.TempDir()
	fasta := filepath.Join(dir, "t.fa")
	if err := os.WriteFile(fasta, []byte(">t1\nACGTACGTACGTACGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app := application()
	args := []string{"pfbwt", "build", "-w", "4", "-p", "4", "-o", filepath.Join(dir, "out"), "--trim-non-acgt", "--sub-non-acgt", fasta}
	if err := app.Run(args); err == nil {
		t.Fatal("expected error for mutually exclusive --trim-non-acgt/--sub-non-acgt, got nil")
	}
}

func TestBuildStdinRequiresPrefix(t *testing.T) {
	app := application()
	args := []string{"pfbwt", "build", "-"}
	if err := app.Run(args); err == nil {
		t.Fatal("expected error when reading stdin without -o, got nil")
	}
}

func TestBuildRoundTripParseOnly(t *testing.T) {
	dir := t.TempDir()
	fasta := filepath.Join(dir, "t.fa")
	if err := os.WriteFile(fasta, []byte(">t1\nACGTACGTACGTACGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	prefix := filepath.Join(dir, "out")

	app := application()
	args := []string{"pfbwt", "build", "-w", "4", "-p", "4", "-o", prefix, "--parse-only", fasta}
	if err := app.Run(args); err != nil {
		t.Fatalf("build --parse-only: %v", err)
	}
	for _, ext := range []string{".dict", ".occ", ".parse", ".last", ".n"} {
		if _, err := os.Stat(prefix + ext); err != nil {
			t.Errorf("expected %s to exist: %v", prefix+ext, err)
		}
	}
	if _, err := os.Stat(prefix + ".bwt"); err == nil {
		t.Error("parse-only build should not produce a .bwt file")
	}
}

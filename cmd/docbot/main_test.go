package main

import (
	"bytes"
	"strings"
	"testing"

	"fdv-chatbot-platform/utils"
)

func TestRebuildNeedsVendorOrAll(t *testing.T) {
	for _, args := range [][]string{{}, {"acme", "--all"}} {
		cmd := rebuildCMD()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.Execute(); err == nil {
			t.Fatalf("expected an error for args %q", args)
		}
	}
}

func TestRebuildVendorFromDocumentsDir(t *testing.T) {
	docs := t.TempDir()
	t.Setenv("DOCUMENTS_DIR", docs)
	t.Setenv("INDEX_DIR", t.TempDir())

	cmd := rebuildCMD()
	cmd.SetArgs([]string{"missing"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected unknown vendor to fail")
	}
}

func TestHashPassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	var out bytes.Buffer
	cmd := hashPasswordCMD()
	cmd.SetArgs([]string{"hemmelig"})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if !utils.CheckPassword("hemmelig", hash) {
		t.Fatalf("printed hash does not verify: %q", hash)
	}
}

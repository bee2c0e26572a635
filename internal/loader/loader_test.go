package loader

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestRawFileToRegions(t *testing.T) {
	path := writeFile(t, "blob.bin", "\x90\x90\xc3")

	regions, err := RawFileToRegions(path)
	if err != nil {
		t.Fatalf("RawFileToRegions: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Base != 0 || regions[0].Name != path {
		t.Errorf("unexpected region: %+v", regions[0])
	}
	if string(regions[0].Data) != "\x90\x90\xc3" {
		t.Errorf("unexpected data: %v", regions[0].Data)
	}
}

func TestDumpToRegionsRoundTrips(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	hexPayload := hex.EncodeToString(payload)
	path := writeFile(t, "dump.json", `[{"name":"fn_main","base_address":4096,"data":"`+hexPayload+`"}]`)

	regions, err := DumpToRegions(path)
	if err != nil {
		t.Fatalf("DumpToRegions: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Base != 4096 {
		t.Errorf("Base = %d, want 4096", regions[0].Base)
	}
	if string(regions[0].Data) != string(payload) {
		t.Errorf("Data = %v, want %v", regions[0].Data, payload)
	}
}

func TestDumpToRegionsRejectsBadHex(t *testing.T) {
	path := writeFile(t, "dump.json", `[{"name":"fn","base_address":0,"data":"zz"}]`)
	if _, err := DumpToRegions(path); err == nil {
		t.Fatal("expected an error from non-hex data")
	}
}

func TestDumpToRegionsRejectsOddLength(t *testing.T) {
	path := writeFile(t, "dump.json", `[{"name":"fn","base_address":0,"data":"abc"}]`)
	if _, err := DumpToRegions(path); err == nil {
		t.Fatal("expected an error from odd-length hex data")
	}
}

func TestContextPairsFromSpec(t *testing.T) {
	doc := `<processor_spec>
  <context_data>
    <context_set>
      <set name="addrsize" val="2"/>
      <set name="brokenval" val="not-a-number"/>
      <set val="missingname"/>
      <set name="missingval"/>
    </context_set>
  </context_data>
</processor_spec>`
	path := writeFile(t, "proc.pspec", doc)

	var warnings []string
	pairs, err := ContextPairsFromSpec(path, func(msg string) { warnings = append(warnings, msg) })
	if err != nil {
		t.Fatalf("ContextPairsFromSpec: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 usable pairs, got %d: %+v", len(pairs), pairs)
	}
	if pairs[0].Name != "addrsize" || pairs[0].Value != 2 {
		t.Errorf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[1].Name != "brokenval" || pairs[1].Value != 0 {
		t.Errorf("unexpected fallback pair: %+v", pairs[1])
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
}

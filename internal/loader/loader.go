// Package loader turns on-disk artefacts — raw binaries, JSON region
// dumps, and XML processor-spec context files — into the in-memory
// values internal/target builds a Target from.
package loader

import (
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ianlancetaylor/demangle"

	"gadgetlift/internal/apperr"
	"gadgetlift/internal/memregion"
	"gadgetlift/internal/target"
)

// maxInputBytes bounds every file this package reads; anything larger is
// rejected rather than silently truncated.
const maxInputBytes = 50 * 1024 * 1024

// RawFileToRegions reads up to maxInputBytes of path and wraps it as a
// single region at base 0, named after the path.
func RawFileToRegions(path string) ([]memregion.Region, error) {
	data, err := readBounded(path)
	if err != nil {
		return nil, err
	}
	return []memregion.Region{memregion.New(path, 0, data)}, nil
}

// dumpEntry mirrors one element of the region dump JSON array.
type dumpEntry struct {
	Name        string `json:"name"`
	BaseAddress uint64 `json:"base_address"`
	Data        string `json:"data"`
}

// DumpToRegions parses a JSON array of {name, base_address, data} objects,
// hex-decoding each data string into the region's byte buffer. Each
// object's name is demangled on a best-effort basis for display; the
// extraction script emits one object per function boundary, but the
// loader treats every object as an opaque region regardless of name.
func DumpToRegions(path string) ([]memregion.Region, error) {
	raw, err := readBounded(path)
	if err != nil {
		return nil, err
	}

	var entries []dumpEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, apperr.Wrap(apperr.UnableToLoadFile, "parsing region dump "+path, err)
	}

	regions := make([]memregion.Region, 0, len(entries))
	for _, e := range entries {
		data, err := hex.DecodeString(e.Data)
		if err != nil {
			return nil, apperr.Wrap(apperr.UnableToLoadFile,
				fmt.Sprintf("region %q: invalid hex data", e.Name), err)
		}
		regions = append(regions, memregion.New(demangle.Filter(e.Name), e.BaseAddress, data))
	}
	return regions, nil
}

// pspecDoc mirrors the subset of a .pspec XML document the loader reads.
type pspecDoc struct {
	ContextData struct {
		ContextSet struct {
			Set []struct {
				Name string `xml:"name,attr"`
				Val  string `xml:"val,attr"`
			} `xml:"set"`
		} `xml:"context_set"`
	} `xml:"context_data"`
}

// ContextPairsFromSpec parses a .pspec XML file's context_data/context_set
// sets into ContextPairs. Sets missing a name or val attribute are
// skipped; a val that fails to parse as base-10 unsigned defaults to 0
// with a logged warning rather than failing the whole load.
func ContextPairsFromSpec(path string, warn func(string)) ([]target.ContextPair, error) {
	raw, err := readBounded(path)
	if err != nil {
		return nil, err
	}

	var doc pspecDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Wrap(apperr.InvalidPspec, "parsing processor spec "+path, err)
	}

	var pairs []target.ContextPair
	for _, s := range doc.ContextData.ContextSet.Set {
		if s.Name == "" || s.Val == "" {
			continue
		}
		val, err := strconv.ParseUint(s.Val, 10, 64)
		if err != nil {
			if warn != nil {
				warn(fmt.Sprintf("context key %q: invalid value %q, defaulting to 0", s.Name, s.Val))
			}
			val = 0
		}
		pairs = append(pairs, target.ContextPair{Name: s.Name, Value: val})
	}
	return pairs, nil
}

func readBounded(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.UnableToLoadFile, "opening "+path, err)
	}
	defer f.Close()

	limited := io.LimitReader(f, maxInputBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, apperr.Wrap(apperr.UnableToLoadFile, "reading "+path, err)
	}
	if len(data) > maxInputBytes {
		return nil, apperr.New(apperr.UnableToLoadFile, fmt.Sprintf("%s exceeds %d bytes", path, maxInputBytes))
	}
	return data, nil
}

package factset

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"sort"

	"golang.org/x/crypto/blake2b"

	"patcheck/internal/errors"
	"patcheck/internal/output"
)

// Load reads a pre-extracted fact set from a JSON file and validates it.
func Load(path string) (*FactSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.MalformedFactSet, "cannot read fact file", err)
	}
	return Parse(data, path)
}

// Parse decodes a fact set from JSON bytes and validates it.
func Parse(data []byte, source string) (*FactSet, error) {
	var fs FactSet
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, errors.New(errors.MalformedFactSet, "invalid fact JSON", err)
	}
	if fs.Types == nil {
		fs.Types = make(map[string]*TypeFact)
	}
	if fs.Source == "" {
		fs.Source = source
	}
	// The key of the types map is authoritative; tolerate omitted Name
	// fields in hand-written fact files.
	for name, tf := range fs.Types {
		if tf == nil {
			return nil, errors.Newf(errors.MalformedFactSet, "type %q is null", name)
		}
		if tf.Name == "" {
			tf.Name = name
		}
	}
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	return &fs, nil
}

// Digest returns the blake2b-256 digest of the canonicalized fact set,
// hex-encoded. Two fact sets with the same structural content digest
// identically regardless of map iteration or edge insertion order.
func (fs *FactSet) Digest() string {
	canonical := struct {
		Types []*TypeFact `json:"types"`
		Calls []CallEdge  `json:"calls"`
	}{}

	for _, name := range fs.TypeNames() {
		canonical.Types = append(canonical.Types, fs.Types[name])
	}

	canonical.Calls = append(canonical.Calls, fs.Calls...)
	sort.Slice(canonical.Calls, func(i, j int) bool {
		a, b := canonical.Calls[i], canonical.Calls[j]
		if a.CallerType != b.CallerType {
			return a.CallerType < b.CallerType
		}
		if a.CallerMember != b.CallerMember {
			return a.CallerMember < b.CallerMember
		}
		return a.Seq < b.Seq
	})

	data, err := output.DeterministicEncode(canonical)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

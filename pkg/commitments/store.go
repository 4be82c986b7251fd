// Package commitments manages the process-wide (G, H) commitment pair that
// the DLEQ verifier checks batch proofs against. It is the library-form
// contract spec.md §4.G describes: an atomically-swapped snapshot, refreshed
// out of band by whatever loader the embedding application wires up.
package commitments

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/privacypass/voprf-client/pkg/voprf"
)

// ErrUnavailable is returned by Load when no snapshot has ever been published.
var ErrUnavailable = errors.New("commitments: no snapshot available")

// Snapshot is an immutable (G, H) pair. Once published it is never mutated;
// a verification that reads one keeps using it for its entire duration even
// if the Store is swapped again mid-way, satisfying §5's ordering rule.
type Snapshot struct {
	G *voprf.Point
	H *voprf.Point
}

// Store holds the current commitment snapshot behind an atomic pointer, so
// concurrent readers never observe a torn (G, H) pair and writers never
// need a lock to publish one.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store; Load returns ErrUnavailable until Set is
// called at least once.
func NewStore() *Store {
	return &Store{}
}

// Set atomically publishes a new snapshot.
func (s *Store) Set(snap *Snapshot) {
	s.current.Store(snap)
}

// Load returns the most recently published snapshot.
func (s *Store) Load() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrUnavailable
	}
	return snap, nil
}

// commitmentEntry is the JSON shape of one selector's entry in the
// commitment file: base64-encoded SEC1-uncompressed G and H.
type commitmentEntry struct {
	G string `json:"G"`
	H string `json:"H"`
}

// File is the top-level commitment file shape from §6:
//
//	{ "<key>": { "1.0": {"G": "...", "H": "..."}, "dev": {"G": "...", "H": "..."} } }
type File map[string]map[string]commitmentEntry

// Select extracts the (G, H) pair for commitmentsKey/channel (e.g. "dev" or
// "1.0", chosen by build-time configuration per §6) and decodes it into a
// Snapshot.
func (f File) Select(commitmentsKey, channel string) (*Snapshot, error) {
	byChannel, ok := f[commitmentsKey]
	if !ok {
		return nil, errUnknownKey(commitmentsKey)
	}
	entry, ok := byChannel[channel]
	if !ok {
		return nil, errUnknownChannel(channel)
	}
	return entry.decode()
}

func (e commitmentEntry) decode() (*Snapshot, error) {
	gBytes, err := base64.StdEncoding.DecodeString(e.G)
	if err != nil {
		return nil, err
	}
	hBytes, err := base64.StdEncoding.DecodeString(e.H)
	if err != nil {
		return nil, err
	}
	g, err := voprf.Sec1Decode(gBytes)
	if err != nil {
		return nil, err
	}
	h, err := voprf.Sec1Decode(hBytes)
	if err != nil {
		return nil, err
	}
	return &Snapshot{G: g, H: h}, nil
}

// ParseFile unmarshals the raw commitment file JSON.
func ParseFile(data []byte) (File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func errUnknownKey(key string) error {
	return &selectorError{"commitments key", key}
}

func errUnknownChannel(ch string) error {
	return &selectorError{"channel", ch}
}

type selectorError struct {
	kind, value string
}

func (e *selectorError) Error() string {
	return "commitments: unknown " + e.kind + " " + e.value
}

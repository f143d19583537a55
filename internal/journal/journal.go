package journal

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cosmosdeploy/internal/security"
)

// Journal is an append-only log of pipeline stage records.
type Journal struct {
	mu      sync.Mutex
	records []*Record
	path    string
}

// Open loads an existing journal file or creates a new empty one, creating
// the parent directory first so a fresh project root works.
// File format: JSON lines, one record per line.
func Open(path string) (*Journal, error) {
	j := &Journal{
		records: make([]*Record, 0),
		path:    path,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		_ = f.Close()
		return j, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return j, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		j.records = append(j.records, &rec)
	}
	return j, nil
}

// Append signs a record with the given key, persists it to disk and keeps it
// in memory. The record's PrevHash must match the current tail.
func (j *Journal) Append(r *Record, priv ed25519.PrivateKey, pub ed25519.PublicKey) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Recompute the hash so the canonical fields and the stored hash agree.
	h, err := r.ComputeHash()
	if err != nil {
		return fmt.Errorf("recompute record hash: %w", err)
	}
	r.Hash = h

	if len(j.records) > 0 {
		last := j.records[len(j.records)-1]
		if r.PrevHash != last.Hash {
			return fmt.Errorf("prevHash mismatch: expected %s, got %s", last.Hash, r.PrevHash)
		}
	}

	if len(priv) == 0 {
		return fmt.Errorf("private key is empty, cannot sign record")
	}
	r.Signature = security.SignData(priv, []byte(r.Hash))
	r.PubKey = hex.EncodeToString(pub)

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}

	j.records = append(j.records, r)
	return nil
}

// Records returns the in-memory records in order.
func (j *Journal) Records() []*Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records
}

// NextIndex returns the index the next record should carry.
func (j *Journal) NextIndex() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.records)
}

// LastHash returns the hash of the newest record, or "" for an empty journal.
func (j *Journal) LastHash() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.records) == 0 {
		return ""
	}
	return j.records[len(j.records)-1].Hash
}

// Package journal keeps a tamper-evident record of every pipeline stage that
// ran: an append-only JSONL file of hash-chained, signed records.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Stage outcome values stored in a record.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Record is a tamper-evident entry for one pipeline stage.
type Record struct {
	Index     int    `json:"index"`
	RunID     string `json:"runId"`
	Timestamp string `json:"timestamp"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	LogPath   string `json:"logPath"`
	LogHash   string `json:"logHash"`
	PrevHash  string `json:"prevHash"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
	PubKey    string `json:"pubKey"`
}

// canonicalData returns the JSON bytes used to compute the record hash.
// It intentionally excludes Hash, Signature and PubKey.
func (r *Record) canonicalData() ([]byte, error) {
	view := struct {
		Index     int    `json:"index"`
		RunID     string `json:"runId"`
		Timestamp string `json:"timestamp"`
		Stage     string `json:"stage"`
		Status    string `json:"status"`
		LogPath   string `json:"logPath"`
		LogHash   string `json:"logHash"`
		PrevHash  string `json:"prevHash"`
	}{
		Index:     r.Index,
		RunID:     r.RunID,
		Timestamp: r.Timestamp,
		Stage:     r.Stage,
		Status:    r.Status,
		LogPath:   r.LogPath,
		LogHash:   r.LogHash,
		PrevHash:  r.PrevHash,
	}
	return json.Marshal(view)
}

// ComputeHash calculates SHA256 over canonicalData.
func (r *Record) ComputeHash() (string, error) {
	data, err := r.canonicalData()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// NewRecord constructs a record and computes its hash (no signature yet).
func NewRecord(index int, runID, stage, status, logPath, logHash, prevHash string) (*Record, error) {
	rec := &Record{
		Index:     index,
		RunID:     runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Stage:     stage,
		Status:    status,
		LogPath:   logPath,
		LogHash:   logHash,
		PrevHash:  prevHash,
	}

	h, err := rec.ComputeHash()
	if err != nil {
		return nil, fmt.Errorf("compute record hash: %w", err)
	}
	rec.Hash = h
	return rec, nil
}

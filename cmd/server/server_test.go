package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cosmosdeploy/internal/journal"
	"cosmosdeploy/internal/security"
	"cosmosdeploy/pkg/utils"
)

// seedStateDir builds a state dir with two recorded runs, the second failed.
func seedStateDir(t *testing.T) (string, []string) {
	t.Helper()
	stateDir := t.TempDir()

	jnl, err := journal.Open(filepath.Join(stateDir, "journal.jsonl"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	pub, priv, err := security.GenerateKeyPair()
	if err != nil {
		t.Fatalf("failed to generate keypair: %v", err)
	}

	appendRecord := func(runID, stage, status string) {
		logPath := filepath.Join(stateDir, runID+"_"+stage+".log")
		if err := os.WriteFile(logPath, []byte(stage+" output"), 0644); err != nil {
			t.Fatalf("failed to write log: %v", err)
		}
		logHash, _ := utils.HashFile(logPath)
		rec, err := journal.NewRecord(jnl.NextIndex(), runID, stage, status, logPath, logHash, jnl.LastHash())
		if err != nil {
			t.Fatalf("failed to create record: %v", err)
		}
		if err := jnl.Append(rec, priv, pub); err != nil {
			t.Fatalf("failed to append record: %v", err)
		}
	}

	appendRecord("run-1", "install", journal.StatusSuccess)
	appendRecord("run-1", "build", journal.StatusSuccess)
	appendRecord("run-2", "install", journal.StatusSuccess)
	appendRecord("run-2", "build", journal.StatusFailed)

	return stateDir, []string{"run-1", "run-2"}
}

func TestHealthz(t *testing.T) {
	s := newServer(t.TempDir())
	srv := httptest.NewServer(s.router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestListRuns(t *testing.T) {
	stateDir, runIDs := seedStateDir(t)
	srv := httptest.NewServer(newServer(stateDir).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs")
	if err != nil {
		t.Fatalf("runs request failed: %v", err)
	}
	defer resp.Body.Close()

	var runs []RunSummary
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("failed to decode runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != runIDs[0] || runs[1].RunID != runIDs[1] {
		t.Errorf("run order wrong: %+v", runs)
	}
	if runs[0].Status != journal.StatusSuccess {
		t.Errorf("run-1 status = %s", runs[0].Status)
	}
	if runs[1].Status != journal.StatusFailed {
		t.Errorf("run-2 status = %s, want failed", runs[1].Status)
	}
	if runs[0].Stages != 2 {
		t.Errorf("run-1 stage count = %d", runs[0].Stages)
	}
}

func TestGetRun(t *testing.T) {
	stateDir, runIDs := seedStateDir(t)
	srv := httptest.NewServer(newServer(stateDir).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/" + runIDs[0])
	if err != nil {
		t.Fatalf("run request failed: %v", err)
	}
	defer resp.Body.Close()

	var recs []journal.Record
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		t.Fatalf("failed to decode records: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.RunID != runIDs[0] {
			t.Errorf("record from the wrong run: %+v", rec)
		}
	}
}

func TestGetRunNotFound(t *testing.T) {
	stateDir, _ := seedStateDir(t)
	srv := httptest.NewServer(newServer(stateDir).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs/no-such-run")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestVerifyEndpointDetectsTampering(t *testing.T) {
	stateDir, _ := seedStateDir(t)
	srv := httptest.NewServer(newServer(stateDir).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/journal/verify")
	if err != nil {
		t.Fatalf("verify request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify of a clean journal = %d", resp.StatusCode)
	}

	// corrupt one line of the journal file on disk
	path := filepath.Join(stateDir, "journal.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	tampered := []byte(string(data[:20]) + "X" + string(data[21:]))
	if err := os.WriteFile(path, tampered, 0644); err != nil {
		t.Fatalf("failed to tamper journal: %v", err)
	}

	resp, err = http.Get(srv.URL + "/journal/verify")
	if err != nil {
		t.Fatalf("verify request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Errorf("verify did not flag the tampered journal")
	}
}

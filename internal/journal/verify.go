package journal

import (
	"fmt"

	"cosmosdeploy/internal/security"
)

// Verify recomputes every record hash, chain link and signature to detect
// tampering.
func (j *Journal) Verify() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := range j.records {
		r := j.records[i]

		h, err := r.ComputeHash()
		if err != nil {
			return fmt.Errorf("compute hash for index %d: %w", r.Index, err)
		}
		if h != r.Hash {
			return fmt.Errorf("hash mismatch at index %d", r.Index)
		}

		if i > 0 && r.PrevHash != j.records[i-1].Hash {
			return fmt.Errorf("prev hash mismatch at index %d", r.Index)
		}

		if r.Index != i {
			return fmt.Errorf("index mismatch: expected %d, got %d", i, r.Index)
		}

		ok, err := security.VerifySignatureFromHex(r.PubKey, []byte(r.Hash), r.Signature)
		if err != nil {
			return fmt.Errorf("verify signature at index %d: %w", r.Index, err)
		}
		if !ok {
			return fmt.Errorf("signature mismatch at index %d", r.Index)
		}
	}
	return nil
}

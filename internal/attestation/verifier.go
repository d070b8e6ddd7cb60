package attestation

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"il-insurance-compute/internal/numeric"
)

// VerifyResult is the consistency verdict over one encrypted attestation,
// plus the computed value extracted from the proof's public inputs.
type VerifyResult struct {
	Valid         bool            `json:"isValid"`
	ComputedValue numeric.Uint256 `json:"computedValue"`
}

// Verifier screens an encrypted attestation against its proof. Keccak
// digests of both payloads give a cheap fail-fast on degenerate input;
// the cryptographic acceptance itself is delegated to the wired
// ProofVerifier. By protocol convention the claimed output is public
// input #0.
type Verifier struct {
	proofs ProofVerifier
	logger zerolog.Logger
}

// NewVerifier constructs an attestation verifier delegating proof checks
// to the given backend.
func NewVerifier(proofs ProofVerifier, logger zerolog.Logger) *Verifier {
	return &Verifier{
		proofs: proofs,
		logger: logger.With().Str("component", "attestation_verifier").Logger(),
	}
}

// Verify fails closed to (false, 0) on an empty payload, an empty proof,
// empty public inputs, or a rejected proof. On acceptance it returns the
// first public input as the computed value.
func (v *Verifier) Verify(ctx context.Context, encryptedAttestation, proof []byte, publicInputs []numeric.Uint256) (VerifyResult, error) {
	if len(encryptedAttestation) == 0 || len(proof) == 0 {
		v.logger.Debug().Msg("empty attestation or proof, failing closed")
		return VerifyResult{}, nil
	}

	attestationDigest := numeric.FromBytes32(crypto.Keccak256Hash(encryptedAttestation))
	proofDigest := numeric.FromBytes32(crypto.Keccak256Hash(proof))

	if attestationDigest.IsZero() || proofDigest.IsZero() || len(publicInputs) == 0 {
		return VerifyResult{}, nil
	}

	accepted, err := v.proofs.VerifyProof(ctx, encryptedAttestation, proof, publicInputs)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify proof: %w", err)
	}
	if !accepted {
		v.logger.Debug().
			Str("attestation_digest", attestationDigest.String()).
			Msg("proof rejected")
		return VerifyResult{}, nil
	}

	return VerifyResult{Valid: true, ComputedValue: publicInputs[0]}, nil
}

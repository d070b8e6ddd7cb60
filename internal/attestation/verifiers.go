package attestation

import (
	"context"

	"il-insurance-compute/internal/numeric"
)

// SignatureVerifier decides whether one operator's (value, signature,
// public key) triple is cryptographically authentic. This node does not
// implement BLS math itself; the aggregator consumes a verdict from
// whichever implementation is wired in and may suspend while it runs.
type SignatureVerifier interface {
	VerifySignature(ctx context.Context, value numeric.Uint256, signature, operatorKey []byte) (bool, error)
}

// ProofVerifier decides whether an encrypted attestation is consistent
// with its zero-knowledge proof under the given public inputs. Like
// SignatureVerifier, the cryptographic work lives behind this boundary.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, encryptedAttestation, proof []byte, publicInputs []numeric.Uint256) (bool, error)
}

// NopSignatureVerifier accepts every triple. It stands in until a real
// BLS backend is wired; the structural screening (non-zero value,
// non-empty signature and key) still applies upstream.
type NopSignatureVerifier struct{}

// VerifySignature always reports success.
func (NopSignatureVerifier) VerifySignature(context.Context, numeric.Uint256, []byte, []byte) (bool, error) {
	return true, nil
}

// NopProofVerifier accepts every proof. It stands in until a real ZK
// backend is wired; the digest fail-fast checks still apply upstream.
type NopProofVerifier struct{}

// VerifyProof always reports success.
func (NopProofVerifier) VerifyProof(context.Context, []byte, []byte, []numeric.Uint256) (bool, error) {
	return true, nil
}

var (
	_ SignatureVerifier = NopSignatureVerifier{}
	_ ProofVerifier     = NopProofVerifier{}
)

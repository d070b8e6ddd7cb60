package rpcserver

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"il-insurance-compute/internal/attestation"
	"il-insurance-compute/internal/config"
	"il-insurance-compute/internal/engine"
	"il-insurance-compute/internal/insurance"
	"il-insurance-compute/internal/oracle"
)

func newTestServer(t *testing.T) *rpc.Client {
	t.Helper()

	logger := zerolog.Nop()
	losses := insurance.NewLossCalculator(logger)
	payouts := insurance.NewPayoutCalculator(logger)
	api := NewComputeAPI(
		oracle.NewValidator(logger),
		attestation.NewAggregator(attestation.NopSignatureVerifier{}, logger),
		attestation.NewVerifier(attestation.NopProofVerifier{}, logger),
		losses,
		payouts,
		engine.New(losses, payouts, logger),
		logger,
	)

	srv, err := New(config.ServerConfig{
		ListenAddr:      ":0",
		ShutdownTimeout: time.Second,
	}, api, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	client := rpc.DialInProc(srv.Handler())
	t.Cleanup(client.Close)
	return client
}

func hexBig(v int64) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(v))
}

func TestRPCCalculatePayout(t *testing.T) {
	client := newTestServer(t)

	var reply PayoutReply
	err := client.CallContext(context.Background(), &reply, "compute_calculatePayout",
		hexBig(1), hexBig(500), hexBig(200), hexBig(100), hexBig(8000))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if reply.Payout.ToInt().Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("payout = %s, want 200 (capped)", reply.Payout)
	}
}

func TestRPCValidateOraclePrices(t *testing.T) {
	client := newTestServer(t)

	var reply OracleValidationReply
	err := client.CallContext(context.Background(), &reply, "compute_validateOraclePrices",
		[]*hexutil.Big{hexBig(100), hexBig(105), hexBig(98)},
		[]*hexutil.Big{hexBig(1), hexBig(2), hexBig(3)},
		hexBig(1000))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !reply.IsValid {
		t.Fatal("series should be valid")
	}
	if len(reply.AcceptedPrices) != 2 {
		t.Fatalf("accepted = %v", reply.AcceptedPrices)
	}
}

func TestRPCAggregateAttestations(t *testing.T) {
	client := newTestServer(t)

	sig := hexutil.Bytes{0x01}
	key := hexutil.Bytes{0x02}

	var reply AggregationReply
	err := client.CallContext(context.Background(), &reply, "compute_aggregateAttestations",
		[]*hexutil.Big{hexBig(10), hexBig(20), hexBig(30)},
		[]hexutil.Bytes{sig, sig, sig},
		[]hexutil.Bytes{key, key, key},
		hexBig(2))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !reply.QuorumMet {
		t.Fatal("quorum should be met")
	}
	if reply.AggregatedValue.ToInt().Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("aggregate = %s, want 20", reply.AggregatedValue)
	}
}

func TestRPCVerifyEncryptedAttestation(t *testing.T) {
	client := newTestServer(t)

	var reply VerificationReply
	err := client.CallContext(context.Background(), &reply, "compute_verifyEncryptedAttestation",
		hexutil.Bytes("ciphertext"), hexutil.Bytes("proof"),
		[]*hexutil.Big{hexBig(42)})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !reply.IsValid || reply.ComputedValue.ToInt().Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("got %+v, want valid with value 42", reply)
	}

	// Empty proof fails closed, not with an RPC error.
	err = client.CallContext(context.Background(), &reply, "compute_verifyEncryptedAttestation",
		hexutil.Bytes("ciphertext"), hexutil.Bytes{}, []*hexutil.Big{hexBig(42)})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if reply.IsValid {
		t.Fatal("empty proof should fail closed")
	}
}

func TestRPCProcessAttestationRequest(t *testing.T) {
	client := newTestServer(t)

	var reply ClaimReply
	err := client.CallContext(context.Background(), &reply, "compute_processAttestationRequest",
		ClaimRequestArgs{
			PolicyID:            hexBig(1),
			InitialTokenAAmount: hexBig(1000),
			InitialTokenBAmount: hexBig(2000),
			CurrentTokenAPrice:  hexBig(100),
			CurrentTokenBPrice:  hexBig(50),
			InitialTokenAPrice:  hexBig(110),
			InitialTokenBPrice:  hexBig(55),
			PoolFeeRate:         hexBig(30),
			CoverageAmount:      hexBig(5000),
			Deductible:          hexBig(100),
			CoverageRatio:       hexBig(8000),
		})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !reply.IsValid {
		t.Fatal("claim reply is valid by construction")
	}
	if reply.HasLoss || reply.ImpermanentLoss.ToInt().Sign() != 0 {
		t.Fatalf("expected zero loss, got %+v", reply)
	}
	if reply.Payout.ToInt().Sign() != 0 {
		t.Fatalf("expected zero payout, got %s", reply.Payout)
	}
}

func TestRPCDivisionFaultSurfacesAsError(t *testing.T) {
	client := newTestServer(t)

	// current B price zero zeroes the ratio denominator: a hard arithmetic
	// fault, surfaced as a JSON-RPC error rather than a fabricated result.
	var reply LossReply
	err := client.CallContext(context.Background(), &reply, "compute_calculateImpermanentLoss",
		hexBig(1), hexBig(1), hexBig(1), hexBig(0), hexBig(1), hexBig(1), hexBig(0))
	if err == nil {
		t.Fatal("expected an rpc error for division by zero")
	}
}

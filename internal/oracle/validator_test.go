package oracle

import (
	"errors"
	"math/big"
	"testing"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/numeric"
)

func u64s(vs ...uint64) []numeric.Uint256 {
	out := make([]numeric.Uint256, len(vs))
	for i, v := range vs {
		out[i] = numeric.FromUint64(v)
	}
	return out
}

func TestValidateAcceptsCleanSeries(t *testing.T) {
	v := NewValidator(zerolog.Nop())

	res, err := v.Validate(u64s(100, 105, 98), u64s(1, 2, 3), numeric.FromUint64(1000))
	if err != nil {
		t.Fatalf("校验不应出错: %v", err)
	}
	if !res.Valid {
		t.Fatal("偏差均在阈值内, 应判定有效")
	}
	want := u64s(105, 98)
	if len(res.Accepted) != len(want) {
		t.Fatalf("accepted 长度 %d, 期望 %d", len(res.Accepted), len(want))
	}
	for i := range want {
		if res.Accepted[i].Cmp(want[i]) != 0 {
			t.Fatalf("accepted[%d] = %s, 期望 %s", i, res.Accepted[i], want[i])
		}
	}
}

func TestValidateFailsClosedOnBadShape(t *testing.T) {
	v := NewValidator(zerolog.Nop())

	for name, in := range map[string]struct{ prices, ts []numeric.Uint256 }{
		"mismatched": {u64s(1, 2), u64s(1)},
		"empty":      {nil, nil},
	} {
		res, err := v.Validate(in.prices, in.ts, numeric.FromUint64(1000))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.Valid || len(res.Accepted) != 0 {
			t.Fatalf("%s: 应 fail closed, got %+v", name, res)
		}
	}
}

func TestValidateKeepsScanningPastSpike(t *testing.T) {
	v := NewValidator(zerolog.Nop())

	// 100 -> 300 is a 20000bp jump; 300 -> 303 is a 100bp move.
	res, err := v.Validate(u64s(100, 300, 303), u64s(1, 2, 3), numeric.FromUint64(1000))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("spike 应使整体无效")
	}
	if len(res.Accepted) != 1 || res.Accepted[0].Cmp(numeric.FromUint64(303)) != 0 {
		t.Fatalf("后续合规点仍应进入 accepted: %+v", res.Accepted)
	}
}

func TestValidateZeroBasePrice(t *testing.T) {
	v := NewValidator(zerolog.Nop())

	res, err := v.Validate(u64s(0, 100, 101), u64s(1, 2, 3), numeric.FromUint64(1000))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("零基准价无法计算偏差, 应判定无效")
	}
	// The 100 -> 101 pair still passes the deviation screen.
	if len(res.Accepted) != 1 {
		t.Fatalf("accepted = %+v", res.Accepted)
	}
}

func TestValidateTimestampOrdering(t *testing.T) {
	v := NewValidator(zerolog.Nop())

	res, err := v.Validate(u64s(100, 101, 102), u64s(1, 3, 3), numeric.FromUint64(1000))
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("时间戳重复应判定无效")
	}
	if len(res.Accepted) != 2 {
		t.Fatalf("时间戳检查不应影响 accepted: %+v", res.Accepted)
	}
}

func TestValidateSurfacesOverflow(t *testing.T) {
	v := NewValidator(zerolog.Nop())

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	huge, err := numeric.FromBig(max)
	if err != nil {
		t.Fatal(err)
	}
	prices := []numeric.Uint256{numeric.FromUint64(1), huge}

	if _, err := v.Validate(prices, u64s(1, 2), numeric.FromUint64(1000)); !errors.Is(err, numeric.ErrOverflow) {
		t.Fatalf("偏差缩放溢出应上抛 ErrOverflow, got %v", err)
	}
}

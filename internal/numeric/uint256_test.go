package numeric

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"
)

func mustFromDecimal(t *testing.T, s string) Uint256 {
	t.Helper()
	v, err := FromDecimal(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

var maxUint256 = func() Uint256 {
	b := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	v, err := FromBig(b)
	if err != nil {
		panic(err)
	}
	return v
}()

func TestAddSubRoundTrip(t *testing.T) {
	cases := [][2]uint64{
		{0, 0},
		{1, 2},
		{12345, 67890},
		{1 << 63, 1 << 62},
	}
	for _, c := range cases {
		a, b := FromUint64(c[0]), FromUint64(c[1])
		sum, err := a.Add(b)
		if err != nil {
			t.Fatalf("%d + %d: %v", c[0], c[1], err)
		}
		if got := sum.SubSat(b); got.Cmp(a) != 0 {
			t.Fatalf("(a+b)-b = %s, want %s", got, a)
		}
	}
}

func TestAddOverflow(t *testing.T) {
	if _, err := maxUint256.Add(FromUint64(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestSubSaturatesAtZero(t *testing.T) {
	small, large := FromUint64(3), FromUint64(10)
	if got := small.SubSat(large); !got.IsZero() {
		t.Fatalf("3-10 should saturate to zero, got %s", got)
	}
	if got := large.SubSat(small); got.Cmp(FromUint64(7)) != 0 {
		t.Fatalf("10-3 = %s, want 7", got)
	}
}

func TestMulOverflow(t *testing.T) {
	half := mustFromDecimal(t, "340282366920938463463374607431768211456") // 2^128
	if _, err := half.Mul(half); !errors.Is(err, ErrOverflow) {
		t.Fatalf("2^128 * 2^128 should overflow, got %v", err)
	}
	below := mustFromDecimal(t, "340282366920938463463374607431768211455") // 2^128-1
	if _, err := below.Mul(below); err != nil {
		t.Fatalf("(2^128-1)^2 fits: %v", err)
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := FromUint64(42).Div(Zero); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
	q, err := FromUint64(7).Div(FromUint64(2))
	if err != nil {
		t.Fatalf("7/2: %v", err)
	}
	if q.Cmp(FromUint64(3)) != 0 {
		t.Fatalf("7/2 = %s, want 3 (truncating)", q)
	}
}

func TestFromBigRejectsOutOfRange(t *testing.T) {
	if _, err := FromBig(big.NewInt(-1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("negative input should fail, got %v", err)
	}
	wide := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := FromBig(wide); !errors.Is(err, ErrOverflow) {
		t.Fatalf("2^256 should fail, got %v", err)
	}
}

func TestUint64Narrowing(t *testing.T) {
	v, err := FromUint64(99).Uint64()
	if err != nil || v != 99 {
		t.Fatalf("got (%d, %v), want (99, nil)", v, err)
	}
	if _, err := maxUint256.Uint64(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("max uint256 should not narrow, got %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := mustFromDecimal(t, "115792089237316195423570985008687907853269984665640564039457")
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Uint256
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	if out.Cmp(in) != 0 {
		t.Fatalf("round trip changed value: %s != %s", out, in)
	}
}

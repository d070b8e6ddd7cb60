package numeric

import (
	"math/big"
	"testing"
)

func TestIsqrtZero(t *testing.T) {
	if got := Isqrt(Zero); !got.IsZero() {
		t.Fatalf("isqrt(0) = %s, want 0", got)
	}
}

func TestIsqrtSmall(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{1, 1}, {2, 1}, {3, 1}, {4, 2}, {8, 2}, {9, 3},
		{15, 3}, {16, 4}, {99, 9}, {100, 10}, {1 << 32, 1 << 16},
	}
	for _, c := range cases {
		if got := Isqrt(FromUint64(c.in)); got.Cmp(FromUint64(c.want)) != 0 {
			t.Fatalf("isqrt(%d) = %s, want %d", c.in, got, c.want)
		}
	}
}

// floor-root bracketing: r^2 <= n < (r+1)^2.
func TestIsqrtBracketsInput(t *testing.T) {
	inputs := []*big.Int{
		big.NewInt(1234567891),
		new(big.Int).Lsh(big.NewInt(1), 128),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(7)),
		maxUint256.Big(),
	}
	for _, n := range inputs {
		v, err := FromBig(n)
		if err != nil {
			t.Fatalf("FromBig(%s): %v", n, err)
		}
		r := Isqrt(v).Big()
		lower := new(big.Int).Mul(r, r)
		if lower.Cmp(n) > 0 {
			t.Fatalf("isqrt(%s) = %s: square exceeds input", n, r)
		}
		next := new(big.Int).Add(r, big.NewInt(1))
		upper := new(big.Int).Mul(next, next)
		if upper.Cmp(n) <= 0 {
			t.Fatalf("isqrt(%s) = %s: not the floor root", n, r)
		}
	}
}

func TestIsqrtMatchesBigSqrt(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(987654321), 100)
	v, err := FromBig(n)
	if err != nil {
		t.Fatal(err)
	}
	want := new(big.Int).Sqrt(n)
	if got := Isqrt(v).Big(); got.Cmp(want) != 0 {
		t.Fatalf("isqrt = %s, big.Int sqrt = %s", got, want)
	}
}

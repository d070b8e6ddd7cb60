package numeric

import "github.com/holiman/uint256"

var one = uint256.NewInt(1)

// Isqrt returns floor(sqrt(v)) by Newton/Babylonian iteration:
// x = v, y = (v+1)/2, then y = (y + v/y)/2 while y < x. The iterate
// decreases strictly until it stabilises at the floor root, so the loop
// terminates for every input. Isqrt(0) = 0.
func Isqrt(v Uint256) Uint256 {
	if v.IsZero() {
		return Zero
	}

	var x, y uint256.Int
	x.Set(&v.i)
	if _, overflow := y.AddOverflow(&v.i, one); overflow {
		// v+1 wraps only at the top of the range; v/2+1 still upper-bounds
		// the root, which is all the first iterate needs.
		y.Rsh(&v.i, 1)
		y.Add(&y, one)
	} else {
		y.Rsh(&y, 1)
	}

	var q uint256.Int
	for y.Lt(&x) {
		x.Set(&y)
		q.Div(&v.i, &y)
		q.Add(&q, &y)
		y.Rsh(&q, 1)
	}
	return Uint256{i: x}
}

package poseidon

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"
)

func TestHashKnownVectors(t *testing.T) {
	t.Parallel()

	// Reference values from circomlib, shared by every Poseidon
	// implementation this system interoperates with.
	testCases := []struct {
		name     string
		inputs   []*big.Int
		expected string
	}{
		{
			name:     "unary",
			inputs:   []*big.Int{big.NewInt(1)},
			expected: "18586133768512220936620570745912940619677854269274689475585506675881198879027",
		},
		{
			name:     "binary",
			inputs:   []*big.Int{big.NewInt(1), big.NewInt(2)},
			expected: "7853200120776062878684798364095072458815029376092732009249414926327459813530",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)

			got, err := Hash(tc.inputs...)
			c.Assert(err, qt.IsNil)

			expected, ok := new(big.Int).SetString(tc.expected, 10)
			c.Assert(ok, qt.IsTrue)
			c.Assert(got.Cmp(expected), qt.Equals, 0)
		})
	}
}

func TestHashDeterminism(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	a := big.NewInt(42)
	b := big.NewInt(1337)

	h1, err := Hash(a, b)
	c.Assert(err, qt.IsNil)
	h2, err := Hash(a, b)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h2), qt.Equals, 0)

	// Order matters
	h3, err := Hash(b, a)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h3), qt.Not(qt.Equals), 0)
}

func TestHashRejectsBadInputs(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	// No inputs
	_, err := Hash()
	c.Assert(err, qt.IsNotNil)

	// Too many inputs
	_, err = Hash(big.NewInt(1), big.NewInt(2), big.NewInt(3))
	c.Assert(err, qt.IsNotNil)

	// Nil input
	_, err = Hash(big.NewInt(1), nil)
	c.Assert(err, qt.IsNotNil)

	// Negative input
	_, err = Hash(big.NewInt(-1))
	c.Assert(err, qt.IsNotNil)

	// Modulus itself is not a valid field element
	_, err = Hash(new(big.Int).Set(q))
	c.Assert(err, qt.IsNotNil)

	// Modulus minus one is the largest valid element
	_, err = Hash(new(big.Int).Sub(q, big.NewInt(1)))
	c.Assert(err, qt.IsNil)
}

func TestMultiPoseidon(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	// A list that fits in a single chunk hashes exactly like plain Poseidon
	small := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	got, err := MultiPoseidon(small...)
	c.Assert(err, qt.IsNil)

	expected, err := iden3poseidon.Hash(small)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(expected), qt.Equals, 0)

	// A 17th input spills into a second chunk
	large := make([]*big.Int, 17)
	for i := range large {
		large[i] = big.NewInt(int64(i + 1))
	}
	got, err = MultiPoseidon(large...)
	c.Assert(err, qt.IsNil)

	first, err := iden3poseidon.Hash(large[:16])
	c.Assert(err, qt.IsNil)
	second, err := iden3poseidon.Hash(large[16:])
	c.Assert(err, qt.IsNil)
	expected, err = iden3poseidon.Hash([]*big.Int{first, second})
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(expected), qt.Equals, 0)

	// Bounds
	_, err = MultiPoseidon()
	c.Assert(err, qt.IsNotNil)
	_, err = MultiPoseidon(make([]*big.Int, 257)...)
	c.Assert(err, qt.IsNotNil)
}

package diffy_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/diffy/pkg/diffy"
)

// randomValue builds a tree of at most the given depth over a small key and
// primitive space, so that random pairs overlap often.
func randomValue(r *rand.Rand, depth int) diffy.Value {
	if depth == 0 || r.IntN(3) == 0 {
		switch r.IntN(5) {
		case 0:
			return diffy.String(strconv.Itoa(r.IntN(3)))
		case 1:
			return diffy.Number(r.IntN(3))
		case 2:
			return diffy.Bool(r.IntN(2) == 0)
		case 3:
			return diffy.Null{}
		default:
			return diffy.Hash{}
		}
	}
	n := r.IntN(4)
	res := make(diffy.Hash, n)
	for i := 0; i < n; i++ {
		res["k"+strconv.Itoa(r.IntN(5))] = randomValue(r, depth-1)
	}
	return res
}

// mutate returns a copy of v with a few random edits.
func mutate(r *rand.Rand, v diffy.Value, depth int) diffy.Value {
	hash, ok := v.(diffy.Hash)
	if !ok || r.IntN(5) == 0 {
		return randomValue(r, depth)
	}
	res := make(diffy.Hash, len(hash))
	for k, sub := range hash {
		switch r.IntN(6) {
		case 0: // drop
		case 1:
			res[k] = mutate(r, sub, depth-1)
		default:
			res[k] = diffy.Clone(sub)
		}
	}
	if r.IntN(3) == 0 {
		res["k"+strconv.Itoa(r.IntN(7))] = randomValue(r, depth-1)
	}
	return res
}

func TestRoundTripProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))
	for i := 0; i < 2000; i++ {
		from := randomValue(r, 4)
		var to diffy.Value
		if i%2 == 0 {
			to = mutate(r, from, 4)
		} else {
			to = randomValue(r, 4)
		}

		p := diffy.Diff(from, to)
		res, err := diffy.Apply(p, diffy.Clone(from))
		require.NoError(t, err, "from=%s to=%s patch=%s", spew.Sdump(from), spew.Sdump(to), spew.Sdump(p))
		require.True(t, diffy.IsDeepEqual(to, res),
			"from=%s to=%s patch=%s got=%s", spew.Sdump(from), spew.Sdump(to), spew.Sdump(p), spew.Sdump(res))

		// a value diffed with itself applies to the very same node
		same, err := diffy.Apply(diffy.Diff(from, from), from)
		require.NoError(t, err)
		require.True(t, diffy.Same(from, same), "identity lost for %s", spew.Sdump(from))
	}
}

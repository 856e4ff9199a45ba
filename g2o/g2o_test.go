package g2o

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"

	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

func Test_load_se2_minimal01(tst *testing.T) {

	chk.PrintTitle("load_se2_minimal01. a tiny SE2 g2o fragment parses into graph+values")

	text := []byte(`
# comment
VERTEX_SE2 0 0.0 0.0 0.0
VERTEX_SE2 1 1.0 0.0 0.0
EDGE_SE2 0 1 1.0 0.0 0.0 100.0 0.0 0.0 100.0 0.0 100.0
`)
	g, vs, err := Load(text)
	require.NoError(tst, err, "Load")
	require.Equal(tst, 2, vs.Len(), "vertex count")
	require.Equal(tst, 1, g.Len(), "edge factor count")
	v0, ok := vs.Get(symbol.Make('x', 0))
	require.True(tst, ok, "vertex 0 not found")
	chk.Scalar(tst, "v0.Tx", 1e-12, v0.(manifold.SE2).Tx, 0)
}

func Test_load_se3_minimal01(tst *testing.T) {

	chk.PrintTitle("load_se3_minimal01. a tiny SE3:QUAT g2o fragment parses into graph+values")

	text := []byte(`
VERTEX_SE3:QUAT 0 0 0 0 0 0 0 1
VERTEX_SE3:QUAT 1 1 0 0 0 0 0 1
EDGE_SE3:QUAT 0 1 1 0 0 0 0 0 1 ` +
		"100 0 0 0 0 0 100 0 0 0 0 100 0 0 0 100 0 0 100 0 100")
	g, vs, err := Load(text)
	require.NoError(tst, err, "Load")
	require.Equal(tst, 2, vs.Len(), "vertex count")
	require.Equal(tst, 1, g.Len(), "edge factor count")
}

func Test_load_unknown_records_skipped01(tst *testing.T) {

	chk.PrintTitle("load_unknown_records_skipped01. unrecognized record kinds are tolerated")

	text := []byte(`
FIX 0
VERTEX_SE2 0 0.0 0.0 0.0
`)
	_, vs, err := Load(text)
	require.NoError(tst, err, "Load")
	require.Equal(tst, 1, vs.Len(), "vertex count")
}

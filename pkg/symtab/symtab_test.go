package symtab_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"mnaspice/internal/consts"
	"mnaspice/pkg/symtab"
)

func TestIntern(t *testing.T) {
	tab := symtab.New()

	idx, err := tab.Intern("in")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	idx, err = tab.Intern("out")
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	// Re-interning returns the existing index
	idx, err = tab.Intern("in")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	// Ground is pre-bound, under both spellings
	idx, err = tab.Intern("0")
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	idx, err = tab.Intern("gnd")
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	require.Equal(t, 2, tab.NumNodes())
	require.Equal(t, 2, tab.NumVariables())
}

func TestCurrents(t *testing.T) {
	tab := symtab.New()
	_, err := tab.Intern("a")
	require.NoError(t, err)

	jx, err := tab.Current("j", "V1")
	require.NoError(t, err)
	require.Equal(t, 2, jx)
	require.Equal(t, "jV1", tab.Name(jx))

	hx, err := tab.Current("jx", "H1")
	require.NoError(t, err)
	hy, err := tab.Current("jy", "H1")
	require.NoError(t, err)
	require.Equal(t, "jxH1", tab.Name(hx))
	require.Equal(t, "jyH1", tab.Name(hy))

	// Aux currents do not count as nodes
	require.Equal(t, 1, tab.NumNodes())
	require.Equal(t, 4, tab.NumVariables())
	require.Equal(t, jx, tab.Lookup("jV1"))
	require.Equal(t, -1, tab.Lookup("missing"))
}

func TestCapacity(t *testing.T) {
	tab := symtab.New()
	var err error
	for i := 0; i < consts.MaxVariables+5; i++ {
		_, err = tab.Intern(fmt.Sprintf("n%d", i))
		if err != nil {
			break
		}
	}
	require.ErrorIs(t, err, symtab.ErrCapacity)
	require.Equal(t, consts.MaxVariables, tab.NumVariables())
}

package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveyforge/surveyforge/internal/table"
)

func sampleTable(t *testing.T, years, ids []int64, vals []string) *table.Table {
	t.Helper()
	tbl := table.New()
	yv := make([]table.Value, len(years))
	iv := make([]table.Value, len(ids))
	sv := make([]table.Value, len(vals))
	for i := range years {
		yv[i] = table.IntValue(years[i])
		iv[i] = table.IntValue(ids[i])
		sv[i] = table.StrValue(vals[i])
	}
	require.NoError(t, tbl.AddColumn(&table.Column{Name: "year", Rep: table.Numeric(table.PrecisionInt), Values: yv}))
	require.NoError(t, tbl.AddColumn(&table.Column{Name: "seqn", Rep: table.Numeric(table.PrecisionInt), Values: iv}))
	require.NoError(t, tbl.AddColumn(&table.Column{Name: "v", Rep: table.Text(), Values: sv}))
	return tbl
}

func TestCompute_RowOrderIrrelevant(t *testing.T) {
	a := sampleTable(t, []int64{1999, 2001, 1999}, []int64{2, 1, 1}, []string{"b", "c", "a"})
	b := sampleTable(t, []int64{1999, 1999, 2001}, []int64{1, 2, 1}, []string{"a", "b", "c"})
	c := sampleTable(t, []int64{2001, 1999, 1999}, []int64{1, 2, 1}, []string{"c", "b", "a"})

	ha := Compute(a, "year", "seqn")
	assert.Equal(t, ha, Compute(b, "year", "seqn"))
	assert.Equal(t, ha, Compute(c, "year", "seqn"))
}

func TestCompute_TextKeyColumnStillCanonicalizes(t *testing.T) {
	textIDs := func(years []int64, ids, vals []string) *table.Table {
		tbl := table.New()
		yv := make([]table.Value, len(years))
		iv := make([]table.Value, len(ids))
		sv := make([]table.Value, len(vals))
		for i := range years {
			yv[i] = table.IntValue(years[i])
			iv[i] = table.StrValue(ids[i])
			sv[i] = table.StrValue(vals[i])
		}
		require.NoError(t, tbl.AddColumn(&table.Column{Name: "year", Rep: table.Numeric(table.PrecisionInt), Values: yv}))
		require.NoError(t, tbl.AddColumn(&table.Column{Name: "seqn", Rep: table.Text(), Values: iv}))
		require.NoError(t, tbl.AddColumn(&table.Column{Name: "v", Rep: table.Text(), Values: sv}))
		return tbl
	}

	a := textIDs([]int64{1999, 1999, 2001}, []string{"x2", "x1", "x1"}, []string{"b", "a", "c"})
	b := textIDs([]int64{1999, 2001, 1999}, []string{"x1", "x1", "x2"}, []string{"a", "c", "b"})

	assert.Equal(t, Compute(a, "year", "seqn"), Compute(b, "year", "seqn"))
}

func TestCompute_SingleCellChangesHash(t *testing.T) {
	a := sampleTable(t, []int64{1999, 2001}, []int64{1, 2}, []string{"a", "b"})
	b := sampleTable(t, []int64{1999, 2001}, []int64{1, 2}, []string{"a", "B"})

	assert.NotEqual(t, Compute(a, "year", "seqn"), Compute(b, "year", "seqn"))
}

func TestCompute_HeaderIsPartOfTheHash(t *testing.T) {
	a := sampleTable(t, []int64{1999}, []int64{1}, []string{"a"})
	b := a.Clone()
	b.Columns[2].Name = "renamed"

	assert.NotEqual(t, Compute(a, "year", "seqn"), Compute(b, "year", "seqn"))
}

func TestCompute_CellBoundariesUnambiguous(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not hash the same.
	a := sampleTable(t, []int64{1999}, []int64{1}, []string{"ab"})
	require.NoError(t, a.AddColumn(&table.Column{Name: "w", Rep: table.Text(), Values: []table.Value{table.StrValue("c")}}))
	b := sampleTable(t, []int64{1999}, []int64{1}, []string{"a"})
	require.NoError(t, b.AddColumn(&table.Column{Name: "w", Rep: table.Text(), Values: []table.Value{table.StrValue("bc")}}))

	assert.NotEqual(t, Compute(a, "year", "seqn"), Compute(b, "year", "seqn"))
}

func TestDetect(t *testing.T) {
	store := &Store{entries: map[string]string{}}
	tbl := sampleTable(t, []int64{1999}, []int64{1}, []string{"a"})

	status, sum, err := Detect(tbl, "demographics", "year", "seqn", store)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, status)
	require.NotEmpty(t, sum)

	store.Set("demographics", sum)
	status, _, err = Detect(tbl, "demographics", "year", "seqn", store)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, status)

	tbl.Column("v").Values[0] = table.StrValue("edited")
	status, _, err = Detect(tbl, "demographics", "year", "seqn", store)
	require.NoError(t, err)
	assert.Equal(t, StatusChanged, status)
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "checksums.txt")

	s, err := OpenStore(path)
	require.NoError(t, err)
	require.Zero(t, s.Len(), "missing file must read as empty")

	s.Set("bmx", "aaa")
	s.Set("demo", "bbb")
	require.NoError(t, s.Save())

	loaded, err := OpenStore(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	got, err := loaded.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, "bbb", got)
	assert.Equal(t, []string{"bmx", "demo"}, loaded.Names())
}

func TestStore_SavedSortedByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.txt")
	s, err := OpenStore(path)
	require.NoError(t, err)
	s.Set("zzz", "1")
	s.Set("aaa", "2")
	require.NoError(t, s.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aaa\t2\nzzz\t1\n", string(raw))
}

func TestOpenStore_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.txt")
	require.NoError(t, os.WriteFile(path, []byte("demo\tabc\nno-tab-here\n"), 0o644))

	_, err := OpenStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

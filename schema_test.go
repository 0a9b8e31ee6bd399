package soa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/testutil"
)

type Celsius float32

type sensor struct {
	Temp     Celsius
	Readings []uint16 `soa:"readings"`
	Rot      [2][2]float32
	Skipped  []string `soa:"-"`
	internal []int
}

func TestNewSchema(t *testing.T) {
	x := soa.ScalarField("x", func(d *testutil.Demo) float64 { return d.X })
	v := soa.VectorField("v", func(d *testutil.Demo) []int32 { return d.V })

	schema, err := soa.NewSchema[testutil.Demo](x, v)
	require.NoError(t, err)

	assert.Equal(t, 2, schema.Len())
	assert.Equal(t, []soa.Field{
		{Name: "x", Kind: soa.KindScalar, Elem: soa.Float64},
		{Name: "v", Kind: soa.KindVector, Elem: soa.Int32},
	}, schema.Fields())

	f, ok := schema.Field("v")
	require.True(t, ok)
	assert.Equal(t, "v vector<int32>", f.String())

	_, ok = schema.Field("m")
	assert.False(t, ok)
}

func TestNewSchemaErrors(t *testing.T) {
	get := func(d *testutil.Demo) float64 { return d.X }

	tests := []struct {
		name string
		cols func() []soa.Column[testutil.Demo]
	}{
		{"empty", func() []soa.Column[testutil.Demo] { return nil }},
		{"empty name", func() []soa.Column[testutil.Demo] {
			return []soa.Column[testutil.Demo]{soa.ScalarField("", get)}
		}},
		{"duplicate", func() []soa.Column[testutil.Demo] {
			return []soa.Column[testutil.Demo]{soa.ScalarField("x", get), soa.ScalarField("x", get)}
		}},
		{"nil accessor", func() []soa.Column[testutil.Demo] {
			return []soa.Column[testutil.Demo]{soa.VectorField[testutil.Demo, int32]("v", nil)}
		}},
		{"zero dim", func() []soa.Column[testutil.Demo] {
			return []soa.Column[testutil.Demo]{soa.MatrixField("m", 0, func(*testutil.Demo, int, int) int16 { return 0 })}
		}},
		{"nil column", func() []soa.Column[testutil.Demo] {
			return []soa.Column[testutil.Demo]{nil}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := soa.NewSchema(tt.cols()...)
			assert.ErrorIs(t, err, soa.ErrInvalidSchema)
		})
	}
}

func TestHandleBelongsToOneSchema(t *testing.T) {
	x := soa.ScalarField("x", func(d *testutil.Demo) float64 { return d.X })
	y := soa.ScalarField("y", func(d *testutil.Demo) float64 { return d.X })

	_, err := soa.NewSchema[testutil.Demo](x)
	require.NoError(t, err)

	_, err = soa.NewSchema[testutil.Demo](y, x)
	assert.ErrorIs(t, err, soa.ErrInvalidSchema)

	// y was not bound by the failed registration.
	_, err = soa.NewSchema[testutil.Demo](y)
	assert.NoError(t, err)
}

func TestReflect(t *testing.T) {
	schema, err := soa.Reflect[sensor]()
	require.NoError(t, err)

	assert.Equal(t, []soa.Field{
		{Name: "Temp", Kind: soa.KindScalar, Elem: soa.Float32},
		{Name: "readings", Kind: soa.KindVector, Elem: soa.Uint16},
		{Name: "Rot", Kind: soa.KindMatrix, Elem: soa.Float32, Dim: 2},
	}, schema.Fields())

	records := []sensor{
		{Temp: 21.5, Readings: []uint16{1, 2}, Rot: [2][2]float32{{1, 0}, {0, 1}}, internal: []int{7}},
		{Temp: -3, Rot: [2][2]float32{{0, -1}, {1, 0}}},
	}

	c, err := soa.New(context.Background(), schema, records, soa.WithAlignment(32))
	require.NoError(t, err)
	defer c.Close()

	temp, err := soa.ScalarOf[float32](schema, "Temp")
	require.NoError(t, err)
	readings, err := soa.VectorOf[uint16](schema, "readings")
	require.NoError(t, err)
	rot, err := soa.MatrixOf[float32](schema, "Rot")
	require.NoError(t, err)
	assert.Equal(t, 2, rot.Dim())

	v0, err := c.At(0)
	require.NoError(t, err)
	v1, err := c.At(1)
	require.NoError(t, err)

	assert.Equal(t, float32(21.5), temp.Get(v0))
	assert.Equal(t, float32(-3), temp.Get(v1))
	assert.Equal(t, []uint16{1, 2}, readings.Get(v0))
	assert.Empty(t, readings.Get(v1))
	assert.Equal(t, [][]float32{{0, -1}, {1, 0}}, rot.Get(v1).Rows())
}

func TestReflectLookupErrors(t *testing.T) {
	schema := soa.MustReflect[sensor]()

	_, err := soa.ScalarOf[float32](schema, "Missing")
	assert.ErrorIs(t, err, soa.ErrFieldNotFound)

	_, err = soa.ScalarOf[float64](schema, "Temp")
	assert.ErrorIs(t, err, soa.ErrFieldTypeMismatch)

	_, err = soa.VectorOf[uint16](schema, "Temp")
	assert.ErrorIs(t, err, soa.ErrFieldTypeMismatch)

	_, err = soa.MatrixOf[float32](schema, "readings")
	assert.ErrorIs(t, err, soa.ErrFieldTypeMismatch)
}

func TestReflectUnsupported(t *testing.T) {
	type nested struct{ V [][]int32 }
	type text struct{ S string }
	type table struct{ M map[string]int }
	type rect struct{ M [2][3]float32 }
	type flat struct{ A [4]float32 }
	type inner struct{ X int }
	type composite struct{ In inner }
	type strs struct{ S []string }

	check := func(t *testing.T, err error, field string) {
		t.Helper()
		require.Error(t, err)
		assert.ErrorIs(t, err, soa.ErrUnsupportedFieldType)
		var ufe *soa.UnsupportedFieldTypeError
		require.ErrorAs(t, err, &ufe)
		assert.Equal(t, field, ufe.Field)
	}

	_, err := soa.Reflect[nested]()
	check(t, err, "V")
	_, err = soa.Reflect[text]()
	check(t, err, "S")
	_, err = soa.Reflect[table]()
	check(t, err, "M")
	_, err = soa.Reflect[rect]()
	check(t, err, "M")
	_, err = soa.Reflect[flat]()
	check(t, err, "A")
	_, err = soa.Reflect[composite]()
	check(t, err, "In")
	_, err = soa.Reflect[strs]()
	check(t, err, "S")

	_, err = soa.Reflect[int]()
	assert.ErrorIs(t, err, soa.ErrUnsupportedFieldType)
}

func TestFromRecords(t *testing.T) {
	c, err := soa.FromRecords(context.Background(), testutil.DemoBatch(), soa.WithAlignment(64))
	require.NoError(t, err)
	defer c.Close()

	v, err := soa.VectorOf[int32](c.Schema(), "v")
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 11, 12, 13, 20, 30, 31}, v.Column(c))
	assert.Equal(t, 192, c.Layout().TotalBytes)
}

func TestFromRecordsNativeIntegers(t *testing.T) {
	type counts struct {
		X   int       `soa:"x"`
		V   []int     `soa:"v"`
		M   [2][2]int `soa:"m"`
		N   uint
		Ptr uintptr
	}
	records := []counts{
		{X: 0, V: []int{10, 11, 12, 13}, M: [2][2]int{{100, 101}, {102, 103}}, N: 1, Ptr: 0xff},
		{X: 1, V: []int{20}, M: [2][2]int{{200, 201}, {202, 203}}, N: 2},
		{X: 2, V: []int{30, 31}, M: [2][2]int{{300, 301}, {302, 303}}, N: 3},
	}

	c, err := soa.FromRecords(context.Background(), records, soa.WithAlignment(64))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []soa.Field{
		{Name: "x", Kind: soa.KindScalar, Elem: soa.Int},
		{Name: "v", Kind: soa.KindVector, Elem: soa.Int},
		{Name: "m", Kind: soa.KindMatrix, Elem: soa.Int, Dim: 2},
		{Name: "N", Kind: soa.KindScalar, Elem: soa.Uint},
		{Name: "Ptr", Kind: soa.KindScalar, Elem: soa.Uintptr},
	}, c.Fields())

	x, err := soa.ScalarOf[int](c.Schema(), "x")
	require.NoError(t, err)
	v, err := soa.VectorOf[int](c.Schema(), "v")
	require.NoError(t, err)
	m, err := soa.MatrixOf[int](c.Schema(), "m")
	require.NoError(t, err)
	n, err := soa.ScalarOf[uint](c.Schema(), "N")
	require.NoError(t, err)
	ptr, err := soa.ScalarOf[uintptr](c.Schema(), "Ptr")
	require.NoError(t, err)

	for i, rec := range records {
		view, err := c.At(i)
		require.NoError(t, err)

		assert.Equal(t, rec.X, x.Get(view))
		assert.Equal(t, rec.V, v.Get(view))
		assert.Equal(t, rec.N, n.Get(view))
		assert.Equal(t, rec.Ptr, ptr.Get(view))
		mv := m.Get(view)
		for row := range 2 {
			for col := range 2 {
				assert.Equal(t, rec.M[row][col], mv.At(row, col))
			}
		}
	}
	assert.Equal(t, []int{10, 11, 12, 13, 20, 30, 31}, v.Column(c))
}

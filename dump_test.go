package soa_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/codec"
	"github.com/hupe1980/soa/testutil"
)

func TestDump(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			_, ctr := buildDemo(t, soa.WithCodec(c))

			var buf bytes.Buffer
			for _, v := range ctr.All() {
				require.NoError(t, soa.Dump(&buf, v))
			}

			assert.Equal(t, strings.Join([]string{
				`{"x":0,"v":[10,11,12,13],"m":[[100,101],[102,103]]}`,
				`{"x":4,"v":[20],"m":[[200,201],[202,203]]}`,
				`{"x":8,"v":[30,31],"m":[[300,301],[302,303]]}`,
			}, "\n")+"\n", buf.String())
		})
	}
}

func TestDumpColumns(t *testing.T) {
	_, c := buildDemo(t)

	var buf bytes.Buffer
	require.NoError(t, c.DumpColumns(&buf))

	assert.Equal(t,
		`{"x":[0,4,8],"v":[10,11,12,13,20,30,31],"m":[100,200,300,101,201,301,102,202,302,103,203,303]}`+"\n",
		buf.String())
}

func TestDumpBytes(t *testing.T) {
	type pixel struct {
		Gray uint8
		Hist []uint8
	}
	c, err := soa.FromRecords(context.Background(), []pixel{{Gray: 7, Hist: []uint8{1, 2, 3}}}, soa.WithAlignment(16))
	require.NoError(t, err)
	defer c.Close()

	v, err := c.At(0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, soa.Dump(&buf, v))
	assert.Equal(t, `{"Gray":7,"Hist":[1,2,3]}`+"\n", buf.String())
}

func TestDumpAddr(t *testing.T) {
	f, c := buildDemo(t)

	v, err := c.At(1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, soa.DumpAddr(&buf, v))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `{"x":"0x`), out)
	assert.Contains(t, out, `"v":"0x`)
	assert.Contains(t, out, `"m":"0x`)
	assert.NotNil(t, f.x.Ref(v))
}

func TestDumpErrors(t *testing.T) {
	_, c := buildDemo(t)

	var buf bytes.Buffer
	assert.ErrorIs(t, soa.Dump(&buf, c.UncheckedAt(5)), soa.ErrOutOfRange)
	assert.ErrorIs(t, soa.DumpAddr(&buf, c.UncheckedAt(-1)), soa.ErrOutOfRange)

	missing, err := c.At(3)
	require.Error(t, err)
	assert.ErrorIs(t, soa.Dump(&buf, missing), soa.ErrOutOfRange)
	assert.ErrorIs(t, soa.DumpAddr(&buf, soa.View[testutil.Demo]{}), soa.ErrOutOfRange)

	v, err := c.At(0)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	assert.ErrorIs(t, soa.Dump(&buf, v), soa.ErrClosed)
	assert.ErrorIs(t, c.DumpColumns(&buf), soa.ErrClosed)
	assert.Empty(t, buf.String())
}

func TestLayoutReportJSON(t *testing.T) {
	_, c := buildDemo(t)

	out := codec.MustMarshal(nil, c.Layout())
	var decoded soa.LayoutReport
	require.NoError(t, codec.Default.Unmarshal(out, &decoded))

	assert.Contains(t, string(out), `"kind":"vector"`)
	assert.Contains(t, string(out), `"elem":"int16"`)
	assert.Contains(t, string(out), `"extents":[{"offset":0,"length":4}`)
	assert.Equal(t, 192, decoded.TotalBytes)
	assert.Equal(t, 2, decoded.Fields[2].Dim)
}

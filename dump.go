package soa

import (
	"bufio"
	"fmt"
	"io"
)

// Dump writes the fields of the viewed record to w as one JSON object with
// keys in field order, followed by a newline:
//
//	{"x":0,"v":[10,11,12,13],"m":[[100,101],[102,103]]}
//
// Dumps are diagnostic output encoded with the container's codec.
func Dump[R any](w io.Writer, v View[R]) error {
	c, err := v.checked()
	if err != nil {
		return err
	}
	return c.writeObject(w, func(k int) any {
		return jsonValue(c.schema.cols[k].value(&c.cols[k], c.n, v.i))
	})
}

// DumpAddr writes the address of the first element of every field of the
// viewed record as a JSON object of hex strings, followed by a newline.
func DumpAddr[R any](w io.Writer, v View[R]) error {
	c, err := v.checked()
	if err != nil {
		return err
	}
	return c.writeObject(w, func(k int) any {
		return fmt.Sprintf("%#x", c.schema.cols[k].addr(&c.cols[k], c.n, v.i))
	})
}

// checked returns the view's container if the view still addresses a record.
// The zero View addresses none.
func (v View[R]) checked() (*Container[R], error) {
	c := v.c
	if c == nil {
		return nil, &OutOfRangeError{Index: v.i}
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if v.i < 0 || v.i >= c.n {
		return nil, &OutOfRangeError{Index: v.i, Size: c.n}
	}
	return c, nil
}

// DumpColumns writes every dense field array, in storage order, as one JSON
// object followed by a newline.
func (c *Container[R]) DumpColumns(w io.Writer) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.writeObject(w, func(k int) any {
		return jsonValue(c.cols[k].data)
	})
}

func (c *Container[R]) writeObject(w io.Writer, value func(k int) any) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	for k, f := range c.schema.fields {
		if k > 0 {
			bw.WriteByte(',')
		}
		name, err := c.opts.codec.Marshal(f.Name)
		if err != nil {
			return err
		}
		val, err := c.opts.codec.Marshal(value(k))
		if err != nil {
			return fmt.Errorf("dump field %q: %w", f.Name, err)
		}
		bw.Write(name)
		bw.WriteByte(':')
		bw.Write(val)
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

// jsonValue widens byte slices so they encode as numbers instead of base64.
func jsonValue(v any) any {
	switch x := v.(type) {
	case []uint8:
		return widen(x)
	case [][]uint8:
		out := make([][]uint16, len(x))
		for i, row := range x {
			out[i] = widen(row)
		}
		return out
	default:
		return v
	}
}

func widen(b []uint8) []uint16 {
	out := make([]uint16, len(b))
	for i, x := range b {
		out[i] = uint16(x)
	}
	return out
}

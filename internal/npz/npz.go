// Package npz reads and writes numpy .npz archives: uncompressed zip files
// holding one .npy member per named array. Numeric members go through npyio;
// unicode string scalars have a small codec of their own since npyio only
// handles numeric dtypes.
package npz

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sbinet/npyio"
)

// Writer packs named arrays into an .npz archive. Members are stored
// uncompressed with zeroed timestamps, so identical inputs produce a byte
// identical archive.
type Writer struct {
	zw *zip.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

func (w *Writer) member(name string) (io.Writer, error) {
	hdr := &zip.FileHeader{
		Name:   name + ".npy",
		Method: zip.Store,
	}
	mw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("create member %s: %w", name, err)
	}
	return mw, nil
}

// WriteFloat64s stores vals as a 1-d float64 array under name.
func (w *Writer) WriteFloat64s(name string, vals []float64) error {
	mw, err := w.member(name)
	if err != nil {
		return err
	}
	if err := npyio.Write(mw, vals); err != nil {
		return fmt.Errorf("encode member %s: %w", name, err)
	}
	return nil
}

// WriteInt64 stores v as a 0-d int64 scalar under name.
func (w *Writer) WriteInt64(name string, v int64) error {
	mw, err := w.member(name)
	if err != nil {
		return err
	}
	if err := npyio.Write(mw, v); err != nil {
		return fmt.Errorf("encode member %s: %w", name, err)
	}
	return nil
}

// WriteString stores s as a 0-d unicode scalar under name.
func (w *Writer) WriteString(name string, s string) error {
	mw, err := w.member(name)
	if err != nil {
		return err
	}
	if err := writeStringScalar(mw, s); err != nil {
		return fmt.Errorf("encode member %s: %w", name, err)
	}
	return nil
}

// Close finishes the archive. The underlying writer stays open.
func (w *Writer) Close() error {
	return w.zw.Close()
}

// Reader reads members back from an .npz archive.
type Reader struct {
	zr      *zip.ReadCloser
	members map[string]*zip.File
}

// Open opens the archive at path.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open npz archive %s: %w", path, err)
	}
	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[strings.TrimSuffix(f.Name, ".npy")] = f
	}
	return &Reader{zr: zr, members: members}, nil
}

// Keys lists the member names in sorted order, without the .npy suffix.
func (r *Reader) Keys() []string {
	keys := make([]string, 0, len(r.members))
	for k := range r.members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the archive holds a member called name.
func (r *Reader) Has(name string) bool {
	_, ok := r.members[name]
	return ok
}

func (r *Reader) open(name string) (io.ReadCloser, error) {
	f, ok := r.members[name]
	if !ok {
		return nil, fmt.Errorf("archive has no member %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member %s: %w", name, err)
	}
	return rc, nil
}

// Float64s reads the member called name as a float64 array.
func (r *Reader) Float64s(name string) ([]float64, error) {
	rc, err := r.open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var vals []float64
	if err := npyio.Read(rc, &vals); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", name, err)
	}
	return vals, nil
}

// Int64 reads the member called name as an integer scalar. Both '<i8' and
// the '<i4' numpy writes on some platforms are accepted.
func (r *Reader) Int64(name string) (int64, error) {
	rc, err := r.open(name)
	if err != nil {
		return 0, err
	}
	var v int64
	readErr := npyio.Read(rc, &v)
	rc.Close()
	if readErr == nil {
		return v, nil
	}

	rc, err = r.open(name)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	var v32 int32
	if err := npyio.Read(rc, &v32); err != nil {
		return 0, fmt.Errorf("decode member %s: %w", name, readErr)
	}
	return int64(v32), nil
}

// String reads the member called name as a unicode string scalar.
func (r *Reader) String(name string) (string, error) {
	rc, err := r.open(name)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	s, err := readStringScalar(rc)
	if err != nil {
		return "", fmt.Errorf("decode member %s: %w", name, err)
	}
	return s, nil
}

// Close closes the archive.
func (r *Reader) Close() error {
	return r.zr.Close()
}

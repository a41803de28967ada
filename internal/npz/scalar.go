package npz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// numpy stores str values as 0-d arrays of dtype '<U<n>': a fixed run of n
// UTF-32 little-endian code points. These two functions speak just enough of
// the .npy format for the metadata members numpy's savez would produce.

const npyMagic = "\x93NUMPY"

func writeStringScalar(w io.Writer, s string) error {
	runes := []rune(s)
	if len(runes) == 0 {
		return fmt.Errorf("empty string scalar")
	}
	header := fmt.Sprintf("{'descr': '<U%d', 'fortran_order': False, 'shape': (), }", len(runes))

	// Space-pad so magic, version, header length and header together fill a
	// multiple of 64 bytes, newline terminated.
	preamble := len(npyMagic) + 2 + 2
	pad := (64 - (preamble+len(header)+1)%64) % 64
	header += strings.Repeat(" ", pad) + "\n"

	buf := new(bytes.Buffer)
	buf.WriteString(npyMagic)
	buf.WriteByte(1)
	buf.WriteByte(0)
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	buf.WriteString(header)
	for _, r := range runes {
		if err := binary.Write(buf, binary.LittleEndian, uint32(r)); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var unicodeDescrRe = regexp.MustCompile(`'descr':\s*'[<>|=]?U(\d+)'`)

func readStringScalar(r io.Reader) (string, error) {
	head := make([]byte, 8)
	if _, err := io.ReadFull(r, head); err != nil {
		return "", fmt.Errorf("read npy preamble: %w", err)
	}
	if string(head[:len(npyMagic)]) != npyMagic {
		return "", fmt.Errorf("not an npy payload")
	}

	var headerLen int
	switch major := head[6]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		headerLen = int(n)
	default:
		return "", fmt.Errorf("unsupported npy version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", fmt.Errorf("read npy header: %w", err)
	}
	m := unicodeDescrRe.FindSubmatch(header)
	if m == nil {
		return "", fmt.Errorf("not a unicode scalar: %s", strings.TrimSpace(string(header)))
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return "", err
	}

	raw := make([]byte, 4*n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("read unicode payload: %w", err)
	}
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = rune(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	// numpy NUL-pads short strings to the declared width.
	return strings.TrimRight(string(runes), "\x00"), nil
}

package agent

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/EkenoSamson/MsPacman/features"
)

var (
	ErrTableNotFound = errors.New("q-table not found")
	ErrDecode        = errors.New("q-table deserialization failed")
)

// On-disk layout, little endian:
//
//	magic   "QTBL"
//	header  version u16, arity u8, actions u16, count u32
//	entries count x (arity x i32 key, actions x f64 values)
const (
	tableMagic   = "QTBL"
	tableVersion = 1
)

type tableHeader struct {
	Version uint16
	Arity   uint8
	Actions uint16
	Count   uint32
}

var order = binary.LittleEndian

func WriteTable(w io.Writer, t *QTable) error {
	if t.numActions > math.MaxUint16 {
		return fmt.Errorf("action space size %d does not fit the table format", t.numActions)
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(tableMagic); err != nil {
		return err
	}
	hdr := tableHeader{
		Version: tableVersion,
		Arity:   features.NumFeatures,
		Actions: uint16(t.numActions),
		Count:   uint32(t.Len()),
	}
	if err := binary.Write(bw, order, hdr); err != nil {
		return err
	}

	var key [features.NumFeatures]int32
	for _, k := range t.Keys() {
		for i, v := range k {
			if v < 0 || v > math.MaxInt32 {
				return fmt.Errorf("state %v: component %d does not fit the table format", k, i)
			}
			key[i] = int32(v)
		}
		if err := binary.Write(bw, order, key); err != nil {
			return err
		}
		if err := binary.Write(bw, order, t.values[k]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTable decodes a table whose vectors must have numActions entries.
func ReadTable(r io.Reader, numActions int) (*QTable, error) {
	br := bufio.NewReader(r)

	var magic [len(tableMagic)]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %v", ErrDecode, err)
	}
	if string(magic[:]) != tableMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrDecode, magic[:])
	}

	var hdr tableHeader
	if err := binary.Read(br, order, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrDecode, err)
	}
	switch {
	case hdr.Version != tableVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecode, hdr.Version)
	case hdr.Arity != features.NumFeatures:
		return nil, fmt.Errorf("%w: state arity %d, want %d", ErrDecode, hdr.Arity, features.NumFeatures)
	case int(hdr.Actions) != numActions:
		return nil, fmt.Errorf("%w: vectors have %d actions, want %d", ErrDecode, hdr.Actions, numActions)
	}

	t := NewQTable(numActions)
	var key [features.NumFeatures]int32
	for i := uint32(0); i < hdr.Count; i++ {
		if err := binary.Read(br, order, &key); err != nil {
			return nil, fmt.Errorf("%w: entry %d key: %v", ErrDecode, i, err)
		}
		var s features.StateKey
		for j, v := range key {
			if v < 0 {
				return nil, fmt.Errorf("%w: entry %d has negative component %d", ErrDecode, i, v)
			}
			s[j] = int(v)
		}
		if _, dup := t.values[s]; dup {
			return nil, fmt.Errorf("%w: duplicate state %v", ErrDecode, s)
		}
		q := make([]float64, numActions)
		if err := binary.Read(br, order, q); err != nil {
			return nil, fmt.Errorf("%w: entry %d values: %v", ErrDecode, i, err)
		}
		t.values[s] = q
	}

	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after %d entries", ErrDecode, hdr.Count)
	}
	return t, nil
}

// WriteFile stores t at path, replacing any existing file atomically.
func WriteFile(path string, t *QTable) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".qtable-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = WriteTable(tmp, t); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ReadFile(path string, numActions int) (*QTable, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrTableNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f, numActions)
}

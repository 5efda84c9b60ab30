package vsa

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store file layout, little-endian throughout:
//
//	magic "PVS1" (4 bytes)
//	kindLen uint16, kind bytes
//	dims uint32
//	count uint32
//	count entries of: keyLen uint32, key bytes, vector values
//
// Kind and dims are recorded once per store, not per entry. Writes go to a
// temp file in the target directory and are renamed into place, so a crash
// mid-write never leaves a partial store and writing one store cannot
// corrupt another.
const storeMagic = "PVS1"

// WriteStore persists s to path. Parent directories are created if needed.
func WriteStore(path string, s *Store) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := bufio.NewWriter(tmp)
	if err := writeHeader(w, s); err != nil {
		return err
	}
	err = s.Each(func(key string, v Vector) error {
		keyBytes := []byte(key)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(keyBytes))); err != nil {
			return fmt.Errorf("write key length: %w", err)
		}
		if _, err := w.Write(keyBytes); err != nil {
			return fmt.Errorf("write key: %w", err)
		}
		return v.WriteValues(w)
	})
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename store into place: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, s *Store) error {
	if _, err := w.Write([]byte(storeMagic)); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	kind := []byte(s.kind)
	if err := binary.Write(w, binary.LittleEndian, uint16(len(kind))); err != nil {
		return fmt.Errorf("write kind length: %w", err)
	}
	if _, err := w.Write(kind); err != nil {
		return fmt.Errorf("write kind: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(s.dims)); err != nil {
		return fmt.Errorf("write dims: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(s.Len())); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	return nil
}

// ReadStore loads a store written by WriteStore.
func ReadStore(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()
	return readStore(bufio.NewReader(f))
}

func readStore(r io.Reader) (*Store, error) {
	magic := make([]byte, len(storeMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != storeMagic {
		return nil, fmt.Errorf("not a vector store file (magic %q)", magic)
	}
	var kindLen uint16
	if err := binary.Read(r, binary.LittleEndian, &kindLen); err != nil {
		return nil, fmt.Errorf("read kind length: %w", err)
	}
	kindBytes := make([]byte, kindLen)
	if _, err := io.ReadFull(r, kindBytes); err != nil {
		return nil, fmt.Errorf("read kind: %w", err)
	}
	kind, err := ParseKind(string(kindBytes))
	if err != nil {
		return nil, err
	}
	var dims, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read dims: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}

	s := NewStore(kind, int(dims))
	for i := uint32(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
			return nil, fmt.Errorf("read key length: %w", err)
		}
		keyBytes := make([]byte, keyLen)
		if _, err := io.ReadFull(r, keyBytes); err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		v, err := ReadValues(kind, int(dims), r)
		if err != nil {
			return nil, err
		}
		s.Put(string(keyBytes), v)
	}
	return s, nil
}

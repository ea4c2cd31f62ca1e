package csr

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Magic is the 4-byte "FRGE" header magic number identifying the
// persisted CSR binary format.
const Magic uint32 = 0x46524745

// Version is the current schema version written by Save.
const Version uint32 = 1

// Save writes snap to w in the byte-exact little-endian binary format:
// a fixed header, the four parallel CSR arrays, and the node id table
// as 7-bit-varint-length-prefixed UTF-8 strings.
func Save(w io.Writer, snap *Snapshot) error {
	bw := bufio.NewWriter(w)

	header := [4]uint32{Magic, Version, uint32(snap.NodeCount()), uint32(snap.EdgeCount())}
	for _, h := range header {
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return fmt.Errorf("csr: write header: %w", err)
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, snap.RowPtr); err != nil {
		return fmt.Errorf("csr: write row_ptr: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, snap.ColIdx); err != nil {
		return fmt.Errorf("csr: write col_idx: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, snap.Weights); err != nil {
		return fmt.Errorf("csr: write weights: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, snap.LastModified); err != nil {
		return fmt.Errorf("csr: write last_modified: %w", err)
	}
	for _, id := range snap.IndexToID {
		if err := writeVarString(bw, id); err != nil {
			return fmt.Errorf("csr: write id table: %w", err)
		}
	}
	return bw.Flush()
}

// Load reads a Snapshot from r in the format written by Save. Fails with
// ErrInvalidMagic or ErrUnsupportedVersion on header mismatch.
func Load(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)

	var magic, version, nodeCount, edgeCount uint32
	for _, dst := range []*uint32{&magic, &version, &nodeCount, &edgeCount} {
		if err := binary.Read(br, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("csr: read header: %w", err)
		}
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08X", ErrInvalidMagic, magic)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, version)
	}

	rowPtr := make([]int32, nodeCount+1)
	if err := binary.Read(br, binary.LittleEndian, rowPtr); err != nil {
		return nil, fmt.Errorf("csr: read row_ptr: %w", err)
	}
	colIdx := make([]int32, edgeCount)
	if err := binary.Read(br, binary.LittleEndian, colIdx); err != nil {
		return nil, fmt.Errorf("csr: read col_idx: %w", err)
	}
	weights := make([]float32, edgeCount)
	if err := binary.Read(br, binary.LittleEndian, weights); err != nil {
		return nil, fmt.Errorf("csr: read weights: %w", err)
	}
	lastModified := make([]int64, edgeCount)
	if err := binary.Read(br, binary.LittleEndian, lastModified); err != nil {
		return nil, fmt.Errorf("csr: read last_modified: %w", err)
	}

	indexToID := make([]string, nodeCount)
	idToIndex := make(map[string]int32, nodeCount)
	for i := range indexToID {
		id, err := readVarString(br)
		if err != nil {
			return nil, fmt.Errorf("csr: read id table: %w", err)
		}
		indexToID[i] = id
		idToIndex[id] = int32(i)
	}

	return &Snapshot{
		RowPtr:       rowPtr,
		ColIdx:       colIdx,
		Weights:      weights,
		LastModified: lastModified,
		IDToIndex:    idToIndex,
		IndexToID:    indexToID,
	}, nil
}

// SaveFile writes snap to path atomically: it writes to a temp file in
// the same directory and renames over the destination, so a concurrent
// reader never observes a partially-written snapshot.
func SaveFile(path string, snap *Snapshot) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".csr-*.tmp")
	if err != nil {
		return fmt.Errorf("csr: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Save(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csr: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("csr: rename into place: %w", err)
	}
	return nil
}

// LoadFile reads a Snapshot previously written by SaveFile.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csr: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func writeVarString(w io.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readVarString(r io.ByteReader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		buf[i] = b
	}
	return string(buf), nil
}

func writeUvarint(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

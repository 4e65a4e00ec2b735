package processor

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// ArtifactMagic prefixes every artifact so a foreign file is rejected before
// any decompression is attempted.
const ArtifactMagic = "WQA1"

// WriteArtifact combines two stages:
// 1. JSON encoding of v
// 2. snappy framed compression (CompressArtifact)
func WriteArtifact(w io.Writer, v interface{}) error {
	if _, err := io.WriteString(w, ArtifactMagic); err != nil {
		return errors.Wrap(err, "write artifact header")
	}

	zw := CompressArtifact(w)
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return errors.Wrap(err, "encode artifact")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "flush artifact")
	}
	return nil
}

// ReadArtifact reverses WriteArtifact into v.
func ReadArtifact(r io.Reader, v interface{}) error {
	br := bufio.NewReader(r)
	header := make([]byte, len(ArtifactMagic))
	if _, err := io.ReadFull(br, header); err != nil {
		return errors.Wrap(err, "read artifact header")
	}
	if string(header) != ArtifactMagic {
		return errors.Errorf("unexpected artifact header %q", header)
	}

	dec := json.NewDecoder(DecompressArtifact(br))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode artifact")
	}
	return nil
}

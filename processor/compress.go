package processor

import (
	"io"

	"github.com/golang/snappy"
)

// CompressArtifact wraps w in the snappy framing format. Every chunk carries
// a CRC-32C, so a truncated or corrupted artifact fails on read instead of
// decoding into a wrong model.
func CompressArtifact(w io.Writer) *snappy.Writer {
	return snappy.NewBufferedWriter(w)
}

func DecompressArtifact(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}

// Package sums computes content digests of archived files and of whole serialized archives.
package sums

import (
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"

	"github.com/aurora-is-near/tarcodec/src/tarcodec"
)

// Sum is the digest of a single regular file.
type Sum struct {
	Name   string
	Digest digest.Digest
}

func checkAlgorithm(alg digest.Algorithm) error {
	if !alg.Available() {
		return errors.Errorf("digest algorithm %q unavailable", alg)
	}
	return nil
}

// EntryDigests returns the digest of every regular file in a, in archive order.
func EntryDigests(a *tarcodec.Archive, alg digest.Algorithm) ([]Sum, error) {
	if err := checkAlgorithm(alg); err != nil {
		return nil, err
	}
	var out []Sum
	for _, e := range a.Entries() {
		if e.Stat.Type != tarcodec.TypeFile {
			continue
		}
		rc, err := e.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "entry %q", e.Name)
		}
		d, err := alg.FromReader(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "entry %q", e.Name)
		}
		out = append(out, Sum{Name: e.Name, Digest: d})
	}
	return out, nil
}

// WriteSums writes one "<hex>  <name>" line per sum, the format sha256sum understands.
func WriteSums(w io.Writer, sums []Sum) error {
	for _, s := range sums {
		if _, err := fmt.Fprintf(w, "%s  %s\n", s.Digest.Encoded(), s.Name); err != nil {
			return err
		}
	}
	return nil
}

// ReadSHA256 streams the tar archive r and writes a sha256sum line for every regular file to w.
// Read options select the files.
func ReadSHA256(r io.Reader, w io.Writer, opts ...tarcodec.Option) error {
	return tarcodec.ReadFunc(r, func(e *tarcodec.Entry) error {
		if e.Stat.Type != tarcodec.TypeFile {
			return nil
		}
		b, err := e.Bytes()
		if err != nil {
			return err
		}
		return WriteSums(w, []Sum{{Name: e.Name, Digest: digest.SHA256.FromBytes(b)}})
	}, opts...)
}

// ArchiveDigest serializes a with the write options opts and returns the digest of the stream.
// Equal digests mean byte-identical archives.
func ArchiveDigest(a *tarcodec.Archive, alg digest.Algorithm, opts ...tarcodec.Option) (digest.Digest, error) {
	if err := checkAlgorithm(alg); err != nil {
		return "", err
	}
	digester := alg.Digester()
	if _, err := a.Write(digester.Hash(), opts...); err != nil {
		return "", err
	}
	return digester.Digest(), nil
}

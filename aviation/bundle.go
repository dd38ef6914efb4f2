// aviation/bundle.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Bundles are zstd-compressed msgpack encodings of a Dataset; they're the
// format procedure data is distributed in (".msgpack.zst").

const BundleVersion = 1

type bundle struct {
	Version int      `msgpack:"version"`
	Dataset *Dataset `msgpack:"dataset"`
}

func WriteBundle(w io.Writer, ds *Dataset) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(bundle{Version: BundleVersion, Dataset: ds}); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func ReadBundle(r io.Reader) (*Dataset, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var b bundle
	if err := msgpack.NewDecoder(zr).Decode(&b); err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("bundle version %d: %w", b.Version, ErrBundleVersion)
	}
	if b.Dataset == nil {
		return NewDataset(), nil
	}
	if b.Dataset.Waypoints == nil {
		b.Dataset.Waypoints = make(map[string]Waypoint)
	}
	return b.Dataset, nil
}

func LoadBundle(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := ReadBundle(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func SaveBundle(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteBundle(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

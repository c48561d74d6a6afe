package catalog

import (
	"io"

	"github.com/2x3systems/nlce/nlce"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const exportMagic = "nlce-catalog"

// Export writes every record of this catalog as a zstd compressed stream:
//
//	magic, record count, [key, value]...
func (cat *Store) Export(w io.Writer) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if err := cat.flushState(); err != nil {
		return err
	}

	body := proto.NewBuffer(nil)
	count := uint64(0)
	err := cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			body.EncodeRawBytes(item.Key())
			err := item.Value(func(val []byte) error {
				return body.EncodeRawBytes(val)
			})
			if err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "export")
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	header := proto.NewBuffer(nil)
	header.EncodeStringBytes(exportMagic)
	header.EncodeVarint(count)
	if _, err = enc.Write(header.Bytes()); err == nil {
		_, err = enc.Write(body.Bytes())
	}
	if closeErr := enc.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Import reads a stream written by Export into this (empty) catalog.
func (cat *Store) Import(r io.Reader) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.readOnly {
		return nlce.ErrCatalogReadOnly
	}
	if cat.state.NumLevels > 0 {
		return errors.Wrap(nlce.ErrBadCatalogParam, "import requires an empty catalog")
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(dec)
	dec.Close()
	if err != nil {
		return errors.Wrap(err, "import")
	}

	buf := proto.NewBuffer(data)
	magic, err := buf.DecodeStringBytes()
	if err != nil || magic != exportMagic {
		return errors.Wrap(nlce.ErrUnmarshal, "not a catalog export")
	}
	count, err := buf.DecodeVarint()
	if err != nil {
		return errors.Wrap(nlce.ErrUnmarshal, err.Error())
	}

	wb := cat.db.NewWriteBatch()
	for i := uint64(0); i < count; i++ {
		key, err := buf.DecodeRawBytes(true)
		if err == nil {
			var val []byte
			val, err = buf.DecodeRawBytes(true)
			if err == nil {
				err = wb.Set(key, val)
			}
		}
		if err != nil {
			wb.Cancel()
			return errors.Wrapf(err, "import record %d", i)
		}
	}
	if err = wb.Flush(); err != nil {
		return errors.Wrap(err, "import")
	}

	cat.stateDirty = false
	return cat.loadState()
}

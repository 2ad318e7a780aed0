package zarr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TuSKan/zarr-divider/internal/logging"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Writer stores a Zarr v2 array into a blob bucket.
type Writer struct {
	bucket *blob.Bucket
	meta   *Metadata
	owned  bool

	// SkipEmptyChunks leaves all-zero chunks unwritten. Readers treat a
	// missing chunk as fill value, so FillValue must be 0 for this to hold.
	SkipEmptyChunks bool
}

// Create validates meta and writes it as .zarray at the root of bucket.
func Create(ctx context.Context, bucket *blob.Bucket, meta *Metadata) (*Writer, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := bucket.WriteAll(ctx, MetadataKey, data, nil); err != nil {
		return nil, fmt.Errorf("failed to write .zarray: %w", err)
	}
	return &Writer{bucket: bucket, meta: meta}, nil
}

// CreateURL opens the bucket at url (file://, s3://, ...) and creates the
// array at its root. The returned Writer owns the bucket.
func CreateURL(ctx context.Context, url string, meta *Metadata) (*Writer, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	w, err := Create(ctx, bucket, meta)
	if err != nil {
		bucket.Close()
		return nil, err
	}
	w.owned = true
	return w, nil
}

// WriteFull splits data, a flat C-order buffer covering the whole array,
// into chunks and stores them. It returns the number of chunks written.
func (w *Writer) WriteFull(ctx context.Context, data []byte) (int, error) {
	return w.WriteRegion(ctx, make([]int, len(w.meta.Shape)), w.meta.Shape, data)
}

// WriteRegion stores data, a flat C-order buffer of the given shape, at
// start. Chunks only partly covered by the region are read, merged and
// rewritten. It returns the number of chunks written.
func (w *Writer) WriteRegion(ctx context.Context, start, shape []int, data []byte) (int, error) {
	if len(start) != len(w.meta.Shape) || len(shape) != len(w.meta.Shape) {
		return 0, fmt.Errorf("start and shape must match array dimensionality")
	}
	for i := range w.meta.Shape {
		if start[i] < 0 || shape[i] < 0 || start[i]+shape[i] > w.meta.Shape[i] {
			return 0, fmt.Errorf("region out of bounds at dimension %d", i)
		}
	}
	itemSize, err := w.meta.ItemSize()
	if err != nil {
		return 0, fmt.Errorf("invalid dtype: %w", err)
	}
	if want := product(shape) * itemSize; len(data) != want {
		return 0, fmt.Errorf("buffer has %d bytes, region needs %d", len(data), want)
	}

	if len(w.meta.Shape) == 0 {
		return w.writeChunk(ctx, []int{}, data)
	}
	if len(data) == 0 {
		return 0, nil
	}

	minChunk := make([]int, len(start))
	maxChunk := make([]int, len(start))
	for i := range start {
		minChunk[i] = start[i] / w.meta.Chunks[i]
		maxChunk[i] = (start[i]+shape[i]-1)/w.meta.Chunks[i] + 1
	}
	srcStrides := strides(shape)
	chunkStrides := strides(w.meta.Chunks)
	chunkBytes := product(w.meta.Chunks) * itemSize
	reader := &Reader{bucket: w.bucket, meta: w.meta}

	written := 0
	err = iterateGrid(minChunk, maxChunk, func(coords []int) error {
		chunkStart, chunkExtent := chunkBounds(w.meta, coords)
		copyShape := make([]int, len(coords))
		srcOffset := make([]int, len(coords))
		dstOffset := make([]int, len(coords))
		covered := true
		for i := range coords {
			intersectStart := max(chunkStart[i], start[i])
			intersectEnd := min(chunkStart[i]+chunkExtent[i], start[i]+shape[i])
			copyShape[i] = intersectEnd - intersectStart
			srcOffset[i] = intersectStart - start[i]
			dstOffset[i] = intersectStart - chunkStart[i]
			if copyShape[i] != chunkExtent[i] {
				covered = false
			}
		}

		var buf []byte
		if covered {
			buf = make([]byte, chunkBytes)
		} else {
			existing, err := reader.ReadChunk(ctx, coords)
			if err != nil {
				return err
			}
			buf = existing
		}
		copyND(buf, chunkStrides, dstOffset, data, srcStrides, srcOffset, copyShape, itemSize)

		n, err := w.writeChunk(ctx, coords, buf)
		written += n
		return err
	})
	return written, err
}

func (w *Writer) writeChunk(ctx context.Context, coords []int, raw []byte) (int, error) {
	key := ChunkKey(coords, w.meta.Separator())
	if w.SkipEmptyChunks && allZero(raw) {
		// a chunk stored by an earlier region write must not outlive its data
		if err := w.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			return 0, fmt.Errorf("failed to delete chunk %s: %w", key, err)
		}
		logging.Tracef("skip empty chunk %s", key)
		return 0, nil
	}
	encoded, err := Compress(w.meta.Compressor, raw)
	if err != nil {
		return 0, fmt.Errorf("failed to compress chunk %s: %w", key, err)
	}
	if err := w.bucket.WriteAll(ctx, key, encoded, nil); err != nil {
		return 0, fmt.Errorf("failed to write chunk %s: %w", key, err)
	}
	logging.Tracef("wrote chunk %s (%d -> %d bytes)", key, len(raw), len(encoded))
	return 1, nil
}

// Metadata returns the array metadata.
func (w *Writer) Metadata() *Metadata {
	return w.meta
}

// Close closes the bucket when the Writer opened it.
func (w *Writer) Close() error {
	if !w.owned {
		return nil
	}
	return w.bucket.Close()
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

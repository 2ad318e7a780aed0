package zarr

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Reader reads a Zarr v2 array stored in a blob bucket.
type Reader struct {
	bucket *blob.Bucket
	meta   *Metadata
	owned  bool
}

// NewReader opens the bucket at url (file://, mem://, s3://, ...) and loads
// its .zarray metadata. The returned Reader owns the bucket.
func NewReader(ctx context.Context, url string) (*Reader, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	r, err := NewBucketReader(ctx, bucket)
	if err != nil {
		bucket.Close()
		return nil, err
	}
	r.owned = true
	return r, nil
}

// NewBucketReader reads the array rooted at bucket. Close leaves the bucket open.
func NewBucketReader(ctx context.Context, bucket *blob.Bucket) (*Reader, error) {
	reader, err := bucket.NewReader(ctx, MetadataKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open .zarray: %w", err)
	}
	defer reader.Close()

	meta, err := LoadMetadata(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	return &Reader{bucket: bucket, meta: meta}, nil
}

// ReadFull reads the entire Zarr array into a flat C-order byte slice.
func (r *Reader) ReadFull(ctx context.Context) ([]byte, error) {
	if len(r.meta.Shape) == 0 {
		return r.ReadChunk(ctx, []int{})
	}
	start := make([]int, len(r.meta.Shape))
	return r.ReadRegion(ctx, start, r.meta.Shape)
}

// ReadChunk reads a single chunk from the Zarr array given its coordinates.
// A missing chunk is returned zero-filled.
func (r *Reader) ReadChunk(ctx context.Context, coords []int) ([]byte, error) {
	itemSize, err := r.meta.ItemSize()
	if err != nil {
		return nil, fmt.Errorf("invalid dtype: %w", err)
	}
	expected := product(r.meta.Chunks) * itemSize
	key := ChunkKey(coords, r.meta.Separator())

	reader, err := r.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return make([]byte, expected), nil
		}
		return nil, fmt.Errorf("failed to open chunk %s: %w", key, err)
	}
	defer reader.Close()

	chunkData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk %s: %w", key, err)
	}

	chunkData, err = Decompress(r.meta.Compressor, chunkData)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress chunk %s: %w", key, err)
	}
	if len(chunkData) != expected {
		return nil, fmt.Errorf("chunk %s has %d bytes, expected %d", key, len(chunkData), expected)
	}
	return chunkData, nil
}

// ReadRegion reads an N-dimensional region of the Zarr array.
func (r *Reader) ReadRegion(ctx context.Context, start, shape []int) ([]byte, error) {
	if len(start) != len(r.meta.Shape) || len(shape) != len(r.meta.Shape) {
		return nil, fmt.Errorf("start and shape must match array dimensionality")
	}
	for i := range r.meta.Shape {
		if start[i] < 0 || shape[i] < 0 || start[i]+shape[i] > r.meta.Shape[i] {
			return nil, fmt.Errorf("region out of bounds at dimension %d", i)
		}
	}

	itemSize, err := r.meta.ItemSize()
	if err != nil {
		return nil, fmt.Errorf("invalid dtype: %w", err)
	}
	out := make([]byte, product(shape)*itemSize)
	if len(out) == 0 {
		return out, nil
	}

	minChunk := make([]int, len(start))
	maxChunk := make([]int, len(start))
	for i := range start {
		minChunk[i] = start[i] / r.meta.Chunks[i]
		maxChunk[i] = (start[i]+shape[i]-1)/r.meta.Chunks[i] + 1
	}

	dstStrides := strides(shape)
	chunkStrides := strides(r.meta.Chunks)

	err = iterateGrid(minChunk, maxChunk, func(chunkCoords []int) error {
		chunkData, err := r.ReadChunk(ctx, chunkCoords)
		if err != nil {
			return err
		}

		chunkStart, chunkExtent := chunkBounds(r.meta, chunkCoords)
		copyShape := make([]int, len(r.meta.Shape))
		srcOffset := make([]int, len(r.meta.Shape))
		dstOffset := make([]int, len(r.meta.Shape))
		for i := range r.meta.Shape {
			intersectStart := max(chunkStart[i], start[i])
			intersectEnd := min(chunkStart[i]+chunkExtent[i], start[i]+shape[i])
			if intersectStart >= intersectEnd {
				return nil
			}
			copyShape[i] = intersectEnd - intersectStart
			srcOffset[i] = intersectStart - chunkStart[i]
			dstOffset[i] = intersectStart - start[i]
		}

		copyND(out, dstStrides, dstOffset, chunkData, chunkStrides, srcOffset, copyShape, itemSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// copyND recursively copies n-dimensional data from src to dst.
func copyND(
	dst []byte, dstStrides, dstOffset []int,
	src []byte, srcStrides, srcOffset []int,
	copyShape []int, itemSize int,
) {
	if len(copyShape) == 0 {
		copy(dst[:itemSize], src[:itemSize])
		return
	}

	startSrcIdx := 0
	startDstIdx := 0
	for i := range copyShape {
		startSrcIdx += srcOffset[i] * srcStrides[i]
		startDstIdx += dstOffset[i] * dstStrides[i]
	}

	last := len(copyShape) - 1
	var iterate func(dim int, srcIdx, dstIdx int)
	iterate = func(dim int, srcIdx, dstIdx int) {
		if dim == last {
			// innermost dimension is contiguous in C order on both sides
			byteLen := copyShape[dim] * itemSize
			copy(dst[dstIdx*itemSize:dstIdx*itemSize+byteLen], src[srcIdx*itemSize:srcIdx*itemSize+byteLen])
			return
		}
		for i := 0; i < copyShape[dim]; i++ {
			iterate(dim+1, srcIdx+i*srcStrides[dim], dstIdx+i*dstStrides[dim])
		}
	}
	iterate(0, startSrcIdx, startDstIdx)
}

// Metadata returns the array metadata.
func (r *Reader) Metadata() *Metadata {
	return r.meta
}

// Close closes the reader and, when it opened it, the bucket.
func (r *Reader) Close() error {
	if !r.owned {
		return nil
	}
	return r.bucket.Close()
}

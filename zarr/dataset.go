package zarr

import (
	"context"
	"fmt"
	"io"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Dataset reads a Zarr array in batches along its first axis (time frames
// for a T,Z,Y,X volume).
type Dataset struct {
	reader       *Reader
	CurrentIndex int
}

// NewDataset opens the array at url for batched reading.
func NewDataset(ctx context.Context, url string) (*Dataset, error) {
	reader, err := NewReader(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(reader.Metadata().Shape) == 0 {
		reader.Close()
		return nil, fmt.Errorf("cannot batch a 0-d array")
	}
	return &Dataset{reader: reader}, nil
}

// NextBatch reads up to batchSize entries of the first axis as a tensor.
// Returns io.EOF if there is no more data.
func (d *Dataset) NextBatch(ctx context.Context, batchSize int) (*tensors.Tensor, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	meta := d.reader.Metadata()
	if d.CurrentIndex >= meta.Shape[0] {
		return nil, io.EOF
	}

	start := make([]int, len(meta.Shape))
	start[0] = d.CurrentIndex
	batchShape := append([]int(nil), meta.Shape...)
	batchShape[0] = min(batchSize, meta.Shape[0]-d.CurrentIndex)

	raw, err := d.reader.ReadRegion(ctx, start, batchShape)
	if err != nil {
		return nil, err
	}
	t, err := DecodeTensor(meta.DType, batchShape, raw)
	if err != nil {
		return nil, err
	}
	d.CurrentIndex += batchShape[0]
	return t, nil
}

// Metadata returns the array metadata.
func (d *Dataset) Metadata() *Metadata {
	return d.reader.Metadata()
}

// Close releases the underlying bucket.
func (d *Dataset) Close() error {
	return d.reader.Close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/TuSKan/zarr-divider/config"
	"github.com/TuSKan/zarr-divider/divide"
	"github.com/TuSKan/zarr-divider/internal/logging"
	"github.com/TuSKan/zarr-divider/viewer"
	"github.com/TuSKan/zarr-divider/zarr"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

type options struct {
	Input  string
	Output string
	Name   string
	Splits string
}

// run reads the source array, divides it through a viewer.Divider and
// writes every produced layer as its own array under the output bucket.
// With output.batchFrames set the source is streamed instead.
func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	name := opts.Name
	if name == "" {
		name = layerName(opts.Input)
	}
	outputURL := opts.Output
	if outputURL == "" {
		outputURL = parentURL(opts.Input)
	}

	reader, err := zarr.NewReader(ctx, opts.Input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.Input, err)
	}
	defer reader.Close()

	meta := reader.Metadata()
	if len(meta.Shape) != divide.Rank {
		return &divide.ShapeError{Shape: meta.Shape, Reason: fmt.Sprintf("expected %d dimensions (T, Z, Y, X), got %d", divide.Rank, len(meta.Shape))}
	}

	compressor, err := zarr.NewCompressorConfig(cfg.Output.Compressor)
	if err != nil {
		return err
	}
	target := layerTarget{url: outputURL, src: meta, compressor: compressor, skipEmpty: cfg.Output.SkipEmptyChunks}

	if cfg.Output.BatchFrames > 0 {
		if zarr.TensorSupported(meta.DType) {
			return stream(ctx, cfg, opts, name, target, stdout)
		}
		logging.Diagf("dtype %s cannot be streamed, reading %s whole", meta.DType, name)
	}

	data, err := reader.ReadFull(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.Input, err)
	}
	vol, err := divide.NewVolume(meta.Shape, meta.DType, data)
	if err != nil {
		return err
	}
	logging.Diagf("read %s shape=%v dtype=%s chunks=%v", name, meta.Shape, meta.DType, meta.Chunks)

	layers := viewer.NewLayerList()
	var persistErr error
	layers.Subscribe(func(ev viewer.Event) {
		if ev.Kind != viewer.Inserted || ev.Layer.Source == "" {
			return
		}
		persistErr = errors.Join(persistErr, target.persist(ctx, ev.Layer))
	})

	source := &viewer.Layer{Name: name, Volume: vol, Visible: true, Colormap: "gray", Opacity: 1}
	if err := layers.Add(source); err != nil {
		return err
	}

	d := viewer.NewDivider(layers)
	defer d.Close()
	d.HideSource = cfg.Divide.HideSource
	d.SetSplitText(opts.Splits)
	d.SetIncludeBoundaries(cfg.Divide.IncludeBoundaries)

	created, err := d.Split()
	if err != nil {
		return err
	}
	if persistErr != nil {
		return persistErr
	}

	for _, layer := range created {
		s, err := divide.Describe(layer.Volume)
		if err != nil {
			// the layer is written; only its summary is missing
			logging.Diagf("no statistics for %s: %v", layer.Name, err)
			fmt.Fprintf(stdout, "%s\tdepth %s\n", layer.Name, layer.Range)
			continue
		}
		fmt.Fprintf(stdout, "%s\tdepth %s\tmin %g\tmax %g\tmean %g\n", layer.Name, layer.Range, s.Min, s.Max, s.Mean)
	}
	return nil
}

// stream divides the source batchFrames time frames at a time and writes
// each batch into the matching region of every layer. Splits are checked
// before any layer is created.
func stream(ctx context.Context, cfg *config.Config, opts options, name string, target layerTarget, stdout io.Writer) error {
	depth := target.src.Shape[divide.DepthAxis]
	include := cfg.Divide.IncludeBoundaries

	splits, err := divide.ParseSplits(opts.Splits)
	if err != nil {
		return &viewer.ValidationError{Msg: "invalid split positions", Err: err}
	}
	if err := divide.ValidateSplits(splits, depth); err != nil {
		return &viewer.ValidationError{Msg: "invalid split positions", Err: err}
	}
	ranges, err := divide.Ranges(depth, splits, include)
	if err != nil {
		return err
	}

	ds, err := zarr.NewDataset(ctx, opts.Input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.Input, err)
	}
	defer ds.Close()

	names := make([]string, len(ranges))
	writers := make([]*zarr.Writer, len(ranges))
	for i, r := range ranges {
		names[i] = viewer.DefaultName(name, i+1, r)
		if writers[i], err = target.create(ctx, names[i], target.src.Shape, target.src.DType); err != nil {
			return err
		}
		defer writers[i].Close()
	}

	written := make([]int, len(ranges))
	for {
		frame := ds.CurrentIndex
		batch, err := ds.NextBatch(ctx, cfg.Output.BatchFrames)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.Input, err)
		}
		parts, err := divide.PartitionTensor(batch, splits, include)
		if err != nil {
			return err
		}
		for i, part := range parts {
			_, shape, raw, err := zarr.EncodeTensor(part)
			if err != nil {
				return err
			}
			n, err := writers[i].WriteRegion(ctx, []int{frame, 0, 0, 0}, shape, raw)
			if err != nil {
				return fmt.Errorf("failed to write layer %s: %w", names[i], err)
			}
			written[i] += n
		}
		logging.Diagf("divided %s frames [%d, %d)", name, frame, ds.CurrentIndex)
	}

	for i, r := range ranges {
		logging.Opsf("wrote layer %s (%d chunks)", names[i], written[i])
		fmt.Fprintf(stdout, "%s\tdepth %s\n", names[i], r)
	}
	logging.Opsf("split %s at [%s] into %d layers (boundaries=%v)", name, divide.FormatSplits(splits), len(ranges), include)
	return nil
}

// layerTarget writes layers as Zarr arrays under <name>/ of the output
// URL, reusing the source chunking.
type layerTarget struct {
	url        string
	src        *zarr.Metadata
	compressor *zarr.CompressorConfig
	skipEmpty  bool
}

// create opens a Writer owning its own bucket; the caller closes it.
func (lt layerTarget) create(ctx context.Context, name string, shape []int, dtype string) (*zarr.Writer, error) {
	w, err := zarr.CreateURL(ctx, storeURL(lt.url, name+"/"), &zarr.Metadata{
		ZarrFormat:         2,
		Shape:              shape,
		Chunks:             lt.src.Chunks,
		DType:              dtype,
		Compressor:         lt.compressor,
		FillValue:          0,
		Order:              "C",
		DimensionSeparator: lt.src.DimensionSeparator,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create layer %s: %w", name, err)
	}
	w.SkipEmptyChunks = lt.skipEmpty
	return w, nil
}

func (lt layerTarget) persist(ctx context.Context, layer *viewer.Layer) error {
	w, err := lt.create(ctx, layer.Name, layer.Volume.Shape, layer.Volume.DType)
	if err != nil {
		return err
	}
	defer w.Close()

	n, err := w.WriteFull(ctx, layer.Volume.Data)
	if err != nil {
		return fmt.Errorf("failed to write layer %s: %w", layer.Name, err)
	}
	logging.Opsf("wrote layer %s (%d chunks)", layer.Name, n)
	return nil
}

// storeURL points rawURL at keys under prefix. file:// buckets are also
// kept from writing an .attrs sidecar next to every object, which Zarr
// readers would see as stray keys.
func storeURL(rawURL, prefix string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if u.Scheme == "file" && !q.Has("metadata") {
		q.Set("metadata", "skip")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// layerName derives a layer name from the last path element of a bucket
// URL, dropping a ".zarr" suffix.
func layerName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		p = path.Join(u.Host, u.Path)
	}
	base := strings.TrimSuffix(path.Base(p), ".zarr")
	if base == "" || base == "." || base == "/" {
		return "image"
	}
	return base
}

// parentURL returns rawURL with its last path element removed.
func parentURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	u.Path = path.Dir(strings.TrimRight(u.Path, "/"))
	return u.String()
}

package eval

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/tensor"
)

// Sentinel errors for reference execution.
var (
	// ErrMissingFeed indicates a declared input node with no entry in the
	// feeds mapping.
	// Usage: if errors.Is(err, ErrMissingFeed) { /* supply the feed */ }.
	ErrMissingFeed = errors.New("eval: no feed for declared input")

	// ErrShapeMismatch indicates incompatible operand shapes: unequal Add
	// or Concat operands, or a reflect-pad whose source already exceeds
	// its target.
	ErrShapeMismatch = errors.New("eval: operand shapes are incompatible")

	// ErrUnsupportedOp indicates a node outside the 2-D reference set
	// (any 3-D node, conv_lstm, conv_gru).
	ErrUnsupportedOp = errors.New("eval: operator not supported by the reference executor")
)

const methodRun = "Run"

// Run executes g over the given input feeds and returns every node's
// value keyed by node name. Nodes are computed once each, in emission
// order; the graph records a topological order, so inputs are always
// ready.
//
// Complexity: O(nodes · H · W · C · k²) time.
func Run(g *graph.Graph, feeds map[string]*tensor.Dense) (map[string]*tensor.Dense, error) {
	nodes := g.Nodes()
	values := make([]*tensor.Dense, len(nodes))
	out := make(map[string]*tensor.Dense, len(nodes))

	for _, n := range nodes {
		args := make([]*tensor.Dense, 0, n.NumInputs())
		for _, in := range n.Inputs() {
			args = append(args, values[in.ID()])
		}

		v, err := apply(n, args, feeds)
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", methodRun, n.Name(), err)
		}
		values[n.ID()] = v
		out[n.Name()] = v
	}

	return out, nil
}

// apply computes one node's value from its already-computed inputs.
func apply(n *graph.Node, args []*tensor.Dense, feeds map[string]*tensor.Dense) (*tensor.Dense, error) {
	attrs := n.Attrs()
	if attrs.NDim == graph.NDim3 || n.Op() == graph.OpConvLSTM || n.Op() == graph.OpConvGRU {
		return nil, fmt.Errorf("%s: %w", n.Op(), ErrUnsupportedOp)
	}

	switch n.Op() {
	case graph.OpInput:
		v, ok := feeds[n.Name()]
		if !ok {
			return nil, ErrMissingFeed
		}
		return v, nil
	case graph.OpConv:
		return conv(args[0], attrs.Kernel, attrs.Stride, attrs.Filters), nil
	case graph.OpDepthwiseConv:
		return depthwiseConv(args[0], attrs.Kernel, attrs.Stride), nil
	case graph.OpConvTranspose:
		return convTranspose(args[0], attrs.Stride, attrs.Filters), nil
	case graph.OpBatchNorm:
		return batchNorm(args[0]), nil
	case graph.OpReLU:
		return relu(args[0]), nil
	case graph.OpAdd:
		return add(args)
	case graph.OpConcat:
		return concat(args)
	case graph.OpResize:
		h, w, _ := args[1].Shape()
		return resample(args[0], h, w, attrs.Interp), nil
	case graph.OpUpsample:
		h, w, _ := args[0].Shape()
		return resample(args[0], h*attrs.Scale, w*attrs.Scale, attrs.Interp), nil
	case graph.OpMaxPool:
		return maxPool(args[0], attrs.Kernel, attrs.Stride), nil
	case graph.OpReflectPad:
		return reflectPad(args[0], args[1])
	default:
		return nil, fmt.Errorf("%s: %w", n.Op(), ErrUnsupportedOp)
	}
}

// conv applies a same-padded box-filter convolution: every tap weighs
// 1/(k·k·Cin), out-of-bounds taps contribute zero, and every output
// channel carries the identical filtered plane. filters 0 preserves the
// input channel count.
func conv(in *tensor.Dense, kernel, stride, filters int) *tensor.Dense {
	h, w, c := in.Shape()
	outH, outW := ceilDiv(h, stride), ceilDiv(w, stride)
	outC := filters
	if outC == 0 {
		outC = c
	}
	padTop, padLeft := samePad(h, outH, kernel, stride), samePad(w, outW, kernel, stride)
	weight := 1 / float64(kernel*kernel*c)

	out, _ := tensor.NewDense(outH, outW, outC)
	for r := 0; r < outH; r++ {
		for col := 0; col < outW; col++ {
			var sum float64
			for kr := 0; kr < kernel; kr++ {
				for kc := 0; kc < kernel; kc++ {
					sr, sc := r*stride-padTop+kr, col*stride-padLeft+kc
					if sr < 0 || sr >= h || sc < 0 || sc >= w {
						continue
					}
					for ch := 0; ch < c; ch++ {
						sum += in.At(sr, sc, ch) * weight
					}
				}
			}
			for ch := 0; ch < outC; ch++ {
				out.Set(r, col, ch, sum)
			}
		}
	}

	return out
}

// depthwiseConv applies the same-padded box filter per channel: taps
// weigh 1/(k·k) and channels never mix.
func depthwiseConv(in *tensor.Dense, kernel, stride int) *tensor.Dense {
	h, w, c := in.Shape()
	outH, outW := ceilDiv(h, stride), ceilDiv(w, stride)
	padTop, padLeft := samePad(h, outH, kernel, stride), samePad(w, outW, kernel, stride)
	weight := 1 / float64(kernel*kernel)

	out, _ := tensor.NewDense(outH, outW, c)
	for ch := 0; ch < c; ch++ {
		for r := 0; r < outH; r++ {
			for col := 0; col < outW; col++ {
				var sum float64
				for kr := 0; kr < kernel; kr++ {
					for kc := 0; kc < kernel; kc++ {
						sr, sc := r*stride-padTop+kr, col*stride-padLeft+kc
						if sr < 0 || sr >= h || sc < 0 || sc >= w {
							continue
						}
						sum += in.At(sr, sc, ch) * weight
					}
				}
				out.Set(r, col, ch, sum)
			}
		}
	}

	return out
}

// convTranspose expands spatial extent by stride (same-padding transpose
// arithmetic: out = in·stride), replicating each source sample over its
// stride×stride footprint. Channels are averaged into each of filters
// identical output planes; filters 0 preserves the input count.
func convTranspose(in *tensor.Dense, stride, filters int) *tensor.Dense {
	h, w, c := in.Shape()
	outC := filters
	if outC == 0 {
		outC = c
	}

	out, _ := tensor.NewDense(h*stride, w*stride, outC)
	for r := 0; r < h*stride; r++ {
		for col := 0; col < w*stride; col++ {
			var sum float64
			for ch := 0; ch < c; ch++ {
				sum += in.At(r/stride, col/stride, ch)
			}
			mean := sum / float64(c)
			for ch := 0; ch < outC; ch++ {
				out.Set(r, col, ch, mean)
			}
		}
	}

	return out
}

// batchNorm standardizes each channel to zero mean and unit variance.
// A constant channel maps to zeros.
func batchNorm(in *tensor.Dense) *tensor.Dense {
	h, w, c := in.Shape()
	out, _ := tensor.NewDense(h, w, c)
	buf := make([]float64, h*w)

	for ch := 0; ch < c; ch++ {
		i := 0
		for r := 0; r < h; r++ {
			for col := 0; col < w; col++ {
				buf[i] = in.At(r, col, ch)
				i++
			}
		}
		mean := stat.Mean(buf, nil)
		std := stat.StdDev(buf, nil)
		if std == 0 || math.IsNaN(std) {
			continue
		}
		for r := 0; r < h; r++ {
			for col := 0; col < w; col++ {
				out.Set(r, col, ch, (in.At(r, col, ch)-mean)/std)
			}
		}
	}

	return out
}

// relu clamps negative elements to zero.
func relu(in *tensor.Dense) *tensor.Dense {
	h, w, c := in.Shape()
	out, _ := tensor.NewDense(h, w, c)
	for ch := 0; ch < c; ch++ {
		for r := 0; r < h; r++ {
			for col := 0; col < w; col++ {
				out.Set(r, col, ch, math.Max(0, in.At(r, col, ch)))
			}
		}
	}

	return out
}

// add sums its operands element-wise; all shapes must be identical.
func add(args []*tensor.Dense) (*tensor.Dense, error) {
	h, w, c := args[0].Shape()
	for _, a := range args[1:] {
		if !args[0].EqualShape(a) {
			ah, aw, ac := a.Shape()
			return nil, fmt.Errorf("add %dx%dx%d with %dx%dx%d: %w", h, w, c, ah, aw, ac, ErrShapeMismatch)
		}
	}

	out, _ := tensor.NewDense(h, w, c)
	for _, a := range args {
		for ch := 0; ch < c; ch++ {
			for r := 0; r < h; r++ {
				for col := 0; col < w; col++ {
					out.Set(r, col, ch, out.At(r, col, ch)+a.At(r, col, ch))
				}
			}
		}
	}

	return out, nil
}

// concat stacks its operands along the channel axis; spatial shapes
// must agree.
func concat(args []*tensor.Dense) (*tensor.Dense, error) {
	h, w, _ := args[0].Shape()
	total := 0
	for _, a := range args {
		ah, aw, ac := a.Shape()
		if ah != h || aw != w {
			return nil, fmt.Errorf("concat %dx%d with %dx%d: %w", h, w, ah, aw, ErrShapeMismatch)
		}
		total += ac
	}

	out, _ := tensor.NewDense(h, w, total)
	base := 0
	for _, a := range args {
		_, _, ac := a.Shape()
		for ch := 0; ch < ac; ch++ {
			for r := 0; r < h; r++ {
				for col := 0; col < w; col++ {
					out.Set(r, col, base+ch, a.At(r, col, ch))
				}
			}
		}
		base += ac
	}

	return out, nil
}

// resample maps in to the target spatial extent using half-pixel
// coordinate mapping with the requested interpolation.
func resample(in *tensor.Dense, outH, outW int, interp graph.Interp) *tensor.Dense {
	h, w, c := in.Shape()
	out, _ := tensor.NewDense(outH, outW, c)
	scaleR := float64(h) / float64(outH)
	scaleC := float64(w) / float64(outW)

	for r := 0; r < outH; r++ {
		srcR := (float64(r)+0.5)*scaleR - 0.5
		for col := 0; col < outW; col++ {
			srcC := (float64(col)+0.5)*scaleC - 0.5
			for ch := 0; ch < c; ch++ {
				var v float64
				if interp == graph.Nearest {
					v = in.At(clampInt(int(math.Round(srcR)), h), clampInt(int(math.Round(srcC)), w), ch)
				} else {
					v = bilinear(in, srcR, srcC, ch)
				}
				out.Set(r, col, ch, v)
			}
		}
	}

	return out
}

// bilinear samples channel ch of in at fractional coordinates (r, c)
// with edge clamping.
func bilinear(in *tensor.Dense, r, c float64, ch int) float64 {
	h, w, _ := in.Shape()
	r0 := clampInt(int(math.Floor(r)), h)
	c0 := clampInt(int(math.Floor(c)), w)
	r1 := clampInt(r0+1, h)
	c1 := clampInt(c0+1, w)
	fr := math.Min(math.Max(r-float64(r0), 0), 1)
	fc := math.Min(math.Max(c-float64(c0), 0), 1)

	top := in.At(r0, c0, ch)*(1-fc) + in.At(r0, c1, ch)*fc
	bottom := in.At(r1, c0, ch)*(1-fc) + in.At(r1, c1, ch)*fc

	return top*(1-fr) + bottom*fr
}

// maxPool downsamples with a valid-padded k×k window at the given
// stride; partial windows at the far edges are dropped.
func maxPool(in *tensor.Dense, kernel, stride int) *tensor.Dense {
	h, w, c := in.Shape()
	outH := (h-kernel)/stride + 1
	outW := (w-kernel)/stride + 1

	out, _ := tensor.NewDense(outH, outW, c)
	for ch := 0; ch < c; ch++ {
		for r := 0; r < outH; r++ {
			for col := 0; col < outW; col++ {
				best := math.Inf(-1)
				for kr := 0; kr < kernel; kr++ {
					for kc := 0; kc < kernel; kc++ {
						best = math.Max(best, in.At(r*stride+kr, col*stride+kc, ch))
					}
				}
				out.Set(r, col, ch, best)
			}
		}
	}

	return out
}

// reflectPad grows in to the spatial extent of target by reflecting
// interior rows and columns across the bottom and right edges.
// Returns ErrShapeMismatch when in exceeds the target on either axis or
// the channel counts differ.
func reflectPad(in, target *tensor.Dense) (*tensor.Dense, error) {
	h, w, c := in.Shape()
	th, tw, tc := target.Shape()
	if th < h || tw < w || tc != c {
		return nil, fmt.Errorf("reflect_pad %dx%dx%d to %dx%dx%d: %w", h, w, c, th, tw, tc, ErrShapeMismatch)
	}

	out, _ := tensor.NewDense(th, tw, c)
	for ch := 0; ch < c; ch++ {
		for r := 0; r < th; r++ {
			for col := 0; col < tw; col++ {
				out.Set(r, col, ch, in.At(reflectIndex(r, h), reflectIndex(col, w), ch))
			}
		}
	}

	return out, nil
}

// reflectIndex maps i into [0, n) by reflecting across the last sample
// without repeating it (i = n gives n-2). Degenerate single-sample axes
// always map to 0.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i >= n {
		i = period - i
	}

	return i
}

// samePad returns the leading pad that centers a same-padded window.
func samePad(in, out, kernel, stride int) int {
	total := (out-1)*stride + kernel - in
	if total < 0 {
		total = 0
	}

	return total / 2
}

// ceilDiv returns ⌈a/b⌉ for positive operands.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// clampInt limits i to [0, n).
func clampInt(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}

	return i
}

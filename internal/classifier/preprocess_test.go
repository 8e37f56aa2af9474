package classifier

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformImage(c color.Color, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFlattenRGB(t *testing.T) {
	req := require.New(t)

	t.Run("composites transparency over white", func(t *testing.T) {
		src := uniformImage(color.NRGBA{R: 0, G: 0, B: 0, A: 0}, 4, 4)

		flat := flattenRGB(src)
		r, g, b, a := flat.At(2, 2).RGBA()
		req.Equal(uint32(0xffff), r)
		req.Equal(uint32(0xffff), g)
		req.Equal(uint32(0xffff), b)
		req.Equal(uint32(0xffff), a)
	})

	t.Run("keeps opaque pixels", func(t *testing.T) {
		src := uniformImage(color.NRGBA{R: 255, G: 0, B: 0, A: 255}, 4, 4)

		flat := flattenRGB(src)
		r, g, b, _ := flat.At(0, 0).RGBA()
		req.Equal(uint32(0xffff), r)
		req.Equal(uint32(0), g)
		req.Equal(uint32(0), b)
	})

	t.Run("expands grayscale to three equal channels", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 4, 4))
		for i := range src.Pix {
			src.Pix[i] = 77
		}

		flat := flattenRGB(src)
		r, g, b, _ := flat.At(1, 1).RGBA()
		req.Equal(r, g)
		req.Equal(g, b)
	})
}

func TestTensorize(t *testing.T) {
	req := require.New(t)

	mean := [3]float32{0.5, 0.5, 0.5}
	std := [3]float32{0.5, 0.5, 0.5}

	t.Run("lays planes out channel-first", func(t *testing.T) {
		// A constant image stays constant through resampling, so every
		// entry of a plane must equal that channel's normalized value.
		src := uniformImage(color.NRGBA{R: 255, G: 128, B: 0, A: 255}, 8, 8)

		size := 4
		data := tensorize(src, size, mean, std)
		req.Len(data, 3*size*size)

		// Channel values normalize as (v - 0.5) / 0.5 with v in [0, 1];
		// 8-bit 128 scales to 16-bit as 128*257.
		plane := size * size
		wantR := float32(1.0)
		wantG := (float32(128*257)/65535.0 - 0.5) / 0.5
		wantB := float32(-1.0)

		for i := 0; i < plane; i++ {
			req.InDelta(wantR, data[i], 0.02)
			req.InDelta(wantG, data[plane+i], 0.02)
			req.InDelta(wantB, data[2*plane+i], 0.02)
		}
	})

	t.Run("applies per-channel normalization", func(t *testing.T) {
		src := uniformImage(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, 4, 4)

		data := tensorize(src, 2, [3]float32{0.1, 0.2, 0.3}, [3]float32{0.5, 0.25, 0.1})
		req.InDelta((1.0-0.1)/0.5, float64(data[0]), 0.02)
		req.InDelta((1.0-0.2)/0.25, float64(data[4]), 0.02)
		req.InDelta((1.0-0.3)/0.1, float64(data[8]), 0.05)
	})

	t.Run("is deterministic for fixed input", func(t *testing.T) {
		src := uniformImage(color.NRGBA{R: 10, G: 200, B: 30, A: 255}, 16, 16)

		first := tensorize(src, 8, mean, std)
		second := tensorize(src, 8, mean, std)
		req.Equal(first, second)
	})

	t.Run("transparent input becomes white after flattening", func(t *testing.T) {
		src := uniformImage(color.NRGBA{R: 12, G: 34, B: 56, A: 0}, 8, 8)

		data := tensorize(flattenRGB(src), 4, mean, std)
		for _, v := range data {
			req.InDelta(1.0, float64(v), 0.02)
		}
	})
}

package classifier

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

// flattenRGB converts any decoded image to opaque 8-bit RGB. Sources
// with a transparency channel are composited over a white background;
// grayscale sources come out with three equal channels. The model input
// is always 3-channel regardless of what the upload supplied.
func flattenRGB(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}

// tensorize resizes img to the model's square input edge and lays the
// pixels out as a 1×3×size×size NCHW buffer, normalizing each channel
// as (v - mean) / std with v scaled to [0, 1].
func tensorize(img image.Image, size int, mean, std [3]float32) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	plane := size * size
	data := make([]float32, 3*plane)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()

			idx := y*size + x
			data[idx] = (float32(r)/65535.0 - mean[0]) / std[0]
			data[plane+idx] = (float32(g)/65535.0 - mean[1]) / std[1]
			data[2*plane+idx] = (float32(b)/65535.0 - mean[2]) / std[2]
		}
	}

	return data
}

package mask

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mrsinham/roiforge/internal/roi"
)

// MNI152 2mm grid extent in the axial plane.
const (
	gridX = 91
	gridY = 109
	// Each grid cell is rendered as a scale×scale pixel block.
	previewScale = 4
	voxelSizeMM  = 2.0
)

// PreviewPath names the QC preview image for a request.
func PreviewPath(req roi.Request) string {
	art := Paths(req)
	return strings.TrimSuffix(art.Sphere, "_mask.nii.gz") + "_preview.png"
}

// WritePreview renders an axial cross-section schematic of the sphere at the
// request's voxel coordinate and writes it next to the masks. The image is a
// QC aid only; rendering is geometric and does not read the mask files.
func WritePreview(req roi.Request) (string, error) {
	vx, vy, _, err := req.Voxel.Ints()
	if err != nil {
		return "", fmt.Errorf("preview voxel coordinate: %w", err)
	}

	width := gridX * previewScale
	height := gridY * previewScale
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	radiusVox := float64(req.RadiusMM) / voxelSizeMM
	for y := 0; y < gridY; y++ {
		for x := 0; x < gridX; x++ {
			d := math.Hypot(float64(x-vx), float64(y-vy))
			var c color.RGBA
			switch {
			case d < 0.5:
				c = color.RGBA{255, 255, 255, 255}
			case d <= radiusVox:
				// Fade with distance to suggest the graded sphere.
				v := uint8(220 - 140*(d/radiusVox))
				c = color.RGBA{v, v / 4, v / 4, 255}
			default:
				c = color.RGBA{24, 24, 24, 255}
			}
			fillCell(img, x, y, c)
		}
	}

	drawLabel(img, width, fmt.Sprintf("%s %dmm", roi.AbbreviateRegion(req.Region), req.RadiusMM))

	path := PreviewPath(req)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

func fillCell(img *image.RGBA, x, y int, c color.RGBA) {
	for dy := 0; dy < previewScale; dy++ {
		for dx := 0; dx < previewScale; dx++ {
			img.SetRGBA(x*previewScale+dx, y*previewScale+dy, c)
		}
	}
}

// drawLabel renders the caption at the top of the image, scaled up from the
// base bitmap font so it stays readable at preview size.
func drawLabel(img *image.RGBA, width int, text string) {
	face := basicfont.Face7x13
	baseWidth := font.MeasureString(face, text).Ceil()
	baseHeight := 13

	textImg := image.NewRGBA(image.Rect(0, 0, baseWidth, baseHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(baseHeight - 2)},
	}
	drawer.DrawString(text)

	scale := 2.0
	if scaled := float64(width) * 0.8 / float64(baseWidth); scaled < scale {
		scale = scaled
	}
	scaledWidth := int(float64(baseWidth) * scale)
	scaledHeight := int(float64(baseHeight) * scale)

	dst := image.Rect((width-scaledWidth)/2, 4, (width-scaledWidth)/2+scaledWidth, 4+scaledHeight)
	draw.BiLinear.Scale(img, dst, textImg, textImg.Bounds(), draw.Over, nil)
}

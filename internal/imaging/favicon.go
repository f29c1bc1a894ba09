package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)

const (
	Size16    = 16
	Size32    = 32
	SizeApple = 180

	// MaxSourceSide 解碼前檢查, 避免小檔案宣告極大尺寸
	MaxSourceSide = 4096
)

// FaviconSet 各尺寸的 PNG 與合併 16/32 的 ICO
type FaviconSet struct {
	ICO   []byte
	PNG32 []byte
	PNG16 []byte
	Apple []byte
}

// Config 只讀取圖片尺寸
func Config(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return cfg, format, nil
}

// Favicons 從原始圖片產生全部尺寸, 任一邊超過 MaxSourceSide 直接拒絕
func Favicons(ctx context.Context, data []byte) (*FaviconSet, error) {
	cfg, _, err := Config(data)
	if err != nil {
		return nil, err
	}
	if cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	set := &FaviconSet{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		set.PNG16, err = encodePNG(Square(src, Size16))
		return
	})
	g.Go(func() (err error) {
		set.PNG32, err = encodePNG(Square(src, Size32))
		return
	})
	g.Go(func() (err error) {
		set.Apple, err = encodePNG(Square(src, SizeApple))
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set.ICO, err = EncodeICO(
		icoImage{size: Size16, png: set.PNG16},
		icoImage{size: Size32, png: set.PNG32},
	)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Square 等比縮放後置中於透明正方形
func Square(src image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}
	tw, th := size, size
	if w > h {
		th = max(1, h*size/w)
	} else if h > w {
		tw = max(1, w*size/h)
	}
	x0 := (size - tw) / 2
	y0 := (size - th) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+tw, y0+th), src, b, draw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type icoImage struct {
	size int
	png  []byte
}

type icoHeader struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type icoDirEntry struct {
	Width      uint8
	Height     uint8
	ColorCount uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

// EncodeICO 以 PNG 內嵌的方式組成 ICO
func EncodeICO(images ...icoImage) ([]byte, error) {
	if len(images) == 0 {
		return nil, errors.New("ico needs at least one image")
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, icoHeader{Type: 1, Count: uint16(len(images))}); err != nil {
		return nil, err
	}
	offset := 6 + 16*len(images)
	for _, img := range images {
		if img.size <= 0 || img.size > 256 {
			return nil, fmt.Errorf("ico size %d out of range", img.size)
		}
		entry := icoDirEntry{
			Width:      uint8(img.size % 256),
			Height:     uint8(img.size % 256),
			Planes:     1,
			BitCount:   32,
			BytesInRes: uint32(len(img.png)),
			Offset:     uint32(offset),
		}
		if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
			return nil, err
		}
		offset += len(img.png)
	}
	for _, img := range images {
		buf.Write(img.png)
	}
	return buf.Bytes(), nil
}

package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/imaging"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/rs/zerolog"
)

const brandingDir = "branding"

var allowedImageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true, ".svg": true, ".ico": true,
}

type IBrandingService interface {
	Get(ctx context.Context) (*model.SiteBranding, error)
	FaviconTags(ctx context.Context) ([]string, error)
	URL(name string) string
	UpdateSettings(ctx context.Context, in BrandingSettings) (*model.SiteBranding, error)
	UploadLogo(ctx context.Context, filename string, data []byte) (*model.SiteBranding, error)
	UploadFavicon(ctx context.Context, filename string, data []byte) (*model.SiteBranding, error)
}

// BrandingSettings nil 代表不修改
type BrandingSettings struct {
	LogoAltText    *string
	LogoMaxWidth   *int
	LogoLinkTarget *string
}

type BrandingService struct {
	store   db.UnifiedDB
	storage storage.Storage
	logger  *zerolog.Logger
}

var _ IBrandingService = (*BrandingService)(nil)

func NewBrandingService(store db.UnifiedDB, st storage.Storage, logger *zerolog.Logger) *BrandingService {
	return &BrandingService{store: store, storage: st, logger: logger}
}

// Get 第一次讀取時建立預設值
func (s *BrandingService) Get(ctx context.Context) (*model.SiteBranding, error) {
	return s.store.GetBranding(ctx)
}

func (s *BrandingService) URL(name string) string {
	return s.storage.URL(name)
}

func (s *BrandingService) FaviconTags(ctx context.Context) ([]string, error) {
	b, err := s.store.GetBranding(ctx)
	if err != nil {
		return nil, err
	}
	return b.FaviconTags(s.storage.URL), nil
}

func (s *BrandingService) UpdateSettings(ctx context.Context, in BrandingSettings) (*model.SiteBranding, error) {
	b, err := s.store.GetBranding(ctx)
	if err != nil {
		return nil, err
	}
	if in.LogoAltText != nil {
		b.LogoAltText = *in.LogoAltText
	}
	if in.LogoMaxWidth != nil {
		if *in.LogoMaxWidth <= 0 {
			return nil, NewValidationError("logo_max_width", "must be positive")
		}
		b.LogoMaxWidth = *in.LogoMaxWidth
	}
	if in.LogoLinkTarget != nil {
		b.LogoLinkTarget = *in.LogoLinkTarget
	}
	if err := s.store.SaveBranding(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

/*
UploadLogo 限制 512KB, 點陣圖限制 512x512
SVG 不檢查尺寸
*/
func (s *BrandingService) UploadLogo(ctx context.Context, filename string, data []byte) (*model.SiteBranding, error) {
	ext, err := imageExt(filename)
	if err != nil {
		return nil, err
	}
	if len(data) > constants.LogoMaxBytes {
		return nil, NewValidationError("logo", fmt.Sprintf("file too large (max %d KB)", constants.LogoMaxBytes/1024))
	}
	if ext != ".svg" {
		cfg, _, err := imaging.Config(data)
		if err != nil {
			return nil, NewValidationError("logo", "unsupported image")
		}
		if cfg.Width > constants.LogoMaxDimension || cfg.Height > constants.LogoMaxDimension {
			return nil, NewValidationError("logo", fmt.Sprintf("image too large (max %dx%d px)", constants.LogoMaxDimension, constants.LogoMaxDimension))
		}
	}

	b, err := s.store.GetBranding(ctx)
	if err != nil {
		return nil, err
	}
	name := path.Join(brandingDir, "logo"+ext)
	if err := s.storage.Save(ctx, name, data); err != nil {
		return nil, fmt.Errorf("save logo: %w", err)
	}
	if b.Logo != "" && b.Logo != name {
		s.remove(ctx, b.Logo)
	}
	b.Logo = name
	if err := s.store.SaveBranding(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

/*
UploadFavicon 限制 256KB
SVG 原檔直接使用, 其他格式產生 32/16/180 PNG 與 ICO
產生失敗只記錄, 上傳仍然成功
*/
func (s *BrandingService) UploadFavicon(ctx context.Context, filename string, data []byte) (*model.SiteBranding, error) {
	ext, err := imageExt(filename)
	if err != nil {
		return nil, err
	}
	if len(data) > constants.FaviconMaxBytes {
		return nil, NewValidationError("favicon", fmt.Sprintf("file too large (max %d KB)", constants.FaviconMaxBytes/1024))
	}

	b, err := s.store.GetBranding(ctx)
	if err != nil {
		return nil, err
	}
	name := path.Join(brandingDir, "favicon-source"+ext)
	if err := s.storage.Save(ctx, name, data); err != nil {
		return nil, fmt.Errorf("save favicon: %w", err)
	}
	for _, old := range []string{b.Favicon, b.FaviconICO, b.Favicon32, b.Favicon16, b.AppleTouchIcon} {
		if old != "" && old != name {
			s.remove(ctx, old)
		}
	}
	b.Favicon = name
	b.FaviconSVG, b.FaviconICO, b.Favicon32, b.Favicon16, b.AppleTouchIcon = "", "", "", "", ""

	if ext == ".svg" {
		b.FaviconSVG = name
	} else {
		s.deriveFavicons(ctx, b, data)
	}

	if err := s.store.SaveBranding(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BrandingService) deriveFavicons(ctx context.Context, b *model.SiteBranding, data []byte) {
	set, err := imaging.Favicons(ctx, data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("favicon derivation failed")
		return
	}
	files := []struct {
		name   string
		data   []byte
		target *string
	}{
		{"favicon.ico", set.ICO, &b.FaviconICO},
		{"favicon-32x32.png", set.PNG32, &b.Favicon32},
		{"favicon-16x16.png", set.PNG16, &b.Favicon16},
		{"apple-touch-icon.png", set.Apple, &b.AppleTouchIcon},
	}
	for _, f := range files {
		name := path.Join(brandingDir, f.name)
		if err := s.storage.Save(ctx, name, f.data); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("failed to store favicon variant")
			continue
		}
		*f.target = name
	}
}

func (s *BrandingService) remove(ctx context.Context, name string) {
	if err := s.storage.Delete(ctx, name); err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("failed to delete old branding file")
	}
}

func imageExt(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedImageExt[ext] {
		return "", NewValidationError("file", fmt.Sprintf("unsupported file type %q", ext))
	}
	return ext, nil
}

package dto

import "github.com/RoyceAzure/lab/storefront/internal/domain/model"

type BrandingDTO struct {
	LogoURL        string   `json:"logo_url,omitempty"`
	LogoAltText    string   `json:"logo_alt_text"`
	LogoMaxWidth   int      `json:"logo_max_width"`
	LogoLinkTarget string   `json:"logo_link_target"`
	FaviconURL     string   `json:"favicon_url,omitempty"`
	FaviconTags    []string `json:"favicon_tags"`
}

type BrandingSettingsDTO struct {
	LogoAltText    *string `json:"logo_alt_text" validate:"omitempty,max=200"`
	LogoMaxWidth   *int    `json:"logo_max_width" validate:"omitempty,gte=1"`
	LogoLinkTarget *string `json:"logo_link_target" validate:"omitempty,max=200"`
}

// ToBrandingDTO urlOf 把儲存路徑轉成公開 URL
func ToBrandingDTO(b *model.SiteBranding, urlOf func(string) string) BrandingDTO {
	out := BrandingDTO{
		LogoAltText:    b.LogoAltText,
		LogoMaxWidth:   b.LogoMaxWidth,
		LogoLinkTarget: b.LogoLinkTarget,
		FaviconTags:    b.FaviconTags(urlOf),
	}
	if b.Logo != "" {
		out.LogoURL = urlOf(b.Logo)
	}
	if b.Favicon != "" {
		out.FaviconURL = urlOf(b.Favicon)
	}
	return out
}

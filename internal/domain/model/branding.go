package model

import (
	"fmt"
	"strings"
	"time"
)

// SiteBranding 全站只有一筆 (id = 1)
type SiteBranding struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Logo           string    `gorm:"type:varchar(255)" json:"logo"`
	LogoAltText    string    `gorm:"not null;type:varchar(200)" json:"logo_alt_text"`
	LogoMaxWidth   int       `gorm:"not null" json:"logo_max_width"`
	LogoLinkTarget string    `gorm:"not null;type:varchar(200)" json:"logo_link_target"`
	Favicon        string    `gorm:"type:varchar(255)" json:"favicon"`
	FaviconICO     string    `gorm:"column:favicon_ico;type:varchar(255)" json:"favicon_ico"`
	FaviconSVG     string    `gorm:"column:favicon_svg;type:varchar(255)" json:"favicon_svg"`
	Favicon32      string    `gorm:"column:favicon_32;type:varchar(255)" json:"favicon_32"`
	Favicon16      string    `gorm:"column:favicon_16;type:varchar(255)" json:"favicon_16"`
	AppleTouchIcon string    `gorm:"type:varchar(255)" json:"apple_touch_icon"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func DefaultBranding(id uint) SiteBranding {
	return SiteBranding{
		ID:             id,
		LogoAltText:    "Site Logo",
		LogoMaxWidth:   200,
		LogoLinkTarget: "/",
	}
}

// FaviconTags 依序: ico, svg, 32, 16, apple-touch
// urlOf 把儲存路徑轉成公開 URL
func (b *SiteBranding) FaviconTags(urlOf func(string) string) []string {
	tags := []string{}
	if b.FaviconICO != "" {
		tags = append(tags, fmt.Sprintf(`<link rel="icon" type="image/x-icon" href="%s">`, urlOf(b.FaviconICO)))
	}
	if b.FaviconSVG != "" && strings.HasSuffix(strings.ToLower(b.Favicon), ".svg") {
		tags = append(tags, fmt.Sprintf(`<link rel="icon" type="image/svg+xml" href="%s">`, urlOf(b.Favicon)))
	}
	if b.Favicon32 != "" {
		tags = append(tags, fmt.Sprintf(`<link rel="icon" type="image/png" sizes="32x32" href="%s">`, urlOf(b.Favicon32)))
	}
	if b.Favicon16 != "" {
		tags = append(tags, fmt.Sprintf(`<link rel="icon" type="image/png" sizes="16x16" href="%s">`, urlOf(b.Favicon16)))
	}
	if b.AppleTouchIcon != "" {
		tags = append(tags, fmt.Sprintf(`<link rel="apple-touch-icon" href="%s">`, urlOf(b.AppleTouchIcon)))
	}
	return tags
}

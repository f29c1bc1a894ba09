package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
)

const uploadField = "file"

type BrandingHandler struct {
	brandingService service.IBrandingService
}

func NewBrandingHandler(brandingService service.IBrandingService) *BrandingHandler {
	if brandingService == nil {
		panic("brandingService cannot be nil")
	}
	return &BrandingHandler{brandingService: brandingService}
}

func (h *BrandingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.brandingService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, b)
}

// FaviconTags 可直接放進 <head> 的 link tags
func (h *BrandingHandler) FaviconTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.brandingService.FaviconTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, tags, nil)
}

func (h *BrandingHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.BrandingSettingsDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.brandingService.UpdateSettings(r.Context(), service.BrandingSettings{
		LogoAltText:    req.LogoAltText,
		LogoMaxWidth:   req.LogoMaxWidth,
		LogoLinkTarget: req.LogoLinkTarget,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, b)
}

// UploadLogo multipart, 檔案欄位 file
func (h *BrandingHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r, constants.LogoMaxBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.brandingService.UploadLogo(r.Context(), name, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, b)
}

func (h *BrandingHandler) UploadFavicon(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r, constants.FaviconMaxBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.brandingService.UploadFavicon(r.Context(), name, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, b)
}

func (h *BrandingHandler) respond(w http.ResponseWriter, b *model.SiteBranding) {
	api.SuccessJSON(w, dto.ToBrandingDTO(b, h.brandingService.URL), nil)
}

/*
readUpload 多讀 1 byte, 讓 service 判斷檔案是否超過上限
整個 body 另外以 MaxBytesReader 限制
*/
func readUpload(w http.ResponseWriter, r *http.Request, limit int) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(limit)+1<<20)
	f, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, service.NewValidationError(uploadField, "file too large")
		}
		return "", nil, service.NewValidationError(uploadField, "multipart file field is required")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

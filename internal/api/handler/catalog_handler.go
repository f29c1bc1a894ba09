package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &CatalogHandler{catalogService: catalogService}
}

// ListProducts GET /products?category=<slug>
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, dto.ToProductDTO(&products[i]))
	}
	api.SuccessJSON(w, out, nil)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dto.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.ToCategoryDTO(c))
	}
	api.SuccessJSON(w, out, nil)
}

// GetProduct GET /products/{slug}, 只回傳上架商品
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalogService.ProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.ToProductDTO(p), nil)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, dto.ToCategoryDTO(*c))
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p, err := h.catalogService.CreateProduct(r.Context(), service.ProductInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Slug:       req.Slug,
		Price:      req.Price,
		OldPrice:   req.OldPrice,
		Stock:      req.Stock,
		Image:      req.Image,
		Active:     active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, dto.ToProductDTO(p))
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateProductDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.catalogService.UpdateProduct(r.Context(), id, service.ProductUpdate{
		Name:     req.Name,
		Price:    req.Price,
		OldPrice: req.OldPrice,
		Stock:    req.Stock,
		Active:   req.Active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.SuccessJSON(w, dto.ToProductDTO(p), nil)
}

func (h *CatalogHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.CreateVariantDTO
	if err := dto.DecodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.catalogService.CreateVariant(r.Context(), id, service.VariantInput{
		SKU:   req.SKU,
		Size:  req.Size,
		Color: req.Color,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, dto.ToVariantDTO(*v))
}

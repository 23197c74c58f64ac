package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/uploads"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type catalogHandler struct {
	guard      *Guard
	categories CategoryStore
	products   ProductStore
	images     ImageStore
	cache      Cache
}

func (h *catalogHandler) register(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{id}", h.getCategory)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate, h.guard.RequireRole(users.RoleAdmin))
		r.Post("/categories", h.createCategory)
		r.Put("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)

		r.Get("/products/export", h.exportProducts)
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
	})
}

type categoryReq struct {
	Name string `json:"category_name"`
}

func (h *catalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.categories.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *catalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.categories.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *catalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.categories.Create(ctx, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Category created successfully",
		"category_id": c.ID,
		"category":    c,
	})
}

func (h *catalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.categories.Update(ctx, id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Category updated successfully", "category": c})
}

func (h *catalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.categories.Delete(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	h.invalidate(ctx)
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}

func (h *catalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := catalog.ParseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// listings are cached per catalog version, so bumping the version drops them all
	key := ""
	if v, err := h.cache.Version(ctx, redisx.KeyCatalogVersion); err != nil {
		log.Printf("product cache version: %v", err)
	} else {
		key = fmt.Sprintf(redisx.KeyProductList, v, redisx.HashParts(f.CacheParts()...))
		var cached []catalog.Product
		if ok, err := h.cache.GetJSON(ctx, key, &cached); err != nil {
			log.Printf("product cache get %s: %v", key, err)
		} else if ok {
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	ps, err := h.products.List(ctx, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if key != "" {
		if err := h.cache.SetJSON(ctx, key, ps, redisx.TTLProductList); err != nil {
			log.Printf("product cache set %s: %v", key, err)
		}
	}
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, ps)
}

func (h *catalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.products.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *catalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, newImage, err := h.readProductForm(w, r, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.products.Create(ctx, in)
	if err != nil {
		h.removeImage(newImage)
		writeError(w, r, err)
		return
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Product created successfully",
		"product_id": p.ID,
		"image":      p.Image,
		"product":    p,
	})
}

func (h *catalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	current, err := h.products.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, newImage, err := h.readProductForm(w, r, &current)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.products.Update(ctx, id, in)
	if err != nil {
		h.removeImage(newImage)
		writeError(w, r, err)
		return
	}
	if current.Image != "" && current.Image != p.Image {
		h.removeImage(current.Image)
	}
	h.invalidate(ctx)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"image":   p.Image,
		"product": p,
	})
}

func (h *catalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	image, err := h.products.Delete(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.removeImage(image)
	h.invalidate(ctx)
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *catalogHandler) exportProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ps, err := h.products.All(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := catalog.WriteProductsXLSX(&buf, ps); err != nil {
		writeError(w, r, fmt.Errorf("render export: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// readProductForm reads a multipart or url-encoded product form. On update, current
// supplies the values of omitted optional fields. A newly stored image is returned so
// the caller can remove it if the write fails.
func (h *catalogHandler) readProductForm(w http.ResponseWriter, r *http.Request, current *catalog.Product) (catalog.ProductInput, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxImageBytes+maxJSONBody)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxJSONBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return catalog.ProductInput{}, "", apperr.Invalid("Invalid form data")
	}

	name := strings.TrimSpace(r.FormValue("product_name"))
	rawPrice := strings.TrimSpace(r.FormValue("price"))
	if name == "" || rawPrice == "" {
		return catalog.ProductInput{}, "", catalog.ErrProductFields
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return catalog.ProductInput{}, "", apperr.Invalid("Invalid price")
	}

	in := catalog.ProductInput{
		Name:        name,
		Price:       price,
		Description: strings.TrimSpace(r.FormValue("description")),
		Status:      catalog.StatusActive,
	}
	if current != nil {
		in.Stock = current.Stock
		in.Status = current.Status
		in.Image = current.Image
	}

	if v := strings.TrimSpace(r.FormValue("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return catalog.ProductInput{}, "", apperr.Invalid("Invalid category_id")
		}
		in.CategoryID = &id
	}
	if v := strings.TrimSpace(r.FormValue("stock_quantity")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return catalog.ProductInput{}, "", apperr.Invalid("Invalid stock_quantity")
		}
		in.Stock = n
	}
	if v := r.FormValue("status"); v != "" {
		st, ok := catalog.ParseStatus(v)
		if !ok {
			return catalog.ProductInput{}, "", apperr.Invalid("Status must be active or inactive")
		}
		in.Status = st
	}
	if _, ok := r.Form["image"]; ok {
		in.Image = strings.TrimSpace(r.FormValue("image"))
	}
	if err := in.Validate(); err != nil {
		return catalog.ProductInput{}, "", err
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, "", nil
	case err != nil:
		return catalog.ProductInput{}, "", apperr.Invalid("Invalid image upload")
	}
	defer file.Close()

	path, err := h.images.SaveProductImage(file, header.Filename)
	if err != nil {
		return catalog.ProductInput{}, "", err
	}
	in.Image = path
	return in, path, nil
}

func (h *catalogHandler) removeImage(path string) {
	if path == "" {
		return
	}
	if err := h.images.Remove(path); err != nil {
		log.Printf("remove image %s: %v", path, err)
	}
}

func (h *catalogHandler) invalidate(ctx context.Context) {
	if err := h.cache.Bump(ctx, redisx.KeyCatalogVersion); err != nil {
		log.Printf("bump catalog version: %v", err)
	}
}

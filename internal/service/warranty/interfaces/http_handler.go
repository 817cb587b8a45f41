// internal/service/warranty/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"veritag/internal/pkg/logger"
	"veritag/internal/service/warranty/application"
	"veritag/internal/service/warranty/domain"
	"veritag/internal/service/warranty/sticker"
)

// PDFWriter 是能把自己序列化成 PDF 的画布。
type PDFWriter interface {
	sticker.Canvas
	Output(w io.Writer) error
}

// CanvasFactory 为一次下载请求创建指定幅面的画布。
type CanvasFactory func(pageWidth, pageHeight float64) PDFWriter

// WarrantyHandler 封装了质保服务的全部 HTTP 处理器
type WarrantyHandler struct {
	warranty  *application.WarrantyService
	catalog   *application.CatalogService
	sheets    *application.SheetService
	auth      *Auth
	newCanvas CanvasFactory

	adminUsername string
	adminPassword string
}

// NewWarrantyHandler 创建一个新的 HTTP 处理器实例
func NewWarrantyHandler(
	warranty *application.WarrantyService,
	catalog *application.CatalogService,
	sheets *application.SheetService,
	auth *Auth,
	newCanvas CanvasFactory,
	adminUsername, adminPassword string,
) *WarrantyHandler {
	return &WarrantyHandler{
		warranty:      warranty,
		catalog:       catalog,
		sheets:        sheets,
		auth:          auth,
		newCanvas:     newCanvas,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// RegisterRoutes 在 chi 路由器上注册所有路由
func (h *WarrantyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/qr/{serialNumber}", h.handleDisplayQRCode)
		r.Post("/shop/login", h.handleShopLogin)
		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireShop)
			r.Post("/qr/{serialNumber}/activate", h.handleActivate)
			r.Get("/shop/qrcodes", h.handleShopOwnCodes)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", h.handleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireAdmin)

			r.Get("/dashboard", h.handleDashboard)

			r.Get("/shops", h.handleListShops)
			r.Post("/shops", h.handleCreateShop)
			r.Put("/shops/{id}", h.handleUpdateShop)
			r.Delete("/shops/{id}", h.handleDeleteShop)
			r.Get("/shops/{shopId}/qrcodes", h.handleShopCodes)

			r.Get("/products", h.handleListProducts)
			r.Post("/products", h.handleCreateProduct)
			r.Put("/products/{id}", h.handleUpdateProduct)
			r.Delete("/products/{id}", h.handleDeleteProduct)

			r.Get("/categories", h.handleListCategories)
			r.Post("/categories", h.handleCreateCategory)
			r.Put("/categories/{id}", h.handleUpdateCategory)
			r.Delete("/categories/{id}", h.handleDeleteCategory)

			r.Get("/qrcodes", h.handleListQRCodes)
			r.Get("/qrcodes/serial/{serialNumber}", h.handleLookupQRCode)
			r.Get("/qrcodes/batches", h.handleListBatches)
			r.Get("/qrcodes/batch/{batchId}", h.handleListBatchCodes)
			r.Delete("/qrcodes/batch/{batchId}", h.handleDeleteBatch)
			r.Post("/qrcodes/generate", h.handleGenerateBatch)
			r.Post("/qrcodes/assign", h.handleAssignShop)
			r.Post("/qrcodes/delete-selected", h.handleDeleteSelected)

			r.Get("/qrcodes/download-pdf/{productId}", h.handleProductPDF)
			r.Post("/qrcodes/download-selected-pdf", h.handleSelectedPDF)
			r.Post("/qrcodes/sticker-sheet", h.handleStickerSheet)
		})
	})
}

// extract 从请求头恢复追踪上下文。
func extract(r *http.Request) *http.Request {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return r.WithContext(ctx)
}

// writeError 根据错误类型返回不同的 HTTP 状态码
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrQRCodeNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrShopNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyActivated),
		errors.Is(err, domain.ErrNameTaken):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrNotAssignedShop):
		statusCode = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func uintParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	return uint(id), nil
}

// --- 公开接口 ---

func (h *WarrantyHandler) handleDisplayQRCode(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	resp, err := h.warranty.LookupForDisplay(r.Context(), chi.URLParam(r, "serialNumber"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WarrantyHandler) handleShopLogin(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req struct {
		ShopID   string `json:"shopId"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	shop, err := h.catalog.VerifyShopCredentials(r.Context(), req.ShopID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.IssueShopToken(shop.ShopID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "shop": shop})
}

func (h *WarrantyHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req application.ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	serial := chi.URLParam(r, "serialNumber")
	view, err := h.warranty.Activate(r.Context(), serial, shopIDFromContext(r.Context()), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	activationsTotal.Inc()
	writeJSON(w, http.StatusOK, view)
}

// handleShopOwnCodes 门店查看分配给自己的码。
func (h *WarrantyHandler) handleShopOwnCodes(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	codes, err := h.warranty.ListShopCodes(r.Context(), shopIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// --- 管理端：登录与仪表盘 ---

func (h *WarrantyHandler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username != h.adminUsername || req.Password != h.adminPassword {
		writeError(w, domain.ErrInvalidCredentials)
		return
	}

	token, err := h.auth.IssueAdminToken(req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *WarrantyHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	stats, err := h.catalog.Dashboard(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- 管理端：门店 ---

func (h *WarrantyHandler) handleListShops(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	shops, err := h.catalog.ListShops(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shops)
}

func (h *WarrantyHandler) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req application.CreateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	shop, err := h.catalog.CreateShop(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shop)
}

func (h *WarrantyHandler) handleUpdateShop(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req application.CreateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	shop, err := h.catalog.UpdateShop(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

func (h *WarrantyHandler) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteShop(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WarrantyHandler) handleShopCodes(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	codes, err := h.warranty.ListShopCodes(r.Context(), chi.URLParam(r, "shopId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// --- 管理端：商品 ---

func (h *WarrantyHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *WarrantyHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req application.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *WarrantyHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req application.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *WarrantyHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- 管理端：分类 ---

func (h *WarrantyHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *WarrantyHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req application.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *WarrantyHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req application.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	category, err := h.catalog.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *WarrantyHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- 管理端：码与批次 ---

func (h *WarrantyHandler) handleListQRCodes(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	codes, err := h.warranty.ListQRCodes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

func (h *WarrantyHandler) handleLookupQRCode(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	view, err := h.warranty.Lookup(r.Context(), chi.URLParam(r, "serialNumber"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *WarrantyHandler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	batches, err := h.warranty.ListBatches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *WarrantyHandler) handleListBatchCodes(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	codes, err := h.warranty.ListBatchCodes(r.Context(), chi.URLParam(r, "batchId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

func (h *WarrantyHandler) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	deleted, err := h.warranty.DeleteBatch(r.Context(), chi.URLParam(r, "batchId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *WarrantyHandler) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req application.GenerateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.warranty.GenerateBatch(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	codesGeneratedTotal.Add(float64(len(resp.QRCodes)))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *WarrantyHandler) handleAssignShop(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req application.AssignShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.warranty.AssignShop(r.Context(), &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WarrantyHandler) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req struct {
		QRIDs []uint `json:"qrIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	deleted, err := h.warranty.DeleteByIDs(r.Context(), req.QRIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// --- 管理端：贴纸页下载 ---

func (h *WarrantyHandler) handleProductPDF(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	productID := chi.URLParam(r, "productId")
	duplicate := r.URL.Query().Get("duplicate") == "true"

	result, err := h.sheets.RenderProductSheet(r.Context(), productID, duplicate)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("qrcodes-%s.pdf", productID)
	if result.Product != nil {
		filename = fmt.Sprintf("qrcodes-%s.pdf", result.Product.ProductName)
	}
	h.servePDF(w, r, result, filename)
}

func (h *WarrantyHandler) handleSelectedPDF(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req struct {
		QRIDs     []uint `json:"qrIds"`
		Duplicate bool   `json:"duplicate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.sheets.RenderSelectedSheet(r.Context(), req.QRIDs, req.Duplicate)
	if err != nil {
		writeError(w, err)
		return
	}
	h.servePDF(w, r, result, "qrcodes-selected.pdf")
}

func (h *WarrantyHandler) handleStickerSheet(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	var req struct {
		QRIDs             []uint  `json:"qrIds"`
		VerticalSpacing   float64 `json:"verticalSpacing"`
		HorizontalSpacing float64 `json:"horizontalSpacing"`
		Duplicate         bool    `json:"duplicate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.sheets.RenderCustomSheet(r.Context(), req.QRIDs, req.VerticalSpacing, req.HorizontalSpacing, req.Duplicate)
	if err != nil {
		writeError(w, err)
		return
	}
	h.servePDF(w, r, result, "sticker-sheet.pdf")
}

// servePDF 把指令流回放到 PDF 画布并流式写出。
func (h *WarrantyHandler) servePDF(w http.ResponseWriter, r *http.Request, result *application.SheetResult, filename string) {
	canvas := h.newCanvas(result.Spec.Width, result.Spec.Height)
	sticker.Apply(canvas, result.Instructions)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := canvas.Output(w); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("写出 PDF 失败")
		return
	}
	sheetsRenderedTotal.Inc()
}

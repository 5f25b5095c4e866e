package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"configurator-backend/internal/assets"
	"configurator-backend/internal/platform/apierr"
)

const maxModelBytes = 50 << 20

type uploadResponse struct {
	ProductID string `json:"productId"`
	Key       string `json:"key"`
	URL       string `json:"url"`
}

// HandleModelUpload обслуживает POST /api/admin/models/{productId}?kind=model|preview
// Принимает multipart/form-data с полем file и кладёт его под ключ из реестра
// моделей, так что следующая выдача дескриптора уже отдаёт новый файл.
func (e *Env) HandleModelUpload(w http.ResponseWriter, r *http.Request) {
	if !e.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		e.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if e.Uploads == nil || e.Models == nil {
		e.writeError(w, r, apierr.New(http.StatusNotFound, "uploads_disabled", errors.New("model uploads are not configured")))
		return
	}

	productID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/models/"), "/")
	modelKey, previewKey, err := e.Models.Keys(productID)
	if errors.Is(err, assets.ErrNoModel) {
		e.writeError(w, r, apierr.New(http.StatusNotFound, "no_model", err))
		return
	}

	key, allowed := modelKey, []string{".glb", ".gltf"}
	if r.URL.Query().Get("kind") == "preview" {
		key, allowed = previewKey, []string{".jpg", ".jpeg", ".png", ".webp"}
	}
	if key == "" {
		e.writeError(w, r, badRequest("product %s has no %s slot", productID, r.URL.Query().Get("kind")))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxModelBytes)
	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 МБ в памяти, остальное во временных файлах
		e.writeError(w, r, badRequest("bad multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		e.writeError(w, r, badRequest("file field is required: %v", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !contains(allowed, ext) {
		e.writeError(w, r, badRequest("unsupported file type %q", ext))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := e.Uploads.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		e.writeError(w, r, err)
		return
	}
	e.Log.Info("ar asset uploaded", "product_id", productID, "key", key, "size", header.Size)

	d, err := e.Models.Descriptor(r.Context(), productID)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	url := d.URL
	if key == previewKey {
		url = d.PreviewImage
	}
	e.writeJSON(w, uploadResponse{ProductID: productID, Key: key, URL: url})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

package api

import (
	"net/http"
	"strings"

	"github.com/echomap/echomap/internal/api/respond"
	"github.com/echomap/echomap/internal/blob"
)

// maxImageBytes caps user-provided images at 5 MB.
const maxImageBytes = 5 << 20

// maxUploadBytes bounds the whole multipart body.
const maxUploadBytes = 32 << 20

// UploadHandler accepts audio recordings and image files and stores them in
// the public-read buckets under time-stamp-derived keys.
type UploadHandler struct {
	deps Deps
}

// Upload POST /api/upload (multipart: "kind" = audio|image, "file" = bytes)
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.WriteBadRequest(w, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	kind := r.FormValue("kind")

	var bucket, key string
	switch kind {
	case "audio":
		bucket, key = h.deps.AudioBucket, blob.AudioKey()
		if contentType == "" {
			contentType = "audio/webm"
		}
	case "image":
		if !strings.HasPrefix(contentType, "image/") {
			respond.WriteBadRequest(w, "file must be an image")
			return
		}
		if header.Size > maxImageBytes {
			respond.WriteBadRequest(w, "image exceeds 5 MB")
			return
		}
		bucket, key = h.deps.ImageBucket, blob.ImageKey(imageExt(contentType))
	default:
		respond.WriteBadRequest(w, `kind must be "audio" or "image"`)
		return
	}

	url, err := h.deps.Blobs.Upload(r.Context(), bucket, key, file, contentType)
	if err != nil {
		respond.WriteInternalError(w, "upload failed")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func imageExt(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

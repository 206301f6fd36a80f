package handler

import (
	"net/http"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/service"
)

// multipartMemory caps the in-memory part of multipart parsing; larger files
// spill to temp files.
const multipartMemory = 32 << 20

type AttachmentHandler struct {
	attachments *service.AttachmentService
}

func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = r.ParseMultipartForm(multipartMemory)
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "invalid multipart body"))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, apperr.New(apperr.CodeValidation, "no files provided"))
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeValidation, "failed to read uploaded file", err))
			return
		}
		defer func() { _ = file.Close() }()

		files = append(files, service.UploadFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
	}

	attachments, err := h.attachments.UploadBatch(r.Context(), id, files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, attachments)
}

func (h *AttachmentHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	url, err := h.attachments.PresignedURL(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

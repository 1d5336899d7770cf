package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"tush00nka/taskboard/api/response"
	"tush00nka/taskboard/internal/metrics"
	"tush00nka/taskboard/internal/pkg/auth"
	"tush00nka/taskboard/internal/pkg/httputils"
	"tush00nka/taskboard/internal/service"

	"github.com/gorilla/mux"
	"pkt.systems/pslog"
)

type AttachmentHandler struct {
	attachmentService service.AttachmentService
	tokens            *auth.TokenManager
	metrics           *metrics.Collectors
	logger            pslog.Logger
}

func NewAttachmentHandler(
	attachmentService service.AttachmentService,
	tokens *auth.TokenManager,
	collectors *metrics.Collectors,
	logger pslog.Logger,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		tokens:            tokens,
		metrics:           collectors,
		logger:            logger.With("component", "handler.attachments"),
	}
}

func (h *AttachmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks/{id:[0-9]+}/attachments", RequireAuth(h.tokens, h.uploadAttachments)).Methods("POST")
	router.HandleFunc("/tasks/{id:[0-9]+}/attachments", h.listAttachments).Methods("GET", "OPTIONS")
	router.HandleFunc("/attachments/{id}", h.getAttachment).Methods("GET", "OPTIONS")
	router.HandleFunc("/attachments/{id}/download", h.downloadAttachment).Methods("GET", "OPTIONS")
	router.HandleFunc("/attachments/{id}", RequireAuth(h.tokens, h.deleteAttachment)).Methods("DELETE")
}

func taskIDFromPath(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *AttachmentHandler) fail(w http.ResponseWriter, counter string, err error) {
	status, message, label := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("attachment.request.failed", "error", err)
	}
	if h.metrics != nil {
		switch counter {
		case "upload":
			h.metrics.Uploads.WithLabelValues(label).Inc()
		case "download":
			h.metrics.Downloads.WithLabelValues(label).Inc()
		case "delete":
			h.metrics.Deletes.WithLabelValues(label).Inc()
		}
	}
	httputils.ResponseError(w, status, message)
}

// @Summary Upload attachments
// @Description Upload one or more files to a task as multipart/form-data
// @ID upload-attachments
// @Tags attachments
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path int true "Task ID"
// @Param file formData file true "File to attach"
// @Success 201 {array} model.Attachment
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /tasks/{id}/attachments [post]
func (h *AttachmentHandler) uploadAttachments(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	created, err := h.attachmentService.Upload(r.Context(), service.UploadRequest{
		TaskID:      taskID,
		UserID:      userID,
		ContentType: r.Header.Get("Content-Type"),
		Body:        r.Body,
	})
	if err != nil {
		h.fail(w, "upload", err)
		return
	}

	if h.metrics != nil {
		h.metrics.Uploads.WithLabelValues("ok").Inc()
		for _, a := range created {
			h.metrics.UploadBytes.Add(float64(a.Size))
		}
	}

	httputils.ResponseJSON(w, http.StatusCreated, created)
}

// @Summary List attachments
// @Description List the attachments of a task, oldest first
// @ID list-attachments
// @Tags attachments
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {array} model.Attachment
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /tasks/{id}/attachments [get]
func (h *AttachmentHandler) listAttachments(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	attachments, err := h.attachmentService.ListForTask(r.Context(), taskID)
	if err != nil {
		h.fail(w, "", err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, attachments)
}

// @Summary Get attachment
// @Description Get attachment metadata by id
// @ID get-attachment
// @Tags attachments
// @Produce json
// @Param id path string true "Attachment ID"
// @Success 200 {object} model.Attachment
// @Failure 404 {object} response.ErrorResponse
// @Router /attachments/{id} [get]
func (h *AttachmentHandler) getAttachment(w http.ResponseWriter, r *http.Request) {
	attachment, err := h.attachmentService.GetAttachment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, "", err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, attachment)
}

// @Summary Download attachment
// @Description Stream the stored file with its original name and type
// @ID download-attachment
// @Tags attachments
// @Produce octet-stream
// @Param id path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /attachments/{id}/download [get]
func (h *AttachmentHandler) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	dl, err := h.attachmentService.Open(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, "download", err)
		return
	}
	defer dl.Content.Close()

	contentType := dl.Attachment.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(dl.Attachment.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	w.WriteHeader(http.StatusOK)

	if h.metrics != nil {
		h.metrics.Downloads.WithLabelValues("ok").Inc()
	}

	if _, err := io.Copy(w, dl.Content); err != nil {
		h.logger.Warn("attachment.download.interrupted", "id", dl.Attachment.ID, "error", err)
	}
}

// contentDisposition keeps the original name byte for byte; only quotes,
// backslashes and line breaks are neutralised.
func contentDisposition(name string) string {
	name = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "").Replace(name)
	return `attachment; filename="` + name + `"`
}

// @Summary Delete attachment
// @Description Delete the stored file and its record
// @ID delete-attachment
// @Tags attachments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Attachment ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.attachmentService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, "delete", err)
		return
	}

	if h.metrics != nil {
		h.metrics.Deletes.WithLabelValues("ok").Inc()
	}

	httputils.ResponseJSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jinford/sonorize/internal/core/transcription"
)

// JobService はAPI層が利用するユースケースのインターフェース
type JobService interface {
	Submit(ctx context.Context, sourceRef string) (*transcription.Job, bool, error)
	GetJob(ctx context.Context, id uuid.UUID) (*transcription.Job, error)
	ListJobs(ctx context.Context) ([]*transcription.Job, error)
	ReconcilePending(ctx context.Context) (int, error)
	IssueUpload(ctx context.Context, fileName string) (*transcription.UploadCredential, error)
}

// Handler はHTTPリクエストをユースケースへ橋渡しする
type Handler struct {
	service JobService
	logger  *slog.Logger
}

// NewHandler は新しい Handler を作成します
func NewHandler(service JobService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

type issueUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
}

type submitJobRequest struct {
	SourceRef string `json:"sourceRef" binding:"required"`
}

// IssueUpload は新規音声アップロード用の署名付きURLを発行する
func (h *Handler) IssueUpload(c *gin.Context) {
	var req issueUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required"})
		return
	}

	cred, err := h.service.IssueUpload(c.Request.Context(), req.FileName)
	if err != nil {
		h.logger.Error("アップロードURL発行に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue upload credential"})
		return
	}

	c.JSON(http.StatusOK, cred)
}

// SubmitJob は音声リファレンスを受け付け、文字起こしジョブを登録する。
// 同じリファレンスの再送は既存ジョブを返す（冪等）。
func (h *Handler) SubmitJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceRef is required"})
		return
	}

	job, created, err := h.service.Submit(c.Request.Context(), req.SourceRef)
	if err != nil {
		if errors.Is(err, transcription.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "audio object not found"})
			return
		}
		h.logger.Error("ジョブ登録に失敗", "sourceRef", req.SourceRef, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit job"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, job)
}

// ListJobs は全ジョブを作成日時の降順で返す
func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.service.ListJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("ジョブ一覧取得に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob はIDでジョブを取得する
func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, transcription.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("ジョブ取得に失敗", "jobID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// Reconcile はPENDINGのまま残っているジョブを再投入する
func (h *Handler) Reconcile(c *gin.Context) {
	count, err := h.service.ReconcilePending(c.Request.Context())
	if err != nil {
		h.logger.Error("再投入に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reconcile pending jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requeued": count})
}

// Healthz は死活監視用エンドポイント
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

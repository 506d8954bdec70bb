package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/minjae-lab/medical-rag/internal/medical"
	"github.com/minjae-lab/medical-rag/internal/rag"
)

const askTimeout = 60 * time.Second

type AskRequest struct {
	Question     string `json:"question"`
	TopK         int    `json:"topK,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

type DocumentsRequest struct {
	Paths []string `json:"paths"`
}

type Handler struct {
	pipeline *rag.Pipeline
	chatbot  *medical.Chatbot
}

func NewHandler(pipeline *rag.Pipeline, chatbot *medical.Chatbot) *Handler {
	return &Handler{pipeline: pipeline, chatbot: chatbot}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), askTimeout)
	defer cancel()

	answer, err := h.pipeline.GenerateAnswerWithPrompt(ctx, req.Question, req.TopK, req.SystemPrompt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, answer)
}

func (h *Handler) MedicalAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), askTimeout)
	defer cancel()

	answer, err := h.chatbot.Ask(ctx, req.Question)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, answer)
}

func (h *Handler) AddDocuments(w http.ResponseWriter, r *http.Request) {
	var req DocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		http.Error(w, "paths is required", http.StatusBadRequest)
		return
	}

	result := h.pipeline.AddDocuments(r.Context(), req.Paths)
	writeJSON(w, result)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.chatbot.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

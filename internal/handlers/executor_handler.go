package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"collabedit/internal/models"
	"collabedit/internal/utils"
)

// pistonVersions maps editor languages onto the execution service's
// language/version pairs.
var pistonVersions = map[string][2]string{
	"javascript": {"javascript", "18.15.0"},
	"typescript": {"typescript", "5.0.3"},
	"python":     {"python", "3.10.0"},
	"java":       {"java", "15.0.2"},
	"cpp":        {"c++", "10.2.0"},
	"c":          {"c", "10.2.0"},
	"csharp":     {"csharp", "6.12.0"},
	"go":         {"go", "1.16.2"},
	"rust":       {"rust", "1.68.2"},
	"ruby":       {"ruby", "3.0.1"},
	"php":        {"php", "8.2.3"},
}

const maxExecuteCodeLen = 50000

// ExecutorHandler proxies code execution to an external Piston-style
// sandbox. Request/response only; no execution happens in-process.
type ExecutorHandler struct {
	log     *zap.Logger
	baseURL string
	client  *http.Client
}

func NewExecutorHandler(log *zap.Logger, baseURL string) *ExecutorHandler {
	return &ExecutorHandler{
		log:     log,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type pistonRequest struct {
	Language   string       `json:"language"`
	Version    string       `json:"version"`
	Files      []pistonFile `json:"files"`
	Stdin      string       `json:"stdin"`
	RunTimeout int          `json:"run_timeout"`
}

type pistonFile struct {
	Content string `json:"content"`
}

type pistonResponse struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Run      struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Output string `json:"output"`
		Code   int    `json:"code"`
	} `json:"run"`
}

func (h *ExecutorHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req models.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	if req.Code == "" || len(req.Code) > maxExecuteCodeLen {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "code must be 1-50000 characters")
		return
	}
	lang, ok := pistonVersions[req.Language]
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "unsupported_language", "language not supported for execution")
		return
	}

	body, err := json.Marshal(pistonRequest{
		Language:   lang[0],
		Version:    lang[1],
		Files:      []pistonFile{{Content: req.Code}},
		Stdin:      req.Stdin,
		RunTimeout: 10000,
	})
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to build request")
		return
	}

	httpReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to build request")
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		h.log.Error("executor unreachable", zap.Error(err))
		utils.JSONError(w, http.StatusBadGateway, "executor_unavailable", "code execution service unavailable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.log.Error("executor error", zap.Int("status", resp.StatusCode))
		utils.JSONError(w, http.StatusBadGateway, "executor_unavailable", "code execution service unavailable")
		return
	}

	var out pistonResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		utils.JSONError(w, http.StatusBadGateway, "executor_unavailable", "invalid executor response")
		return
	}
	utils.JSON(w, http.StatusOK, models.ExecuteResult{
		Stdout:   out.Run.Stdout,
		Stderr:   out.Run.Stderr,
		Output:   out.Run.Output,
		Exit:     out.Run.Code,
		Language: out.Language,
		Version:  out.Version,
	})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"bookly/internal/app/assemble"
	"bookly/internal/app/convert"
	"bookly/internal/app/extract"
	"bookly/internal/app/narrator"
	"bookly/internal/app/store"
	"bookly/pkg/slg"
	"bookly/pkg/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultVoice = "alloy"

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusFromErr(err), &errResp{Error: err.Error()})
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, speech.ErrInvalidVoice),
		errors.Is(err, narrator.ErrUnknownNarrator),
		errors.Is(err, extract.ErrEmptyInput),
		errors.Is(err, convert.ErrSampleTooLong):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, convert.ErrSynthesisFailed),
		errors.Is(err, assemble.ErrIncompleteSynthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestCtx attaches a request-scoped logger and the conversion deadline.
func (api *API) requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	logger := api.logger.With("request_id", middleware.GetReqID(r.Context()))

	ctx := slg.WithSlog(r.Context(), logger)

	return context.WithTimeout(ctx, api.cfg.Timeout)
}

func (api *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (api *API) voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"voices": speech.Voices()})
}

func (api *API) narrators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"narrators": narrator.Names()})
}

func (api *API) convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(api.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "failed to parse multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("markdown_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "markdown_file is required"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".md") {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "please upload a .md file"})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "failed to read upload: " + err.Error()})
		return
	}

	if len(content) == 0 {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "uploaded markdown file is empty"})
		return
	}

	if !utf8.Valid(content) {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "markdown file must be UTF-8 encoded"})
		return
	}

	voice := r.FormValue("voice")
	if voice == "" {
		voice = defaultVoice
	}

	ctx, cancel := api.requestCtx(r)
	defer cancel()

	result, err := api.converter.Convert(ctx, &convert.ConversionRequest{
		FileName: header.Filename,
		Markdown: content,
		Voice:    voice,
		Narrator: r.FormValue("narrator"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (api *API) voiceSample(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, &errResp{Error: "failed to parse form: " + err.Error()})
		return
	}

	voice := r.FormValue("voice")
	if voice == "" {
		voice = defaultVoice
	}

	ctx, cancel := api.requestCtx(r)
	defer cancel()

	result, err := api.converter.Sample(ctx, &convert.SampleRequest{
		Voice:    voice,
		Narrator: r.FormValue("narrator"),
		Text:     r.FormValue("sample_text"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (api *API) audio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	artifact, err := api.artifacts.Open(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer artifact.Close()

	w.Header().Set("Content-Type", "audio/mpeg")

	if _, err := io.Copy(w, artifact); err != nil {
		api.logger.Error("failed to stream artifact", "file", name, "err", err)
	}
}

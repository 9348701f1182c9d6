package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/extractor"
	"github.com/trackshelf/trackshelf-backend/pkg/testutil"
)

func TestExtract_Text(t *testing.T) {
	ts := newTestServer(t)
	ts.extractor.Text = []byte(`{"name":"Eier","menge":"6","einheit":"Stk","kategorie":"Sonstiges","ablaufdatum":"24.03.2025"}`)

	status, env := ts.do(t, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/shelf/extract/text",
		map[string]string{"text": "sechs Eier bis 24. März"}))
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Recognized bool `json:"recognized"`
		Draft      *struct {
			Name         string `json:"name"`
			Quantity     int    `json:"quantity"`
			AcquiredDate string `json:"acquired_date"`
			ExpiryDate   string `json:"expiry_date"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Recognized)
	require.NotNil(t, res.Draft)
	assert.Equal(t, "Eier", res.Draft.Name)
	assert.Equal(t, 6, res.Draft.Quantity)
	assert.Equal(t, "10.03.2025", res.Draft.AcquiredDate)
	assert.Equal(t, "24.03.2025", res.Draft.ExpiryDate)

	t.Run("missing text", func(t *testing.T) {
		status, env := ts.do(t, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/shelf/extract/text", map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "is required", env.Error.Details["text"])
	})
}

func TestExtract_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"quota", &extractor.UpstreamError{StatusCode: http.StatusTooManyRequests, Body: "quota"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"server error", &extractor.UpstreamError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.extractor.Err = tt.err

			status, env := ts.do(t, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/shelf/extract/text",
				map[string]string{"text": "Brot"}))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestExtract_Speech(t *testing.T) {
	ts := newTestServer(t)
	ts.extractor.Transcript = "ein Kilo Äpfel"
	ts.extractor.Text = []byte(`{"name":"Äpfel","menge":1,"einheit":"kg","kategorie":"Obst"}`)

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/api/v1/shelf/extract/speech",
		"file", "memo.webm", "audio/webm", []byte("webm-bytes"))
	status, env := ts.do(t, req)
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Text  string `json:"text"`
		Draft struct {
			Unit string `json:"unit"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "ein Kilo Äpfel", res.Text)
	assert.Equal(t, "kg", res.Draft.Unit)

	t.Run("wrong field name", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPost, "/api/v1/shelf/extract/speech",
			"audio", "memo.webm", "audio/webm", []byte("webm-bytes"))
		status, _ := ts.do(t, req)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("not multipart", func(t *testing.T) {
		status, _ := ts.do(t, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/shelf/extract/speech",
			map[string]string{"file": "x"}))
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestExtract_Image(t *testing.T) {
	ts := newTestServer(t)
	ts.extractor.Image = []byte(`{"items":[
		{"name":"Tomaten","quantity":3,"unit":"Stk","category":"Gemüse","confidence":0.9},
		{"name":" ","quantity":1}
	],"notes":""}`)

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/api/v1/shelf/extract/image",
		"image", "shelf.jpg", "image/jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0})
	status, env := ts.do(t, req)
	require.Equal(t, http.StatusOK, status)

	var res struct {
		Discarded int `json:"discarded"`
		Drafts    []struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"drafts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Discarded)
	require.Len(t, res.Drafts, 1)
	assert.Equal(t, "Tomaten", res.Drafts[0].Name)
	assert.Equal(t, "Gemüse", res.Drafts[0].Category)

	t.Run("non image upload", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, http.MethodPost, "/api/v1/shelf/extract/image",
			"image", "notes.txt", "text/plain", []byte("hello"))
		status, env := ts.do(t, req)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})
}

func TestExtract_UploadTooLarge(t *testing.T) {
	ts := newTestServer(t)

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/api/v1/shelf/extract/image",
		"image", "huge.jpg", "image/jpeg", make([]byte, 3<<20))
	status, _ := ts.do(t, req)
	assert.Equal(t, http.StatusBadRequest, status)
}

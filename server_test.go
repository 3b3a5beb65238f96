package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"pngme/pngmeta"
	"pngme/secret"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUpload(t *testing.T) []byte {
	t.Helper()
	env := newTestEnv(t, "")
	raw, err := os.ReadFile(env.image)
	require.NoError(t, err)
	img, err := pngmeta.ParsePng(raw)
	require.NoError(t, err)
	ruSt, err := pngmeta.ParseChunkType("ruSt")
	require.NoError(t, err)
	seAl, err := pngmeta.ParseChunkType("seAl")
	require.NoError(t, err)
	sealed, err := secret.Seal("hunter2", []byte(secretMessage))
	require.NoError(t, err)
	img.InsertBeforeEnd(pngmeta.NewChunk(ruSt, []byte(secretMessage)))
	img.InsertBeforeEnd(pngmeta.NewChunk(seAl, sealed))
	return img.Bytes()
}

func post(t *testing.T, ts *httptest.Server, path string, body []byte, header map[string]string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(newRouter())
	defer ts.Close()
	resp, err := ts.Client().Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestListChunksHandler(t *testing.T) {
	ts := httptest.NewServer(newRouter())
	defer ts.Close()
	status, body := post(t, ts, "/api/chunks", testUpload(t), nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var chunks []chunkInfo
	require.NoError(t, json.Unmarshal(body, &chunks))
	require.GreaterOrEqual(t, len(chunks), 4)
	assert.Equal(t, "IHDR", chunks[0].Type.String())
	assert.Equal(t, "CP-u", chunks[0].Flags)
	last := chunks[len(chunks)-1]
	assert.Equal(t, pngmeta.IEND, last.Type.String())
	assert.Equal(t, "ae426082", last.CRC)

	ruSt := chunks[len(chunks)-3]
	assert.Equal(t, "ruSt", ruSt.Type.String())
	assert.Equal(t, secretMessage, ruSt.Preview)
	assert.False(t, ruSt.Sealed)
	assert.True(t, chunks[len(chunks)-2].Sealed)
}

func TestDecodeChunkHandler(t *testing.T) {
	ts := httptest.NewServer(newRouter())
	defer ts.Close()
	upload := testUpload(t)

	status, body := post(t, ts, "/api/chunks/ruSt", upload, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var plain decodedChunk
	require.NoError(t, json.Unmarshal(body, &plain))
	assert.Equal(t, secretMessage, plain.Message)
	assert.Equal(t, uint32(len(secretMessage)), plain.Length)
	assert.False(t, plain.Sealed)
	assert.Equal(t, "ruSt", plain.Type.String())
	assert.Contains(t, string(body), `"type":"ruSt"`)

	status, body = post(t, ts, "/api/chunks/seAl", upload, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var locked decodedChunk
	require.NoError(t, json.Unmarshal(body, &locked))
	assert.True(t, locked.Sealed)
	assert.Empty(t, locked.Message)
	assert.True(t, secret.IsSealed(locked.Data))

	status, body = post(t, ts, "/api/chunks/seAl", upload, map[string]string{secretHeader: "hunter2"})
	require.Equal(t, http.StatusOK, status, string(body))
	var opened decodedChunk
	require.NoError(t, json.Unmarshal(body, &opened))
	assert.Equal(t, secretMessage, opened.Message)
}

func TestServerErrors(t *testing.T) {
	ts := httptest.NewServer(newRouter())
	defer ts.Close()
	upload := testUpload(t)
	cases := []struct {
		path   string
		body   []byte
		header map[string]string
		want   int
	}{
		{path: "/api/chunks", body: []byte("definitely not a png file"), want: http.StatusUnprocessableEntity},
		{path: "/api/chunks", body: upload[:len(upload)-3], want: http.StatusUnprocessableEntity},
		{path: "/api/chunks/Ru1t", body: upload, want: http.StatusBadRequest},
		{path: "/api/chunks/RuSt", body: upload, want: http.StatusNotFound},
		{path: "/api/chunks/seAl", body: upload, header: map[string]string{secretHeader: "wrong"}, want: http.StatusForbidden},
		{path: "/api/chunks/ruSt", body: upload, header: map[string]string{secretHeader: "hunter2"}, want: http.StatusBadRequest},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			status, body := post(t, ts, tc.path, tc.body, tc.header)
			assert.Equal(t, tc.want, status, string(body))
			var resp map[string]string
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

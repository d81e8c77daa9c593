package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInlineMessage(t *testing.T) {
	assert.Equal(t, "", InlineMessage(nil, "fallback"))
	assert.Equal(t, "fill it", InlineMessage(&ValidationError{Message: "fill it"}, "fallback"))
	assert.Equal(t, "duplicate isbn", InlineMessage(&ServerRejection{Message: "duplicate isbn"}, "fallback"))
	assert.Equal(t, "fallback", InlineMessage(&ServerRejection{}, "fallback"))
	assert.Equal(t, "fallback", InlineMessage(&TransportError{Err: errors.New("refused")}, "fallback"))
	assert.Equal(t, "fallback", InlineMessage(&DecodeError{Err: errors.New("eof")}, "fallback"))
}

func TestLocalizer(t *testing.T) {
	pt := NewLocalizer("")
	base, _ := pt.Tag().Base()
	assert.Equal(t, "pt", base.String())
	region, _ := pt.Tag().Region()
	assert.Equal(t, "BR", region.String())
	assert.Equal(t, CollectionMessages{
		FetchFailed:  "Erro ao buscar livros.",
		CreateFailed: "Erro ao criar livro",
		UpdateFailed: "Erro ao atualizar livro",
		SaveFailed:   "Erro ao salvar livro.",
	}, pt.Collection(BooksCollection))

	en := NewLocalizer("en-US")
	assert.Equal(t, "Failed to fetch categories.", en.Collection(CategoriesCollection).FetchFailed)
	assert.Equal(t, "Please fill in all fields before saving.", en.Text(msgAllRequired))
}

func TestDecodeOpenRequestBody(t *testing.T) {
	id, err := DecodeOpenRequestBody(httptest.NewRequest(http.MethodPost, "/", nil))
	assert.NoError(t, err)
	assert.Nil(t, id)

	id, err = DecodeOpenRequestBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":5}`)))
	assert.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, 5, *id)

	_, err = DecodeOpenRequestBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"book":5}`)))
	assert.Error(t, err)
}

func TestParseEntityID(t *testing.T) {
	id, err := ParseEntityID("12")
	assert.NoError(t, err)
	assert.Equal(t, 12, id)
	_, err = ParseEntityID("0")
	assert.Error(t, err)
	_, err = ParseEntityID("b:1")
	assert.Error(t, err)
}

func TestGetRequestSourceIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	assert.Equal(t, "10.0.0.1", GetRequestSourceIP(req))

	req.Header.Set("X-FORWARDED-FOR", "bad, 172.16.0.2")
	assert.Equal(t, "172.16.0.2", GetRequestSourceIP(req))

	req.Header.Set("X-REAL-IP", "192.168.1.1")
	assert.Equal(t, "192.168.1.1", GetRequestSourceIP(req))
}

func TestWriteResponseOnGoneClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	err := WriteResponse(ctx, w, GenericResponse("r:0", http.StatusOK, "ok", nil, EmptyData))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 499, w.Code)
}

func TestIDsHandler(t *testing.T) {
	ids := NewIDsHandler()
	id := ids.Generate(ActivityIDPrefix)
	assert.True(t, strings.HasPrefix(id, "a:"))
	assert.True(t, ids.IsValid(id, ActivityIDPrefix))
	assert.False(t, ids.IsValid(id, RequestIDPrefix))
	assert.False(t, ids.IsValid("a:not-a-uuid", ActivityIDPrefix))
}

func TestRotatingWriter(t *testing.T) {
	folder := t.TempDir()
	clock := NewMockClocker()
	rw := NewRotatingWriter(&Config{LogFolder: folder, LogMaxSize: 1}, clock)
	defer rw.Close()

	_, err := rw.Write(bytes.Repeat([]byte("a"), megabyte/2))
	require.NoError(t, err)
	clock.MockNow = clock.MockNow.Add(time.Second)
	_, err = rw.Write(bytes.Repeat([]byte("b"), megabyte/2+1))
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(folder, "*.dev.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, filepath.Join(folder, "20230702.000000.dev.log"), files[0])

	_, err = rw.Write(bytes.Repeat([]byte("c"), megabyte+1))
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{IsProduction: true, LogLevel: zapcore.InfoLevel, GitTag: "v1.0.0"}
	logger, flusher := SetupLogging(config, zapcore.AddSync(&buf), NewMockClocker())
	logger.Debug("hidden")
	logger.Info("shown", zap.String("screen", BooksCollection))
	require.NoError(t, flusher())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"app.tag":"v1.0.0"`)
	assert.Contains(t, out, `"ts":"2023-07-02T00:00:00.000Z"`)

	assert.Equal(t, filepath.Join("logs", "20230702.000000.prod.log"), LogFilePath("logs", true, NewMockClocker().Now()))
}

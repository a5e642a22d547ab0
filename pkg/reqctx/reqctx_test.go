package reqctx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustrum/apate/pkg/store"
)

func newRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	return r
}

func TestMethodAndPath(t *testing.T) {
	r := newRequest(t, "POST", "/widgets/42?x=1", nil)
	ctx := New(r, nil, map[string]string{"id": "42"}, store.New())
	assert.Equal(t, "POST", ctx.Method())
	assert.Equal(t, "/widgets/42", ctx.Path())
}

func TestLoadHeadersCollapsesRepeatedToLastLowercased(t *testing.T) {
	r := newRequest(t, "GET", "/", nil)
	r.Header.Add("X-Trace", "one")
	r.Header.Add("X-Trace", "two")
	ctx := New(r, nil, nil, store.New())
	headers := ctx.LoadHeaders()
	assert.Equal(t, "two", headers["x-trace"])
}

func TestLoadQueryArgsCollapsesRepeatedToLast(t *testing.T) {
	r := newRequest(t, "GET", "/?tag=a&tag=b", nil)
	ctx := New(r, nil, nil, store.New())
	assert.Equal(t, "b", ctx.LoadQueryArgs()["tag"])
}

func TestLoadPathArgsReturnsCaptures(t *testing.T) {
	r := newRequest(t, "GET", "/widgets/42", nil)
	ctx := New(r, nil, map[string]string{"id": "42"}, store.New())
	assert.Equal(t, map[string]string{"id": "42"}, ctx.LoadPathArgs())
}

func TestLoadBodyStringReplacesInvalidUTF8(t *testing.T) {
	r := newRequest(t, "POST", "/", nil)
	ctx := New(r, []byte{0xff, 0xfe, 'h', 'i'}, nil, store.New())
	assert.Contains(t, ctx.LoadBodyString(), "hi")
}

func TestLoadBodyJSONParsesAndCaches(t *testing.T) {
	r := newRequest(t, "POST", "/", nil)
	ctx := New(r, []byte(`{"a":1}`), nil, store.New())
	v, err := ctx.LoadBodyJSON()
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, m["a"])

	v2, err2 := ctx.LoadBodyJSON()
	require.NoError(t, err2)
	assert.Equal(t, v, v2)
}

func TestLoadBodyJSONEmptyBodyIsNil(t *testing.T) {
	r := newRequest(t, "POST", "/", nil)
	ctx := New(r, []byte("  "), nil, store.New())
	v, err := ctx.LoadBodyJSON()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLoadBodyJSONInvalidReturnsError(t *testing.T) {
	r := newRequest(t, "POST", "/", nil)
	ctx := New(r, []byte("not json"), nil, store.New())
	_, err := ctx.LoadBodyJSON()
	assert.Error(t, err)
}

func TestIncCounterIncrementsSharedStore(t *testing.T) {
	r := newRequest(t, "GET", "/", nil)
	s := store.New()
	ctx := New(r, nil, nil, s)
	assert.Equal(t, uint64(0), ctx.IncCounter("hits"))
	assert.Equal(t, uint64(1), ctx.IncCounter("hits"))
	assert.Equal(t, uint64(2), s.Counters.Get("hits"))
}

func TestStorageReadWriteRoundTrips(t *testing.T) {
	r := newRequest(t, "GET", "/", nil)
	ctx := New(r, nil, nil, store.New())
	assert.True(t, store.IsMissing(ctx.StorageRead("k")))

	prev := ctx.StorageWrite("k", "v1")
	assert.True(t, store.IsMissing(prev))
	assert.Equal(t, "v1", ctx.StorageRead("k"))

	prev2 := ctx.StorageWrite("k", "v2")
	assert.Equal(t, "v1", prev2)
}

func TestRequestEnvExposesSnakeCaseSurface(t *testing.T) {
	r := newRequest(t, "GET", "/widgets/42", []byte(`{"ok":true}`))
	ctx := New(r, []byte(`{"ok":true}`), map[string]string{"id": "42"}, store.New())
	env := RequestEnv(ctx)

	assert.Equal(t, "GET", env["method"])
	assert.Equal(t, "/widgets/42", env["path"])

	loadPathArgs := env["load_path_args"].(func() map[string]string)
	assert.Equal(t, "42", loadPathArgs()["id"])

	loadBodyJSON := env["load_body_json"].(func() any)
	m, ok := loadBodyJSON().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, m["ok"])

	_, hasSetBody := env["set_body"]
	assert.False(t, hasSetBody, "RequestEnv must not expose mutable response accessors")
}

func TestResponseEnvAddsMutableBodyAndCode(t *testing.T) {
	r := newRequest(t, "GET", "/", nil)
	ctx := New(r, nil, nil, store.New())
	rc := NewResponse(ctx, []byte("hello"))
	env := ResponseEnv(rc)

	getBody := env["get_body"].(func() []byte)
	assert.Equal(t, []byte("hello"), getBody())

	setBody := env["set_body"].(func([]byte))
	setBody([]byte("rewritten"))
	assert.Equal(t, []byte("rewritten"), rc.Body)

	setCode := env["set_response_code"].(func(int))
	setCode(418)
	assert.Equal(t, 418, rc.ResponseCode)
}

func TestTemplateEnvExposesReadWriteResponseCode(t *testing.T) {
	r := newRequest(t, "GET", "/", nil)
	ctx := New(r, nil, nil, store.New())
	code := 200
	env := TemplateEnv(ctx, &code)

	getCode := env["get_response_code"].(func() int)
	assert.Equal(t, 200, getCode())

	setCode := env["set_response_code"].(func(int))
	setCode(503)
	assert.Equal(t, 503, code)
	assert.Equal(t, 503, getCode())
}

func TestNewResponseSentinelStartsAtZero(t *testing.T) {
	r := newRequest(t, "GET", "/", nil)
	ctx := New(r, nil, nil, store.New())
	rc := NewResponse(ctx, []byte("body"))
	assert.Equal(t, 0, rc.ResponseCode)
}

func TestReadAllLimitedBoundsReader(t *testing.T) {
	data, err := ReadAllLimited(bytes.NewReader([]byte("0123456789")), 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123"), data)
}

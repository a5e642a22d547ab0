package response

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustrum/apate/pkg/apierr"
	"github.com/rustrum/apate/pkg/reqctx"
	"github.com/rustrum/apate/pkg/spec"
	"github.com/rustrum/apate/pkg/store"
)

func newCtx(t *testing.T, body []byte) *reqctx.RequestContext {
	t.Helper()
	r := httptest.NewRequest("GET", "/widgets/7", nil)
	return reqctx.New(r, body, map[string]string{"id": "7"}, store.New())
}

func TestBuildStringOutputDefaultsToCode200(t *testing.T) {
	b := New()
	result, err := b.Build(spec.Response{Output: "hello"}, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, 200, result.Code)
	assert.Equal(t, "hello", string(result.Body))
}

func TestBuildRespectsExplicitCode(t *testing.T) {
	b := New()
	result, err := b.Build(spec.Response{Code: 201, Output: "created"}, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, 201, result.Code)
}

func TestBuildHexOutput(t *testing.T) {
	b := New()
	result, err := b.Build(spec.Response{Output: "0x68 65 6c 6c 6f", Type: spec.OutputHex}, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result.Body))
}

func TestBuildHexOutputInvalidIsBodyDecodeError(t *testing.T) {
	b := New()
	_, err := b.Build(spec.Response{Output: "zz", Type: spec.OutputHex}, newCtx(t, nil), nil)
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindBodyDecode, apiErr.Kind)
}

func TestBuildBase64Output(t *testing.T) {
	b := New()
	result, err := b.Build(spec.Response{Output: "aGVsbG8=", Type: spec.OutputBase64}, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result.Body))
}

func TestBuildJinjaOutputInterpolatesPathArgs(t *testing.T) {
	b := New()
	result, err := b.Build(spec.Response{Output: "id={{ ctx.load_path_args().id }}", Type: spec.OutputJinja}, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "id=7", string(result.Body))
}

func TestBuildJinjaOutputCanForceResponseCode(t *testing.T) {
	b := New()
	r := spec.Response{
		Output: "{{ ctx.set_response_code(201) }}created",
		Type:   spec.OutputJinja,
		Code:   200,
	}
	result, err := b.Build(r, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, 201, result.Code)
	assert.Equal(t, "created", string(result.Body))
}

func TestBuildJinjaOutputCanReadResponseCode(t *testing.T) {
	b := New()
	r := spec.Response{
		Output: "code={{ ctx.get_response_code() }}",
		Type:   spec.OutputJinja,
		Code:   418,
	}
	result, err := b.Build(r, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "code=418", string(result.Body))
}

func TestBuildScriptOutputEvaluatesExpression(t *testing.T) {
	b := New()
	result, err := b.Build(spec.Response{Output: `"hi " + args.name`, Type: spec.OutputScript}, newCtx(t, nil), map[string]any{"name": "trent"})
	require.NoError(t, err)
	assert.Equal(t, "hi trent", string(result.Body))
}

func TestBuildUnknownOutputTypeErrors(t *testing.T) {
	b := New()
	_, err := b.Build(spec.Response{Output: "x", Type: spec.OutputType("yaml")}, newCtx(t, nil), nil)
	require.Error(t, err)
}

func TestBuildProcessorRawReturnRewritesBody(t *testing.T) {
	b := New()
	r := spec.Response{
		Output:     "original",
		Processors: []string{`string(ctx.get_body()) + " processed"`},
	}
	result, err := b.Build(r, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "original processed", string(result.Body))
}

func TestBuildProcessorMapReturnRewritesBodyAndCode(t *testing.T) {
	b := New()
	r := spec.Response{
		Output:     "original",
		Processors: []string{`{body: "rewritten", code: 503}`},
	}
	result, err := b.Build(r, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, 503, result.Code)
	assert.Equal(t, "rewritten", string(result.Body))
}

func TestBuildProcessorsRunInOrder(t *testing.T) {
	b := New()
	r := spec.Response{
		Output: "a",
		Processors: []string{
			`string(ctx.get_body()) + "b"`,
			`string(ctx.get_body()) + "c"`,
		},
	}
	result, err := b.Build(r, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(result.Body))
}

func TestBuildProcessorSetBodyHelperMutatesInPlace(t *testing.T) {
	b := New()
	r := spec.Response{
		Output:     "original",
		Processors: []string{`ctx.set_body("mutated")`},
	}
	result, err := b.Build(r, newCtx(t, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "mutated", string(result.Body))
}

func TestBuildProcessorErrorIsProcessorKind(t *testing.T) {
	b := New()
	r := spec.Response{
		Output:     "original",
		Processors: []string{`this is not ( valid`},
	}
	_, err := b.Build(r, newCtx(t, nil), nil)
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindProcessor, apiErr.Kind)
}

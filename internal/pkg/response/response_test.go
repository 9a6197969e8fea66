package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func serve(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/test", handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSuccess(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		Success(c, gin.H{"key": "value"})
	})

	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", data["key"])
}

func TestSuccess_NilData(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		Success(c, nil)
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Nil(t, resp.Data)
}

func TestSuccessWithMessage(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		SuccessWithMessage(c, "操作成功", gin.H{"result": true})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "操作成功", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		items := []string{"item1", "item2", "item3"}
		SuccessPage(c, 100, 1, 10, true, items)
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(100), data["total"])
	assert.Equal(t, float64(1), data["page"])
	assert.Equal(t, float64(10), data["page_size"])
	assert.Equal(t, true, data["has_more"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 3)
}

func TestSuccessPage_LastPage(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		SuccessPage(c, 3, 1, 10, false, []string{"a", "b", "c"})
	})

	resp := parseResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["has_more"])
}

func TestSuccessPage_EmptyItems(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		SuccessPage(c, 0, 1, 10, false, []string{})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), data["total"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 0)
}

func TestError(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		Error(c, CodeServerError, "自定义错误消息")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeServerError, resp.Code)
	assert.Equal(t, "自定义错误消息", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestErrorHelpers_DefaultMessages(t *testing.T) {
	tests := []struct {
		name        string
		handler     gin.HandlerFunc
		wantCode    int
		wantMessage string
	}{
		{
			name:        "param error",
			handler:     func(c *gin.Context) { ParamError(c, "") },
			wantCode:    CodeParamError,
			wantMessage: "参数错误",
		},
		{
			name:        "auth error",
			handler:     func(c *gin.Context) { AuthError(c, "") },
			wantCode:    CodeAuthFailed,
			wantMessage: "认证失败",
		},
		{
			name:        "permission error",
			handler:     func(c *gin.Context) { PermissionError(c, "") },
			wantCode:    CodePermissionDenied,
			wantMessage: "权限不足",
		},
		{
			name:        "not found error",
			handler:     func(c *gin.Context) { NotFoundError(c, "") },
			wantCode:    CodeResourceNotFound,
			wantMessage: "资源不存在",
		},
		{
			name:        "rate limit error",
			handler:     func(c *gin.Context) { RateLimitError(c, "") },
			wantCode:    CodeRateLimited,
			wantMessage: "操作过于频繁",
		},
		{
			name:        "server error",
			handler:     func(c *gin.Context) { ServerError(c, "") },
			wantCode:    CodeServerError,
			wantMessage: "服务器内部错误",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, tt.handler)

			resp := parseResponse(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestErrorHelpers_CustomMessages(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		RateLimitError(c, "操作过于频繁，请 5 秒后再试")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeRateLimited, resp.Code)
	assert.Equal(t, "操作过于频繁，请 5 秒后再试", resp.Message)
}

func TestError_UnknownCode(t *testing.T) {
	w := serve(t, func(c *gin.Context) {
		Error(c, 9999, "")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, 9999, resp.Code)
	assert.Empty(t, resp.Message)
}

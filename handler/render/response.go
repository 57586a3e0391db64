package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// ResponseErrorMessageAsHint keep internal error messages as hint
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("RESPONSE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type wrapResponse struct {
	status int
	header http.Header
	buf    *bytes.Buffer
}

func (w *wrapResponse) Header() http.Header {
	return w.header
}

func (w *wrapResponse) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *wrapResponse) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *wrapResponse) isJsonContent() bool {
	typ := w.header.Get("Content-Type")
	return strings.HasPrefix(typ, "application/json")
}

type dataResponse struct {
	Data json.RawMessage `json:"data,omitempty"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Hint string `json:"hint,omitempty"`
}

// WrapResponse wrap successful json bodies as {"data": ...}; internal error
// messages are replaced unless exposed as hint
func WrapResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrap := &wrapResponse{
			status: http.StatusOK,
			header: w.Header(),
			buf:    &bytes.Buffer{},
		}

		next.ServeHTTP(wrap, r)

		body := wrap.buf.Bytes()
		if wrap.isJsonContent() {
			if wrap.status < http.StatusBadRequest {
				body, _ = json.Marshal(dataResponse{Data: bytes.TrimSpace(body)})
			} else if wrap.status >= http.StatusInternalServerError {
				var resp errorResponse
				if err := json.Unmarshal(body, &resp); err == nil {
					if ResponseErrorMessageAsHint {
						resp.Hint = resp.Msg
					}
					resp.Msg = http.StatusText(wrap.status)
					body, _ = json.Marshal(resp)
				}
			}
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(wrap.status)
		_, _ = w.Write(body)
	})
}

package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"rtoken/core"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render json")
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(t)); err != nil {
		logrus.WithError(err).Errorln("render text")
	}
}

// Error write error
func Error(w http.ResponseWriter, statusCode, errCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResponse{Code: errCode, Msg: err.Error()}); err != nil {
		logrus.WithError(err).Errorln("render error")
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, -1, err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, -1, err)
}

// Err protocol errors are bad requests carrying their code, the rest are internal
func Err(w http.ResponseWriter, err error) {
	var code core.ErrorCode
	if errors.As(err, &code) {
		status := http.StatusBadRequest
		if code == core.ErrAuctionNotFound || code == core.ErrAssetNotRegistered {
			status = http.StatusNotFound
		}

		Error(w, status, int(code), err)
		return
	}

	Error(w, http.StatusInternalServerError, int(core.ErrUnknown), err)
}

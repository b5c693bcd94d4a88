package status

import (
	"errors"
	"net/http"

	"github.com/carson-networks/hermes/internal/logging"
	"github.com/carson-networks/hermes/internal/service"
)

type Handler struct {
	Tables service.TableSource
}

func NewHandler(source service.TableSource) Handler {
	return Handler{Tables: source}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	snapshot := h.Tables.Snapshot()
	if snapshot == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return errors.New("status: no lookup tables loaded")
	}

	logData.AddData("referenceCurrency", snapshot.ReferenceCurrency)
	w.WriteHeader(http.StatusOK)
	return nil
}

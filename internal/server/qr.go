package server

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
)

// handleQR renders the room's join link as a QR code PNG.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	room, _, err := s.rooms.Snapshot(r.Context(), p.ByName("code"))
	if err != nil {
		writeError(w, err)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	joinURL := fmt.Sprintf("%s://%s/join/%s", scheme, r.Host, room.Code)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		writeError(w, fmt.Errorf("failed to encode QR code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

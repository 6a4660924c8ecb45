package http

import (
	"net/http"

	"fincontrol/internal/core"
	"fincontrol/internal/services"
)

// handleListBills serves ?status=pendente|pago|atrasado; the filter matches
// the status as displayed, so atrasado finds overdue pendente bills.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	filter := core.BillStatus(r.URL.Query().Get("status"))
	bills, err := s.svc.Bills.List(r.Context(), userIDFrom(r.Context()), filter)
	if err != nil {
		s.writeError(w, r, err, detailBillNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(bills, toBillResponse))
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	b, err := s.svc.Bills.Create(r.Context(), userIDFrom(r.Context()), req.input())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(b))
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billPatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	b, err := s.svc.Bills.Update(r.Context(), userIDFrom(r.Context()), r.PathValue("id"),
		services.BillPatch{Status: req.Status, PaidAt: req.PaidAt})
	if err != nil {
		s.writeError(w, r, err, detailBillNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(b))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Bills.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, detailBillNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Conta deletada com sucesso"})
}

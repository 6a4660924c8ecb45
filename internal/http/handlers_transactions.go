package http

import "net/http"

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, detailTxNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(txs, toTransactionResponse))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	t, err := s.svc.Transactions.Create(r.Context(), userIDFrom(r.Context()), req.input())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	t, err := s.svc.Transactions.Update(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), req.patch())
	if err != nil {
		s.writeError(w, r, err, detailTxNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, detailTxNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Transação deletada com sucesso"})
}

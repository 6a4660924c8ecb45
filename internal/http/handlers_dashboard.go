package http

import (
	"net/http"

	"fincontrol/internal/core"
	"fincontrol/internal/services"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Dashboard.Stats(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalEntradas:      money(st.TotalEntradas),
		TotalSaidas:        money(st.TotalSaidas),
		Saldo:              money(st.Saldo),
		TransacoesRecentes: st.TransacoesRecentes,
		MetasAtivas:        st.MetasAtivas,
		ContasAVencer:      st.ContasAVencer,
	})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.Dashboard.CategoryBreakdown(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(totals, func(c core.CategoryTotal) categoryTotalResponse {
		return categoryTotalResponse{Category: c.Category, Total: money(c.Total)}
	}))
}

func (s *Server) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.svc.Dashboard.MonthlyComparison(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(buckets, func(b core.MonthlyBucket) monthlyResponse {
		return monthlyResponse{
			Month:    b.Month,
			Entradas: money(b.Entradas),
			Saidas:   money(b.Saidas),
			Saldo:    money(b.Saldo()),
		}
	}))
}

func (s *Server) handleUpcomingBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.svc.Dashboard.UpcomingBills(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(bills, toBillResponse))
}

func (s *Server) handleInvestmentTips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.InvestmentTips())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	resp := categoriesResponse{Transactions: []string{}, Bills: []string{}}
	if s.svc.Taxonomy != nil {
		tx, bills, err := s.svc.Taxonomy.List(r.Context())
		if err != nil {
			s.writeError(w, r, err, "")
			return
		}
		resp.Transactions, resp.Bills = tx, bills
	}
	writeJSON(w, http.StatusOK, resp)
}

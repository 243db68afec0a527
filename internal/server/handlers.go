package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"name":    "scry",
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// tradeListOptions parses the shared query filters for trade listing and export
func tradeListOptions(r *http.Request) (interfaces.TradeListOptions, error) {
	opts := interfaces.TradeListOptions{
		Ticker: strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker"))),
	}

	if raw := r.URL.Query().Get("recommendation"); raw != "" {
		rec, err := models.ParseRecommendation(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid recommendation %q", raw)
		}
		opts.Recommendation = &rec
	}
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid min_score %q", raw)
		}
		opts.MinScore = score
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, fmt.Errorf("invalid limit %q", raw)
		}
		opts.Limit = limit
	}
	return opts, nil
}

func (s *Server) handleTradesList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts, err := tradeListOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, err := s.app.Store.ListTrades(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list scored trades")
		WriteError(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(trades),
		"trades": trades,
	})
}

func (s *Server) handleTradeByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/trades/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Trade ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		trade, err := s.app.Store.GetTrade(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, trade)
	case http.MethodDelete:
		if err := s.app.Store.DeleteTrade(r.Context(), id); err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var trade models.InsiderTrade
	if !DecodeJSON(w, r, &trade) {
		return
	}
	if strings.TrimSpace(trade.Ticker) == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	if trade.Date.IsZero() {
		trade.Date = time.Now().UTC()
	}

	scored, err := s.app.Analyzer.AnalyzeTrade(r.Context(), trade)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", trade.Ticker).Msg("Analysis failed")
		WriteError(w, http.StatusUnprocessableEntity, "Analysis failed: "+err.Error())
		return
	}

	if err := s.app.Store.SaveTrade(r.Context(), scored); err != nil {
		s.logger.Warn().Err(err).Str("id", scored.ID).Msg("Failed to persist scored trade")
	}

	WriteJSON(w, http.StatusOK, scored)
}

func (s *Server) handleScanRun(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	trades, err := s.app.Scan.RunScan(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Manual scan failed")
		WriteError(w, http.StatusBadGateway, "Scan failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(trades),
		"trades": trades,
	})
}

func (s *Server) handleTradesExport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	opts, err := tradeListOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, err := s.app.Store.ListTrades(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list scored trades for export")
		WriteError(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}

	filename := fmt.Sprintf("insider-trades-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := s.app.Export.WriteCSV(w, trades); err != nil {
		s.logger.Error().Err(err).Msg("CSV export failed")
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := strings.ToUpper(strings.TrimSuffix(PathParam(r, "/api/charts/", ""), ".png"))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	bars, err := s.app.Cache.GetHistory(r.Context(), ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("History cache read failed")
	}
	if bars == nil {
		bars, err = s.app.History.GetHistory(r.Context(), ticker, interfaces.WithHistoryDays(365))
		if err != nil {
			WriteError(w, http.StatusBadGateway, "Failed to fetch price history: "+err.Error())
			return
		}
		if err := s.app.Cache.SaveHistory(r.Context(), ticker, bars); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("History cache write failed")
		}
	}

	technicals := s.computer.Compute(ticker, bars)
	png, err := s.app.Export.RenderChart(ticker, bars, technicals)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Chart rendering failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

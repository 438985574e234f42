// internal/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
	"github.com/cryptothud/solana-next-typescript-starter/internal/utils"
)

const (
	RequestGetXPBalance = "getXPBalance"
	transactionsPerPage = 10
	maxBodyBytes        = 1 << 16
)

// Ошибки, возвращаемые клиенту.
var (
	ErrUnknownRequest = errors.New("unknown request")
	ErrBadRequest     = errors.New("bad request")
	ErrMissingWallet  = errors.New("missing wallet")
	ErrInternal       = errors.New("internal error")
)

// ReadRequest - тело POST /api/read.
type ReadRequest struct {
	Request string `json:"request"`
	Wallet  string `json:"wallet"`
}

type ReadResponse struct {
	Result float64 `json:"result"`
}

type TransactionsResponse struct {
	Wallet       string                `json:"wallet"`
	Page         int                   `json:"page"`
	Pages        int                   `json:"pages"`
	Total        int64                 `json:"total"`
	Transactions []*models.Transaction `json:"transactions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json;charset=utf8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// checkHandler - проверка доступности сервера.
func (s *Server) checkHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"info": "success"})
}

func (s *Server) helloHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"name": "John Doe"})
}

// readHandler отвечает на запросы чтения документного хранилища.
// Отсутствующий пользователь имеет 0 xp.
func (s *Server) readHandler(w http.ResponseWriter, r *http.Request) {
	var req ReadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrBadRequest)
		return
	}

	switch req.Request {
	case RequestGetXPBalance:
		if req.Wallet == "" {
			s.writeError(w, http.StatusBadRequest, ErrMissingWallet)
			return
		}
		xp, err := s.xp.GetXP(r.Context(), req.Wallet)
		if errors.Is(err, storage.ErrNotFound) {
			xp, err = 0, nil
		}
		if err != nil {
			s.logger.Error("failed to read xp",
				zap.String("wallet", req.Wallet),
				zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, ErrInternal)
			return
		}
		s.writeJSON(w, http.StatusOK, ReadResponse{Result: xp})
	default:
		s.writeError(w, http.StatusBadRequest, ErrUnknownRequest)
	}
}

// transactionsHandler отдаёт журнал кошелька по 10 записей на страницу.
func (s *Server) transactionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	wallet := q.Get("wallet")
	if _, err := solana.PublicKeyFromBase58(wallet); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrMissingWallet)
		return
	}
	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, ErrBadRequest)
			return
		}
		page = n
	}

	total, err := s.journal.Count(r.Context(), wallet)
	if err != nil {
		s.logger.Error("failed to count transactions", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, ErrInternal)
		return
	}
	txs, err := s.journal.List(r.Context(), wallet, transactionsPerPage, (page-1)*transactionsPerPage)
	if err != nil {
		s.logger.Error("failed to list transactions", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, ErrInternal)
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}

	s.writeJSON(w, http.StatusOK, TransactionsResponse{
		Wallet:       wallet,
		Page:         page,
		Pages:        utils.PageCount(int(total), transactionsPerPage),
		Total:        total,
		Transactions: txs,
	})
}

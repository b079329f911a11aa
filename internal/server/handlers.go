package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/stakeledger/internal/ledger"
	"github.com/roach88/stakeledger/internal/service"
)

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// projectionBody is returned by GET /points?project=true.
type projectionBody struct {
	Record    ledger.Record `json:"record"`
	Accrued   uint64        `json:"accrued"`
	Projected bool          `json:"projected"`
}

func (s *Server) open(c *gin.Context) {
	rcpt, err := s.ledger.Open(c.Request.Context(), caller(c), owner(c))
	s.respond(c, http.StatusCreated, rcpt, err)
}

func (s *Server) deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	rcpt, err := s.ledger.Deposit(c.Request.Context(), caller(c), owner(c), req.Amount)
	s.respond(c, http.StatusOK, rcpt, err)
}

func (s *Server) withdraw(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	rcpt, err := s.ledger.Withdraw(c.Request.Context(), caller(c), owner(c), req.Amount)
	s.respond(c, http.StatusOK, rcpt, err)
}

func (s *Server) claim(c *gin.Context) {
	rcpt, err := s.ledger.Claim(c.Request.Context(), caller(c), owner(c))
	s.respond(c, http.StatusOK, rcpt, err)
}

// points persists a settlement unless ?project=true, which only projects.
func (s *Server) points(c *gin.Context) {
	if c.Query("project") == "true" {
		res, err := s.ledger.Projection(c.Request.Context(), owner(c))
		s.respond(c, http.StatusOK, projectionBody{Record: res.Record, Accrued: res.Accrued, Projected: true}, err)
		return
	}

	who, ok := parseCaller(c)
	if !ok {
		return
	}
	rcpt, err := s.ledger.Points(c.Request.Context(), who, owner(c))
	s.respond(c, http.StatusOK, rcpt, err)
}

func (s *Server) get(c *gin.Context) {
	rec, err := s.ledger.Get(c.Request.Context(), owner(c))
	s.respond(c, http.StatusOK, rec, err)
}

func (s *Server) history(c *gin.Context) {
	entries, err := s.ledger.History(c.Request.Context(), owner(c))
	s.respond(c, http.StatusOK, gin.H{"entries": entries}, err)
}

func (s *Server) pendingClaims(c *gin.Context) {
	claims, err := s.ledger.PendingClaims(c.Request.Context())
	s.respond(c, http.StatusOK, gin.H{"claims": claims}, err)
}

// issuedBody is returned when a claim is acknowledged.
type issuedBody struct {
	OpID     string `json:"op_id"`
	IssuedAt int64  `json:"issued_at"`
}

func (s *Server) markIssued(c *gin.Context) {
	opID := c.Param("op_id")
	issuedAt, err := s.ledger.MarkIssued(c.Request.Context(), opID)
	if err == nil {
		s.logger.InfoContext(c.Request.Context(), "claim acknowledged",
			"op_id", opID, "caller", caller(c).String(), "request_id", c.GetString(HeaderRequestID))
	}
	s.respond(c, http.StatusOK, issuedBody{OpID: opID, IssuedAt: issuedAt}, err)
}

func (s *Server) respond(c *gin.Context, status int, body any, err error) {
	if err != nil {
		code, msg := statusFor(err)
		if code >= http.StatusInternalServerError {
			s.logger.ErrorContext(c.Request.Context(), "request failed",
				"path", c.FullPath(), "request_id", c.GetString(HeaderRequestID), "error", err)
		}
		var le *ledger.Error
		if errors.As(err, &le) {
			c.JSON(code, errorBody{Error: errorDetail{Code: msg, Message: err.Error(), Details: le.Details}})
			return
		}
		writeError(c, code, msg, err.Error())
		return
	}
	c.JSON(status, body)
}

// statusFor maps an operation error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	code := service.Code(err)
	switch code {
	case string(ledger.KindInvalidAmount), string(ledger.KindInvalidTimestamp):
		return http.StatusBadRequest, code
	case string(ledger.KindUnauthorized):
		return http.StatusForbidden, code
	case service.CodeNotFound:
		return http.StatusNotFound, code
	case string(ledger.KindInsufficientStake), service.CodeExists, service.CodeInsufficientFunds:
		return http.StatusConflict, code
	case string(ledger.KindOverflow), string(ledger.KindUnderflow), service.CodeBalanceOverflow:
		return http.StatusUnprocessableEntity, code
	}
	return http.StatusInternalServerError, service.CodeInternal
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func abortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

var _ Ledger = (*service.Service)(nil)

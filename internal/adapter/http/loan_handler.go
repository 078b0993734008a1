package http

import (
	"net/http"
	"strconv"

	loanuc "loan-ledger-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loanuc.Usecase }

func NewLoanHandler(uc *loanuc.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	PrincipalAmount  uint64 `json:"principal_amount" validate:"required,gt=0"`
	CollateralAmount uint64 `json:"collateral_amount" validate:"required,gt=0"`
	InterestRateBps  uint32 `json:"interest_rate_bps" validate:"gte=0"`
	DurationSeconds  int64  `json:"duration_seconds" validate:"required,gt=0"`
}

// POST /loans — borrower opens a loan; collateral escrows in the same call.
func (h *LoanHandler) RequestLoan(c echo.Context) error {
	borrower, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid X-Actor-Id"})
	}
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	dto, err := h.uc.Request(c.Request().Context(), loanuc.RequestLoanInput{
		BorrowerID:       borrower,
		PrincipalAmount:  req.PrincipalAmount,
		CollateralAmount: req.CollateralAmount,
		InterestRateBps:  req.InterestRateBps,
		DurationSeconds:  req.DurationSeconds,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

// POST /loans/:loan_id/fund — actor becomes the lender.
func (h *LoanHandler) FundLoan(c echo.Context) error {
	funder, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid X-Actor-Id"})
	}
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.Fund(c.Request().Context(), id, funder)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// POST /loans/:loan_id/repay — borrower settles principal plus interest.
func (h *LoanHandler) RepayLoan(c echo.Context) error {
	caller, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid X-Actor-Id"})
	}
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.Repay(c.Request().Context(), id, caller)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// POST /loans/:loan_id/liquidate — any actor may trigger an eligible close.
func (h *LoanHandler) LiquidateLoan(c echo.Context) error {
	caller, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid X-Actor-Id"})
	}
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.Liquidate(c.Request().Context(), id, caller)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// GET /loans/:loan_id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// GET /loans/:loan_id/repayable — live total owed and interest component.
func (h *LoanHandler) GetTotalRepayable(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.TotalRepayable(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// GET /loans/active — the active-loan index in id order.
func (h *LoanHandler) GetActiveLoans(c echo.Context) error {
	ids, err := h.uc.ActiveLoans(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_ids": ids})
}

// GET /price — latest oracle quote, unvalidated passthrough.
func (h *LoanHandler) GetLatestPrice(c echo.Context) error {
	quote, err := h.uc.LatestPrice(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"price": quote.String()})
}

func parseLoanID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("loan_id"), 10, 64)
}

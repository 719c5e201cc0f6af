package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Vivianhuwz/cobrancayb/internal/caldate"
	receivabledomain "github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

type createRecordRequest struct {
	OrderNumber   string `json:"order_number"`
	InvoiceNumber string `json:"invoice_number"`
	CustomerName  string `json:"customer_name"`
	Amount        string `json:"amount"`
	CreditDays    int    `json:"credit_days"`
	OrderDate     string `json:"order_date"`
	Notes         string `json:"notes"`
}

func (s *Server) CreateRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	var orderDate caldate.Date
	if strings.TrimSpace(req.OrderDate) != "" {
		orderDate, err = caldate.Parse(req.OrderDate)
		if err != nil {
			AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order date"))
			return
		}
	}

	resp, err := s.svc.Create(c.Request.Context(), receivabledomain.CreateRecordRequest{
		OrderNumber:   strings.TrimSpace(req.OrderNumber),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Amount:        amount,
		CreditDays:    req.CreditDays,
		OrderDate:     orderDate,
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRecord(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}

	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	var orderDate caldate.Date
	if strings.TrimSpace(req.OrderDate) != "" {
		orderDate, err = caldate.Parse(req.OrderDate)
		if err != nil {
			AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order date"))
			return
		}
	}

	resp, err := s.svc.Update(c.Request.Context(), receivabledomain.UpdateRecordRequest{
		ID:            id,
		OrderNumber:   strings.TrimSpace(req.OrderNumber),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Amount:        amount,
		CreditDays:    req.CreditDays,
		OrderDate:     orderDate,
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRecords(c *gin.Context) {
	var query struct {
		Customer        string `form:"customer"`
		Status          string `form:"status"`
		IncludeArchived bool   `form:"include_archived"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.svc.List(c.Request.Context(), receivabledomain.ListRecordsRequest{
		CustomerName:    strings.TrimSpace(query.Customer),
		Status:          receivabledomain.Status(strings.TrimSpace(query.Status)),
		IncludeArchived: query.IncludeArchived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordsSummary(c *gin.Context) {
	resp, err := s.svc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addPaymentRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Method string `json:"method"`
	Remark string `json:"remark"`
}

func (s *Server) AddPayment(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}

	var req addPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	var date caldate.Date
	if strings.TrimSpace(req.Date) != "" {
		date, err = caldate.Parse(req.Date)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "invalid payment date"))
			return
		}
	}

	resp, err := s.svc.AddPayment(c.Request.Context(), receivabledomain.AddPaymentRequest{
		RecordID: id,
		Amount:   amount,
		Date:     date,
		Method:   receivabledomain.PaymentMethod(strings.TrimSpace(req.Method)),
		Remark:   req.Remark,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetArchived(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Archived bool `json:"archived"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.svc.SetArchived(c.Request.Context(), id, req.Archived); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id.String(), "archived": req.Archived}})
}

func (s *Server) DeleteRecord(c *gin.Context) {
	id, ok := recordIDParam(c)
	if !ok {
		return
	}

	if err := s.svc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id.String(), "deleted": true}})
}

func recordIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid record id"))
		return 0, false
	}
	return snowflake.ID(n), true
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/orders"
)

const orderNotFound = "Order not found"

func (s *Server) listOrders(c *gin.Context) {
	filter, by, err := orders.ParseListParams(c.Query("status"), c.Query("customer_phone"), c.Query("sort"))
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	views, err := s.query.List(c.Request.Context(), filter, by)
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getOrder(c *gin.Context) {
	view, err := s.query.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, view)
}

// createOrder stores a checkout submission as a new pending order
func (s *Server) createOrder(c *gin.Context) {
	var sub models.OrderSubmission
	if err := bindJSON(c, &sub); err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	order, err := s.orders.Create(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) setOrderStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, statusBindError(err), orderNotFound)
		return
	}
	order, err := s.orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) deleteOrder(c *gin.Context) {
	order, err := s.orders.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, orderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
		"order":   order,
	})
}

// statusBindError reports why a status update body was refused. A body that
// decodes but fails the required check has no usable status.
func statusBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field == "status":
		return models.Invalid("status", "Status must be a string")
	case errors.As(err, &typeErr), errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return models.Invalid("body", "Request body must be a valid JSON object")
	}
	return models.Invalid("status", "Status is required")
}

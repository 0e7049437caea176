package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/infrastructure/httpserver/helpers"
)

func (s *Server) createOrder(c echo.Context) error {
	var req order.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OrderID == "" || req.Branch == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "orderId and branch are required")
	}

	o, err := s.orderService.CreateOrder(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (s *Server) orderHook(c echo.Context) error {
	var req order.HookOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "orderId is required")
	}

	o, created, err := s.orderService.UpsertFromHook(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, o)
}

func (s *Server) getOrder(c echo.Context) error {
	caller, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	o, err := s.orderService.GetOrder(c.Request().Context(), c.Param("orderId"), caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) updateOrder(c echo.Context) error {
	caller, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	var req order.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	o, err := s.orderService.UpdateOrder(c.Request().Context(), c.Param("orderId"), &req, caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) updatePaymentStatus(c echo.Context) error {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req order.UpdatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	o, err := s.orderService.UpdatePaymentStatus(c.Request().Context(), id, req.PaymentStatus)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) completeDelivery(c echo.Context) error {
	caller, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	var req order.CompleteDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "orderId is required")
	}

	o, err := s.orderService.CompleteDelivery(c.Request().Context(), &req, caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) listOrders(c echo.Context) error {
	caller, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	orders, err := s.orderService.ListOrders(c.Request().Context(), caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (s *Server) orderCounts(c echo.Context) error {
	caller, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	counts, err := s.orderService.OrderCounts(c.Request().Context(), caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) todayDeliveries(c echo.Context) error {
	caller, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	count, delivered, err := s.orderService.TodayDeliveries(c.Request().Context(), caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  count,
		"orders": delivered,
	})
}

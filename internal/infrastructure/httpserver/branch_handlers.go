package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/branch"
	"github.com/meenabazaar/order-management/internal/infrastructure/httpserver/helpers"
)

func (s *Server) createBranch(c echo.Context) error {
	var req branch.CreateBranchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and code are required")
	}

	created, err := s.branchService.CreateBranch(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) getBranch(c echo.Context) error {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}

	b, err := s.branchService.GetBranch(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// getOwnBranch returns the branch managed by the calling branch manager.
func (s *Server) getOwnBranch(c echo.Context) error {
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	b, err := s.branchService.GetBranchForManager(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) updateBranch(c echo.Context) error {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}

	var req branch.UpdateBranchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := s.branchService.UpdateBranch(c.Request().Context(), id, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteBranch(c echo.Context) error {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid branch id")
	}

	if err := s.branchService.DeleteBranch(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "branch deleted"})
}

func (s *Server) listBranches(c echo.Context) error {
	branches, err := s.branchService.ListBranches(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, branches)
}

func (s *Server) listBranchNames(c echo.Context) error {
	names, err := s.branchService.ListBranchNames(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, names)
}

func (s *Server) branchCounts(c echo.Context) error {
	counts, err := s.branchService.BranchCounts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/lending"
)

// UserLoansController is the librarian's view of one member.
type UserLoansController struct{ *LoanController }

func NewUserLoansController(lc *LoanController) *UserLoansController {
	return &UserLoansController{LoanController: lc}
}

// GET /api/users/:id/loans
func (uc *UserLoansController) Summary(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil { // ✅ 校验 UUID 格式
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	if _, err := uc.Repo.FindUserByID(c.Request.Context(), id); err != nil {
		uc.fail(c, notFoundAs(err, lending.ErrUserNotFound))
		return
	}
	uc.activeSummary(c, id)
}

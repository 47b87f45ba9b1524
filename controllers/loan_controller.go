package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/lending"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// POST /api/loans {"bookIds": ["..", ".."]}
func (lc *LoanController) Borrow(c *gin.Context) {
	var in struct {
		BookIDs []string `json:"bookIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	actor := app.ActorFrom(c)

	rec, err := lc.Loans.BorrowBooks(c.Request.Context(), actor.UserID, in.BookIDs)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// POST /api/loans/items/:id/return
func (lc *LoanController) Return(c *gin.Context) {
	itemID := c.Param("id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing item id"})
		return
	}

	it, err := lc.Loans.ReturnItem(c.Request.Context(), itemID, app.ActorFrom(c))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// GET /api/loans/eligibility
func (lc *LoanController) Eligibility(c *gin.Context) {
	err := lc.Loans.CheckEligibility(c.Request.Context(), app.ActorFrom(c).UserID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, app.H{"eligible": true})
	case lending.IsEligibilityError(err):
		c.JSON(http.StatusOK, app.H{"eligible": false, "reason": err.Error()})
	default:
		lc.fail(c, err)
	}
}

// GET /api/loans/me/items
func (lc *LoanController) MyActiveItems(c *gin.Context) {
	lc.activeSummary(c, app.ActorFrom(c).UserID)
}

// activeSummary 当前借着的条目 + 数量 + 是否逾期
func (lc *LoanController) activeSummary(c *gin.Context, userID string) {
	ctx := c.Request.Context()
	items, err := lc.Loans.ActiveItems(ctx, userID)
	if err != nil {
		lc.fail(c, err)
		return
	}
	overdue, err := lc.Loans.HasOverdueItems(ctx, userID)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"items":      items,
		"count":      len(items),
		"hasOverdue": overdue,
	})
}

// GET /api/loans/records?userId=&email=&start=&end=&page=&size=&sort=
func (lc *LoanController) Records(c *gin.Context) {
	start, ok := dateQuery(c, "start")
	if !ok {
		return
	}
	end, ok := dateQuery(c, "end")
	if !ok {
		return
	}
	if id := c.Query("userId"); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid userId"})
			return
		}
	}
	f := lending.RecordFilter{
		UserID: c.Query("userId"),
		Email:  c.Query("email"),
		Start:  start,
		End:    end,
	}

	page, err := lc.Loans.SearchRecords(c.Request.Context(), app.ActorFrom(c), f, pageFrom(c))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/loans/records/:id
func (lc *LoanController) Record(c *gin.Context) {
	rec, err := lc.Loans.Record(c.Request.Context(), app.ActorFrom(c), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/books/:id/availability
func (lc *LoanController) Availability(c *gin.Context) {
	bookID := c.Param("id")
	ok, err := lc.Loans.IsBookAvailable(c.Request.Context(), bookID)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"bookId": bookID, "available": ok})
}

// GET /api/loans/overdue?page=&size=&sort=   (librarian)
func (lc *LoanController) Overdue(c *gin.Context) {
	page, err := lc.Loans.OverdueItems(c.Request.Context(), pageFrom(c))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/loans/items?start=&end=&page=&size=&sort=   (librarian)
func (lc *LoanController) ItemsBetween(c *gin.Context) {
	start, ok := dateQuery(c, "start")
	if !ok {
		return
	}
	end, ok := dateQuery(c, "end")
	if !ok {
		return
	}

	page, err := lc.Loans.ItemsBorrowedBetween(c.Request.Context(), start, end, pageFrom(c))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/http/response"
	"github.com/yungbote/ehon-backend/internal/platform/apierr"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type BookFinder interface {
	FindByIdentifier(ctx context.Context, id storybook.BookID) ([]storybook.StoryRecord, error)
}

type BookHandler struct {
	log   *logger.Logger
	books BookFinder
}

func NewBookHandler(log *logger.Logger, books BookFinder) *BookHandler {
	return &BookHandler{log: log.With("handler", "BookHandler"), books: books}
}

// GET /api/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	id, err := storybook.ParseBookID(c.Param("id"))
	if err != nil {
		respondErr(c, h.log, apierr.New(http.StatusBadRequest, "invalid_book_id", err))
		return
	}
	rows, err := h.books.FindByIdentifier(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.log, fmt.Errorf("find book %s: %w", id, err))
		return
	}
	if len(rows) == 0 {
		respondErr(c, h.log, apierr.New(http.StatusNotFound, "book_not_found", fmt.Errorf("%w: %s", storybook.ErrBookNotFound, id)))
		return
	}
	response.RespondOK(c, storybook.BookFromRecords(id, rows))
}
